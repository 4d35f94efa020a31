package services

import (
	"sort"

	"business-bot/models"
)

// ComputeAnalytics derives a full analytics snapshot from the
// conversation set. It is a pure function: no state is carried between
// calls, so a snapshot can never drift from the conversations it was
// computed over.
func ComputeAnalytics(conversations []models.Conversation) models.Analytics {
	analytics := models.Analytics{
		TotalConversations: len(conversations),
		PopularQueries:     []models.PopularQuery{},
	}
	if len(conversations) == 0 {
		return analytics
	}

	resolved := 0
	for _, conv := range conversations {
		if conv.Status == models.StatusResolved {
			resolved++
		}
	}
	analytics.ResolutionRate = float64(resolved) / float64(len(conversations)) * 100

	analytics.AverageResponseTime = averageResponseTime(conversations)
	analytics.PopularQueries = popularQueries(conversations)

	return analytics
}

// averageResponseTime is the mean delta, in milliseconds, between a
// user message and the bot or business message that immediately
// follows it. The gap is measured from the immediately preceding
// message only; a second bot or business message without an
// intervening user message is not a new response.
func averageResponseTime(conversations []models.Conversation) float64 {
	var totalMillis int64
	responses := 0

	for _, conv := range conversations {
		for i := 1; i < len(conv.Messages); i++ {
			sender := conv.Messages[i].Sender
			if sender != models.SenderBot && sender != models.SenderBusiness {
				continue
			}
			if conv.Messages[i-1].Sender != models.SenderUser {
				continue
			}
			delta := conv.Messages[i].Timestamp.Sub(conv.Messages[i-1].Timestamp)
			totalMillis += delta.Milliseconds()
			responses++
		}
	}

	if responses == 0 {
		return 0
	}
	return float64(totalMillis) / float64(responses)
}

// popularQueries tallies user message contents by exact string equality
// and returns the top ten by count, ties broken by first occurrence.
func popularQueries(conversations []models.Conversation) []models.PopularQuery {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	order := 0

	for _, conv := range conversations {
		for _, msg := range conv.Messages {
			if msg.Sender != models.SenderUser {
				continue
			}
			if _, seen := counts[msg.Content]; !seen {
				firstSeen[msg.Content] = order
				order++
			}
			counts[msg.Content]++
		}
	}

	queries := make([]models.PopularQuery, 0, len(counts))
	for query, count := range counts {
		queries = append(queries, models.PopularQuery{Query: query, Count: count})
	}

	sort.SliceStable(queries, func(i, j int) bool {
		if queries[i].Count != queries[j].Count {
			return queries[i].Count > queries[j].Count
		}
		return firstSeen[queries[i].Query] < firstSeen[queries[j].Query]
	})

	if len(queries) > 10 {
		queries = queries[:10]
	}
	return queries
}
