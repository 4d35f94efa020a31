package services

import (
	"fmt"
	"testing"
	"time"

	"business-bot/models"
)

func TestComputeAnalyticsEmpty(t *testing.T) {
	analytics := ComputeAnalytics(nil)

	if analytics.TotalConversations != 0 {
		t.Errorf("totalConversations = %d, want 0", analytics.TotalConversations)
	}
	if analytics.ResolutionRate != 0 {
		t.Errorf("resolutionRate = %v, want 0", analytics.ResolutionRate)
	}
	if analytics.AverageResponseTime != 0 {
		t.Errorf("averageResponseTime = %v, want 0", analytics.AverageResponseTime)
	}
	if len(analytics.PopularQueries) != 0 {
		t.Errorf("popularQueries = %v, want empty", analytics.PopularQueries)
	}
}

func TestComputeAnalyticsResolutionRate(t *testing.T) {
	conversations := []models.Conversation{
		{Status: models.StatusResolved},
		{Status: models.StatusActive},
		{Status: models.StatusArchived},
		{Status: models.StatusResolved},
	}

	analytics := ComputeAnalytics(conversations)
	if analytics.TotalConversations != 4 {
		t.Errorf("totalConversations = %d, want 4", analytics.TotalConversations)
	}
	if analytics.ResolutionRate != 50 {
		t.Errorf("resolutionRate = %v, want 50", analytics.ResolutionRate)
	}
}

func msgAt(sender models.Sender, content string, base time.Time, offsetSec int) models.Message {
	return models.Message{
		Sender:    sender,
		Content:   content,
		Timestamp: base.Add(time.Duration(offsetSec) * time.Second),
	}
}

func TestAverageResponseTime(t *testing.T) {
	base := time.Now()

	conversations := []models.Conversation{
		{
			Status: models.StatusActive,
			Messages: []models.Message{
				msgAt(models.SenderBot, "welcome", base, 0),
				msgAt(models.SenderUser, "hours?", base, 10),
				msgAt(models.SenderBot, "9 to 5", base, 12), // response: 2s
				// Second reply without an intervening user message is
				// not a new response
				msgAt(models.SenderBusiness, "anything else?", base, 20),
				msgAt(models.SenderUser, "no thanks", base, 30),
				msgAt(models.SenderBusiness, "bye", base, 36), // response: 6s
			},
		},
	}

	analytics := ComputeAnalytics(conversations)
	want := float64((2*time.Second + 6*time.Second).Milliseconds()) / 2
	if analytics.AverageResponseTime != want {
		t.Errorf("averageResponseTime = %v, want %v", analytics.AverageResponseTime, want)
	}
}

func TestAverageResponseTimeNoResponses(t *testing.T) {
	base := time.Now()
	conversations := []models.Conversation{
		{
			Messages: []models.Message{
				msgAt(models.SenderUser, "hello?", base, 0),
				msgAt(models.SenderUser, "anyone there?", base, 60),
			},
		},
	}

	analytics := ComputeAnalytics(conversations)
	if analytics.AverageResponseTime != 0 {
		t.Errorf("averageResponseTime = %v, want 0 when no responses exist", analytics.AverageResponseTime)
	}
}

func TestPopularQueriesRankingAndTies(t *testing.T) {
	base := time.Now()
	conv := models.Conversation{}
	add := func(content string) {
		conv.Messages = append(conv.Messages, msgAt(models.SenderUser, content, base, len(conv.Messages)))
	}

	add("hours")
	add("location")
	add("hours")
	add("refund") // ties with location at 1; location seen first
	add("hours")
	conv.Messages = append(conv.Messages, msgAt(models.SenderBot, "hours", base, 100)) // bot content never tallied

	analytics := ComputeAnalytics([]models.Conversation{conv})

	want := []models.PopularQuery{
		{Query: "hours", Count: 3},
		{Query: "location", Count: 1},
		{Query: "refund", Count: 1},
	}
	if len(analytics.PopularQueries) != len(want) {
		t.Fatalf("got %d queries, want %d", len(analytics.PopularQueries), len(want))
	}
	for i, q := range want {
		if analytics.PopularQueries[i] != q {
			t.Errorf("popularQueries[%d] = %+v, want %+v", i, analytics.PopularQueries[i], q)
		}
	}
}

func TestPopularQueriesCapAtTen(t *testing.T) {
	base := time.Now()
	conv := models.Conversation{}
	for i := 0; i < 15; i++ {
		conv.Messages = append(conv.Messages, msgAt(models.SenderUser, fmt.Sprintf("query %d", i), base, i))
	}

	analytics := ComputeAnalytics([]models.Conversation{conv})
	if len(analytics.PopularQueries) != 10 {
		t.Fatalf("got %d queries, want 10", len(analytics.PopularQueries))
	}
	// Ties broken by first occurrence
	for i := 0; i < 10; i++ {
		if analytics.PopularQueries[i].Query != fmt.Sprintf("query %d", i) {
			t.Errorf("popularQueries[%d] = %q", i, analytics.PopularQueries[i].Query)
		}
	}
}

func TestPopularQueriesExactMatchNoNormalization(t *testing.T) {
	base := time.Now()
	conv := models.Conversation{
		Messages: []models.Message{
			msgAt(models.SenderUser, "Hours", base, 0),
			msgAt(models.SenderUser, "hours", base, 1),
			msgAt(models.SenderUser, "hours ", base, 2),
		},
	}

	analytics := ComputeAnalytics([]models.Conversation{conv})
	if len(analytics.PopularQueries) != 3 {
		t.Fatalf("got %d distinct queries, want 3 (exact string equality)", len(analytics.PopularQueries))
	}
}
