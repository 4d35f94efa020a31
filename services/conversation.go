package services

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"business-bot/models"
)

// AddConversation appends a new active conversation to the chatbot,
// seeded with a single bot message carrying the welcome text. The
// seeded message does not set lastMessageAt; a conversation only gets
// one once a message is posted into it.
func AddConversation(bot *models.Chatbot, userID string) *models.Conversation {
	now := time.Now()
	conv := models.Conversation{
		ID:     primitive.NewObjectID(),
		UserID: userID,
		Messages: []models.Message{
			{
				Sender:    models.SenderBot,
				Content:   bot.Settings.WelcomeMessage,
				Timestamp: now,
			},
		},
		Status:    models.StatusActive,
		StartedAt: now,
	}
	bot.Conversations = append(bot.Conversations, conv)
	return &bot.Conversations[len(bot.Conversations)-1]
}

// FindConversation locates a conversation within the chatbot by ID
func FindConversation(bot *models.Chatbot, conversationID primitive.ObjectID) (*models.Conversation, error) {
	for i := range bot.Conversations {
		if bot.Conversations[i].ID == conversationID {
			return &bot.Conversations[i], nil
		}
	}
	return nil, ErrConversationNotFound
}

// AppendMessage appends a message to the conversation and stamps
// lastMessageAt. Timestamps are monotonic within a conversation: a
// clock reading earlier than the previous message is clamped so append
// order and timestamp order never disagree.
func AppendMessage(conv *models.Conversation, sender models.Sender, content string) models.Message {
	ts := time.Now()
	if n := len(conv.Messages); n > 0 && ts.Before(conv.Messages[n-1].Timestamp) {
		ts = conv.Messages[n-1].Timestamp
	}

	msg := models.Message{
		Sender:    sender,
		Content:   content,
		Timestamp: ts,
	}
	conv.Messages = append(conv.Messages, msg)
	conv.LastMessageAt = ts
	return msg
}

// TransitionStatus applies a status change. Legal transitions are
// active→resolved, active→archived and resolved→archived; anything
// else fails with ErrInvalidTransition. resolvedAt is set once, on the
// transition into resolved, and never cleared afterwards.
func TransitionStatus(conv *models.Conversation, newStatus models.ConversationStatus) error {
	legal := false
	switch conv.Status {
	case models.StatusActive:
		legal = newStatus == models.StatusResolved || newStatus == models.StatusArchived
	case models.StatusResolved:
		legal = newStatus == models.StatusArchived
	}
	if !legal {
		return ErrInvalidTransition
	}

	conv.Status = newStatus
	if newStatus == models.StatusResolved && conv.ResolvedAt == nil {
		now := time.Now()
		conv.ResolvedAt = &now
	}
	return nil
}

// FilterConversations applies an optional status filter, sorts by
// lastMessageAt descending (conversations that never received a
// message sort last) and returns the requested page plus the total
// matching count. page and pageSize are clamped to at least 1; an
// out-of-range page yields an empty slice with the correct total.
func FilterConversations(bot *models.Chatbot, status string, page, pageSize int) ([]models.Conversation, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}

	matched := make([]models.Conversation, 0, len(bot.Conversations))
	for _, conv := range bot.Conversations {
		if status != "" && string(conv.Status) != status {
			continue
		}
		matched = append(matched, conv)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i].LastMessageAt, matched[j].LastMessageAt
		if a.IsZero() {
			return false
		}
		if b.IsZero() {
			return true
		}
		return a.After(b)
	})

	total := len(matched)
	start := (page - 1) * pageSize
	if start >= total {
		return []models.Conversation{}, total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return matched[start:end], total
}

// MarkConversationRead flags as read every message not sent by the
// reader's own side, and returns how many were flipped. A user reading
// marks bot and business messages; the business reading marks user
// messages.
func MarkConversationRead(conv *models.Conversation, reader models.Sender) int {
	marked := 0
	for i := range conv.Messages {
		if conv.Messages[i].Read || conv.Messages[i].Sender == reader {
			continue
		}
		if reader == models.SenderBusiness && conv.Messages[i].Sender == models.SenderBot {
			continue
		}
		conv.Messages[i].Read = true
		marked++
	}
	return marked
}
