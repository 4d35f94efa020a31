package services

import (
	"fmt"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"business-bot/models"
)

func newTestChatbot() *models.Chatbot {
	return &models.Chatbot{
		BusinessID: "biz-1",
		IsActive:   true,
		Settings:   models.DefaultSettings(),
		Responses:  models.DefaultResponseRules(),
	}
}

func TestAddConversationSeedsWelcome(t *testing.T) {
	bot := newTestChatbot()

	conv := AddConversation(bot, "user-1")

	if len(bot.Conversations) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(bot.Conversations))
	}
	if conv.Status != models.StatusActive {
		t.Errorf("status = %q, want active", conv.Status)
	}
	if conv.StartedAt.IsZero() {
		t.Error("startedAt not set")
	}
	if !conv.LastMessageAt.IsZero() {
		t.Error("lastMessageAt set before any message was posted")
	}
	if len(conv.Messages) != 1 {
		t.Fatalf("expected seeded welcome message, got %d messages", len(conv.Messages))
	}
	seed := conv.Messages[0]
	if seed.Sender != models.SenderBot || seed.Content != bot.Settings.WelcomeMessage {
		t.Errorf("seed message = %+v, want bot welcome", seed)
	}
	if seed.Read {
		t.Error("seed message should default to unread")
	}
}

func TestFindConversation(t *testing.T) {
	bot := newTestChatbot()
	conv := AddConversation(bot, "user-1")

	found, err := FindConversation(bot, conv.ID)
	if err != nil {
		t.Fatalf("FindConversation: %v", err)
	}
	if found.ID != conv.ID {
		t.Errorf("found wrong conversation")
	}

	_, err = FindConversation(bot, primitive.NewObjectID())
	if err != ErrConversationNotFound {
		t.Errorf("unknown id: got %v, want ErrConversationNotFound", err)
	}
}

func TestAppendMessageOrderAndLastMessageAt(t *testing.T) {
	bot := newTestChatbot()
	conv := AddConversation(bot, "user-1")
	before := len(conv.Messages)

	const n = 20
	for i := 0; i < n; i++ {
		AppendMessage(conv, models.SenderUser, fmt.Sprintf("message %d", i))
	}

	if len(conv.Messages) != before+n {
		t.Fatalf("expected %d messages, got %d", before+n, len(conv.Messages))
	}
	for i := 0; i < n; i++ {
		if conv.Messages[before+i].Content != fmt.Sprintf("message %d", i) {
			t.Fatalf("message %d out of append order", i)
		}
	}

	last := conv.Messages[len(conv.Messages)-1]
	if !conv.LastMessageAt.Equal(last.Timestamp) {
		t.Errorf("lastMessageAt = %v, want last message timestamp %v", conv.LastMessageAt, last.Timestamp)
	}

	// Timestamps never move backward relative to append order
	for i := 1; i < len(conv.Messages); i++ {
		if conv.Messages[i].Timestamp.Before(conv.Messages[i-1].Timestamp) {
			t.Fatalf("timestamp at index %d moved backward", i)
		}
	}
}

func TestAppendMessageClampsClock(t *testing.T) {
	bot := newTestChatbot()
	conv := AddConversation(bot, "user-1")

	// Pin the previous message into the future; the next append must
	// not produce an earlier timestamp
	future := time.Now().Add(time.Hour)
	conv.Messages[0].Timestamp = future

	msg := AppendMessage(conv, models.SenderUser, "hello")
	if msg.Timestamp.Before(future) {
		t.Errorf("timestamp %v moved backward past %v", msg.Timestamp, future)
	}
}

func TestTransitionStatus(t *testing.T) {
	tests := []struct {
		name    string
		from    models.ConversationStatus
		to      models.ConversationStatus
		wantErr bool
	}{
		{"active to resolved", models.StatusActive, models.StatusResolved, false},
		{"active to archived", models.StatusActive, models.StatusArchived, false},
		{"resolved to archived", models.StatusResolved, models.StatusArchived, false},
		{"resolved to active", models.StatusResolved, models.StatusActive, true},
		{"archived to active", models.StatusArchived, models.StatusActive, true},
		{"archived to resolved", models.StatusArchived, models.StatusResolved, true},
		{"active to active", models.StatusActive, models.StatusActive, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv := &models.Conversation{Status: tt.from}
			err := TransitionStatus(conv, tt.to)
			if tt.wantErr {
				if err != ErrInvalidTransition {
					t.Fatalf("got %v, want ErrInvalidTransition", err)
				}
				if conv.Status != tt.from {
					t.Error("failed transition changed the status")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if conv.Status != tt.to {
				t.Errorf("status = %q, want %q", conv.Status, tt.to)
			}
		})
	}
}

func TestResolvedAtSetOnceNeverCleared(t *testing.T) {
	conv := &models.Conversation{Status: models.StatusActive}

	if err := TransitionStatus(conv, models.StatusResolved); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if conv.ResolvedAt == nil {
		t.Fatal("resolvedAt not set on resolve")
	}
	resolvedAt := *conv.ResolvedAt

	if err := TransitionStatus(conv, models.StatusArchived); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if conv.ResolvedAt == nil || !conv.ResolvedAt.Equal(resolvedAt) {
		t.Error("archiving a resolved conversation touched resolvedAt")
	}

	// Illegal transition attempts must not clear it either
	TransitionStatus(conv, models.StatusActive)
	if conv.ResolvedAt == nil || !conv.ResolvedAt.Equal(resolvedAt) {
		t.Error("failed transition touched resolvedAt")
	}
}

func listFixture() *models.Chatbot {
	bot := newTestChatbot()
	base := time.Now()

	// Four conversations: two active, one resolved, one that never got
	// a message (lastMessageAt unset, sorts last)
	for i, fixture := range []struct {
		status models.ConversationStatus
		last   time.Time
	}{
		{models.StatusActive, base.Add(2 * time.Minute)},
		{models.StatusResolved, base.Add(3 * time.Minute)},
		{models.StatusActive, base.Add(1 * time.Minute)},
		{models.StatusActive, time.Time{}},
	} {
		conv := models.Conversation{
			ID:            primitive.NewObjectID(),
			UserID:        fmt.Sprintf("user-%d", i),
			Status:        fixture.status,
			StartedAt:     base,
			LastMessageAt: fixture.last,
		}
		bot.Conversations = append(bot.Conversations, conv)
	}
	return bot
}

func TestFilterConversationsSortAndFilter(t *testing.T) {
	bot := listFixture()

	items, total := FilterConversations(bot, "", 1, 10)
	if total != 4 || len(items) != 4 {
		t.Fatalf("got %d items, total %d; want 4/4", len(items), total)
	}
	// Newest first, empty lastMessageAt last
	if items[0].UserID != "user-1" || items[1].UserID != "user-0" || items[2].UserID != "user-2" || items[3].UserID != "user-3" {
		t.Errorf("wrong order: %s %s %s %s", items[0].UserID, items[1].UserID, items[2].UserID, items[3].UserID)
	}

	items, total = FilterConversations(bot, "active", 1, 10)
	if total != 3 || len(items) != 3 {
		t.Fatalf("status filter: got %d items, total %d; want 3/3", len(items), total)
	}
	for _, conv := range items {
		if conv.Status != models.StatusActive {
			t.Errorf("filter let through status %q", conv.Status)
		}
	}
}

func TestFilterConversationsPagination(t *testing.T) {
	bot := listFixture()

	items, total := FilterConversations(bot, "", 2, 3)
	if total != 4 {
		t.Errorf("total = %d, want 4", total)
	}
	if len(items) != 1 {
		t.Fatalf("page 2 of size 3: got %d items, want 1", len(items))
	}

	// Out-of-range page: empty slice, correct total, no fault
	items, total = FilterConversations(bot, "", 99, 3)
	if total != 4 || len(items) != 0 {
		t.Errorf("out-of-range page: got %d items, total %d", len(items), total)
	}

	// page and pageSize clamp to 1
	items, total = FilterConversations(bot, "", 0, 0)
	if total != 4 || len(items) != 1 {
		t.Errorf("clamped page: got %d items, total %d; want 1/4", len(items), total)
	}
}

func TestMarkConversationRead(t *testing.T) {
	bot := newTestChatbot()
	conv := AddConversation(bot, "user-1")
	AppendMessage(conv, models.SenderUser, "hi")
	AppendMessage(conv, models.SenderBusiness, "hello")

	// Business reading marks only the user's messages
	marked := MarkConversationRead(conv, models.SenderBusiness)
	if marked != 1 {
		t.Fatalf("business read marked %d messages, want 1", marked)
	}

	// User reading marks bot and business messages
	marked = MarkConversationRead(conv, models.SenderUser)
	if marked != 2 {
		t.Fatalf("user read marked %d messages, want 2", marked)
	}

	// Everything is read now; a second pass marks nothing
	if marked := MarkConversationRead(conv, models.SenderUser); marked != 0 {
		t.Errorf("repeat read marked %d messages, want 0", marked)
	}
}
