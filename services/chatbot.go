package services

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"business-bot/models"
)

// BusinessDirectory is the narrow view of the directory collaborator
// the chatbot needs: whether a business exists.
type BusinessDirectory interface {
	BusinessExists(ctx context.Context, businessID string) (bool, error)
}

// ChatbotService coordinates all chatbot operations for the request
// layer. Every mutating operation runs a load-mutate-save cycle under a
// mutex scoped to the target business, so concurrent writers against
// the same chatbot never lose an append while different businesses
// proceed in parallel. Read operations work on a point-in-time snapshot
// and take no lock.
type ChatbotService struct {
	store     ChatbotStore
	directory BusinessDirectory
	locks     *chatbotLocks
}

// NewChatbotService creates the chatbot coordinator
func NewChatbotService(store ChatbotStore, directory BusinessDirectory) *ChatbotService {
	return &ChatbotService{
		store:     store,
		directory: directory,
		locks:     newChatbotLocks(),
	}
}

// Initialize returns the chatbot for a business, creating it with
// default settings and the seeded rule set on first call. Idempotent:
// repeated calls return the same chatbot and never reset settings.
func (s *ChatbotService) Initialize(ctx context.Context, businessID string) (*models.Chatbot, error) {
	if err := s.checkBusiness(ctx, businessID); err != nil {
		return nil, err
	}

	lock := s.locks.get(businessID)
	lock.Lock()
	defer lock.Unlock()

	return s.store.EnsureChatbot(ctx, businessID)
}

// UpdateSettings applies a partial settings change
func (s *ChatbotService) UpdateSettings(ctx context.Context, businessID string, update models.SettingsUpdate) (*models.Chatbot, error) {
	return s.mutate(ctx, businessID, func(bot *models.Chatbot) error {
		if update.WelcomeMessage != nil {
			bot.Settings.WelcomeMessage = *update.WelcomeMessage
		}
		if update.OfflineMessage != nil {
			bot.Settings.OfflineMessage = *update.OfflineMessage
		}
		if update.OperatingHours != nil {
			bot.Settings.OperatingHours = *update.OperatingHours
		}
		if update.AutoReply != nil {
			bot.Settings.AutoReply = *update.AutoReply
		}
		return nil
	})
}

// ApplyRuleUpdates upserts response rules by trigger identity
func (s *ChatbotService) ApplyRuleUpdates(ctx context.Context, businessID string, updates []models.RuleUpdate) (*models.Chatbot, error) {
	return s.mutate(ctx, businessID, func(bot *models.Chatbot) error {
		bot.Responses = ApplyRuleUpdates(bot.Responses, updates)
		return nil
	})
}

// StartConversation opens a new conversation for a user, seeded with
// the welcome message.
func (s *ChatbotService) StartConversation(ctx context.Context, businessID, userID string) (*models.Conversation, error) {
	var started models.Conversation
	_, err := s.mutate(ctx, businessID, func(bot *models.Chatbot) error {
		started = *AddConversation(bot, userID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &started, nil
}

// PostMessage appends a message to a conversation. When the sender is a
// user and auto-reply is enabled, at most one automated reply follows
// in the same operation: the offline message outside operating hours,
// otherwise the first matching rule's response. Returns the messages
// appended, in order. Blank content is rejected before anything is
// stored; a message always carries text.
func (s *ChatbotService) PostMessage(ctx context.Context, businessID string, conversationID primitive.ObjectID, sender models.Sender, content string) ([]models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyMessage
	}

	var appended []models.Message
	_, err := s.mutate(ctx, businessID, func(bot *models.Chatbot) error {
		conv, err := FindConversation(bot, conversationID)
		if err != nil {
			return err
		}

		appended = append(appended, AppendMessage(conv, sender, content))

		if sender != models.SenderUser || !bot.Settings.AutoReply {
			return nil
		}
		if !withinOperatingHours(bot.Settings.OperatingHours, time.Now()) {
			appended = append(appended, AppendMessage(conv, models.SenderBot, bot.Settings.OfflineMessage))
			return nil
		}
		if rule := MatchRule(bot.Responses, content); rule != nil {
			appended = append(appended, AppendMessage(conv, models.SenderBot, rule.Response))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return appended, nil
}

// TransitionConversation applies a conversation status change
func (s *ChatbotService) TransitionConversation(ctx context.Context, businessID string, conversationID primitive.ObjectID, newStatus models.ConversationStatus) (*models.Conversation, error) {
	var updated models.Conversation
	_, err := s.mutate(ctx, businessID, func(bot *models.Chatbot) error {
		conv, err := FindConversation(bot, conversationID)
		if err != nil {
			return err
		}
		if err := TransitionStatus(conv, newStatus); err != nil {
			return err
		}
		updated = *conv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// MarkRead flags the counterparty's messages in a conversation as read
func (s *ChatbotService) MarkRead(ctx context.Context, businessID string, conversationID primitive.ObjectID, reader models.Sender) (int, error) {
	marked := 0
	_, err := s.mutate(ctx, businessID, func(bot *models.Chatbot) error {
		conv, err := FindConversation(bot, conversationID)
		if err != nil {
			return err
		}
		marked = MarkConversationRead(conv, reader)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return marked, nil
}

// ListConversations returns one page of conversations plus the total
// matching count. Read-only: operates on a snapshot without locking.
func (s *ChatbotService) ListConversations(ctx context.Context, businessID, status string, page, pageSize int) ([]models.Conversation, int, error) {
	if err := s.checkBusiness(ctx, businessID); err != nil {
		return nil, 0, err
	}

	bot, err := s.store.GetChatbot(ctx, businessID)
	if err != nil {
		return nil, 0, err
	}

	items, total := FilterConversations(bot, status, page, pageSize)
	return items, total, nil
}

// GetAnalytics recomputes the analytics snapshot from the full
// conversation set. Read-only: operates on a snapshot without locking.
func (s *ChatbotService) GetAnalytics(ctx context.Context, businessID string) (models.Analytics, error) {
	if err := s.checkBusiness(ctx, businessID); err != nil {
		return models.Analytics{}, err
	}

	bot, err := s.store.GetChatbot(ctx, businessID)
	if err != nil {
		return models.Analytics{}, err
	}

	return ComputeAnalytics(bot.Conversations), nil
}

// mutate runs one read-modify-write cycle under the business lock. A
// mutation that failed validation never reaches the store; a save that
// hit a transient storage failure is retried once before the failure
// surfaces, so an already-validated mutation is not dropped silently.
func (s *ChatbotService) mutate(ctx context.Context, businessID string, fn func(*models.Chatbot) error) (*models.Chatbot, error) {
	if err := s.checkBusiness(ctx, businessID); err != nil {
		return nil, err
	}

	lock := s.locks.get(businessID)
	lock.Lock()
	defer lock.Unlock()

	bot, err := s.store.GetChatbot(ctx, businessID)
	if err != nil {
		return nil, err
	}

	if err := fn(bot); err != nil {
		return nil, err
	}

	if err := s.store.SaveChatbot(ctx, bot); err != nil {
		if !errors.Is(err, ErrStorageUnavailable) {
			return nil, err
		}
		slog.Warn("Retrying chatbot save", "business_id", businessID)
		if err := s.store.SaveChatbot(ctx, bot); err != nil {
			return nil, err
		}
	}

	return bot, nil
}

func (s *ChatbotService) checkBusiness(ctx context.Context, businessID string) error {
	exists, err := s.directory.BusinessExists(ctx, businessID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrBusinessNotFound
	}
	return nil
}

// withinOperatingHours reports whether the instant falls inside the
// daily window, evaluated in the window's timezone. A window whose end
// precedes its start spans midnight. Malformed values never block the
// chatbot: an unknown timezone falls back to UTC and an unparseable
// clock makes the window always open.
func withinOperatingHours(h models.OperatingHours, now time.Time) bool {
	loc, err := time.LoadLocation(h.Timezone)
	if err != nil {
		loc = time.UTC
	}
	t := now.In(loc)

	start, okStart := parseClock(h.Start)
	end, okEnd := parseClock(h.End)
	if !okStart || !okEnd {
		return true
	}

	cur := t.Hour()*60 + t.Minute()
	if start <= end {
		return cur >= start && cur < end
	}
	return cur >= start || cur < end
}

// parseClock converts "HH:MM" to minutes since midnight
func parseClock(s string) (int, bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}
