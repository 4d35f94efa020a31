package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"business-bot/models"
)

// ChatbotStore abstracts chatbot document persistence. The whole
// document is loaded and saved per operation, matching the one-document-
// per-business data model.
type ChatbotStore interface {
	// EnsureChatbot returns the chatbot for a business, creating it with
	// defaults if it does not exist yet. Idempotent: repeated calls
	// return the same document and never duplicate it.
	EnsureChatbot(ctx context.Context, businessID string) (*models.Chatbot, error)

	// GetChatbot returns the chatbot for a business, or ErrNotInitialized
	// if no chatbot has been created for it.
	GetChatbot(ctx context.Context, businessID string) (*models.Chatbot, error)

	// SaveChatbot replaces the stored document with the given one.
	SaveChatbot(ctx context.Context, bot *models.Chatbot) error
}

// mongoChatbotStore persists chatbots in the "chatbots" collection
type mongoChatbotStore struct {
	timeout time.Duration
}

// NewChatbotStore creates a Mongo-backed chatbot store. Every storage
// interaction carries the given timeout; exceeding it surfaces
// ErrStorageUnavailable rather than hanging.
func NewChatbotStore(timeout time.Duration) ChatbotStore {
	return &mongoChatbotStore{timeout: timeout}
}

func (s *mongoChatbotStore) collection() *mongo.Collection {
	return GetDatabase().Collection("chatbots")
}

func (s *mongoChatbotStore) EnsureChatbot(ctx context.Context, businessID string) (*models.Chatbot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	now := time.Now()
	filter := bson.M{"business_id": businessID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"business_id":   businessID,
			"is_active":     true,
			"settings":      models.DefaultSettings(),
			"responses":     models.DefaultResponseRules(),
			"conversations": []models.Conversation{},
			"version":       int64(0),
			"created_at":    now,
			"updated_at":    now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var bot models.Chatbot
	if err := s.collection().FindOneAndUpdate(ctx, filter, update, opts).Decode(&bot); err != nil {
		return nil, storageFailure("ensure chatbot", err)
	}

	return &bot, nil
}

func (s *mongoChatbotStore) GetChatbot(ctx context.Context, businessID string) (*models.Chatbot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var bot models.Chatbot
	err := s.collection().FindOne(ctx, bson.M{"business_id": businessID}).Decode(&bot)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotInitialized
		}
		return nil, storageFailure("get chatbot", err)
	}

	return &bot, nil
}

func (s *mongoChatbotStore) SaveChatbot(ctx context.Context, bot *models.Chatbot) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	bot.Version++
	bot.UpdatedAt = time.Now()

	filter := bson.M{"business_id": bot.BusinessID}
	if _, err := s.collection().ReplaceOne(ctx, filter, bot); err != nil {
		bot.Version--
		return storageFailure("save chatbot", err)
	}

	return nil
}

// storageFailure logs the underlying driver error and surfaces the
// retriable sentinel to the caller.
func storageFailure(op string, err error) error {
	slog.Error("Storage operation failed", "op", op, "error", err)
	return fmt.Errorf("%s: %w", op, ErrStorageUnavailable)
}
