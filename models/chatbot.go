package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sender identifies who wrote a message
type Sender string

const (
	SenderUser     Sender = "user"
	SenderBot      Sender = "bot"
	SenderBusiness Sender = "business"
)

// IsValidSender checks if a sender value is one of the known enums
func IsValidSender(s string) bool {
	switch Sender(s) {
	case SenderUser, SenderBot, SenderBusiness:
		return true
	}
	return false
}

// ConversationStatus represents the lifecycle state of a conversation
type ConversationStatus string

const (
	StatusActive   ConversationStatus = "active"
	StatusResolved ConversationStatus = "resolved"
	StatusArchived ConversationStatus = "archived"
)

// IsValidStatus checks if a status value is one of the known enums
func IsValidStatus(s string) bool {
	switch ConversationStatus(s) {
	case StatusActive, StatusResolved, StatusArchived:
		return true
	}
	return false
}

// Chatbot is the per-business chatbot document. Exactly one exists per
// business; it is created lazily on first access and holds the full
// conversation history inline.
type Chatbot struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BusinessID string             `bson:"business_id" json:"business_id"`
	IsActive   bool               `bson:"is_active" json:"is_active"`

	Settings      ChatbotSettings `bson:"settings" json:"settings"`
	Responses     []ResponseRule  `bson:"responses" json:"responses"`
	Conversations []Conversation  `bson:"conversations" json:"conversations"`

	// Version is bumped on every save so the store could move to
	// optimistic locking without a schema change.
	Version   int64     `bson:"version" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ChatbotSettings holds the business-tunable chatbot behavior
type ChatbotSettings struct {
	WelcomeMessage string         `bson:"welcome_message" json:"welcome_message"`
	OfflineMessage string         `bson:"offline_message" json:"offline_message"`
	OperatingHours OperatingHours `bson:"operating_hours" json:"operating_hours"`
	AutoReply      bool           `bson:"auto_reply" json:"auto_reply"`
}

// OperatingHours is a daily time window in "HH:MM" form
type OperatingHours struct {
	Start    string `bson:"start" json:"start"`
	End      string `bson:"end" json:"end"`
	Timezone string `bson:"timezone" json:"timezone"`
}

// ResponseRule maps a trigger substring to a canned reply
type ResponseRule struct {
	Trigger  string `bson:"trigger" json:"trigger"`
	Response string `bson:"response" json:"response"`
	IsActive bool   `bson:"is_active" json:"is_active"`
}

// RuleUpdate is a partial update applied to the rule set by trigger
// identity. Nil fields leave the existing value untouched.
type RuleUpdate struct {
	Trigger  string  `json:"trigger"`
	Response *string `json:"response,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// SettingsUpdate is a partial settings change. Nil fields leave the
// existing value untouched; the updatable fields are a closed set.
type SettingsUpdate struct {
	WelcomeMessage *string         `json:"welcome_message,omitempty"`
	OfflineMessage *string         `json:"offline_message,omitempty"`
	OperatingHours *OperatingHours `json:"operating_hours,omitempty"`
	AutoReply      *bool           `json:"auto_reply,omitempty"`
}

// Conversation is one ordered message thread between a user and the
// chatbot. The message sequence is append-only.
type Conversation struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        string             `bson:"user_id" json:"user_id"`
	Messages      []Message          `bson:"messages" json:"messages"`
	Status        ConversationStatus `bson:"status" json:"status"`
	StartedAt     time.Time          `bson:"started_at" json:"started_at"`
	LastMessageAt time.Time          `bson:"last_message_at,omitempty" json:"last_message_at,omitempty"`
	ResolvedAt    *time.Time         `bson:"resolved_at,omitempty" json:"resolved_at,omitempty"`
}

// Message is a single entry in a conversation
type Message struct {
	Sender    Sender    `bson:"sender" json:"sender"`
	Content   string    `bson:"content" json:"content"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	Read      bool      `bson:"read" json:"read"`
}

// Analytics is a derived snapshot recomputed wholesale on demand,
// never updated incrementally.
type Analytics struct {
	TotalConversations  int            `bson:"total_conversations" json:"total_conversations"`
	ResolutionRate      float64        `bson:"resolution_rate" json:"resolution_rate"`
	AverageResponseTime float64        `bson:"average_response_time" json:"average_response_time"` // milliseconds
	PopularQueries      []PopularQuery `bson:"popular_queries" json:"popular_queries"`
}

// PopularQuery is one entry of the top-queries ranking
type PopularQuery struct {
	Query string `bson:"query" json:"query"`
	Count int    `bson:"count" json:"count"`
}

// DefaultSettings returns the settings a chatbot is created with
func DefaultSettings() ChatbotSettings {
	return ChatbotSettings{
		WelcomeMessage: "Welcome! How can I assist you today?",
		OfflineMessage: "We are currently offline. Please leave a message and we will get back to you.",
		OperatingHours: OperatingHours{
			Start:    "09:00",
			End:      "17:00",
			Timezone: "UTC",
		},
		AutoReply: true,
	}
}

// DefaultResponseRules returns the rule set seeded on first initialization
func DefaultResponseRules() []ResponseRule {
	return []ResponseRule{
		{Trigger: "hours", Response: "Our business hours can be found on our profile page.", IsActive: true},
		{Trigger: "location", Response: "You can find our location details on our profile page.", IsActive: true},
		{Trigger: "contact", Response: "Please visit our profile page for contact information.", IsActive: true},
	}
}
