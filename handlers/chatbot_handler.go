package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"business-bot/models"
	"business-bot/services"
)

var chatbotService *services.ChatbotService

// InitChatbotHandlers wires the chatbot coordinator into the handlers
func InitChatbotHandlers(svc *services.ChatbotService) {
	chatbotService = svc
}

// chatbotError maps the service failure taxonomy to HTTP statuses
func chatbotError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrBusinessNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Business not found",
		})
	case errors.Is(err, services.ErrNotInitialized):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Chatbot not initialized for this business",
		})
	case errors.Is(err, services.ErrConversationNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Conversation not found",
		})
	case errors.Is(err, services.ErrInvalidTransition):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid status transition",
		})
	case errors.Is(err, services.ErrEmptyMessage):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message content is required",
		})
	case errors.Is(err, services.ErrStorageUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Storage temporarily unavailable, please retry",
		})
	}
	slog.Error("Chatbot operation failed", "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
	})
}

// conversationIDParam parses the conversation ID path parameter
func conversationIDParam(c *fiber.Ctx) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Params("conversationID"))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// InitializeChatbot returns the business's chatbot, creating it with
// defaults on first access.
func InitializeChatbot(c *fiber.Ctx) error {
	businessID := c.Params("businessID")

	bot, err := chatbotService.Initialize(c.Context(), businessID)
	if err != nil {
		return chatbotError(c, err)
	}

	return c.JSON(fiber.Map{
		"chatbot": bot,
	})
}

// UpdateChatbotSettings applies a partial settings change
func UpdateChatbotSettings(c *fiber.Ctx) error {
	businessID := c.Params("businessID")

	var update models.SettingsUpdate
	if err := c.BodyParser(&update); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	bot, err := chatbotService.UpdateSettings(c.Context(), businessID, update)
	if err != nil {
		return chatbotError(c, err)
	}

	return c.JSON(fiber.Map{
		"settings": bot.Settings,
	})
}

type updateResponsesRequest struct {
	Responses []models.RuleUpdate `json:"responses"`
}

// UpdateChatbotResponses upserts response rules by trigger
func UpdateChatbotResponses(c *fiber.Ctx) error {
	businessID := c.Params("businessID")

	var req updateResponsesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	for _, update := range req.Responses {
		if update.Trigger == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Each response update requires a trigger",
			})
		}
	}

	bot, err := chatbotService.ApplyRuleUpdates(c.Context(), businessID, req.Responses)
	if err != nil {
		return chatbotError(c, err)
	}

	return c.JSON(fiber.Map{
		"responses": bot.Responses,
	})
}

// StartConversation opens a new conversation for the logged-in user
func StartConversation(c *fiber.Ctx) error {
	businessID := c.Params("businessID")
	userID, _ := c.Locals("user_id").(string)

	conv, err := chatbotService.StartConversation(c.Context(), businessID, userID)
	if err != nil {
		return chatbotError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"conversation": conv,
	})
}

type sendMessageRequest struct {
	Content string `json:"content"`
	Sender  string `json:"sender,omitempty"`
}

// SendMessage posts a message into a conversation. The sender defaults
// by role: business owners and admins post as the business, everyone
// else as a user. Automated replies ride along in the response.
func SendMessage(c *fiber.Ctx) error {
	businessID := c.Params("businessID")

	conversationID, ok := conversationIDParam(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid conversation ID",
		})
	}

	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message content is required",
		})
	}

	sender := senderForRequest(c, req.Sender)
	if sender == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid sender",
		})
	}

	messages, err := chatbotService.PostMessage(c.Context(), businessID, conversationID, sender, req.Content)
	if err != nil {
		return chatbotError(c, err)
	}

	return c.JSON(fiber.Map{
		"messages": messages,
	})
}

// senderForRequest resolves who a posted message is from. An explicit
// sender must be user or business; bot messages only ever come from the
// autoresponder. Without one, the caller's role decides.
func senderForRequest(c *fiber.Ctx, requested string) models.Sender {
	if requested != "" {
		if !models.IsValidSender(requested) {
			return ""
		}
		s := models.Sender(requested)
		if s == models.SenderBot {
			return ""
		}
		return s
	}

	role, _ := c.Locals("role").(string)
	switch models.UserRole(role) {
	case models.RoleBusinessOwner, models.RoleAdmin:
		return models.SenderBusiness
	}
	return models.SenderUser
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateConversationStatus applies a conversation lifecycle transition
func UpdateConversationStatus(c *fiber.Ctx) error {
	businessID := c.Params("businessID")

	conversationID, ok := conversationIDParam(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid conversation ID",
		})
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if !models.IsValidStatus(req.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid status",
		})
	}

	conv, err := chatbotService.TransitionConversation(c.Context(), businessID, conversationID, models.ConversationStatus(req.Status))
	if err != nil {
		return chatbotError(c, err)
	}

	return c.JSON(fiber.Map{
		"conversation": conv,
	})
}

// MarkConversationRead flags the counterparty's messages as read
func MarkConversationRead(c *fiber.Ctx) error {
	businessID := c.Params("businessID")

	conversationID, ok := conversationIDParam(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid conversation ID",
		})
	}

	reader := senderForRequest(c, "")
	marked, err := chatbotService.MarkRead(c.Context(), businessID, conversationID, reader)
	if err != nil {
		return chatbotError(c, err)
	}

	return c.JSON(fiber.Map{
		"marked_read": marked,
	})
}

// GetConversations lists conversations with optional status filter and
// pagination.
func GetConversations(c *fiber.Ctx) error {
	businessID := c.Params("businessID")

	status := c.Query("status")
	if status != "" && !models.IsValidStatus(status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid status filter",
		})
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}

	items, totalCount, err := chatbotService.ListConversations(c.Context(), businessID, status, page, limit)
	if err != nil {
		return chatbotError(c, err)
	}

	// Calculate pagination info
	totalPages := (totalCount + limit - 1) / limit
	hasMore := page < totalPages

	return c.JSON(fiber.Map{
		"conversations": items,
		"pagination": fiber.Map{
			"page":        page,
			"limit":       limit,
			"total":       totalCount,
			"total_pages": totalPages,
			"has_more":    hasMore,
		},
	})
}

// GetChatbotAnalytics returns a freshly recomputed analytics snapshot
func GetChatbotAnalytics(c *fiber.Ctx) error {
	businessID := c.Params("businessID")

	analytics, err := chatbotService.GetAnalytics(c.Context(), businessID)
	if err != nil {
		return chatbotError(c, err)
	}

	return c.JSON(fiber.Map{
		"analytics": analytics,
	})
}
