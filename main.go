package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"business-bot/config"
	"business-bot/handlers"
	"business-bot/middleware"
	"business-bot/models"
	"business-bot/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found")
	}

	// Initialize structured logger
	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(logHandler))

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := services.InitMongoDB(ctx, cfg.MongoURI)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer db.Disconnect(ctx)

	// Initialize services
	services.InitServices(db, cfg.DatabaseName)

	// Wire up the chatbot coordinator
	store := services.NewChatbotStore(cfg.StorageTimeout)
	directory := services.NewBusinessDirectory(cfg.StorageTimeout)
	handlers.InitChatbotHandlers(services.NewChatbotService(store, directory))

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			slog.Error("Request error", "error", err, "status", code)
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())

	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:5173, http://localhost:3000",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path}\n",
	}))

	auth := app.Group("/auth")
	auth.Post("/register", handlers.Register)
	auth.Post("/login", handlers.Login)
	auth.Post("/logout", handlers.Logout)
	auth.Get("/me", handlers.GetCurrentUser)
	auth.Get("/check", handlers.CheckSession)

	// Business directory endpoints
	api := app.Group("/api", middleware.RequireAuth)
	api.Post("/businesses", middleware.RequireRole(models.RoleBusinessOwner, models.RoleAdmin), handlers.CreateBusiness)
	api.Get("/businesses/mine", handlers.GetMyBusinesses)
	api.Get("/businesses/:businessID", handlers.GetBusiness)

	// Chatbot endpoints
	chatbot := api.Group("/businesses/:businessID/chatbot")
	chatbot.Get("/", handlers.InitializeChatbot)

	// Owner-only chatbot management
	owner := middleware.RequireRole(models.RoleBusinessOwner, models.RoleAdmin)
	chatbot.Put("/settings", owner, handlers.UpdateChatbotSettings)
	chatbot.Put("/responses", owner, handlers.UpdateChatbotResponses)
	chatbot.Get("/analytics", owner, handlers.GetChatbotAnalytics)

	// Conversations (any authenticated user)
	chatbot.Post("/conversations", handlers.StartConversation)
	chatbot.Get("/conversations", handlers.GetConversations)
	chatbot.Post("/conversations/:conversationID/messages", handlers.SendMessage)
	chatbot.Put("/conversations/:conversationID/status", handlers.UpdateConversationStatus)
	chatbot.Post("/conversations/:conversationID/read", handlers.MarkConversationRead)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "business-bot",
		})
	})

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	slog.Info("Server starting", "port", port)
	if err := app.Listen(":" + port); err != nil {
		slog.Error("Server failed to start", "error", err)
		os.Exit(1)
	}
}
