package server

import (
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/communityforum/backend/internal/database"
	"github.com/communityforum/backend/internal/handlers"
	"github.com/communityforum/backend/internal/middleware"
	"github.com/communityforum/backend/internal/notify"
	"github.com/communityforum/backend/internal/realtime"
)

type Server struct {
	db      database.Service
	hub     *realtime.Hub
	handler *handlers.Handler
}

// NewServer creates and configures a new server
func NewServer() (*http.Server, *realtime.Hub) {
	// Initialize database
	db := database.New()

	// Real-time fan-out channel
	hub := realtime.NewHub(slog.Default())
	go hub.Run()

	notifier := notify.NewNotifier(db.GetDB(), hub, slog.Default())

	// Create unified handler
	handler := handlers.NewHandler(db.GetDB(), notifier)

	// Create server instance
	newServer := &Server{
		db:      db,
		hub:     hub,
		handler: handler,
	}

	// Configure Gin router
	router := newServer.RegisterRoutes()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080" // local dev fallback
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         "0.0.0.0:" + port,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("🚀 Server starting on port %s\n", port)

	return server, hub
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// Optional verified identity for every route
	r.Use(middleware.Identity())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": s.db.Health()})
	})

	// Real-time notification channel
	r.GET("/ws", s.hub.ServeWS)

	// API routes
	api := r.Group("/api")
	{
		// Question routes
		api.POST("/questions", s.handler.Question.CreateQuestion)
		api.GET("/questions", s.handler.Question.GetQuestions)
		api.GET("/questions/search", s.handler.Question.SearchQuestions)
		api.DELETE("/questions/:id", s.handler.Question.DeleteQuestion)

		// Answer routes
		api.POST("/answers", s.handler.Answer.CreateAnswer)
		api.GET("/answers/:questionId", s.handler.Answer.GetAnswers)
		api.DELETE("/answers/:id", s.handler.Answer.DeleteAnswer)

		// Vote route, rate limited: max 2 casts per 10 seconds per voter
		api.POST("/votes", middleware.VoteRateLimit(2, 10*time.Second), s.handler.Vote.CastVote)

		// Article routes
		api.POST("/articles", s.handler.Article.CreateArticle)
		api.GET("/articles", s.handler.Article.GetArticles)
		api.DELETE("/articles/:id", s.handler.Article.DeleteArticle)

		// Notification routes
		api.POST("/notifications", s.handler.Notification.CreateNotification)
		api.GET("/notifications", s.handler.Notification.GetNotifications)
		api.PUT("/notifications/:id/read", s.handler.Notification.MarkRead)
		api.PUT("/notifications/mark-read", s.handler.Notification.MarkAllRead)
	}

	return r
}
