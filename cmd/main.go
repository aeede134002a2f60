package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"pronostix/internal/auth"
	"pronostix/internal/config"
	"pronostix/internal/database"
	"pronostix/internal/handlers"
	"pronostix/internal/jobs"
	"pronostix/internal/repository"
	"pronostix/internal/services"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	gin.SetMode(cfg.Server.Mode)

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret, cfg.App.TokenLifetime)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := database.GetDB()
	repo := repository.NewRepository(db)

	// Initialize services
	authService := services.NewAuthService(db, cfg.App.InitialBalance)
	userService := services.NewUserService(db)
	ledgerService := services.NewLedgerService(repo)
	predictionService := services.NewPredictionService(db)
	voteService := services.NewVoteService(db)
	settlementService := services.NewSettlementService(db)
	commentService := services.NewCommentService(db)
	shopService := services.NewShopService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, userService)
	userHandler := handlers.NewUserHandler(userService, ledgerService, shopService)
	predictionHandler := handlers.NewPredictionHandler(predictionService, settlementService)
	voteHandler := handlers.NewVoteHandler(voteService)
	commentHandler := handlers.NewCommentHandler(commentService)
	shopHandler := handlers.NewShopHandler(shopService)

	// Start deadline sweep job
	deadlineJob := jobs.NewDeadlineJob(db)
	deadlineJob.Start(cfg.App.DeadlineSweep)
	defer deadlineJob.Stop()
	log.Info("Deadline sweep job started")

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
	if cfg.App.FrontendURL != "" {
		allowedOrigins = append(allowedOrigins, cfg.App.FrontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Authentication routes (public)
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	// Authenticated /auth/me route
	authProtected := router.Group("/auth")
	authProtected.Use(auth.AuthMiddleware())
	{
		authProtected.GET("/me", authHandler.GetMe)
	}

	// Public routes
	router.GET("/api/predictions", predictionHandler.GetPredictions)
	router.GET("/api/predictions/:id", predictionHandler.GetPredictionByID)
	router.GET("/api/predictions/:id/comments", commentHandler.GetComments)
	router.GET("/api/predictions/:id/votes", voteHandler.GetPredictionVotes)
	router.GET("/api/users/leaderboard", userHandler.GetLeaderboard)
	router.GET("/api/shop/items", shopHandler.GetItems)

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		// User endpoints
		userRoutes := api.Group("/user")
		{
			userRoutes.GET("/profile", userHandler.GetProfile)
			userRoutes.GET("/transactions", userHandler.GetTransactions)
			userRoutes.GET("/items", shopHandler.GetUserItems)
		}

		// Prediction endpoints
		api.POST("/predictions", predictionHandler.CreatePrediction)
		api.PUT("/predictions/:id", predictionHandler.UpdatePrediction)
		api.DELETE("/predictions/:id", predictionHandler.DeletePrediction)
		api.POST("/predictions/:id/validate", predictionHandler.ValidatePrediction)
		api.POST("/predictions/:id/comments", commentHandler.CreateComment)

		// Vote endpoints
		api.POST("/votes", voteHandler.CreateVote)
		api.PUT("/votes/:id", voteHandler.UpsertVote)
		api.DELETE("/votes/:id", voteHandler.DeleteVote)
		api.GET("/votes", voteHandler.GetMyVotes)

		// Comment endpoints
		api.PUT("/comments/:id", commentHandler.UpdateComment)
		api.DELETE("/comments/:id", commentHandler.DeleteComment)

		// Shop endpoints
		api.POST("/shop/items/:id/buy", shopHandler.BuyItem)
		api.POST("/shop/items/:id/equip", shopHandler.EquipItem)
	}

	// Admin routes (protected + admin only)
	admin := router.Group("/api/admin")
	admin.Use(auth.AuthMiddleware())
	admin.Use(auth.AdminMiddleware())
	{
		admin.POST("/predictions/:id/invalidate", predictionHandler.InvalidatePrediction)
		admin.POST("/shop/items", shopHandler.CreateItem)
		admin.POST("/users/promote", userHandler.PromoteToAdmin)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Infof("Server starting on port %s", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Info("Server exited")
}
