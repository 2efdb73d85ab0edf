package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"

	"brainscroll/internal/config"
	"brainscroll/internal/database"
	"brainscroll/internal/handlers"
	"brainscroll/internal/jobs"
	"brainscroll/internal/logging"
	"brainscroll/internal/middleware"
	"brainscroll/internal/services"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting BrainScroll Server...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// Load configuration
	cfg := config.Load()
	log.Printf("📋 Configuration loaded (Port: %s, Transactions: %v)", cfg.Port, cfg.UseTransactions)

	// Connect to MongoDB — the single concurrency boundary for all durable
	// shared state (paper counters, engagement ledger)
	db, err := database.NewMongoDB(cfg.MongoURI)
	if err != nil {
		log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
	}
	defer db.Close(context.Background())

	if err := db.Initialize(context.Background()); err != nil {
		log.Fatalf("❌ Failed to initialize MongoDB indexes: %v", err)
	}

	// Redis is the optional fast path for the view dedup window; the
	// ledger remains the authority when it is absent
	var redisService *services.RedisService
	if cfg.RedisURL != "" {
		redisService, err = services.NewRedisService(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️ Failed to connect to Redis: %v (view throttling falls back to the ledger)", err)
			redisService = nil
		} else {
			defer redisService.Close()
		}
	}

	// Domain metrics
	services.InitMetrics()

	// Services
	feedService := services.NewFeedService(db)
	engagementService := services.NewEngagementService(db, redisService, cfg.UseTransactions, cfg.ViewDedupWindow)
	log.Println("✅ Services initialized")

	// Background jobs: counter reconciliation heals likes/views drift from
	// the ledger on deployments without multi-document transactions
	scheduler := jobs.NewScheduler()
	scheduler.Register(jobs.NewCounterReconciliationJob(db, cfg.ReconcileInterval, func(counter string, n int) {
		if m := services.GetMetrics(); m != nil && n > 0 {
			m.CounterRepairs.WithLabelValues(counter).Add(float64(n))
		}
	}))
	scheduler.Start()
	defer scheduler.Stop()

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "BrainScroll v1.0",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		BodyLimit:    64 * 1024, // engagement bodies are tiny
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())

	// Prometheus metrics middleware
	prometheus := fiberprometheus.New("brainscroll")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)
	log.Println("📊 Prometheus metrics endpoint enabled at /metrics")

	// CORS configuration with environment-based origins
	allowedOrigins := cfg.AllowedOrigins
	if allowedOrigins == "" {
		// Default to localhost for development
		allowedOrigins = "http://localhost:5173,http://localhost:3000"
		log.Println("⚠️  ALLOWED_ORIGINS not set, using development defaults")
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Rate limiting: global cap on /api, tighter cap on engagement writes
	rateLimitConfig := middleware.LoadRateLimitConfig()
	log.Printf("🛡️  [RATE-LIMIT] Global=%d/min, Engagement=%d/min",
		rateLimitConfig.GlobalAPIMax, rateLimitConfig.EngagementMax)
	app.Use("/api", middleware.GlobalAPIRateLimiter(rateLimitConfig))

	// Handlers
	healthHandler := handlers.NewHealthHandler(db, redisService)
	paperHandler := handlers.NewPaperHandler(feedService)
	engagementHandler := handlers.NewEngagementHandler(engagementService)

	// Routes
	app.Get("/health", healthHandler.Handle)

	api := app.Group("/api")
	api.Get("/papers", paperHandler.List)
	api.Get("/papers/trending", paperHandler.Trending)
	api.Get("/papers/:id", paperHandler.Get)
	api.Get("/categories", paperHandler.Categories)

	engageLimiter := middleware.EngagementRateLimiter(rateLimitConfig)
	api.Post("/papers/:id/like", engageLimiter, engagementHandler.Like)
	api.Post("/papers/:id/unlike", engageLimiter, engagementHandler.Unlike)
	api.Post("/papers/:id/view", engageLimiter, engagementHandler.View)
	api.Post("/papers/:id/bookmark", engageLimiter, engagementHandler.Bookmark)
	api.Delete("/papers/:id/bookmark", engageLimiter, engagementHandler.Unbookmark)
	api.Post("/papers/:id/share", engageLimiter, engagementHandler.Share)

	// Graceful shutdown: stop accepting requests, drain, then close stores
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-shutdown
		log.Printf("🛑 Received %v, shutting down...", sig)
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("⚠️ Forced shutdown: %v", err)
		}
	}()

	log.Printf("🌐 Server listening on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Server error: %v", err)
	}

	log.Println("👋 Server stopped")
}
