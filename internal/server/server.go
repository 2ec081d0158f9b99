// Package server contains the HTTP handlers and route setup for the API.
package server

import (
	"context"
	"log"
	"time"

	"driftgram/internal/config"
	"driftgram/internal/genai"
	"driftgram/internal/middleware"
	"driftgram/internal/models"
	"driftgram/internal/service"
	"driftgram/internal/store"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// postGenerator is the slice of the post service the handlers need.
type postGenerator interface {
	CreatePost(ctx context.Context, in service.CreatePostInput) (*models.Post, error)
	ListPosts() []models.Post
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	posts          postGenerator
	promMiddleware *fiberprometheus.FiberPrometheus
	app            *fiber.App
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	fileStore, err := store.NewFileStore(cfg.DataFile, middleware.Logger)
	if err != nil {
		return nil, err
	}

	client := genai.NewClient(cfg)
	rng := service.SystemRand()

	prompts := service.NewPromptSynthesizer(client, rng)
	captions := service.NewCaptionGenerator(client)
	images := service.NewImageGenerator(client, cfg.UploadDir, rng, middleware.Logger)
	postService := service.NewPostService(fileStore, prompts, captions, images, rng)

	return &Server{
		config:         cfg,
		posts:          postService,
		promMiddleware: middleware.InitMetrics("driftgram-api"),
	}, nil
}

// NewServerWithDeps creates a Server using an already-initialized post
// service. Use this in tests.
func NewServerWithDeps(cfg *config.Config, posts postGenerator) *Server {
	return &Server{
		config: cfg,
		posts:  posts,
	}
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// OpenTelemetry spans per request
	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and Trace ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (60 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	api.Get("/health", s.HealthCheck)
	api.Get("/posts", s.GetPosts)
	api.Post("/generate-post", s.GeneratePost)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Driftgram Metrics Dashboard",
	}))

	// Generated images and the browser feed client are plain static files.
	app.Static("/uploads", s.config.UploadDir)
	app.Static("/", s.config.WebDir)
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName:   "Driftgram API",
		BodyLimit: s.bodyLimit(),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Catch-all: report a generic failure rather than crashing.
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}
	log.Println("Server shutdown complete")
	return nil
}

// bodyLimit sizes the request body cap for a full multipart upload: up to
// MaxReferenceFiles files at the per-file limit, plus slack for the form
// envelope and prompt.
func (s *Server) bodyLimit() int {
	return MaxReferenceFiles*s.config.MaxUploadSizeMB*1024*1024 + 16*1024*1024
}
