package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"fitvod/api-gateway/config"
	"fitvod/api-gateway/handlers"
	"fitvod/api-gateway/internal/catalog"
	"fitvod/api-gateway/internal/playback"
	"fitvod/api-gateway/internal/storage"
	"fitvod/api-gateway/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := config.NewLogger()

	supabaseClient, err := config.NewSupabaseClient(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize Supabase: %v", err)
	}

	gateway := storage.NewSupabaseGateway(supabaseClient.Storage, cfg.SupabaseURL, logger)
	repo := catalog.NewSupabaseRepository(supabaseClient, logger)
	catalogService := catalog.NewService(repo, gateway, logger)
	resolver := playback.NewResolver(gateway, logger)

	h := handlers.NewApplicationHandler(catalogService, resolver, repo, logger)

	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*", // Allow all origins for development
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.RequestLogger(logger))
	app.Use(middleware.ResolveViewer(cfg.JWTSecret, logger))

	// Health check route
	app.Get("/health", h.HealthCheck)

	// API v1 routes
	apiV1 := app.Group("/api/v1")

	apiV1.Get("/videos", h.ListVideos)
	apiV1.Get("/videos/:id", h.GetVideo)
	apiV1.Get("/videos/:id/playback", h.GetPlayback)

	// Admin-only write routes
	apiV1.Post("/videos", middleware.RequireAdmin(), h.CreateVideo)
	apiV1.Put("/videos/:id", middleware.RequireAdmin(), h.UpdateVideo)
	apiV1.Patch("/videos/:id", middleware.RequireAdmin(), h.PatchVideo)
	apiV1.Delete("/videos/:id", middleware.RequireAdmin(), h.DeleteVideo)

	logger.Infof("Starting API Gateway on port %s...", cfg.Port)
	logger.Fatal(app.Listen(":" + cfg.Port))
}
