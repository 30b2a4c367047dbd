package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/hoshichaam/movie_bff_go/internal/config"
	"github.com/hoshichaam/movie_bff_go/internal/handlers"
	"github.com/hoshichaam/movie_bff_go/internal/logger"
	"github.com/hoshichaam/movie_bff_go/internal/middleware"
	"github.com/hoshichaam/movie_bff_go/internal/services"
)

func main() {
	// 1) Config (fail-fast kalau key wajib kosong)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	// 2) Identity provider: service account untuk admin API, API key untuk sign-in
	credentials, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		log.Fatalf("read GOOGLE_APPLICATION_CREDENTIALS: %v", err)
	}
	admin, projectID, err := services.NewAdminHTTPClient(context.Background(), credentials, cfg.UpstreamTimeout)
	if err != nil {
		log.Fatalf("identity: %v", err)
	}
	if cfg.ProjectID != "" {
		projectID = cfg.ProjectID
	}

	verifier := services.NewIDTokenVerifier(projectID, cfg.CertsURL, cfg.UpstreamTimeout)
	identity, err := services.NewIdentityClient(services.IdentityConfig{
		APIKey:         cfg.IdentityAPIKey,
		ProjectID:      projectID,
		ToolkitURL:     cfg.ToolkitURL,
		SecureTokenURL: cfg.SecureTokenURL,
		Timeout:        cfg.UpstreamTimeout,
	}, admin, verifier)
	if err != nil {
		log.Fatalf("identity: %v", err)
	}

	// 3) Movie catalog
	catalog, err := services.NewCatalogClient(cfg.MoviesAPIKey, cfg.MoviesURL, cfg.UpstreamTimeout)
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}

	// 4) Fiber app dengan timeout
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))

	// CORS: semua origin boleh, dengan credentials
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(string) bool { return true },
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,HEAD,PUT,PATCH,POST,DELETE,OPTIONS",
		AllowCredentials: true,
	}))
	app.Use(middleware.LogRequest())

	// 5) Routes
	handlers.Register(app, handlers.Routes{
		Prefix:      cfg.APIPrefix,
		AppName:     cfg.AppName,
		Movies:      handlers.NewMovieHandler(catalog),
		Users:       handlers.NewAuthHandler(identity),
		Gate:        middleware.Gate(identity),
		GuardMovies: cfg.GuardMovieRoutes,
	})

	// 6) Server start
	slog.Info("starting server", "addr", cfg.Addr(), "prefix", "/"+cfg.APIPrefix, "guard_movies", cfg.GuardMovieRoutes)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.Addr()); err != nil {
			log.Fatalf("Server listen error: %v", err)
		}
	}()

	<-quit
	slog.Info("shutdown signal received, stopping server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	slog.Info("server stopped")
}
