package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/stillingsradar/ingest-api/internal/auth"
	"github.com/stillingsradar/ingest-api/internal/config"
	"github.com/stillingsradar/ingest-api/internal/database"
	"github.com/stillingsradar/ingest-api/internal/handler"
	middlewarepkg "github.com/stillingsradar/ingest-api/internal/middleware"
	"github.com/stillingsradar/ingest-api/internal/repository"
	"github.com/stillingsradar/ingest-api/internal/router"
	"github.com/stillingsradar/ingest-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer pool.Close()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	companiesRepo := repository.NewPGXCompaniesRepository(pool)
	peopleRepo := repository.NewPGXPeopleRepository(pool)
	jobPostsRepo := repository.NewPGXJobPostsRepository(pool)
	linksRepo := repository.NewPGXLinksRepository(pool)

	resolver := service.NewResolver(companiesRepo, peopleRepo, jobPostsRepo)
	linkReconciler := service.NewLinkReconciler(linksRepo)

	authService := service.NewAuthService(jwtManager, cfg.AdminEmail, cfg.AdminPasswordHash)
	companiesService := service.NewCompaniesService(companiesRepo, resolver)
	ingestService := service.NewIngestService(resolver, linkReconciler, peopleRepo, linksRepo)
	enrichmentService := service.NewEnrichmentService(resolver, linkReconciler, jobPostsRepo, companiesRepo)

	var enricher handler.EnrichmentPoster
	if cfg.EnrichmentBaseURL != "" {
		enricher = handler.NewEnrichmentClient(nil, cfg.EnrichmentBaseURL)
	}

	handlers := router.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Companies:   handler.NewCompaniesHandler(companiesService),
		AdminUpload: handler.NewAdminUploadHandler(companiesService),
		Ingest:      handler.NewIngestHandler(ingestService, enricher),
		Enrich:      handler.NewEnrichHandler(enrichmentService),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging())
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, jwtManager, handlers)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
