package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stillingsradar/ingest-api/internal/auth"
	"github.com/stillingsradar/ingest-api/internal/config"
	"github.com/stillingsradar/ingest-api/internal/handler"
	middlewarepkg "github.com/stillingsradar/ingest-api/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth        *handler.AuthHandler
	Companies   *handler.CompaniesHandler
	AdminUpload *handler.AdminUploadHandler
	Ingest      *handler.IngestHandler
	Enrich      *handler.EnrichHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})

	e.POST("/auth/login", handlers.Auth.Login)
	e.GET("/companies", handlers.Companies.List)

	e.POST("/jobs", handlers.Ingest.Ingest, middlewarepkg.IngestRateLimiter(cfg.RateLimitIngest))
	e.POST("/enrichment-result", handlers.Enrich.Apply)

	secured := e.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))

	admin := secured.Group("/admin", middlewarepkg.RequireRole("admin"))
	admin.POST("/import-csv", handlers.AdminUpload.ImportCSV)
}
