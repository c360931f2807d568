package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stillingsradar/ingest-api/internal/dto"
	middleware "github.com/stillingsradar/ingest-api/internal/middleware"
	"github.com/stillingsradar/ingest-api/internal/service"
)

// webhookTimeout bounds the fire-and-forget enrichment delivery.
const webhookTimeout = 30 * time.Second

// IngestHandler accepts scraped job postings and hands them to the ingestion
// pipeline. A successful ingest triggers an enrichment webhook after the
// response has been written; delivery failure never fails the request.
type IngestHandler struct {
	ingest   *service.IngestService
	enricher EnrichmentPoster
}

// NewIngestHandler wires the handler. enricher may be nil when no enrichment
// service is configured.
func NewIngestHandler(ingest *service.IngestService, enricher EnrichmentPoster) *IngestHandler {
	return &IngestHandler{ingest: ingest, enricher: enricher}
}

// Ingest handles POST /jobs requests.
func (h *IngestHandler) Ingest(c echo.Context) error {
	var req dto.IngestJobRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	resp, payload, err := h.ingest.IngestJob(c.Request().Context(), req)
	if err != nil {
		var validationErrs service.ValidationErrors
		if errors.As(err, &validationErrs) {
			return c.JSON(http.StatusBadRequest, APIResponse{
				Status:  "error",
				Message: "invalid payload",
				Data:    validationErrs,
			})
		}
		return Error(c, http.StatusInternalServerError, "failed to ingest job posting")
	}

	if payload != nil && h.enricher != nil {
		h.deliverWebhook(payload, middleware.RequestIDFromContext(c))
	}

	status := http.StatusOK
	if resp.JobPost.Created {
		status = http.StatusCreated
	}
	return Success(c, status, "job posting ingested", resp)
}

// deliverWebhook posts the enrichment payload on a detached context so the
// delivery survives the request lifecycle.
func (h *IngestHandler) deliverWebhook(payload *dto.EnrichmentPayload, requestID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), webhookTimeout)
		defer cancel()
		if err := h.enricher.PostJSON(ctx, "/enrich", payload, requestID); err != nil {
			log.Printf("enrichment webhook for %s failed: %v", payload.FinnID, err)
		}
	}()
}
