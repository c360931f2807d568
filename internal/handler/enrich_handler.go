package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stillingsradar/ingest-api/internal/dto"
	"github.com/stillingsradar/ingest-api/internal/repository"
	"github.com/stillingsradar/ingest-api/internal/service"
)

// EnrichHandler accepts enrichment results pushed back by the enrichment
// service.
type EnrichHandler struct {
	enrichment *service.EnrichmentService
}

// NewEnrichHandler constructs an EnrichHandler.
func NewEnrichHandler(enrichment *service.EnrichmentService) *EnrichHandler {
	return &EnrichHandler{enrichment: enrichment}
}

// Apply handles POST /enrichment-result requests.
func (h *EnrichHandler) Apply(c echo.Context) error {
	var req dto.EnrichmentResultRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	resp, err := h.enrichment.ApplyResult(c.Request().Context(), req)
	if err != nil {
		var validationErrs service.ValidationErrors
		switch {
		case errors.As(err, &validationErrs):
			return c.JSON(http.StatusBadRequest, APIResponse{
				Status:  "error",
				Message: "invalid payload",
				Data:    validationErrs,
			})
		case errors.Is(err, repository.ErrJobPostNotFound):
			return Error(c, http.StatusNotFound, "no job post matches finn_id")
		default:
			return Error(c, http.StatusInternalServerError, "failed to apply enrichment result")
		}
	}

	return Success(c, http.StatusOK, "enrichment result applied", resp)
}
