package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/idtoken"
)

// EnrichmentPoster posts JSON payloads to the enrichment service.
type EnrichmentPoster interface {
	PostJSON(ctx context.Context, path string, payload any, requestID string) error
}

// EnrichmentClient delivers webhook payloads over HTTP.
type EnrichmentClient struct {
	client  *http.Client
	baseURL string
}

// NewEnrichmentClient builds a webhook client, auto-configuring an ID token
// client for service-to-service calls when none is supplied.
func NewEnrichmentClient(client *http.Client, baseURL string) *EnrichmentClient {
	if baseURL == "" {
		panic("enrichment base URL must not be empty")
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if client == nil {
		idc, err := idtoken.NewClient(context.Background(), baseURL)
		if err != nil {
			client = &http.Client{Timeout: 15 * time.Second}
		} else {
			client = idc
		}
	}
	return &EnrichmentClient{client: client, baseURL: baseURL}
}

// PostJSON posts the payload to the enrichment service.
func (c *EnrichmentClient) PostJSON(ctx context.Context, path string, payload any, requestID string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("enrichment service error: %s", extractServiceError(resp.Body))
	}
	return nil
}

func extractServiceError(body io.Reader) string {
	data, err := io.ReadAll(body)
	if err != nil || len(data) == 0 {
		return "enrichment service returned an error"
	}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return string(data)
}

var _ EnrichmentPoster = (*EnrichmentClient)(nil)
