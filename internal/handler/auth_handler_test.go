package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/stillingsradar/ingest-api/internal/auth"
	"github.com/stillingsradar/ingest-api/internal/dto"
	"github.com/stillingsradar/ingest-api/internal/service"
)

func newAuthHandlerFixture(t *testing.T) *AuthHandler {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	return NewAuthHandler(service.NewAuthService(jwtManager, "ops@example.com", string(hash)))
}

func TestAuthHandlerLogin(t *testing.T) {
	h := newAuthHandlerFixture(t)

	t.Run("valid credentials issue a token", func(t *testing.T) {
		c, rec := postJSON("/auth/login", `{"email": "ops@example.com", "password": "s3cret"}`)
		if err := h.Login(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var envelope struct {
			Status string            `json:"status"`
			Data   dto.LoginResponse `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("invalid response body: %v", err)
		}
		if envelope.Status != "success" || envelope.Data.AccessToken == "" {
			t.Fatalf("expected access token, got %s", rec.Body.String())
		}
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		c, rec := postJSON("/auth/login", `{"email": "ops@example.com", "password": "wrong"}`)
		if err := h.Login(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("unknown email rejected identically", func(t *testing.T) {
		c, rec := postJSON("/auth/login", `{"email": "other@example.com", "password": "s3cret"}`)
		if err := h.Login(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		c, rec := postJSON("/auth/login", `{"email": "  "}`)
		if err := h.Login(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("malformed body rejected", func(t *testing.T) {
		c, rec := postJSON("/auth/login", "{not json")
		if err := h.Login(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
