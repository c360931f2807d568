package service

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/stillingsradar/ingest-api/internal/auth"
)

// ErrInvalidCredentials is returned for any login failure so the response
// never reveals whether the account exists.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService validates the single operator credential pair configured for
// the deployment and issues access tokens for the admin endpoints.
type AuthService struct {
	jwt          *auth.JWTManager
	email        string
	passwordHash string
}

// NewAuthService constructs a new AuthService around the configured operator
// credentials.
func NewAuthService(jwtManager *auth.JWTManager, email, passwordHash string) *AuthService {
	return &AuthService{jwt: jwtManager, email: email, passwordHash: passwordHash}
}

// Login validates credentials and returns a JWT with the admin role.
func (s *AuthService) Login(email, password string) (string, error) {
	if email == "" || password == "" {
		return "", errors.New("email and password must not be empty")
	}
	if s.email == "" || s.passwordHash == "" {
		return "", errors.New("operator login is not configured")
	}

	if !strings.EqualFold(email, s.email) {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.jwt.GenerateToken("operator", s.email, "admin")
}
