package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinsight/vinsight/internal/auth"
	"github.com/vinsight/vinsight/internal/domain"
	"github.com/vinsight/vinsight/internal/service"
)

type memUserStore struct {
	users map[string]*domain.User
}

func (s *memUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, ok := s.users[username]
	if !ok {
		return nil, domain.NotFound("user.get", "user", username)
	}
	c := *user
	return &c, nil
}

func (s *memUserStore) Create(ctx context.Context, username, email, passwordHash string) (*domain.User, error) {
	user := &domain.User{Username: username, Email: email, PasswordHash: passwordHash, Role: domain.RoleAdmin}
	s.users[username] = user
	c := *user
	return &c, nil
}

func (s *memUserStore) UpdatePasswordHash(ctx context.Context, username, passwordHash string) error {
	s.users[username].PasswordHash = passwordHash
	return nil
}

func newAuthedEcho(t *testing.T) (*echo.Echo, string) {
	t.Helper()

	store := &memUserStore{users: make(map[string]*domain.User)}
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	authService := service.NewAuthService(store, issuer, zerolog.Nop())

	require.NoError(t, authService.EnsureBootstrapAdmin(context.Background(), "admin", "admin@example.com", "swordfish123"))
	token, err := authService.Login(context.Background(), "admin", "swordfish123")
	require.NoError(t, err)

	e := echo.New()
	protected := e.Group("/api/admin", AdminAuth(authService, zerolog.Nop()))
	protected.GET("/ping", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"user": AdminUsername(c)})
	})

	return e, token
}

func TestAdminAuthAllowsValidToken(t *testing.T) {
	e, token := newAuthedEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "admin")
}

func TestAdminAuthRejects(t *testing.T) {
	e, token := newAuthedEcho(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic dXNlcjpwYXNz"},
		{"garbage token", "Bearer garbage"},
		{"truncated token", "Bearer " + token[:20]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}
