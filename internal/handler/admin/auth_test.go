package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinsight/vinsight/internal/auth"
	"github.com/vinsight/vinsight/internal/domain"
	"github.com/vinsight/vinsight/internal/handler"
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

func TestAdminLoginResponseShape(t *testing.T) {
	store := &memUserStore{users: make(map[string]*domain.User)}
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	authService := service.NewAuthService(store, issuer, zerolog.Nop())
	require.NoError(t, authService.EnsureBootstrapAdmin(context.Background(), "admin", "admin@example.com", "swordfish123"))

	e := echo.New()
	e.Validator = handler.NewValidator()
	h := NewAuthHandler(authService, zerolog.Nop())

	c, rec := jsonRequest(e, http.MethodPost, "/api/admin/login", `{"username":"admin","password":"swordfish123"}`)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token   string `json:"token"`
		Success bool   `json:"success"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Token)
}
