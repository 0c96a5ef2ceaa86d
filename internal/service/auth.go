package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/vinsight/vinsight/internal/auth"
	"github.com/vinsight/vinsight/internal/domain"
	"github.com/vinsight/vinsight/internal/telemetry"
)

// AuthService authenticates administrators and manages their credentials.
type AuthService struct {
	users  domain.UserStore
	issuer *auth.TokenIssuer
	logger zerolog.Logger
}

// NewAuthService creates the admin authentication service.
func NewAuthService(users domain.UserStore, issuer *auth.TokenIssuer, logger zerolog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		issuer: issuer,
		logger: logger.With().Str("component", "service.auth").Logger(),
	}
}

// Login verifies credentials and issues a bearer token. Unknown usernames
// and wrong passwords return the same error so the response does not leak
// which accounts exist.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	const op = "auth.login"

	if username == "" || password == "" {
		return "", domain.Invalid(op, "username and password are required")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			s.recordFailure(username, "unknown username")
			return "", domain.Unauthorized(op, "invalid credentials")
		}
		return "", err
	}

	if err := auth.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.recordFailure(username, "password mismatch")
			return "", domain.Unauthorized(op, "invalid credentials")
		}
		return "", domain.Internal(err, op, "failed to verify password")
	}

	token, err := s.issuer.Issue(user.Username)
	if err != nil {
		return "", domain.Internal(err, op, "failed to issue token")
	}

	if telemetry.Business != nil {
		telemetry.Business.Logins.Inc()
	}
	s.logger.Info().Str("username", user.Username).Msg("admin login")

	return token, nil
}

// Authenticate resolves a bearer token to an administrator account.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	const op = "auth.token"

	username, err := s.issuer.Verify(token)
	if err != nil {
		return nil, domain.Unauthorized(op, "invalid or expired token")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			return nil, domain.Unauthorized(op, "invalid or expired token")
		}
		return nil, err
	}
	if user.Role != domain.RoleAdmin {
		return nil, domain.Forbidden(op, "administrator access required")
	}

	return user, nil
}

// ChangePassword rotates an administrator's password after verifying the
// current one.
func (s *AuthService) ChangePassword(ctx context.Context, username, current, next string) error {
	const op = "auth.password"

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}

	if err := auth.VerifyPassword(current, user.PasswordHash); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return domain.Unauthorized(op, "current password is incorrect")
		}
		return domain.Internal(err, op, "failed to verify password")
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			return domain.NewValidationError(op, "new_password", "password must be at least 8 characters")
		}
		return domain.Internal(err, op, "failed to hash password")
	}

	if err := s.users.UpdatePasswordHash(ctx, username, hash); err != nil {
		return err
	}

	s.logger.Info().Str("username", username).Msg("admin password changed")
	return nil
}

// EnsureBootstrapAdmin provisions the configured administrator account on
// startup. Safe to call on every boot.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context, username, adminEmail, password string) error {
	const op = "auth.bootstrap"

	if username == "" || password == "" {
		s.logger.Warn().Msg("no bootstrap admin configured")
		return nil
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil
	} else if !domain.IsCode(err, domain.ENOTFOUND) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.Internal(err, op, "failed to hash bootstrap password")
	}

	if _, err := s.users.Create(ctx, username, adminEmail, hash); err != nil {
		return err
	}

	s.logger.Info().Str("username", username).Msg("bootstrap admin created")
	return nil
}

func (s *AuthService) recordFailure(username, reason string) {
	if telemetry.Business != nil {
		telemetry.Business.LoginFailed.Inc()
	}
	s.logger.Warn().Str("username", username).Str("reason", reason).Msg("login failed")
}
