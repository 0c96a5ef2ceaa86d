package service

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vinsight/vinsight/internal/domain"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const maxSiteTitleLength = 255

// SettingsService manages namespaced JSON configuration blobs. Known
// namespaces get shape validation before writing; unknown namespaces are
// stored as-is.
type SettingsService struct {
	store  domain.SettingStore
	logger zerolog.Logger
}

// NewSettingsService creates the settings service.
func NewSettingsService(store domain.SettingStore, logger zerolog.Logger) *SettingsService {
	return &SettingsService{
		store:  store,
		logger: logger.With().Str("component", "service.settings").Logger(),
	}
}

// Get fetches one settings namespace.
func (s *SettingsService) Get(ctx context.Context, key string) (*domain.Setting, error) {
	return s.store.Get(ctx, key)
}

// GetAll fetches every settings namespace.
func (s *SettingsService) GetAll(ctx context.Context) ([]domain.Setting, error) {
	return s.store.GetAll(ctx)
}

// Upsert validates and writes one settings namespace.
func (s *SettingsService) Upsert(ctx context.Context, key string, value json.RawMessage) (*domain.Setting, error) {
	const op = "settings.upsert"

	key = strings.TrimSpace(key)
	if key == "" {
		return nil, domain.NewValidationError(op, "key", "settings key is required")
	}
	if !json.Valid(value) {
		return nil, domain.NewValidationError(op, "value", "value must be valid JSON")
	}

	if err := s.validate(op, key, value); err != nil {
		return nil, err
	}

	if err := s.store.Upsert(ctx, key, value); err != nil {
		return nil, err
	}

	s.logger.Info().Str("key", key).Msg("settings updated")
	return s.store.Get(ctx, key)
}

func (s *SettingsService) validate(op, key string, value json.RawMessage) error {
	switch {
	case strings.HasPrefix(key, "admin_email"):
		var v struct {
			NotificationEmail *string `json:"notificationEmail"`
			EmailFrom         *string `json:"emailFrom"`
		}
		if err := json.Unmarshal(value, &v); err != nil {
			return domain.NewValidationError(op, "value", "malformed email settings")
		}
		var verr error
		if v.NotificationEmail != nil && *v.NotificationEmail != "" && !emailPattern.MatchString(*v.NotificationEmail) {
			verr = domain.AddFieldError(verr, "notificationEmail", "must be a valid email address")
		}
		if v.EmailFrom != nil && *v.EmailFrom != "" && !emailPattern.MatchString(*v.EmailFrom) {
			verr = domain.AddFieldError(verr, "emailFrom", "must be a valid email address")
		}
		return verr

	case key == "admin_reviews":
		var v struct {
			MinRatingToFeature *int `json:"minRatingToFeature"`
		}
		if err := json.Unmarshal(value, &v); err != nil {
			return domain.NewValidationError(op, "value", "malformed review settings")
		}
		if v.MinRatingToFeature != nil && (*v.MinRatingToFeature < 1 || *v.MinRatingToFeature > 5) {
			return domain.NewValidationError(op, "minRatingToFeature", "must be between 1 and 5")
		}

	case key == "admin_general":
		var v struct {
			SiteTitle *string `json:"siteTitle"`
		}
		if err := json.Unmarshal(value, &v); err != nil {
			return domain.NewValidationError(op, "value", "malformed general settings")
		}
		if v.SiteTitle != nil && len(*v.SiteTitle) > maxSiteTitleLength {
			return domain.NewValidationError(op, "siteTitle", "must be at most 255 characters")
		}
	}

	return nil
}
