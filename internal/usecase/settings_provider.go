package usecase

import (
	"context"
	"fmt"

	domainRepo "github.com/wekeepgrowing/closerlink/internal/domain/repository"
)

// SettingsProvider supplies runtime configuration that operators can change
// without a restart.
type SettingsProvider interface {
	WebhookSecret(ctx context.Context) (string, error)
	OutboundURL(ctx context.Context) (string, error)
}

// StoredSettings reads the settings row on every call and falls back to the
// config file values when a field is unset.
type StoredSettings struct {
	repo           domainRepo.SettingsRepository
	fallbackSecret string
	fallbackURL    string
}

func NewStoredSettings(repo domainRepo.SettingsRepository, fallbackSecret, fallbackURL string) *StoredSettings {
	return &StoredSettings{
		repo:           repo,
		fallbackSecret: fallbackSecret,
		fallbackURL:    fallbackURL,
	}
}

func (s *StoredSettings) WebhookSecret(ctx context.Context) (string, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load webhook secret: %w", err)
	}
	if settings != nil && settings.WebhookSecret != nil && *settings.WebhookSecret != "" {
		return *settings.WebhookSecret, nil
	}
	return s.fallbackSecret, nil
}

func (s *StoredSettings) OutboundURL(ctx context.Context) (string, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load outbound url: %w", err)
	}
	if settings != nil && settings.OutboundWebhookURL != nil && *settings.OutboundWebhookURL != "" {
		return *settings.OutboundWebhookURL, nil
	}
	return s.fallbackURL, nil
}

// StaticSettings is a fixed SettingsProvider.
type StaticSettings struct {
	Secret string
	URL    string
}

func (s StaticSettings) WebhookSecret(context.Context) (string, error) {
	return s.Secret, nil
}

func (s StaticSettings) OutboundURL(context.Context) (string, error) {
	return s.URL, nil
}
