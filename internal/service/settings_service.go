package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/editaja/editaja-api/internal/config"
	"github.com/editaja/editaja-api/internal/crypto"
	"github.com/editaja/editaja-api/internal/models"
	"github.com/editaja/editaja-api/internal/repository"
)

// SettingsService reads and writes runtime-editable settings. Values
// read here override the environment defaults in config.Config, so
// admins can retune pricing and quotas without a redeploy. Secret
// values are encrypted at rest.
type SettingsService struct {
	cfg       *config.Config
	repos     *repository.Repositories
	encryptor *crypto.Encryptor
	logger    *slog.Logger
}

// NewSettingsService creates a new settings service. The encryptor may
// be nil, in which case secret settings cannot be stored.
func NewSettingsService(cfg *config.Config, repos *repository.Repositories, encryptor *crypto.Encryptor, logger *slog.Logger) *SettingsService {
	return &SettingsService{
		cfg:       cfg,
		repos:     repos,
		encryptor: encryptor,
		logger:    logger,
	}
}

// Get returns the setting for key with secret values decrypted.
// Returns nil when no override exists.
func (s *SettingsService) Get(ctx context.Context, key string) (*models.Setting, error) {
	setting, err := s.repos.Settings.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	if setting == nil {
		return nil, nil
	}

	if setting.IsSecret {
		if s.encryptor == nil {
			return nil, fmt.Errorf("setting %s is secret but no encryption key is configured", key)
		}
		plain, err := s.encryptor.Decrypt(setting.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt setting %s: %w", key, err)
		}
		setting.Value = plain
	}

	return setting, nil
}

// List returns all settings. Secret values are masked, not decrypted;
// the back-office only needs to know a secret is set.
func (s *SettingsService) List(ctx context.Context) ([]*models.Setting, error) {
	settings, err := s.repos.Settings.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	for _, setting := range settings {
		if setting.IsSecret {
			setting.Value = "********"
		}
	}
	return settings, nil
}

// Set upserts a setting, encrypting the value when secret is true.
func (s *SettingsService) Set(ctx context.Context, key, value string, secret bool, updatedBy string) error {
	stored := value
	if secret {
		if s.encryptor == nil {
			return fmt.Errorf("cannot store secret setting %s: no encryption key configured", key)
		}
		encrypted, err := s.encryptor.Encrypt(value)
		if err != nil {
			return fmt.Errorf("failed to encrypt setting %s: %w", key, err)
		}
		stored = encrypted
	}

	err := s.repos.Settings.Upsert(ctx, &models.Setting{
		Key:       key,
		Value:     stored,
		IsSecret:  secret,
		UpdatedBy: updatedBy,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to store setting %s: %w", key, err)
	}

	s.logger.Info("setting updated", "key", key, "secret", secret, "updated_by", updatedBy)
	return nil
}

// Delete removes a setting override, reverting to the environment default.
func (s *SettingsService) Delete(ctx context.Context, key string) error {
	if err := s.repos.Settings.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}

// TokenCostPerGenerate returns the current per-generation price in tokens.
func (s *SettingsService) TokenCostPerGenerate(ctx context.Context) int64 {
	return s.intSetting(ctx, models.SettingTokenCostPerGenerate, s.cfg.TokenCostPerGenerate)
}

// MaxAnonymousGenerations returns the daily free-generation quota.
func (s *SettingsService) MaxAnonymousGenerations(ctx context.Context) int64 {
	return s.intSetting(ctx, models.SettingMaxAnonymousGenerations, s.cfg.MaxAnonymousGenerations)
}

// InitialTokenGrant returns the sign-up token grant.
func (s *SettingsService) InitialTokenGrant(ctx context.Context) int64 {
	return s.intSetting(ctx, models.SettingInitialTokenGrant, s.cfg.InitialTokenGrant)
}

// ImagenCredentials returns the generation API endpoint and key,
// preferring runtime overrides over the environment.
func (s *SettingsService) ImagenCredentials(ctx context.Context) (endpoint, apiKey string) {
	endpoint = s.stringSetting(ctx, models.SettingImagenEndpoint, s.cfg.ImagenEndpoint)
	apiKey = s.stringSetting(ctx, models.SettingImagenAPIKey, s.cfg.ImagenAPIKey)
	return endpoint, apiKey
}

func (s *SettingsService) intSetting(ctx context.Context, key string, fallback int64) int64 {
	setting, err := s.Get(ctx, key)
	if err != nil {
		s.logger.Warn("failed to read setting, using default", "key", key, "error", err)
		return fallback
	}
	if setting == nil {
		return fallback
	}
	value, err := strconv.ParseInt(setting.Value, 10, 64)
	if err != nil {
		s.logger.Warn("setting is not an integer, using default", "key", key, "value", setting.Value)
		return fallback
	}
	return value
}

func (s *SettingsService) stringSetting(ctx context.Context, key, fallback string) string {
	setting, err := s.Get(ctx, key)
	if err != nil {
		s.logger.Warn("failed to read setting, using default", "key", key, "error", err)
		return fallback
	}
	if setting == nil || setting.Value == "" {
		return fallback
	}
	return setting.Value
}
