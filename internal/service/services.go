package service

import (
	"fmt"
	"log/slog"

	"github.com/editaja/editaja-api/internal/config"
	"github.com/editaja/editaja-api/internal/crypto"
	"github.com/editaja/editaja-api/internal/imagen"
	"github.com/editaja/editaja-api/internal/payment"
	"github.com/editaja/editaja-api/internal/repository"
)

// Services holds all service instances.
type Services struct {
	Settings   *SettingsService
	Token      *TokenService
	Style      *StyleService
	Generation *GenerationService
	Topup      *TopupService
	Admin      *AdminService
	Analytics  *AnalyticsService
	Storage    *StorageService
}

// NewServices creates all service instances.
func NewServices(cfg *config.Config, repos *repository.Repositories, logger *slog.Logger) (*Services, error) {
	// Create encryptor first - needed for secret settings at rest
	var encryptor *crypto.Encryptor
	if len(cfg.EncryptionKey) > 0 {
		var err error
		encryptor, err = crypto.NewEncryptor(cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create encryptor: %w", err)
		}
	} else {
		logger.Warn("no encryption key configured - secret settings will be unavailable")
	}

	storageSvc, err := NewStorageService(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage service: %w", err)
	}

	settingsSvc := NewSettingsService(cfg, repos, encryptor, logger)
	tokenSvc := NewTokenService(repos, settingsSvc, logger)
	styleSvc := NewStyleService(repos, logger)
	adminSvc := NewAdminService(repos, logger)
	analyticsSvc := NewAnalyticsService(repos, logger)

	gateway := payment.NewMidtransGateway(cfg.MidtransServerKey, cfg.MidtransProduction, logger)
	topupSvc := NewTopupService(cfg, repos, gateway, logger)

	imagenClient := imagen.NewClient(
		cfg.ImagenEndpoint,
		cfg.ImagenAPIKey,
		cfg.GenerationPollInterval,
		cfg.GenerationPollDeadline,
		logger,
	)
	generationSvc := NewGenerationService(cfg, repos, tokenSvc, settingsSvc, storageSvc, imagenClient, logger)

	return &Services{
		Settings:   settingsSvc,
		Token:      tokenSvc,
		Style:      styleSvc,
		Generation: generationSvc,
		Topup:      topupSvc,
		Admin:      adminSvc,
		Analytics:  analyticsSvc,
		Storage:    storageSvc,
	}, nil
}
