package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/editaja/editaja-api/internal/models"
	"github.com/editaja/editaja-api/internal/repository"
)

// ErrAdminNotFound is returned when an admin row does not exist.
var ErrAdminNotFound = errors.New("admin not found")

// AdminService manages the back-office allowlist.
type AdminService struct {
	repos  *repository.Repositories
	logger *slog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(repos *repository.Repositories, logger *slog.Logger) *AdminService {
	return &AdminService{repos: repos, logger: logger}
}

// IsAdmin reports whether the user may use back-office endpoints.
func (s *AdminService) IsAdmin(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	admin, err := s.repos.Admin.Get(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check admin status: %w", err)
	}
	return admin != nil, nil
}

// Add grants back-office access to a user.
func (s *AdminService) Add(ctx context.Context, userID, email, addedBy string) (*models.Admin, error) {
	existing, err := s.repos.Admin.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing admin: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	admin := &models.Admin{
		UserID:    userID,
		Email:     email,
		AddedBy:   addedBy,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repos.Admin.Create(ctx, admin); err != nil {
		return nil, fmt.Errorf("failed to add admin: %w", err)
	}

	s.logger.Info("admin added", "user_id", userID, "added_by", addedBy)
	return admin, nil
}

// Remove revokes back-office access.
func (s *AdminService) Remove(ctx context.Context, userID, removedBy string) error {
	existing, err := s.repos.Admin.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to look up admin: %w", err)
	}
	if existing == nil {
		return ErrAdminNotFound
	}
	if err := s.repos.Admin.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to remove admin: %w", err)
	}

	s.logger.Info("admin removed", "user_id", userID, "removed_by", removedBy)
	return nil
}

// List returns all back-office users.
func (s *AdminService) List(ctx context.Context) ([]*models.Admin, error) {
	admins, err := s.repos.Admin.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	return admins, nil
}
