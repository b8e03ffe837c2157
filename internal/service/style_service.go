package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/editaja/editaja-api/internal/models"
	"github.com/editaja/editaja-api/internal/repository"
)

// ErrStyleNotFound is returned when a style ID does not exist.
var ErrStyleNotFound = errors.New("style not found")

// StyleService manages the style catalog.
type StyleService struct {
	repos  *repository.Repositories
	logger *slog.Logger
}

// NewStyleService creates a new style service.
func NewStyleService(repos *repository.Repositories, logger *slog.Logger) *StyleService {
	return &StyleService{repos: repos, logger: logger}
}

// ListActive returns the styles offered to end users.
func (s *StyleService) ListActive(ctx context.Context) ([]*models.Style, error) {
	styles, err := s.repos.Style.List(ctx, models.StyleActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active styles: %w", err)
	}
	return styles, nil
}

// ListAll returns the full catalog including inactive styles.
func (s *StyleService) ListAll(ctx context.Context) ([]*models.Style, error) {
	styles, err := s.repos.Style.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list styles: %w", err)
	}
	return styles, nil
}

// Get returns one style by ID.
func (s *StyleService) Get(ctx context.Context, id string) (*models.Style, error) {
	style, err := s.repos.Style.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get style: %w", err)
	}
	if style == nil {
		return nil, ErrStyleNotFound
	}
	return style, nil
}

// CreateStyleInput describes a new catalog entry.
type CreateStyleInput struct {
	Name      string
	Prompt    string
	ImageURL  string
	Category  string
	Tags      []string
	SortOrder int
	Active    bool
}

// Create adds a style to the catalog.
func (s *StyleService) Create(ctx context.Context, input *CreateStyleInput) (*models.Style, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("style name is required")
	}
	if strings.TrimSpace(input.Prompt) == "" {
		return nil, fmt.Errorf("style prompt is required")
	}

	status := models.StyleInactive
	if input.Active {
		status = models.StyleActive
	}

	now := time.Now().UTC()
	style := &models.Style{
		ID:        ulid.Make().String(),
		Name:      strings.TrimSpace(input.Name),
		Prompt:    strings.TrimSpace(input.Prompt),
		ImageURL:  input.ImageURL,
		Status:    status,
		Category:  input.Category,
		Tags:      input.Tags,
		SortOrder: input.SortOrder,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repos.Style.Create(ctx, style); err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	s.logger.Info("style created", "style_id", style.ID, "name", style.Name)
	return style, nil
}

// Update modifies an existing style.
func (s *StyleService) Update(ctx context.Context, style *models.Style) error {
	existing, err := s.repos.Style.GetByID(ctx, style.ID)
	if err != nil {
		return fmt.Errorf("failed to look up style: %w", err)
	}
	if existing == nil {
		return ErrStyleNotFound
	}

	style.CreatedAt = existing.CreatedAt
	style.UpdatedAt = time.Now().UTC()
	if err := s.repos.Style.Update(ctx, style); err != nil {
		return fmt.Errorf("failed to update style: %w", err)
	}
	return nil
}

// Delete removes a style from the catalog. History rows keep the
// denormalized style name, so deletion does not orphan them.
func (s *StyleService) Delete(ctx context.Context, id string) error {
	existing, err := s.repos.Style.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to look up style: %w", err)
	}
	if existing == nil {
		return ErrStyleNotFound
	}
	if err := s.repos.Style.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete style: %w", err)
	}
	return nil
}

// SetStatusBulk flips the given catalog entries to the target status.
// An empty ID list hits the whole catalog, which is the back-office
// kill switch.
func (s *StyleService) SetStatusBulk(ctx context.Context, ids []string, active bool) (int64, error) {
	status := models.StyleInactive
	if active {
		status = models.StyleActive
	}
	affected, err := s.repos.Style.SetStatus(ctx, ids, status)
	if err != nil {
		return 0, fmt.Errorf("failed to update style statuses: %w", err)
	}
	s.logger.Info("bulk style status change", "status", status, "ids", len(ids), "affected", affected)
	return affected, nil
}

// ImportResult summarizes a bulk import run.
type ImportResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// Import bulk-loads styles, skipping entries whose prompt already
// exists. Prompts are compared trimmed and lowercased; within a batch
// the first occurrence wins.
func (s *StyleService) Import(ctx context.Context, inputs []*CreateStyleInput) (*ImportResult, error) {
	result := &ImportResult{}
	seen := make(map[string]bool, len(inputs))

	for _, input := range inputs {
		normalized := strings.ToLower(strings.TrimSpace(input.Prompt))
		if normalized == "" {
			result.Skipped++
			continue
		}
		if seen[normalized] {
			result.Skipped++
			continue
		}
		seen[normalized] = true

		existing, err := s.repos.Style.GetByPrompt(ctx, normalized)
		if err != nil {
			return result, fmt.Errorf("failed to check for existing prompt: %w", err)
		}
		if existing != nil {
			result.Skipped++
			continue
		}

		if _, err := s.Create(ctx, input); err != nil {
			return result, fmt.Errorf("failed to import style %q: %w", input.Name, err)
		}
		result.Created++
	}

	s.logger.Info("style import finished", "created", result.Created, "skipped", result.Skipped)
	return result, nil
}
