package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/editaja/editaja-api/internal/config"
	"github.com/editaja/editaja-api/internal/imagen"
	"github.com/editaja/editaja-api/internal/logging"
	"github.com/editaja/editaja-api/internal/models"
	"github.com/editaja/editaja-api/internal/repository"
)

// Sentinel errors for the generation pipeline.
var (
	// ErrQuotaExhausted is returned when an anonymous visitor has used
	// up the daily free quota.
	ErrQuotaExhausted = errors.New("daily free generation quota exhausted")
	// ErrStyleInactive is returned when the requested style is disabled.
	ErrStyleInactive = errors.New("style is not active")
	// ErrNoImagesSaved is returned when every generated image failed to
	// be stored. The run is aborted and nothing is charged.
	ErrNoImagesSaved = errors.New("no generated images could be saved")
	// ErrGenerationNotFound is returned for unknown history entries.
	ErrGenerationNotFound = errors.New("generation not found")
	// ErrNotOwner is returned when a caller tries to touch someone
	// else's history entry.
	ErrNotOwner = errors.New("generation belongs to another user")
)

// imagenClient is the generation API surface used by the pipeline.
type imagenClient interface {
	Generate(ctx context.Context, req *imagen.Request) ([]string, error)
}

// mediaStore is the storage surface used by the pipeline.
type mediaStore interface {
	IsEnabled() bool
	UploadImage(ctx context.Context, kind, filename string, data []byte, contentType string) (string, error)
	RehostImage(ctx context.Context, sourceURL, kind string) (string, error)
	DeleteByURL(ctx context.Context, url string) error
}

// GenerationService runs the photo transformation pipeline and manages
// generation history.
type GenerationService struct {
	cfg      *config.Config
	repos    *repository.Repositories
	tokens   *TokenService
	settings *SettingsService
	storage  mediaStore
	imagen   imagenClient
	logger   *slog.Logger
}

// NewGenerationService creates a new generation service.
func NewGenerationService(cfg *config.Config, repos *repository.Repositories, tokens *TokenService, settings *SettingsService, storage mediaStore, client imagenClient, logger *slog.Logger) *GenerationService {
	return &GenerationService{
		cfg:      cfg,
		repos:    repos,
		tokens:   tokens,
		settings: settings,
		storage:  storage,
		imagen:   client,
		logger:   logger,
	}
}

// GenerateInput describes one pipeline run. Exactly one of UserID or
// AnonymousID is set.
type GenerateInput struct {
	UserID      string
	AnonymousID string
	StyleID     string
	Prompt      string // optional override of the style's prompt
	Location    string
	ImageData   []byte
	Filename    string
}

// GenerateResult is the pipeline output. RemainingTokens is the
// balance re-read after the deduction; nil for anonymous runs.
type GenerateResult struct {
	Generation      *models.Generation `json:"generation"`
	ImageURLs       []string           `json:"image_urls"`
	RemainingTokens *int64             `json:"remaining_tokens,omitempty"`
}

// Generate runs the full pipeline: store the source photo, check the
// caller's quota or balance, call the generation API, save the results,
// charge for the run, and record history. Accounting happens only
// after at least one result is saved, so a failed run never costs
// anything.
func (s *GenerationService) Generate(ctx context.Context, input *GenerateInput) (*GenerateResult, error) {
	generationID := ulid.Make().String()
	ctx = logging.WithGenerationID(ctx, generationID)
	if input.UserID != "" {
		ctx = logging.WithUserID(ctx, input.UserID)
	}
	logger := logging.FromContext(ctx, s.logger)

	style, err := s.repos.Style.GetByID(ctx, input.StyleID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up style: %w", err)
	}
	if style == nil {
		return nil, ErrStyleNotFound
	}
	if !style.IsActive() {
		return nil, ErrStyleInactive
	}

	// A user-edited prompt replaces the style's default only when it
	// has content. Whitespace keeps the default.
	prompt := style.Prompt
	if custom := strings.TrimSpace(input.Prompt); custom != "" {
		prompt = custom
	}

	// Source photo upload is best effort. Generation proceeds from the
	// in-memory bytes either way; only the history record loses its
	// original_image_url.
	var originalURL string
	if s.storage.IsEnabled() {
		originalURL, err = s.storage.UploadImage(ctx, prefixUploads, input.Filename, input.ImageData, "")
		if err != nil {
			logger.Warn("failed to store source photo", "error", err)
			originalURL = ""
		}
	}

	cost, err := s.checkQuota(ctx, input)
	if err != nil {
		return nil, err
	}

	logger.Info("starting generation",
		"style_id", style.ID,
		"style", style.Name,
		"anonymous", input.UserID == "",
	)

	sourceURLs, err := s.imagen.Generate(ctx, &imagen.Request{
		ImageData: input.ImageData,
		Filename:  input.Filename,
		Prompt:    prompt,
		Location:  input.Location,
	})
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	savedURLs, err := s.saveResults(ctx, logger, sourceURLs)
	if err != nil {
		return nil, err
	}

	if err := s.charge(ctx, input, cost, generationID, style.Name); err != nil {
		return nil, err
	}

	// Re-read the balance after the deduction so the client can show it
	// without a second round trip. A concurrent run may have moved it
	// again; the read reflects whatever is current.
	var remaining *int64
	if input.UserID != "" {
		account, err := s.tokens.GetBalance(ctx, input.UserID)
		if err != nil {
			logger.Warn("failed to re-read balance after charge", "error", err)
		} else {
			remaining = &account.Tokens
		}
	}

	gen := &models.Generation{
		ID:                 generationID,
		UserID:             input.UserID,
		AnonymousID:        input.AnonymousID,
		StyleID:            style.ID,
		StyleName:          style.Name,
		Prompt:             prompt,
		OriginalImageURL:   originalURL,
		GeneratedImageURLs: savedURLs,
		Location:           input.Location,
		TokensCharged:      cost,
		CreatedAt:          time.Now().UTC(),
	}
	// History is best effort. The user already has their images; a
	// recording failure must not turn the run into an error.
	if err := s.repos.Generation.Create(ctx, gen); err != nil {
		logger.Warn("failed to record generation history", "error", err)
	}

	logger.Info("generation finished",
		"images", len(savedURLs),
		"tokens_charged", cost,
	)

	return &GenerateResult{Generation: gen, ImageURLs: savedURLs, RemainingTokens: remaining}, nil
}

// checkQuota verifies the caller may run a generation and returns the
// token cost (0 for anonymous runs). Nothing is charged here; charging
// happens after results are saved.
func (s *GenerationService) checkQuota(ctx context.Context, input *GenerateInput) (int64, error) {
	if input.UserID != "" {
		cost := s.settings.TokenCostPerGenerate(ctx)
		account, err := s.tokens.GetBalance(ctx, input.UserID)
		if err != nil {
			if errors.Is(err, ErrNoTokenAccount) {
				return 0, ErrInsufficientBalance
			}
			return 0, err
		}
		if account.Tokens < cost {
			return 0, ErrInsufficientBalance
		}
		return cost, nil
	}

	usage, err := s.repos.AnonymousUsage.Get(ctx, input.AnonymousID)
	if err != nil {
		return 0, fmt.Errorf("failed to check anonymous quota: %w", err)
	}
	// Counts reset on the UTC date boundary, so a row from a previous
	// day means zero used today. The guard must hold even at max=0,
	// which disables the free tier entirely.
	today := time.Now().UTC().Format("2006-01-02")
	var used int64
	if usage != nil && usage.LastGeneratedDate == today {
		used = int64(usage.TodayGenerationCount)
	}
	if used >= s.settings.MaxAnonymousGenerations(ctx) {
		return 0, ErrQuotaExhausted
	}
	return 0, nil
}

// saveResults re-hosts the generated images concurrently, keeping
// results in index order. Failed indices get exactly one retry pass;
// indices that still fail are dropped. When nothing could be saved the
// run is aborted.
func (s *GenerationService) saveResults(ctx context.Context, logger *slog.Logger, sourceURLs []string) ([]string, error) {
	if len(sourceURLs) == 0 {
		return nil, ErrNoImagesSaved
	}

	// Each goroutine owns exactly one slot of the slice, so no locking
	// is needed.
	saved := make([]string, len(sourceURLs))
	rehost := func(indices []int, pass string) []int {
		failures := make([]error, len(sourceURLs))
		var wg sync.WaitGroup
		for _, i := range indices {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				hosted, err := s.storage.RehostImage(ctx, sourceURLs[i], prefixResults)
				if err != nil {
					failures[i] = err
					return
				}
				saved[i] = hosted
			}(i)
		}
		wg.Wait()

		var failed []int
		for _, i := range indices {
			if failures[i] != nil {
				logger.Warn("failed to save generated image", "index", i, "pass", pass, "error", failures[i])
				failed = append(failed, i)
			}
		}
		return failed
	}

	all := make([]int, len(sourceURLs))
	for i := range all {
		all[i] = i
	}
	if failed := rehost(all, "initial"); len(failed) > 0 {
		rehost(failed, "retry")
	}

	urls := make([]string, 0, len(saved))
	for _, url := range saved {
		if url != "" {
			urls = append(urls, url)
		}
	}
	if len(urls) == 0 {
		return nil, ErrNoImagesSaved
	}
	return urls, nil
}

// charge applies accounting after a successful save: a conditional
// token deduction for users, a quota increment for anonymous visitors.
func (s *GenerationService) charge(ctx context.Context, input *GenerateInput, cost int64, generationID, styleName string) error {
	if input.UserID != "" {
		err := s.tokens.Deduct(ctx, input.UserID, cost, generationID, "generation: "+styleName)
		if err != nil {
			// The balance was re-checked atomically at deduction time;
			// a concurrent run may have drained it since the guard.
			return err
		}
		return nil
	}

	today := time.Now().UTC().Format("2006-01-02")
	if err := s.repos.AnonymousUsage.IncrementForDate(ctx, input.AnonymousID, today); err != nil {
		return fmt.Errorf("failed to record anonymous usage: %w", err)
	}
	return nil
}

// RemainingAnonymousQuota returns how many free generations the
// visitor has left today.
func (s *GenerationService) RemainingAnonymousQuota(ctx context.Context, anonymousID string) (int64, error) {
	max := s.settings.MaxAnonymousGenerations(ctx)
	usage, err := s.repos.AnonymousUsage.Get(ctx, anonymousID)
	if err != nil {
		return 0, fmt.Errorf("failed to get anonymous usage: %w", err)
	}
	if usage == nil || usage.LastGeneratedDate != time.Now().UTC().Format("2006-01-02") {
		return max, nil
	}
	remaining := max - int64(usage.TodayGenerationCount)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// History returns a user's generation records, newest first.
func (s *GenerationService) History(ctx context.Context, userID string, limit, offset int) ([]*models.Generation, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	gens, err := s.repos.Generation.GetByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get generation history: %w", err)
	}
	return gens, nil
}

// AnonymousHistory returns an anonymous visitor's records.
func (s *GenerationService) AnonymousHistory(ctx context.Context, anonymousID string, limit, offset int) ([]*models.Generation, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	gens, err := s.repos.Generation.GetByAnonymousID(ctx, anonymousID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get generation history: %w", err)
	}
	return gens, nil
}

// Delete removes a history entry and best-effort deletes its stored
// images. Admins may delete any entry; users only their own.
func (s *GenerationService) Delete(ctx context.Context, id, callerID string, isAdmin bool) error {
	gen, err := s.repos.Generation.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to look up generation: %w", err)
	}
	if gen == nil {
		return ErrGenerationNotFound
	}
	if !isAdmin && gen.UserID != callerID {
		return ErrNotOwner
	}

	if err := s.repos.Generation.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete generation: %w", err)
	}

	s.deleteImages(ctx, gen)
	return nil
}

// DeleteAllForUser removes a user's entire history. Called from the
// account deletion webhook.
func (s *GenerationService) DeleteAllForUser(ctx context.Context, userID string) error {
	gens, err := s.repos.Generation.GetByUserID(ctx, userID, 1000, 0)
	if err != nil {
		return fmt.Errorf("failed to list generations: %w", err)
	}
	if err := s.repos.Generation.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete generations: %w", err)
	}
	for _, gen := range gens {
		s.deleteImages(ctx, gen)
	}
	return nil
}

// deleteImages removes a record's stored objects. Failures are logged;
// the database row is already gone.
func (s *GenerationService) deleteImages(ctx context.Context, gen *models.Generation) {
	if gen.OriginalImageURL != "" {
		if err := s.storage.DeleteByURL(ctx, gen.OriginalImageURL); err != nil {
			s.logger.Warn("failed to delete source photo", "generation_id", gen.ID, "error", err)
		}
	}
	for _, url := range gen.GeneratedImageURLs {
		if err := s.storage.DeleteByURL(ctx, url); err != nil {
			s.logger.Warn("failed to delete generated image", "generation_id", gen.ID, "error", err)
		}
	}
}
