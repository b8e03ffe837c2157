package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/editaja/editaja-api/internal/constants"
	"github.com/editaja/editaja-api/internal/http/mw"
	"github.com/editaja/editaja-api/internal/imagen"
	"github.com/editaja/editaja-api/internal/models"
	"github.com/editaja/editaja-api/internal/service"
)

// GenerationHandler handles the generation pipeline endpoints.
type GenerationHandler struct {
	genSvc     *service.GenerationService
	settings   *service.SettingsService
	tokenSvc   *service.TokenService
	storageSvc *service.StorageService
	logger     *slog.Logger
}

// NewGenerationHandler creates a new generation handler.
func NewGenerationHandler(genSvc *service.GenerationService, settings *service.SettingsService, tokenSvc *service.TokenService, storageSvc *service.StorageService, logger *slog.Logger) *GenerationHandler {
	return &GenerationHandler{
		genSvc:     genSvc,
		settings:   settings,
		tokenSvc:   tokenSvc,
		storageSvc: storageSvc,
		logger:     logger,
	}
}

// GenerationItem is one history record in API responses.
type GenerationItem struct {
	ID                 string   `json:"id"`
	StyleID            string   `json:"style_id"`
	StyleName          string   `json:"style_name"`
	Prompt             string   `json:"prompt,omitempty"`
	OriginalImageURL   string   `json:"original_image_url,omitempty"`
	GeneratedImageURLs []string `json:"generated_image_urls"`
	Location           string   `json:"location,omitempty"`
	TokensCharged      int64    `json:"tokens_charged"`
	CreatedAt          string   `json:"created_at"`
}

func toGenerationItem(g *models.Generation) GenerationItem {
	return GenerationItem{
		ID:                 g.ID,
		StyleID:            g.StyleID,
		StyleName:          g.StyleName,
		Prompt:             g.Prompt,
		OriginalImageURL:   g.OriginalImageURL,
		GeneratedImageURLs: g.GeneratedImageURLs,
		Location:           g.Location,
		TokensCharged:      g.TokensCharged,
		CreatedAt:          g.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Generate is the raw multipart endpoint that runs the pipeline.
// Multipart is used because the photo rides along with the form fields,
// which Huma's JSON-first operations don't model well.
func (h *GenerationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	claims := mw.GetUserClaims(r.Context())
	anonymousID := mw.GetAnonymousID(r.Context())
	if claims == nil && anonymousID == "" {
		writeError(w, http.StatusUnauthorized, "sign in or provide an anonymous device ID")
		return
	}

	// Allow some slack above the image cap for the other form fields.
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadBytes+(64<<10))
	if err := r.ParseMultipartForm(constants.MaxUploadBytes); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
		return
	}

	styleID := r.FormValue("style_id")
	if styleID == "" {
		writeError(w, http.StatusBadRequest, "style_id is required")
		return
	}

	data, filename, contentType, err := readImageFile(r, "image")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !constants.AllowedImageTypes[contentType] {
		writeError(w, http.StatusUnsupportedMediaType, "unsupported image type "+contentType)
		return
	}

	input := &service.GenerateInput{
		StyleID:   styleID,
		Prompt:    r.FormValue("prompt"),
		Location:  r.FormValue("location"),
		ImageData: data,
		Filename:  filename,
	}
	if claims != nil {
		input.UserID = claims.UserID
	} else {
		input.AnonymousID = anonymousID
	}

	result, err := h.genSvc.Generate(r.Context(), input)
	if err != nil {
		status, msg := generateErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("generation failed", "error", err)
		}
		writeError(w, status, msg)
		return
	}

	body := map[string]any{
		"generation": toGenerationItem(result.Generation),
		"image_urls": result.ImageURLs,
	}
	if result.RemainingTokens != nil {
		body["remaining_tokens"] = *result.RemainingTokens
	}
	writeJSON(w, http.StatusOK, body)
}

// Upload is the raw multipart endpoint for standalone image uploads
// (style reference images and pre-staged photos).
func (h *GenerationHandler) Upload(w http.ResponseWriter, r *http.Request) {
	claims := mw.GetUserClaims(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !h.storageSvc.IsEnabled() {
		writeError(w, http.StatusServiceUnavailable, "storage is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadBytes+(64<<10))
	if err := r.ParseMultipartForm(constants.MaxUploadBytes); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
		return
	}

	kind := r.FormValue("type")
	switch kind {
	case "", "uploads":
		kind = "uploads"
	case "styles":
		// Style reference images are catalog assets.
		if !claims.IsAdmin {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "unknown upload type "+kind)
		return
	}

	data, filename, contentType, err := readImageFile(r, "file")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !constants.AllowedImageTypes[contentType] {
		writeError(w, http.StatusUnsupportedMediaType, "unsupported image type "+contentType)
		return
	}

	url, err := h.storageSvc.UploadImage(r.Context(), kind, filename, data, contentType)
	if err != nil {
		h.logger.Error("upload failed", "error", err, "kind", kind)
		writeError(w, http.StatusBadGateway, "upload failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "url": url})
}

// ListGenerationsInput represents the history request.
type ListGenerationsInput struct {
	Limit  int `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Page size"`
	Offset int `query:"offset" default:"0" minimum:"0" doc:"Page offset"`
}

// ListGenerationsOutput represents the history response.
type ListGenerationsOutput struct {
	Body struct {
		Generations []GenerationItem `json:"generations"`
	}
}

// ListGenerations returns the caller's generation history, newest first.
// Works for both signed-in users and anonymous devices.
func (h *GenerationHandler) ListGenerations(ctx context.Context, input *ListGenerationsInput) (*ListGenerationsOutput, error) {
	var (
		gens []*models.Generation
		err  error
	)
	if userID := getUserID(ctx); userID != "" {
		gens, err = h.genSvc.History(ctx, userID, input.Limit, input.Offset)
	} else if anonymousID := mw.GetAnonymousID(ctx); anonymousID != "" {
		gens, err = h.genSvc.AnonymousHistory(ctx, anonymousID, input.Limit, input.Offset)
	} else {
		return nil, huma.Error401Unauthorized("sign in or provide an anonymous device ID")
	}
	if err != nil {
		return nil, mapServiceError(err, "failed to list generations")
	}

	out := &ListGenerationsOutput{}
	out.Body.Generations = make([]GenerationItem, 0, len(gens))
	for _, g := range gens {
		out.Body.Generations = append(out.Body.Generations, toGenerationItem(g))
	}
	return out, nil
}

// DeleteGenerationInput represents the deletion request.
type DeleteGenerationInput struct {
	ID string `path:"id" doc:"Generation ID"`
}

// DeleteGenerationOutput represents the deletion response.
type DeleteGenerationOutput struct {
	Body struct {
		Deleted bool `json:"deleted"`
	}
}

// DeleteGeneration removes one history record. Owners and admins only.
func (h *GenerationHandler) DeleteGeneration(ctx context.Context, input *DeleteGenerationInput) (*DeleteGenerationOutput, error) {
	userID := getUserID(ctx)
	if userID == "" {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	if err := h.genSvc.Delete(ctx, input.ID, userID, isAdmin(ctx)); err != nil {
		return nil, mapServiceError(err, "failed to delete generation")
	}

	out := &DeleteGenerationOutput{}
	out.Body.Deleted = true
	return out, nil
}

// DeleteAllGenerationsOutput represents the bulk deletion response.
type DeleteAllGenerationsOutput struct {
	Body struct {
		Deleted bool `json:"deleted"`
	}
}

// DeleteAllGenerations wipes the caller's entire history.
func (h *GenerationHandler) DeleteAllGenerations(ctx context.Context, input *struct{}) (*DeleteAllGenerationsOutput, error) {
	userID := getUserID(ctx)
	if userID == "" {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	if err := h.genSvc.DeleteAllForUser(ctx, userID); err != nil {
		return nil, mapServiceError(err, "failed to delete generations")
	}

	out := &DeleteAllGenerationsOutput{}
	out.Body.Deleted = true
	return out, nil
}

// GetQuotaOutput represents the quota/cost response.
type GetQuotaOutput struct {
	Body struct {
		Authenticated  bool  `json:"authenticated"`
		TokenCost      int64 `json:"token_cost"`
		Tokens         int64 `json:"tokens,omitempty"`
		RemainingToday int64 `json:"remaining_today,omitempty"`
		DailyFreeQuota int64 `json:"daily_free_quota,omitempty"`
	}
}

// GetQuota tells the client what a generation will cost: token balance
// for signed-in users, remaining free runs for anonymous devices.
func (h *GenerationHandler) GetQuota(ctx context.Context, input *struct{}) (*GetQuotaOutput, error) {
	out := &GetQuotaOutput{}
	out.Body.TokenCost = h.settings.TokenCostPerGenerate(ctx)

	if userID := getUserID(ctx); userID != "" {
		account, err := h.tokenSvc.EnsureAccount(ctx, userID)
		if err != nil {
			return nil, mapServiceError(err, "failed to get balance")
		}
		out.Body.Authenticated = true
		out.Body.Tokens = account.Tokens
		return out, nil
	}

	anonymousID := mw.GetAnonymousID(ctx)
	if anonymousID == "" {
		return nil, huma.Error401Unauthorized("sign in or provide an anonymous device ID")
	}

	remaining, err := h.genSvc.RemainingAnonymousQuota(ctx, anonymousID)
	if err != nil {
		return nil, mapServiceError(err, "failed to get quota")
	}
	out.Body.RemainingToday = remaining
	out.Body.DailyFreeQuota = h.settings.MaxAnonymousGenerations(ctx)
	return out, nil
}

// readImageFile pulls one uploaded file out of the parsed multipart form
// and sniffs its content type from the payload, not the client header.
func readImageFile(r *http.Request, field string) (data []byte, filename, contentType string, err error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", "", errors.New(field + " file is required")
	}
	defer func() { _ = file.Close() }()

	data, err = io.ReadAll(file)
	if err != nil {
		return nil, "", "", errors.New("failed to read " + field)
	}
	if len(data) == 0 {
		return nil, "", "", errors.New(field + " file is empty")
	}

	// Sniffing can't identify every format (HEIC comes back as
	// octet-stream), so fall back to the client header for those.
	contentType = http.DetectContentType(data)
	if contentType == "application/octet-stream" {
		if declared := header.Header.Get("Content-Type"); declared != "" {
			contentType = declared
		}
	}

	return data, header.Filename, contentType, nil
}

// generateErrorStatus maps pipeline errors to raw-handler status codes.
func generateErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrStyleNotFound):
		return http.StatusNotFound, "style not found"
	case errors.Is(err, service.ErrStyleInactive):
		return http.StatusUnprocessableEntity, "style is not available"
	case errors.Is(err, service.ErrInsufficientBalance):
		return http.StatusPaymentRequired, "insufficient token balance"
	case errors.Is(err, service.ErrQuotaExhausted):
		return http.StatusTooManyRequests, "daily free generation quota exhausted"
	case errors.Is(err, service.ErrNoImagesSaved), errors.Is(err, imagen.ErrNoResults), errors.Is(err, imagen.ErrTaskFailed):
		return http.StatusBadGateway, "image generation failed"
	case errors.Is(err, imagen.ErrPollTimeout):
		return http.StatusGatewayTimeout, "image generation timed out"
	default:
		return http.StatusInternalServerError, "generation failed"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
