package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	svix "github.com/svix/svix-webhooks/go"

	"github.com/editaja/editaja-api/internal/config"
	"github.com/editaja/editaja-api/internal/service"
)

// AuthWebhookHandler handles user lifecycle events from the auth
// provider. Signatures are verified with Svix; this endpoint carries
// no user auth of its own.
type AuthWebhookHandler struct {
	cfg      *config.Config
	tokenSvc *service.TokenService
	genSvc   *service.GenerationService
	logger   *slog.Logger
}

// NewAuthWebhookHandler creates a new auth webhook handler.
func NewAuthWebhookHandler(cfg *config.Config, tokenSvc *service.TokenService, genSvc *service.GenerationService, logger *slog.Logger) *AuthWebhookHandler {
	return &AuthWebhookHandler{
		cfg:      cfg,
		tokenSvc: tokenSvc,
		genSvc:   genSvc,
		logger:   logger,
	}
}

// AuthWebhookEvent represents one auth provider event.
type AuthWebhookEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// UserEventData carries the user fields used by lifecycle events.
type UserEventData struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// HandleWebhook processes incoming auth provider webhooks.
func (h *AuthWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	const maxBodySize = 65536 // 64KB

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Error("failed to read webhook body", "error", err)
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	// Verify webhook signature using Svix
	headers := http.Header{}
	headers.Set("svix-id", r.Header.Get("svix-id"))
	headers.Set("svix-timestamp", r.Header.Get("svix-timestamp"))
	headers.Set("svix-signature", r.Header.Get("svix-signature"))

	wh, err := svix.NewWebhook(h.cfg.AuthWebhookSecret)
	if err != nil {
		h.logger.Error("failed to create webhook verifier", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if err := wh.Verify(payload, headers); err != nil {
		h.logger.Error("failed to verify webhook signature", "error", err)
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	var event AuthWebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		h.logger.Error("failed to parse webhook event", "error", err)
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	var user UserEventData
	if err := json.Unmarshal(event.Data, &user); err != nil || user.ID == "" {
		h.logger.Error("failed to parse user data", "error", err, "type", event.Type)
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	switch event.Type {
	case "user.created":
		// Seed the token account so the first generation doesn't race
		// the grant.
		if _, err := h.tokenSvc.EnsureAccount(ctx, user.ID); err != nil {
			h.logger.Error("failed to provision token account", "error", err, "user_id", user.ID)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		h.logger.Info("provisioned token account", "user_id", user.ID)

	case "user.deleted":
		if err := h.genSvc.DeleteAllForUser(ctx, user.ID); err != nil {
			h.logger.Error("failed to delete generations", "error", err, "user_id", user.ID)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if err := h.tokenSvc.DeleteAccount(ctx, user.ID); err != nil {
			h.logger.Error("failed to delete token account", "error", err, "user_id", user.ID)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		h.logger.Info("removed user data", "user_id", user.ID)

	default:
		h.logger.Debug("ignoring webhook event", "type", event.Type)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"received":true}`))
}
