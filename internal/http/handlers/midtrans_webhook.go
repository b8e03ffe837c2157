package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/editaja/editaja-api/internal/constants"
	"github.com/editaja/editaja-api/internal/service"
)

// MidtransWebhookHandler processes payment notifications from the
// gateway. Authenticity comes from the SHA-512 signature in the
// payload, not from user auth.
type MidtransWebhookHandler struct {
	topupSvc *service.TopupService
	logger   *slog.Logger
}

// NewMidtransWebhookHandler creates a new payment webhook handler.
func NewMidtransWebhookHandler(topupSvc *service.TopupService, logger *slog.Logger) *MidtransWebhookHandler {
	return &MidtransWebhookHandler{topupSvc: topupSvc, logger: logger}
}

// HandleNotification applies one gateway notification. Business-level
// oddities (unknown orders, replays) return 200 so the gateway stops
// retrying; only bad signatures and malformed payloads are rejected.
func (h *MidtransWebhookHandler) HandleNotification(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxWebhookBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Error("failed to read webhook body", "error", err)
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	var notif service.WebhookNotification
	if err := json.Unmarshal(payload, &notif); err != nil {
		h.logger.Error("failed to parse webhook payload", "error", err)
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if notif.OrderID == "" {
		http.Error(w, "missing order_id", http.StatusBadRequest)
		return
	}

	if err := h.topupSvc.HandleNotification(r.Context(), &notif); err != nil {
		if errors.Is(err, service.ErrInvalidSignature) {
			h.logger.Warn("webhook signature mismatch", "order_id", notif.OrderID)
			http.Error(w, "invalid signature", http.StatusForbidden)
			return
		}
		// Transient storage failures get a 500 so the gateway retries later.
		h.logger.Error("failed to apply webhook", "error", err, "order_id", notif.OrderID)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"ok":true}`))
}
