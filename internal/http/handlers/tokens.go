package handlers

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/editaja/editaja-api/internal/models"
	"github.com/editaja/editaja-api/internal/service"
)

// TokenHandler handles token balance and ledger endpoints.
type TokenHandler struct {
	tokenSvc *service.TokenService
}

// NewTokenHandler creates a new token handler.
func NewTokenHandler(tokenSvc *service.TokenService) *TokenHandler {
	return &TokenHandler{tokenSvc: tokenSvc}
}

// GetBalanceOutput represents the balance response.
type GetBalanceOutput struct {
	Body struct {
		UserID string `json:"user_id"`
		Tokens int64  `json:"tokens"`
	}
}

// GetBalance returns the caller's token balance, creating the account
// with the initial grant on first call.
func (h *TokenHandler) GetBalance(ctx context.Context, input *struct{}) (*GetBalanceOutput, error) {
	userID := getUserID(ctx)
	if userID == "" {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	account, err := h.tokenSvc.EnsureAccount(ctx, userID)
	if err != nil {
		return nil, mapServiceError(err, "failed to get balance")
	}

	out := &GetBalanceOutput{}
	out.Body.UserID = account.UserID
	out.Body.Tokens = account.Tokens
	return out, nil
}

// TransactionItem is one ledger entry in API responses.
type TransactionItem struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Amount       int64  `json:"amount"`
	BalanceAfter int64  `json:"balance_after"`
	Ref          string `json:"ref,omitempty"`
	Description  string `json:"description"`
	CreatedAt    string `json:"created_at"`
}

// GetHistoryInput represents the ledger history request.
type GetHistoryInput struct {
	Limit  int `query:"limit" default:"50" minimum:"1" maximum:"100" doc:"Page size"`
	Offset int `query:"offset" default:"0" minimum:"0" doc:"Page offset"`
}

// GetHistoryOutput represents the ledger history response.
type GetHistoryOutput struct {
	Body struct {
		Transactions []TransactionItem `json:"transactions"`
	}
}

// GetHistory returns the caller's token ledger, newest first.
func (h *TokenHandler) GetHistory(ctx context.Context, input *GetHistoryInput) (*GetHistoryOutput, error) {
	userID := getUserID(ctx)
	if userID == "" {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	txs, err := h.tokenSvc.History(ctx, userID, input.Limit, input.Offset)
	if err != nil {
		return nil, mapServiceError(err, "failed to get history")
	}

	out := &GetHistoryOutput{}
	out.Body.Transactions = toTransactionItems(txs)
	return out, nil
}

func toTransactionItems(txs []*models.TokenTransaction) []TransactionItem {
	items := make([]TransactionItem, 0, len(txs))
	for _, tx := range txs {
		items = append(items, TransactionItem{
			ID:           tx.ID,
			Type:         string(tx.Type),
			Amount:       tx.Amount,
			BalanceAfter: tx.BalanceAfter,
			Ref:          tx.Ref,
			Description:  tx.Description,
			CreatedAt:    tx.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return items
}
