package handlers

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/editaja/editaja-api/internal/models"
	"github.com/editaja/editaja-api/internal/service"
)

// TopupHandler handles diamond purchase endpoints.
type TopupHandler struct {
	topupSvc *service.TopupService
}

// NewTopupHandler creates a new topup handler.
func NewTopupHandler(topupSvc *service.TopupService) *TopupHandler {
	return &TopupHandler{topupSvc: topupSvc}
}

// PlanItem is one purchasable package in API responses.
type PlanItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Diamonds  int64  `json:"diamonds"`
	Bonus     int64  `json:"bonus,omitempty"`
	Price     int64  `json:"price"`
	SortOrder int    `json:"sort_order"`
}

// ListPlansOutput represents the plan catalog response.
type ListPlansOutput struct {
	Body struct {
		Plans []PlanItem `json:"plans"`
	}
}

// ListPlans returns the active topup packages.
func (h *TopupHandler) ListPlans(ctx context.Context, input *struct{}) (*ListPlansOutput, error) {
	plans, err := h.topupSvc.Plans(ctx)
	if err != nil {
		return nil, mapServiceError(err, "failed to list plans")
	}

	out := &ListPlansOutput{}
	out.Body.Plans = make([]PlanItem, 0, len(plans))
	for _, p := range plans {
		out.Body.Plans = append(out.Body.Plans, PlanItem{
			ID:        p.ID,
			Name:      p.Name,
			Diamonds:  p.Diamonds,
			Bonus:     p.Bonus,
			Price:     p.Price,
			SortOrder: p.SortOrder,
		})
	}
	return out, nil
}

// TopupItem is one purchase in API responses.
type TopupItem struct {
	OrderID     string `json:"order_id"`
	PackageID   string `json:"package_id"`
	Diamonds    int64  `json:"diamonds"`
	Bonus       int64  `json:"bonus,omitempty"`
	Price       int64  `json:"price"`
	Status      string `json:"status"`
	SnapToken   string `json:"snap_token,omitempty"`
	CompletedAt string `json:"completed_at,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func toTopupItem(t *models.TopupTransaction) TopupItem {
	item := TopupItem{
		OrderID:   t.OrderID,
		PackageID: t.PackageID,
		Diamonds:  t.Diamonds,
		Bonus:     t.Bonus,
		Price:     t.Price,
		Status:    string(t.Status),
		SnapToken: t.SnapToken,
		CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339),
	}
	if t.CompletedAt != nil {
		item.CompletedAt = t.CompletedAt.UTC().Format(time.RFC3339)
	}
	return item
}

// CreateTopupInput represents the checkout request.
type CreateTopupInput struct {
	Body struct {
		PlanID string `json:"plan_id" minLength:"1" doc:"Topup plan to purchase"`
	}
}

// CreateTopupOutput represents the checkout response.
type CreateTopupOutput struct {
	Body struct {
		Topup TopupItem `json:"topup"`
	}
}

// CreateTopup starts a checkout session for a plan and returns the
// pending transaction with its payment token.
func (h *TopupHandler) CreateTopup(ctx context.Context, input *CreateTopupInput) (*CreateTopupOutput, error) {
	claims := getUserClaims(ctx)
	if claims == nil {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	topup, err := h.topupSvc.CreateTopup(ctx, claims.UserID, input.Body.PlanID, claims.Email)
	if err != nil {
		return nil, mapServiceError(err, "failed to create topup")
	}

	out := &CreateTopupOutput{}
	out.Body.Topup = toTopupItem(topup)
	return out, nil
}

// GetTopupInput represents the single-topup request.
type GetTopupInput struct {
	OrderID string `path:"orderId" doc:"Topup order ID"`
}

// GetTopupOutput represents the single-topup response.
type GetTopupOutput struct {
	Body struct {
		Topup TopupItem `json:"topup"`
	}
}

// GetTopup returns one of the caller's purchases by order ID.
func (h *TopupHandler) GetTopup(ctx context.Context, input *GetTopupInput) (*GetTopupOutput, error) {
	userID := getUserID(ctx)
	if userID == "" {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	topup, err := h.topupSvc.GetByOrderID(ctx, input.OrderID, userID, isAdmin(ctx))
	if err != nil {
		return nil, mapServiceError(err, "failed to get topup")
	}

	out := &GetTopupOutput{}
	out.Body.Topup = toTopupItem(topup)
	return out, nil
}

// CheckTopupInput represents the status re-check request.
type CheckTopupInput struct {
	OrderID string `path:"orderId" doc:"Topup order ID"`
}

// CheckTopupOutput represents the status re-check response.
type CheckTopupOutput struct {
	Body struct {
		Topup TopupItem `json:"topup"`
	}
}

// CheckTopup asks the payment gateway for the current transaction state
// and applies it. Covers webhooks that never arrived.
func (h *TopupHandler) CheckTopup(ctx context.Context, input *CheckTopupInput) (*CheckTopupOutput, error) {
	userID := getUserID(ctx)
	if userID == "" {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	// Ownership check before touching the gateway.
	if _, err := h.topupSvc.GetByOrderID(ctx, input.OrderID, userID, isAdmin(ctx)); err != nil {
		return nil, mapServiceError(err, "failed to get topup")
	}

	topup, err := h.topupSvc.CheckStatus(ctx, input.OrderID)
	if err != nil {
		return nil, mapServiceError(err, "failed to check topup status")
	}

	out := &CheckTopupOutput{}
	out.Body.Topup = toTopupItem(topup)
	return out, nil
}

// ListTopupsInput represents the purchase history request.
type ListTopupsInput struct {
	Limit  int `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Page size"`
	Offset int `query:"offset" default:"0" minimum:"0" doc:"Page offset"`
}

// ListTopupsOutput represents the purchase history response.
type ListTopupsOutput struct {
	Body struct {
		Topups []TopupItem `json:"topups"`
	}
}

// ListTopups returns the caller's purchase history, newest first.
func (h *TopupHandler) ListTopups(ctx context.Context, input *ListTopupsInput) (*ListTopupsOutput, error) {
	userID := getUserID(ctx)
	if userID == "" {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	topups, err := h.topupSvc.ListForUser(ctx, userID, input.Limit, input.Offset)
	if err != nil {
		return nil, mapServiceError(err, "failed to list topups")
	}

	out := &ListTopupsOutput{}
	out.Body.Topups = make([]TopupItem, 0, len(topups))
	for _, t := range topups {
		out.Body.Topups = append(out.Body.Topups, toTopupItem(t))
	}
	return out, nil
}
