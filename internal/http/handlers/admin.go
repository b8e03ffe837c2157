package handlers

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/editaja/editaja-api/internal/models"
	"github.com/editaja/editaja-api/internal/service"
)

// AdminHandler handles back-office endpoints: token accounting,
// topup oversight, the admin allowlist, and runtime settings.
type AdminHandler struct {
	tokenSvc    *service.TokenService
	topupSvc    *service.TopupService
	adminSvc    *service.AdminService
	settingsSvc *service.SettingsService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(tokenSvc *service.TokenService, topupSvc *service.TopupService, adminSvc *service.AdminService, settingsSvc *service.SettingsService) *AdminHandler {
	return &AdminHandler{
		tokenSvc:    tokenSvc,
		topupSvc:    topupSvc,
		adminSvc:    adminSvc,
		settingsSvc: settingsSvc,
	}
}

// ========================================
// Token accounting
// ========================================

// AdjustTokensInput represents a signed balance adjustment.
type AdjustTokensInput struct {
	UserID string `path:"userId" doc:"User to adjust"`
	Body   struct {
		Delta  int64  `json:"delta" doc:"Signed token delta"`
		Reason string `json:"reason" minLength:"1" doc:"Audit trail reason"`
	}
}

// AdjustTokensOutput represents the adjustment response.
type AdjustTokensOutput struct {
	Body struct {
		UserID string `json:"user_id"`
		Tokens int64  `json:"tokens"`
	}
}

// AdjustTokens applies a signed delta to a user's balance.
func (h *AdminHandler) AdjustTokens(ctx context.Context, input *AdjustTokensInput) (*AdjustTokensOutput, error) {
	adminID := getUserID(ctx)
	if err := h.tokenSvc.Adjust(ctx, input.UserID, input.Body.Delta, adminID, input.Body.Reason); err != nil {
		return nil, mapServiceError(err, "failed to adjust tokens")
	}

	account, err := h.tokenSvc.GetBalance(ctx, input.UserID)
	if err != nil {
		return nil, mapServiceError(err, "failed to read balance")
	}

	out := &AdjustTokensOutput{}
	out.Body.UserID = account.UserID
	out.Body.Tokens = account.Tokens
	return out, nil
}

// SetTokensInput represents a balance overwrite.
type SetTokensInput struct {
	UserID string `path:"userId" doc:"User to overwrite"`
	Body   struct {
		Tokens int64  `json:"tokens" minimum:"0" doc:"New balance"`
		Reason string `json:"reason" minLength:"1" doc:"Audit trail reason"`
	}
}

// SetTokensOutput represents the overwrite response.
type SetTokensOutput struct {
	Body struct {
		UserID string `json:"user_id"`
		Tokens int64  `json:"tokens"`
	}
}

// SetTokens overwrites a user's balance. The sanctioned path for
// support corrections; every call leaves a ledger row.
func (h *AdminHandler) SetTokens(ctx context.Context, input *SetTokensInput) (*SetTokensOutput, error) {
	adminID := getUserID(ctx)
	if err := h.tokenSvc.SetBalance(ctx, input.UserID, input.Body.Tokens, adminID, input.Body.Reason); err != nil {
		return nil, mapServiceError(err, "failed to set tokens")
	}

	out := &SetTokensOutput{}
	out.Body.UserID = input.UserID
	out.Body.Tokens = input.Body.Tokens
	return out, nil
}

// GetUserTokensInput represents a balance lookup.
type GetUserTokensInput struct {
	UserID string `path:"userId" doc:"User to inspect"`
}

// GetUserTokensOutput represents the lookup response.
type GetUserTokensOutput struct {
	Body struct {
		UserID       string            `json:"user_id"`
		Tokens       int64             `json:"tokens"`
		Transactions []TransactionItem `json:"transactions"`
	}
}

// GetUserTokens returns a user's balance and recent ledger.
func (h *AdminHandler) GetUserTokens(ctx context.Context, input *GetUserTokensInput) (*GetUserTokensOutput, error) {
	account, err := h.tokenSvc.GetBalance(ctx, input.UserID)
	if err != nil {
		return nil, mapServiceError(err, "failed to read balance")
	}

	txs, err := h.tokenSvc.History(ctx, input.UserID, 50, 0)
	if err != nil {
		return nil, mapServiceError(err, "failed to read history")
	}

	out := &GetUserTokensOutput{}
	out.Body.UserID = account.UserID
	out.Body.Tokens = account.Tokens
	out.Body.Transactions = toTransactionItems(txs)
	return out, nil
}

// ========================================
// Topup oversight
// ========================================

// AdminListTopupsInput represents the back-office topup listing request.
type AdminListTopupsInput struct {
	Status string `query:"status" enum:",pending,settlement,expire,cancel,deny,refund" doc:"Filter by status"`
	Limit  int    `query:"limit" default:"50" minimum:"1" maximum:"200" doc:"Page size"`
	Offset int    `query:"offset" default:"0" minimum:"0" doc:"Page offset"`
}

// AdminTopupItem extends the user view with the owning user.
type AdminTopupItem struct {
	TopupItem
	UserID string `json:"user_id"`
}

// AdminListTopupsOutput represents the back-office topup listing.
type AdminListTopupsOutput struct {
	Body struct {
		Topups []AdminTopupItem `json:"topups"`
	}
}

// ListTopups returns all purchases, optionally filtered by status.
func (h *AdminHandler) ListTopups(ctx context.Context, input *AdminListTopupsInput) (*AdminListTopupsOutput, error) {
	topups, err := h.topupSvc.List(ctx, models.TopupStatus(input.Status), input.Limit, input.Offset)
	if err != nil {
		return nil, mapServiceError(err, "failed to list topups")
	}

	out := &AdminListTopupsOutput{}
	out.Body.Topups = make([]AdminTopupItem, 0, len(topups))
	for _, t := range topups {
		out.Body.Topups = append(out.Body.Topups, AdminTopupItem{
			TopupItem: toTopupItem(t),
			UserID:    t.UserID,
		})
	}
	return out, nil
}

// ManualSettleInput represents the manual settlement request.
type ManualSettleInput struct {
	OrderID string `path:"orderId" doc:"Topup order ID"`
}

// ManualSettleOutput represents the manual settlement response.
type ManualSettleOutput struct {
	Body struct {
		Settled bool `json:"settled"`
	}
}

// ManualSettle settles one order by hand after checking the payment out
// of band. Replays are safe.
func (h *AdminHandler) ManualSettle(ctx context.Context, input *ManualSettleInput) (*ManualSettleOutput, error) {
	adminID := getUserID(ctx)
	if err := h.topupSvc.ManualSettle(ctx, input.OrderID, adminID); err != nil {
		return nil, mapServiceError(err, "failed to settle topup")
	}

	out := &ManualSettleOutput{}
	out.Body.Settled = true
	return out, nil
}

// ========================================
// Admin allowlist
// ========================================

// AdminItem is one allowlist entry in API responses.
type AdminItem struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email,omitempty"`
	AddedBy   string `json:"added_by,omitempty"`
	CreatedAt string `json:"created_at"`
}

// ListAdminsOutput represents the allowlist response.
type ListAdminsOutput struct {
	Body struct {
		Admins []AdminItem `json:"admins"`
	}
}

// ListAdmins returns the admin allowlist.
func (h *AdminHandler) ListAdmins(ctx context.Context, input *struct{}) (*ListAdminsOutput, error) {
	admins, err := h.adminSvc.List(ctx)
	if err != nil {
		return nil, mapServiceError(err, "failed to list admins")
	}

	out := &ListAdminsOutput{}
	out.Body.Admins = make([]AdminItem, 0, len(admins))
	for _, a := range admins {
		out.Body.Admins = append(out.Body.Admins, AdminItem{
			UserID:    a.UserID,
			Email:     a.Email,
			AddedBy:   a.AddedBy,
			CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out, nil
}

// AddAdminInput represents the allowlist addition request.
type AddAdminInput struct {
	Body struct {
		UserID string `json:"user_id" minLength:"1" doc:"User to promote"`
		Email  string `json:"email,omitempty" doc:"Email for the audit trail"`
	}
}

// AddAdminOutput represents the allowlist addition response.
type AddAdminOutput struct {
	Body struct {
		Admin AdminItem `json:"admin"`
	}
}

// AddAdmin promotes a user. Idempotent.
func (h *AdminHandler) AddAdmin(ctx context.Context, input *AddAdminInput) (*AddAdminOutput, error) {
	adminID := getUserID(ctx)
	admin, err := h.adminSvc.Add(ctx, input.Body.UserID, input.Body.Email, adminID)
	if err != nil {
		return nil, mapServiceError(err, "failed to add admin")
	}

	out := &AddAdminOutput{}
	out.Body.Admin = AdminItem{
		UserID:    admin.UserID,
		Email:     admin.Email,
		AddedBy:   admin.AddedBy,
		CreatedAt: admin.CreatedAt.UTC().Format(time.RFC3339),
	}
	return out, nil
}

// RemoveAdminInput represents the allowlist removal request.
type RemoveAdminInput struct {
	UserID string `path:"userId" doc:"User to demote"`
}

// RemoveAdminOutput represents the allowlist removal response.
type RemoveAdminOutput struct {
	Body struct {
		Removed bool `json:"removed"`
	}
}

// RemoveAdmin demotes a user. Takes effect on their next request.
func (h *AdminHandler) RemoveAdmin(ctx context.Context, input *RemoveAdminInput) (*RemoveAdminOutput, error) {
	if input.UserID == getUserID(ctx) {
		return nil, huma.Error422UnprocessableEntity("cannot remove yourself")
	}

	adminID := getUserID(ctx)
	if err := h.adminSvc.Remove(ctx, input.UserID, adminID); err != nil {
		return nil, mapServiceError(err, "failed to remove admin")
	}

	out := &RemoveAdminOutput{}
	out.Body.Removed = true
	return out, nil
}

// ========================================
// Runtime settings
// ========================================

// SettingItem is one runtime setting in API responses. Secret values
// are masked.
type SettingItem struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	IsSecret  bool   `json:"is_secret"`
	UpdatedBy string `json:"updated_by,omitempty"`
	UpdatedAt string `json:"updated_at"`
}

// ListSettingsOutput represents the settings listing response.
type ListSettingsOutput struct {
	Body struct {
		Settings []SettingItem `json:"settings"`
	}
}

// ListSettings returns all runtime settings with secrets masked.
func (h *AdminHandler) ListSettings(ctx context.Context, input *struct{}) (*ListSettingsOutput, error) {
	settings, err := h.settingsSvc.List(ctx)
	if err != nil {
		return nil, mapServiceError(err, "failed to list settings")
	}

	out := &ListSettingsOutput{}
	out.Body.Settings = make([]SettingItem, 0, len(settings))
	for _, s := range settings {
		out.Body.Settings = append(out.Body.Settings, SettingItem{
			Key:       s.Key,
			Value:     s.Value,
			IsSecret:  s.IsSecret,
			UpdatedBy: s.UpdatedBy,
			UpdatedAt: s.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out, nil
}

// SetSettingInput represents the setting upsert request.
type SetSettingInput struct {
	Key  string `path:"key" doc:"Setting key"`
	Body struct {
		Value  string `json:"value" doc:"Setting value"`
		Secret bool   `json:"secret,omitempty" doc:"Encrypt the value at rest"`
	}
}

// SetSettingOutput represents the setting upsert response.
type SetSettingOutput struct {
	Body struct {
		Key string `json:"key"`
	}
}

// SetSetting writes one runtime setting, overriding the environment
// default from the next use onward.
func (h *AdminHandler) SetSetting(ctx context.Context, input *SetSettingInput) (*SetSettingOutput, error) {
	adminID := getUserID(ctx)
	if err := h.settingsSvc.Set(ctx, input.Key, input.Body.Value, input.Body.Secret, adminID); err != nil {
		return nil, mapServiceError(err, "failed to set setting")
	}

	out := &SetSettingOutput{}
	out.Body.Key = input.Key
	return out, nil
}

// DeleteSettingInput represents the setting removal request.
type DeleteSettingInput struct {
	Key string `path:"key" doc:"Setting key"`
}

// DeleteSettingOutput represents the setting removal response.
type DeleteSettingOutput struct {
	Body struct {
		Deleted bool `json:"deleted"`
	}
}

// DeleteSetting removes an override, reverting to the environment
// default.
func (h *AdminHandler) DeleteSetting(ctx context.Context, input *DeleteSettingInput) (*DeleteSettingOutput, error) {
	if err := h.settingsSvc.Delete(ctx, input.Key); err != nil {
		return nil, mapServiceError(err, "failed to delete setting")
	}

	out := &DeleteSettingOutput{}
	out.Body.Deleted = true
	return out, nil
}
