package handlers

import (
	"context"

	"github.com/editaja/editaja-api/internal/models"
	"github.com/editaja/editaja-api/internal/service"
)

// AdminStyleHandler handles catalog management: style CRUD, bulk
// import, the kill switch, and topup plan CRUD.
type AdminStyleHandler struct {
	styleSvc *service.StyleService
	topupSvc *service.TopupService
}

// NewAdminStyleHandler creates a new catalog management handler.
func NewAdminStyleHandler(styleSvc *service.StyleService, topupSvc *service.TopupService) *AdminStyleHandler {
	return &AdminStyleHandler{styleSvc: styleSvc, topupSvc: topupSvc}
}

// AdminStyleItem is the back-office style view, prompt included.
type AdminStyleItem struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Prompt    string   `json:"prompt"`
	ImageURL  string   `json:"image_url,omitempty"`
	Status    string   `json:"status"`
	Category  string   `json:"category,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	SortOrder int      `json:"sort_order"`
}

func toAdminStyleItem(s *models.Style) AdminStyleItem {
	return AdminStyleItem{
		ID:        s.ID,
		Name:      s.Name,
		Prompt:    s.Prompt,
		ImageURL:  s.ImageURL,
		Status:    string(s.Status),
		Category:  s.Category,
		Tags:      s.Tags,
		SortOrder: s.SortOrder,
	}
}

// StyleInput is the write payload shared by create and update.
type StyleInput struct {
	Name      string   `json:"name" minLength:"1" doc:"Display name"`
	Prompt    string   `json:"prompt" minLength:"1" doc:"Prompt sent to the generation API"`
	ImageURL  string   `json:"image_url,omitempty" doc:"Preview image"`
	Category  string   `json:"category,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	SortOrder int      `json:"sort_order,omitempty"`
	Active    bool     `json:"active,omitempty"`
}

func (in *StyleInput) toCreateInput() *service.CreateStyleInput {
	return &service.CreateStyleInput{
		Name:      in.Name,
		Prompt:    in.Prompt,
		ImageURL:  in.ImageURL,
		Category:  in.Category,
		Tags:      in.Tags,
		SortOrder: in.SortOrder,
		Active:    in.Active,
	}
}

// AdminListStylesOutput represents the full catalog response.
type AdminListStylesOutput struct {
	Body struct {
		Styles []AdminStyleItem `json:"styles"`
	}
}

// ListStyles returns the whole catalog, inactive styles included.
func (h *AdminStyleHandler) ListStyles(ctx context.Context, input *struct{}) (*AdminListStylesOutput, error) {
	styles, err := h.styleSvc.ListAll(ctx)
	if err != nil {
		return nil, mapServiceError(err, "failed to list styles")
	}

	out := &AdminListStylesOutput{}
	out.Body.Styles = make([]AdminStyleItem, 0, len(styles))
	for _, s := range styles {
		out.Body.Styles = append(out.Body.Styles, toAdminStyleItem(s))
	}
	return out, nil
}

// CreateStyleInput represents the style creation request.
type CreateStyleInput struct {
	Body StyleInput
}

// CreateStyleOutput represents the style creation response.
type CreateStyleOutput struct {
	Body struct {
		Style AdminStyleItem `json:"style"`
	}
}

// CreateStyle adds one style to the catalog.
func (h *AdminStyleHandler) CreateStyle(ctx context.Context, input *CreateStyleInput) (*CreateStyleOutput, error) {
	style, err := h.styleSvc.Create(ctx, input.Body.toCreateInput())
	if err != nil {
		return nil, mapServiceError(err, "failed to create style")
	}

	out := &CreateStyleOutput{}
	out.Body.Style = toAdminStyleItem(style)
	return out, nil
}

// UpdateStyleInput represents the style update request.
type UpdateStyleInput struct {
	ID   string `path:"id" doc:"Style ID"`
	Body StyleInput
}

// UpdateStyleOutput represents the style update response.
type UpdateStyleOutput struct {
	Body struct {
		Style AdminStyleItem `json:"style"`
	}
}

// UpdateStyle replaces one style's fields.
func (h *AdminStyleHandler) UpdateStyle(ctx context.Context, input *UpdateStyleInput) (*UpdateStyleOutput, error) {
	status := models.StyleInactive
	if input.Body.Active {
		status = models.StyleActive
	}
	style := &models.Style{
		ID:        input.ID,
		Name:      input.Body.Name,
		Prompt:    input.Body.Prompt,
		ImageURL:  input.Body.ImageURL,
		Status:    status,
		Category:  input.Body.Category,
		Tags:      input.Body.Tags,
		SortOrder: input.Body.SortOrder,
	}
	if err := h.styleSvc.Update(ctx, style); err != nil {
		return nil, mapServiceError(err, "failed to update style")
	}

	updated, err := h.styleSvc.Get(ctx, input.ID)
	if err != nil {
		return nil, mapServiceError(err, "failed to read style")
	}

	out := &UpdateStyleOutput{}
	out.Body.Style = toAdminStyleItem(updated)
	return out, nil
}

// DeleteStyleInput represents the style removal request.
type DeleteStyleInput struct {
	ID string `path:"id" doc:"Style ID"`
}

// DeleteStyleOutput represents the style removal response.
type DeleteStyleOutput struct {
	Body struct {
		Deleted bool `json:"deleted"`
	}
}

// DeleteStyle removes one style. History rows keep their style name.
func (h *AdminStyleHandler) DeleteStyle(ctx context.Context, input *DeleteStyleInput) (*DeleteStyleOutput, error) {
	if err := h.styleSvc.Delete(ctx, input.ID); err != nil {
		return nil, mapServiceError(err, "failed to delete style")
	}

	out := &DeleteStyleOutput{}
	out.Body.Deleted = true
	return out, nil
}

// ImportStylesInput represents the bulk import request.
type ImportStylesInput struct {
	Body struct {
		Styles []StyleInput `json:"styles" minItems:"1" doc:"Styles to import"`
	}
}

// ImportStylesOutput represents the bulk import response.
type ImportStylesOutput struct {
	Body struct {
		Created int `json:"created"`
		Skipped int `json:"skipped"`
	}
}

// ImportStyles bulk-loads styles, skipping duplicates by prompt.
func (h *AdminStyleHandler) ImportStyles(ctx context.Context, input *ImportStylesInput) (*ImportStylesOutput, error) {
	inputs := make([]*service.CreateStyleInput, 0, len(input.Body.Styles))
	for i := range input.Body.Styles {
		inputs = append(inputs, input.Body.Styles[i].toCreateInput())
	}

	result, err := h.styleSvc.Import(ctx, inputs)
	if err != nil {
		return nil, mapServiceError(err, "failed to import styles")
	}

	out := &ImportStylesOutput{}
	out.Body.Created = result.Created
	out.Body.Skipped = result.Skipped
	return out, nil
}

// SetAllStylesInput represents the bulk status request.
type SetAllStylesInput struct {
	Body struct {
		Active   bool     `json:"active" doc:"Target status"`
		StyleIDs []string `json:"style_ids,omitempty" doc:"Styles to update. Empty means the whole catalog."`
	}
}

// SetAllStylesOutput represents the bulk status response.
type SetAllStylesOutput struct {
	Body struct {
		Updated int64 `json:"updated"`
	}
}

// SetAllStyles flips a set of styles, or with no IDs the whole
// catalog. The empty form is the kill switch for runaway generation
// costs.
func (h *AdminStyleHandler) SetAllStyles(ctx context.Context, input *SetAllStylesInput) (*SetAllStylesOutput, error) {
	updated, err := h.styleSvc.SetStatusBulk(ctx, input.Body.StyleIDs, input.Body.Active)
	if err != nil {
		return nil, mapServiceError(err, "failed to update styles")
	}

	out := &SetAllStylesOutput{}
	out.Body.Updated = updated
	return out, nil
}

// ========================================
// Topup plans
// ========================================

// AdminPlanItem is the back-office plan view, inactive plans included.
type AdminPlanItem struct {
	PlanItem
	Active bool `json:"active"`
}

// AdminListPlansOutput represents the full plan catalog response.
type AdminListPlansOutput struct {
	Body struct {
		Plans []AdminPlanItem `json:"plans"`
	}
}

// ListPlans returns every topup plan, active or not.
func (h *AdminStyleHandler) ListPlans(ctx context.Context, input *struct{}) (*AdminListPlansOutput, error) {
	plans, err := h.topupSvc.ListPlans(ctx)
	if err != nil {
		return nil, mapServiceError(err, "failed to list plans")
	}

	out := &AdminListPlansOutput{}
	out.Body.Plans = make([]AdminPlanItem, 0, len(plans))
	for _, p := range plans {
		out.Body.Plans = append(out.Body.Plans, toAdminPlanItem(p))
	}
	return out, nil
}

func toAdminPlanItem(p *models.TopupPlan) AdminPlanItem {
	return AdminPlanItem{
		PlanItem: PlanItem{
			ID:        p.ID,
			Name:      p.Name,
			Diamonds:  p.Diamonds,
			Bonus:     p.Bonus,
			Price:     p.Price,
			SortOrder: p.SortOrder,
		},
		Active: p.Active,
	}
}

// PlanInput is the write payload shared by plan create and update.
type PlanInput struct {
	Name      string `json:"name" minLength:"1" doc:"Display name"`
	Diamonds  int64  `json:"diamonds" minimum:"1" doc:"Diamonds granted"`
	Bonus     int64  `json:"bonus,omitempty" minimum:"0" doc:"Bonus diamonds"`
	Price     int64  `json:"price" minimum:"1" doc:"Price in the smallest currency unit"`
	Active    bool   `json:"active,omitempty"`
	SortOrder int    `json:"sort_order,omitempty"`
}

// CreatePlanInput represents the plan creation request.
type CreatePlanInput struct {
	Body PlanInput
}

// CreatePlanOutput represents the plan creation response.
type CreatePlanOutput struct {
	Body struct {
		Plan AdminPlanItem `json:"plan"`
	}
}

// CreatePlan adds a purchasable package.
func (h *AdminStyleHandler) CreatePlan(ctx context.Context, input *CreatePlanInput) (*CreatePlanOutput, error) {
	plan := &models.TopupPlan{
		Name:      input.Body.Name,
		Diamonds:  input.Body.Diamonds,
		Bonus:     input.Body.Bonus,
		Price:     input.Body.Price,
		Active:    input.Body.Active,
		SortOrder: input.Body.SortOrder,
	}
	if err := h.topupSvc.CreatePlan(ctx, plan); err != nil {
		return nil, mapServiceError(err, "failed to create plan")
	}

	out := &CreatePlanOutput{}
	out.Body.Plan = toAdminPlanItem(plan)
	return out, nil
}

// UpdatePlanInput represents the plan update request.
type UpdatePlanInput struct {
	ID   string `path:"id" doc:"Plan ID"`
	Body PlanInput
}

// UpdatePlanOutput represents the plan update response.
type UpdatePlanOutput struct {
	Body struct {
		Plan AdminPlanItem `json:"plan"`
	}
}

// UpdatePlan replaces one plan's fields. Settled purchases keep the
// amounts they were bought with.
func (h *AdminStyleHandler) UpdatePlan(ctx context.Context, input *UpdatePlanInput) (*UpdatePlanOutput, error) {
	plan := &models.TopupPlan{
		ID:        input.ID,
		Name:      input.Body.Name,
		Diamonds:  input.Body.Diamonds,
		Bonus:     input.Body.Bonus,
		Price:     input.Body.Price,
		Active:    input.Body.Active,
		SortOrder: input.Body.SortOrder,
	}
	if err := h.topupSvc.UpdatePlan(ctx, plan); err != nil {
		return nil, mapServiceError(err, "failed to update plan")
	}

	out := &UpdatePlanOutput{}
	out.Body.Plan = toAdminPlanItem(plan)
	return out, nil
}

// DeletePlanInput represents the plan removal request.
type DeletePlanInput struct {
	ID string `path:"id" doc:"Plan ID"`
}

// DeletePlanOutput represents the plan removal response.
type DeletePlanOutput struct {
	Body struct {
		Deleted bool `json:"deleted"`
	}
}

// DeletePlan removes a package from sale.
func (h *AdminStyleHandler) DeletePlan(ctx context.Context, input *DeletePlanInput) (*DeletePlanOutput, error) {
	if err := h.topupSvc.DeletePlan(ctx, input.ID); err != nil {
		return nil, mapServiceError(err, "failed to delete plan")
	}

	out := &DeletePlanOutput{}
	out.Body.Deleted = true
	return out, nil
}
