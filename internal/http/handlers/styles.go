package handlers

import (
	"context"

	"github.com/editaja/editaja-api/internal/models"
	"github.com/editaja/editaja-api/internal/service"
)

// StyleHandler handles the public style catalog.
type StyleHandler struct {
	styleSvc *service.StyleService
}

// NewStyleHandler creates a new style handler.
func NewStyleHandler(styleSvc *service.StyleService) *StyleHandler {
	return &StyleHandler{styleSvc: styleSvc}
}

// StyleItem is the client-facing catalog entry. The prompt stays
// server-side so the catalog can be cached publicly.
type StyleItem struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	ImageURL  string   `json:"image_url,omitempty"`
	Category  string   `json:"category,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	SortOrder int      `json:"sort_order"`
}

// ListStylesOutput represents the style catalog response.
type ListStylesOutput struct {
	Body struct {
		Styles []StyleItem `json:"styles"`
	}
}

// ListStyles returns the active style catalog, ordered for display.
func (h *StyleHandler) ListStyles(ctx context.Context, input *struct{}) (*ListStylesOutput, error) {
	styles, err := h.styleSvc.ListActive(ctx)
	if err != nil {
		return nil, mapServiceError(err, "failed to list styles")
	}

	out := &ListStylesOutput{}
	out.Body.Styles = make([]StyleItem, 0, len(styles))
	for _, s := range styles {
		out.Body.Styles = append(out.Body.Styles, toStyleItem(s))
	}
	return out, nil
}

func toStyleItem(s *models.Style) StyleItem {
	return StyleItem{
		ID:        s.ID,
		Name:      s.Name,
		ImageURL:  s.ImageURL,
		Category:  s.Category,
		Tags:      s.Tags,
		SortOrder: s.SortOrder,
	}
}
