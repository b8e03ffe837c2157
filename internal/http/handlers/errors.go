package handlers

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/editaja/editaja-api/internal/imagen"
	"github.com/editaja/editaja-api/internal/service"
)

// mapServiceError translates service sentinel errors to HTTP errors.
// Unmatched errors become an opaque 500 so internal detail never leaks.
func mapServiceError(err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrStyleNotFound):
		return huma.Error404NotFound("style not found")
	case errors.Is(err, service.ErrStyleInactive):
		return huma.Error422UnprocessableEntity("style is not available")
	case errors.Is(err, service.ErrInsufficientBalance):
		return huma.Error402PaymentRequired("insufficient token balance")
	case errors.Is(err, service.ErrNoTokenAccount):
		return huma.Error404NotFound("no token account")
	case errors.Is(err, service.ErrQuotaExhausted):
		return huma.Error429TooManyRequests("daily free generation quota exhausted")
	case errors.Is(err, service.ErrNoImagesSaved):
		return huma.Error502BadGateway("generation produced no usable images")
	case errors.Is(err, service.ErrGenerationNotFound):
		return huma.Error404NotFound("generation not found")
	case errors.Is(err, service.ErrNotOwner):
		return huma.Error403Forbidden("not the owner of this resource")
	case errors.Is(err, service.ErrPlanNotFound):
		return huma.Error404NotFound("plan not found")
	case errors.Is(err, service.ErrTopupNotFound):
		return huma.Error404NotFound("topup not found")
	case errors.Is(err, service.ErrAdminNotFound):
		return huma.Error404NotFound("admin not found")
	case errors.Is(err, imagen.ErrNoResults), errors.Is(err, imagen.ErrTaskFailed):
		return huma.Error502BadGateway("image generation failed")
	case errors.Is(err, imagen.ErrPollTimeout):
		return huma.Error504GatewayTimeout("image generation timed out")
	default:
		return huma.Error500InternalServerError(fallback)
	}
}
