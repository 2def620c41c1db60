package handlers

import (
	"errors"

	"github.com/ghostnote-im/ghostnote-backend/internal/api/middleware"
	"github.com/ghostnote-im/ghostnote-backend/internal/api/response"
	apperrors "github.com/ghostnote-im/ghostnote-backend/internal/errors"
	"github.com/ghostnote-im/ghostnote-backend/internal/services"
	"github.com/labstack/echo/v4"
)

// IdentityHandler handles identity-related HTTP requests
type IdentityHandler struct {
	identities *services.IdentityService
}

// NewIdentityHandler creates a new IdentityHandler
func NewIdentityHandler(identities *services.IdentityService) *IdentityHandler {
	return &IdentityHandler{identities: identities}
}

// Get handles GET /api/identity. Returns the session-bound identity.
func (h *IdentityHandler) Get(c echo.Context) error {
	id, ok := middleware.IdentityID(c)
	if !ok {
		return response.Unauthorized(c, "no session identity")
	}

	identity, err := h.identities.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrIdentityNotFound) {
			return response.NotFound(c, "identity not found")
		}
		return response.InternalError(c, "failed to get identity")
	}

	return response.Success(c, identity)
}

// List handles GET /api/identities. Every identity with its online flag.
func (h *IdentityHandler) List(c echo.Context) error {
	presences, err := h.identities.ListAll(c.Request().Context())
	if err != nil {
		return response.InternalError(c, "failed to list identities")
	}
	return response.Success(c, presences)
}

// Touch handles POST /api/identity/touch. Refreshes last-seen.
func (h *IdentityHandler) Touch(c echo.Context) error {
	id, ok := middleware.IdentityID(c)
	if !ok {
		return response.Unauthorized(c, "no session identity")
	}

	if err := h.identities.Touch(c.Request().Context(), id); err != nil {
		if errors.Is(err, apperrors.ErrIdentityNotFound) {
			return response.NotFound(c, "identity not found")
		}
		return response.InternalError(c, "failed to update status")
	}

	return response.Success(c, map[string]bool{"updated": true})
}
