// Package middleware provides HTTP middleware for the ghostnote API.
package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/ghostnote-im/ghostnote-backend/internal/errors"
	"github.com/ghostnote-im/ghostnote-backend/internal/services"
	"github.com/ghostnote-im/ghostnote-backend/internal/session"
	"github.com/labstack/echo/v4"
)

const (
	// SessionCookie is the browser cookie carrying the session token.
	SessionCookie = "gn_session"

	// IdentityIDKey is the echo context key holding the resolved
	// identity ID for the request.
	IdentityIDKey = "identity_id"
)

// IdentityID returns the identity resolved for the request.
func IdentityID(c echo.Context) (int, bool) {
	id, ok := c.Get(IdentityIDKey).(int)
	return id, ok
}

// Session resolves the request's session token to an identity and stores
// the ID in the request context. A request without a usable binding gets
// a fresh identity. A binding whose backing record disappeared is
// recovered under the same ID; if another record claimed the ID in the
// meantime, the binding is cleared and a fresh identity issued instead.
func Session(store *session.Store, identities *services.IdentityService, logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			origin := c.RealIP()

			if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
				token := cookie.Value
				if id, ok := store.Resolve(token); ok {
					if _, err := identities.Get(ctx, id); err == nil {
						c.Set(IdentityIDKey, id)
						return next(c)
					}

					recovered, err := identities.Recover(ctx, id, origin)
					if err == nil {
						if logger != nil {
							logger.Info("identity recovered", slog.Int("id", recovered.ID))
						}
						c.Set(IdentityIDKey, recovered.ID)
						return next(c)
					}
					if !errors.Is(err, apperrors.ErrAlreadyClaimed) {
						return echo.NewHTTPError(http.StatusInternalServerError, "session resolution failed")
					}
					// The old ID now belongs to someone else.
					store.Clear(token)
				}
			}

			identity, err := identities.Issue(ctx, origin)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "identity issuance failed")
			}
			if logger != nil {
				logger.Info("identity issued",
					slog.Int("id", identity.ID),
					slog.String("origin", origin))
			}

			token := store.Bind(identity.ID)
			c.SetCookie(&http.Cookie{
				Name:     SessionCookie,
				Value:    token,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			c.Set(IdentityIDKey, identity.ID)
			return next(c)
		}
	}
}
