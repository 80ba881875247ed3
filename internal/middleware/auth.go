package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/evgenyq/kitesafari-booking/internal/auth"
)

// Context keys under which the identity middleware stores the verified
// caller.  Handlers read these with c.Get().
const (
	ContextTelegramID = "telegram_id"     // int64
	ContextHandle     = "telegram_handle" // string, may be empty
	ContextIsAdmin    = "is_admin"        // bool
)

// InitDataHeader carries Telegram WebApp initData from mini-app clients.
const InitDataHeader = "X-Telegram-Init-Data"

// AdminChecker answers whether a Telegram account is an administrator.
// It is satisfied by repository.AdminRepo.
type AdminChecker interface {
	IsAdmin(ctx context.Context, telegramID int64) (bool, error)
}

// Identity returns an Echo middleware that authenticates the caller and
// injects the verified identity into the request context.  Two
// credential kinds are accepted: a Bearer service token (bot/backoffice)
// and Telegram WebApp initData from the mini-app.  Admin status is
// resolved once here; admin lookups that error are treated as "not an
// admin" so the override path fails closed.
func Identity(verifier *auth.TelegramVerifier, jwtSecret string, admins AdminChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, err := resolveIdentity(c, verifier, jwtSecret)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success":    false,
					"error":      "authentication failed",
					"error_code": "AUTH_ERROR",
				})
			}

			isAdmin := false
			if admins != nil {
				ok, aerr := admins.IsAdmin(c.Request().Context(), identity.TelegramID)
				if aerr != nil {
					log.Printf("auth: admin lookup for %d failed: %v", identity.TelegramID, aerr)
				} else {
					isAdmin = ok
				}
			}

			c.Set(ContextTelegramID, identity.TelegramID)
			c.Set(ContextHandle, identity.Username)
			c.Set(ContextIsAdmin, isAdmin)
			return next(c)
		}
	}
}

func resolveIdentity(c echo.Context, verifier *auth.TelegramVerifier, jwtSecret string) (*auth.Identity, error) {
	if h := c.Request().Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return auth.ParseServiceToken(jwtSecret, strings.TrimPrefix(h, "Bearer "))
	}
	return verifier.Verify(c.Request().Header.Get(InitDataHeader))
}

// RequireAdmin returns a middleware that aborts the request with 403
// unless the identity middleware marked the caller as an administrator.
// It must run after Identity.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			isAdmin, ok := c.Get(ContextIsAdmin).(bool)
			if !ok || !isAdmin {
				return c.JSON(http.StatusForbidden, echo.Map{
					"success":    false,
					"error":      "admin privileges required",
					"error_code": "FORBIDDEN",
				})
			}
			return next(c)
		}
	}
}
