package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tenantbase/backend/internal/audit"
	"github.com/tenantbase/backend/internal/config"
	"github.com/tenantbase/backend/internal/models"
	"github.com/tenantbase/backend/internal/session"
	"go.uber.org/zap"
)

const (
	CtxSessionUser  = "session_user"
	CtxSessionToken = "session_token"
)

// SessionAuth resolves the session cookie into a tenant-scoped identity.
// A missing or dead session is rejected with 401 and audited — failed-auth
// visibility is itself a security requirement. Legacy company-named identity
// fields are normalized into the canonical tenant pair here, once, not per
// handler.
func SessionAuth(store session.Store, aud audit.Writer, cfg *config.Config, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(cfg.SessionName)
		var user *session.User
		if token != "" {
			var err error
			user, err = store.Get(c.Context(), token)
			if err != nil {
				log.Warn("session lookup failed", zap.Error(err))
				user = nil
			}
		}

		if user == nil {
			aud.Write(c.Context(), audit.Entry{
				TableName:  "HTTP",
				ActionType: models.ActionError,
				UpdatedValue: map[string]any{
					"status":    fiber.StatusUnauthorized,
					"method":    c.Method(),
					"path":      c.OriginalURL(),
					"ip":        c.IP(),
					"userAgent": c.Get("User-Agent"),
					"message":   "Unauthorized",
				},
			})
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}

		user.Normalize()
		c.Locals(CtxSessionUser, user)
		c.Locals(CtxSessionToken, token)
		return c.Next()
	}
}

// OptionalSession resolves a session if one exists but never rejects; used
// by endpoints that serve both anonymous and authenticated callers (logout,
// first-login password change).
func OptionalSession(store session.Store, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(cfg.SessionName)
		if token != "" {
			if user, err := store.Get(c.Context(), token); err == nil && user != nil {
				user.Normalize()
				c.Locals(CtxSessionUser, user)
			}
			c.Locals(CtxSessionToken, token)
		}
		return c.Next()
	}
}

func GetSessionUser(c *fiber.Ctx) *session.User {
	u, _ := c.Locals(CtxSessionUser).(*session.User)
	return u
}

func GetSessionToken(c *fiber.Ctx) string {
	t, _ := c.Locals(CtxSessionToken).(string)
	return t
}
