package middleware

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/tenantbase/backend/internal/audit"
	"github.com/tenantbase/backend/internal/models"
)

var sensitiveKeys = map[string]bool{
	"password":      true,
	"password2":     true,
	"pwd":           true,
	"pass":          true,
	"token":         true,
	"authorization": true,
	"auth":          true,
}

// ErrorAudit records server-side failures (>=500) in the audit trail with the
// acting identity when a session resolved earlier in the chain. Request
// bodies are redacted before they touch the audit table.
func ErrorAudit(aud audit.Writer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		if status < fiber.StatusInternalServerError {
			return err
		}

		payload := map[string]any{
			"status":    status,
			"method":    c.Method(),
			"path":      c.OriginalURL(),
			"ip":        c.IP(),
			"userAgent": c.Get("User-Agent"),
		}
		if err != nil {
			payload["message"] = err.Error()
		}
		if body := redactedBody(c.Body()); body != nil {
			payload["body"] = body
		}

		entry := audit.Entry{
			TableName:    "HTTP",
			ActionType:   models.ActionError,
			UpdatedValue: payload,
		}
		if u := GetSessionUser(c); u != nil {
			entry.UserID = &u.UserID
			if u.TenantID != "" {
				entry.TenantID = &u.TenantID
			}
			if u.TenantUserID != "" {
				entry.TenantUserID = &u.TenantUserID
			}
		}
		aud.Write(c.Context(), entry)

		return err
	}
}

func redactedBody(raw []byte) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var body map[string]any
	if json.Unmarshal(raw, &body) != nil {
		return nil
	}
	for k := range body {
		if sensitiveKeys[strings.ToLower(k)] {
			body[k] = "[redacted]"
		}
	}
	return body
}
