package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tenantbase/backend/internal/config"
	"github.com/tenantbase/backend/internal/http/dto"
	"github.com/tenantbase/backend/internal/middleware"
	"github.com/tenantbase/backend/internal/services"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
	log         *zap.Logger
}

func NewAuthHandler(authService *services.AuthService, cfg *config.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, cfg: cfg, log: log}
}

// Login handles POST /api/auth/login. The three outcomes map to: 200 with a
// fresh session cookie, 200 asking for first-login password setup (no
// session), or 401 with one generic message.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	res, err := h.authService.Login(c.Context(), req.Email, req.Password, c.Cookies(h.cfg.SessionName))
	if err != nil {
		return respondErr(c, err)
	}

	switch res.Outcome {
	case services.OutcomeMustSetPassword:
		return c.JSON(dto.ChangePasswordRequiredResponse{ChangePassword: true, UserID: res.UserID})
	case services.OutcomeAuthenticated:
		h.setSessionCookie(c, res.Token)
		redirect := req.RedirectTo
		if redirect == "" {
			redirect = c.Query("redirectTo", h.cfg.LoginRedirectURL)
		}
		return c.JSON(dto.LoginResponse{OK: true, ID: res.UserID, RedirectURL: redirect})
	default:
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Invalid credentials"})
	}
}

// Logout handles GET/POST /api/auth/logout and succeeds even for anonymous
// callers.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.Context(), middleware.GetSessionToken(c)); err != nil {
		return respondErr(c, err)
	}
	h.clearSessionCookie(c)
	return c.JSON(dto.OKResponse{OK: true})
}

// ChangePassword handles PATCH /api/users/:id/password. Reachable without a
// session for the first-login flow; the service enforces that an account
// with a credential can only be changed by itself.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid user id"})
	}

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	actor := middleware.GetSessionUser(c)
	if err := h.authService.ChangePassword(c.Context(), id, req.Password, req.Password2, actor); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.SessionName,
		Value:    token,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.cfg.SessionSecure,
		Expires:  time.Now().Add(h.cfg.SessionTTL),
	})
}

func (h *AuthHandler) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.SessionName,
		Value:    "",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.cfg.SessionSecure,
		Expires:  time.Now().Add(-time.Hour),
	})
}
