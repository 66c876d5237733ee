package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tenantbase/backend/internal/middleware"
	"github.com/tenantbase/backend/internal/services"
	"go.uber.org/zap"
)

// ProfileHandler serves the current user's header/avatar data.
type ProfileHandler struct {
	userService *services.UserService
	log         *zap.Logger
}

func NewProfileHandler(userService *services.UserService, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{userService: userService, log: log}
}

func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	u, err := h.userService.Me(c.Context(), middleware.GetSessionUser(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{
		"Id":        u.ID,
		"FirstName": u.FirstName,
		"LastName":  u.LastName,
		"Email":     u.Email,
		"Active":    u.Active,
		"Photo":     u.Photo,
	})
}
