package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tenantbase/backend/internal/http/dto"
	"github.com/tenantbase/backend/internal/middleware"
	"github.com/tenantbase/backend/internal/models"
	"github.com/tenantbase/backend/internal/services"
	"github.com/tenantbase/backend/internal/tenantid"
	"go.uber.org/zap"
)

type TenantHandler struct {
	tenantService *services.TenantService
	log           *zap.Logger
}

func NewTenantHandler(tenantService *services.TenantService, log *zap.Logger) *TenantHandler {
	return &TenantHandler{tenantService: tenantService, log: log}
}

func (h *TenantHandler) List(c *fiber.Ctx) error {
	tenants, err := h.tenantService.List(c.Context())
	if err != nil {
		h.log.Error("list tenants failed", zap.Error(err))
		return respondErr(c, err)
	}
	if tenants == nil {
		tenants = []models.Tenant{}
	}
	return c.JSON(tenants)
}

func (h *TenantHandler) Get(c *fiber.Ctx) error {
	t, err := h.tenantService.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(t)
}

// Create triggers the allocator. Exhaustion gets its own actionable message
// and a conflict status, distinct from a transient 500.
func (h *TenantHandler) Create(c *fiber.Ctx) error {
	var req dto.TenantRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	t, err := h.tenantService.Create(c.Context(), middleware.GetSessionUser(c), req.TenantName)
	if errors.Is(err, tenantid.ErrExhausted) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: tenantid.ExhaustedMessage})
	}
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

func (h *TenantHandler) Update(c *fiber.Ctx) error {
	var req dto.TenantRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	t, err := h.tenantService.Rename(c.Context(), middleware.GetSessionUser(c), c.Params("id"), req.TenantName)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(t)
}
