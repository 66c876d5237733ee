package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/tenantbase/backend/internal/models"
	"github.com/tenantbase/backend/internal/repositories"
	"go.uber.org/zap"
)

// AuditHandler exposes the read side of the audit trail for operators.
type AuditHandler struct {
	auditRepo *repositories.AuditRepo
	log       *zap.Logger
}

func NewAuditHandler(auditRepo *repositories.AuditRepo, log *zap.Logger) *AuditHandler {
	return &AuditHandler{auditRepo: auditRepo, log: log}
}

func (h *AuditHandler) ListRecent(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	records, err := h.auditRepo.ListRecent(c.Context(), limit, offset)
	if err != nil {
		h.log.Error("list audit failed", zap.Error(err))
		return respondErr(c, err)
	}
	if records == nil {
		records = []models.AuditRecord{}
	}
	return c.JSON(records)
}
