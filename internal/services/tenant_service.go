package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/tenantbase/backend/internal/apperr"
	"github.com/tenantbase/backend/internal/audit"
	"github.com/tenantbase/backend/internal/models"
	"github.com/tenantbase/backend/internal/repositories"
	"github.com/tenantbase/backend/internal/session"
	"github.com/tenantbase/backend/internal/tenantid"
	"go.uber.org/zap"
)

type TenantService struct {
	tenants   *repositories.TenantRepo
	allocator *tenantid.Allocator
	aud       audit.Writer
	log       *zap.Logger
}

func NewTenantService(tenants *repositories.TenantRepo, allocator *tenantid.Allocator, aud audit.Writer, log *zap.Logger) *TenantService {
	return &TenantService{tenants: tenants, allocator: allocator, aud: aud, log: log}
}

func (s *TenantService) List(ctx context.Context) ([]models.Tenant, error) {
	tenants, err := s.tenants.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return tenants, nil
}

func (s *TenantService) Get(ctx context.Context, tenantID string) (*models.Tenant, error) {
	t, err := s.tenants.Get(ctx, tenantID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if t == nil {
		return nil, apperr.NotFound("Tenant not found")
	}
	return t, nil
}

// Create allocates a fresh tenant code; the allocator audits both success
// and exhaustion, so only hard failures are wrapped here.
func (s *TenantService) Create(ctx context.Context, actor *session.User, name string) (models.Tenant, error) {
	if name == "" {
		return models.Tenant{}, apperr.Validation("TenantName is required")
	}
	a := tenantid.Actor{}
	if actor != nil {
		a.UserID = &actor.UserID
		if actor.TenantID != "" {
			a.TenantID = &actor.TenantID
		}
		a.TenantUserID = actorHandlePtr(actor)
	}
	t, err := s.allocator.AllocateTenant(ctx, name, a)
	if errors.Is(err, tenantid.ErrExhausted) {
		return models.Tenant{}, err
	}
	if err != nil {
		return models.Tenant{}, apperr.Internal(err)
	}
	return t, nil
}

func (s *TenantService) Rename(ctx context.Context, actor *session.User, tenantID, name string) (models.Tenant, error) {
	if name == "" {
		return models.Tenant{}, apperr.Validation("TenantName is required")
	}
	ok, err := s.tenants.UpdateName(ctx, tenantID, name)
	if err != nil {
		return models.Tenant{}, apperr.Internal(err)
	}
	if !ok {
		return models.Tenant{}, apperr.NotFound("Tenant not found")
	}

	msg, _ := json.Marshal(models.Tenant{TenantID: tenantID, TenantName: name})
	e := audit.Entry{
		TableName:  "Tenants",
		ActionType: models.ActionUpdate,
		Note:       string(msg),
	}
	if actor != nil {
		e.UserID = &actor.UserID
		if actor.TenantID != "" {
			e.TenantID = &actor.TenantID
		}
		e.TenantUserID = actorHandlePtr(actor)
	}
	s.aud.Write(ctx, e)

	return models.Tenant{TenantID: tenantID, TenantName: name}, nil
}
