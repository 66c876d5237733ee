package services

import (
	"context"
	"testing"

	"github.com/tenantbase/backend/internal/apperr"
	"github.com/tenantbase/backend/internal/audit"
	"github.com/tenantbase/backend/internal/models"
	"github.com/tenantbase/backend/internal/repositories"
	"github.com/tenantbase/backend/internal/session"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type memClientStore struct {
	clients map[int64]*models.Client
}

func (m *memClientStore) ListByTenant(_ context.Context, tenantID string) ([]models.Client, error) {
	var out []models.Client
	for _, c := range m.clients {
		if c.TenantID == tenantID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memClientStore) GetByTenant(_ context.Context, tenantID string, id int64) (*models.Client, error) {
	c, ok := m.clients[id]
	if !ok || c.TenantID != tenantID {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *memClientStore) Insert(_ context.Context, c *models.Client) error {
	c.ID = int64(len(m.clients) + 1)
	cp := *c
	m.clients[c.ID] = &cp
	return nil
}

func (m *memClientStore) Update(_ context.Context, tenantID string, id int64, p repositories.ClientPatch) (bool, error) {
	c, ok := m.clients[id]
	if !ok || c.TenantID != tenantID {
		return false, nil
	}
	if p.Phone != nil {
		c.Phone = p.Phone
	}
	return true, nil
}

func TestClientTenantScopingHidesForeignRecords(t *testing.T) {
	store := &memClientStore{clients: map[int64]*models.Client{
		1: {ID: 1, TenantID: "00ab", Email: sp("mine@a.co")},
		2: {ID: 2, TenantID: "99ff", Email: sp("theirs@b.co"), Phone: sp("555-0100")},
	}}
	svc := NewClientService(store, nil, audit.NopWriter{}, bcrypt.MinCost, zap.NewNop())
	actor := &session.User{UserID: 1, TenantID: "00ab"}
	ctx := context.Background()

	if c, err := svc.Get(ctx, actor, 1); err != nil || c == nil {
		t.Fatalf("own record: %v, %v", c, err)
	}

	_, foreignErr := svc.Get(ctx, actor, 2)
	if foreignErr == nil {
		t.Fatal("foreign record must not resolve")
	}
	if apperr.StatusOf(foreignErr) != 404 {
		t.Errorf("foreign Get status = %d, want 404", apperr.StatusOf(foreignErr))
	}
	_, absentErr := svc.Get(ctx, actor, 999)
	if absentErr == nil || foreignErr.Error() != absentErr.Error() {
		t.Errorf("foreign (%v) and absent (%v) must be indistinguishable", foreignErr, absentErr)
	}

	// Foreign update is a 404 and leaves the record untouched.
	_, err := svc.Update(ctx, actor, 2, models.ClientInput{Phone: sp("555-9999")})
	if err == nil || apperr.StatusOf(err) != 404 {
		t.Fatalf("foreign update err = %v", err)
	}
	if *store.clients[2].Phone != "555-0100" {
		t.Error("foreign record was modified")
	}
}
