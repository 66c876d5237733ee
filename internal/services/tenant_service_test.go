package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tenantbase/backend/internal/apperr"
	"github.com/tenantbase/backend/internal/audit"
	"github.com/tenantbase/backend/internal/tenantid"
	"go.uber.org/zap"
)

type fixedSource struct{}

func (fixedSource) Draw16() uint16 { return 0x00ff }
func (fixedSource) Draw32() uint32 { return 0 }

// collidingInserter reports every code as taken.
type collidingInserter struct{}

func (collidingInserter) InsertTenant(context.Context, string, string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: "tenants_pkey"}
}

func TestTenantCreateExhaustionPassesSentinelThrough(t *testing.T) {
	allocator := tenantid.NewAllocator(fixedSource{}, collidingInserter{}, audit.NopWriter{}, zap.NewNop())
	svc := NewTenantService(nil, allocator, audit.NopWriter{}, zap.NewNop())

	_, err := svc.Create(context.Background(), nil, "Acme")
	if !errors.Is(err, tenantid.ErrExhausted) {
		t.Fatalf("expected ErrExhausted through the service, got %v", err)
	}
	// The sentinel must not be re-wrapped as a plain 500.
	if apperr.StatusOf(err) == 500 {
		var e *apperr.Error
		if errors.As(err, &e) {
			t.Error("exhaustion was wrapped as an internal error")
		}
	}
}

func TestTenantCreateRequiresName(t *testing.T) {
	svc := NewTenantService(nil, nil, audit.NopWriter{}, zap.NewNop())

	_, err := svc.Create(context.Background(), nil, "")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if apperr.StatusOf(err) != 400 {
		t.Errorf("status = %d, want 400", apperr.StatusOf(err))
	}
}
