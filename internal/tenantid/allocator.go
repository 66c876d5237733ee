package tenantid

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/tenantbase/backend/internal/audit"
	"github.com/tenantbase/backend/internal/db"
	"github.com/tenantbase/backend/internal/models"
	"go.uber.org/zap"
)

// MaxAttempts bounds the allocation retry loop. The 16-bit code space makes
// collisions rare; hitting the bound means the space is effectively full.
const MaxAttempts = 100

// ErrExhausted is returned when no free code was found within MaxAttempts.
// It is distinct from transient insert failures, which abort immediately.
var ErrExhausted = errors.New("tenant code space exhausted")

// Source supplies randomness. Injectable so collision and exhaustion paths
// are testable with a deterministic sequence.
type Source interface {
	Draw16() uint16
	Draw32() uint32
}

// CryptoSource draws from crypto/rand.
type CryptoSource struct{}

func (CryptoSource) Draw16() uint16 {
	var b [2]byte
	_, _ = rand.Read(b[:])
	return binary.BigEndian.Uint16(b[:])
}

func (CryptoSource) Draw32() uint32 {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return binary.BigEndian.Uint32(b[:])
}

// TenantInserter is the single store operation the allocator needs. The
// uniqueness constraint behind it is the actual correctness guarantee; the
// retry loop only accommodates collisions, it reserves nothing.
type TenantInserter interface {
	InsertTenant(ctx context.Context, tenantID, tenantName string) error
}

// Actor identifies who requested the allocation, for the audit trail.
type Actor struct {
	UserID       *int64
	TenantID     *string
	TenantUserID *string
}

type Allocator struct {
	src   Source
	store TenantInserter
	aud   audit.Writer
	log   *zap.Logger
}

func NewAllocator(src Source, store TenantInserter, aud audit.Writer, log *zap.Logger) *Allocator {
	return &Allocator{src: src, store: store, aud: aud, log: log}
}

// AllocateTenant draws random 4-hex codes and inserts until one sticks.
// Unique violations redraw; any other insert failure aborts and is reported
// as-is. Both success and exhaustion are audited.
func (a *Allocator) AllocateTenant(ctx context.Context, name string, actor Actor) (models.Tenant, error) {
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		code := fmt.Sprintf("%04x", a.src.Draw16())

		err := a.store.InsertTenant(ctx, code, name)
		if err == nil {
			t := models.Tenant{TenantID: code, TenantName: name}
			a.aud.Write(ctx, audit.Entry{
				UserID:       actor.UserID,
				TableName:    "Tenants",
				ActionType:   models.ActionCreate,
				TenantID:     actor.TenantID,
				TenantUserID: actor.TenantUserID,
				UpdatedValue: t,
			})
			return t, nil
		}
		if db.IsUniqueViolation(err) {
			a.log.Debug("tenant code collision, redrawing",
				zap.String("code", code), zap.Int("attempt", attempt))
			continue
		}
		return models.Tenant{}, err
	}

	a.aud.Write(ctx, audit.Entry{
		UserID:       actor.UserID,
		TableName:    "Tenants",
		ActionType:   models.ActionError,
		TenantID:     actor.TenantID,
		TenantUserID: actor.TenantUserID,
		Note:         ExhaustedMessage,
	})
	return models.Tenant{}, ErrExhausted
}

// ExhaustedMessage is the actionable operator-facing text for allocator
// exhaustion, distinct from a generic failure.
const ExhaustedMessage = "A unique TenantId could not be found after 100 tries. Please contact support for help."

// UserHandle derives the tenant-prefixed unique handle assigned to users and
// clients at creation: "<tenantId>:<8 hex>".
func (a *Allocator) UserHandle(tenantID string) string {
	return fmt.Sprintf("%s:%08x", tenantID, a.src.Draw32())
}
