package tenantid

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tenantbase/backend/internal/audit"
	"go.uber.org/zap"
)

// seqSource replays a fixed sequence of draws.
type seqSource struct {
	vals16 []uint16
	vals32 []uint32
	i16    int
	i32    int
}

func (s *seqSource) Draw16() uint16 {
	v := s.vals16[s.i16%len(s.vals16)]
	s.i16++
	return v
}

func (s *seqSource) Draw32() uint32 {
	v := s.vals32[s.i32%len(s.vals32)]
	s.i32++
	return v
}

// fakeInserter reports a unique violation for codes already taken and records
// what eventually stuck.
type fakeInserter struct {
	taken    map[string]bool
	inserted []string
	hardErr  error
}

func (f *fakeInserter) InsertTenant(_ context.Context, tenantID, _ string) error {
	if f.hardErr != nil {
		return f.hardErr
	}
	if f.taken[tenantID] {
		return &pgconn.PgError{Code: "23505", ConstraintName: "tenants_pkey"}
	}
	f.inserted = append(f.inserted, tenantID)
	return nil
}

func newAllocator(src Source, store TenantInserter) *Allocator {
	return NewAllocator(src, store, audit.NopWriter{}, zap.NewNop())
}

func TestAllocateTenantFirstDrawFree(t *testing.T) {
	src := &seqSource{vals16: []uint16{0x00ab}, vals32: []uint32{0}}
	store := &fakeInserter{taken: map[string]bool{}}

	tenant, err := newAllocator(src, store).AllocateTenant(context.Background(), "Acme", Actor{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tenant.TenantID != "00ab" {
		t.Errorf("TenantID = %q, want 00ab", tenant.TenantID)
	}
	if tenant.TenantName != "Acme" {
		t.Errorf("TenantName = %q, want Acme", tenant.TenantName)
	}
}

func TestAllocateTenantRetriesOnCollision(t *testing.T) {
	src := &seqSource{vals16: []uint16{0x0001, 0x0002, 0x0003}, vals32: []uint32{0}}
	store := &fakeInserter{taken: map[string]bool{"0001": true, "0002": true}}

	tenant, err := newAllocator(src, store).AllocateTenant(context.Background(), "Acme", Actor{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tenant.TenantID != "0003" {
		t.Errorf("TenantID = %q, want 0003 after two collisions", tenant.TenantID)
	}
	if len(store.inserted) != 1 {
		t.Errorf("inserted %d rows, want 1", len(store.inserted))
	}
}

func TestAllocateTenantExhaustion(t *testing.T) {
	// Every draw yields the same taken code.
	src := &seqSource{vals16: []uint16{0x00ff}, vals32: []uint32{0}}
	store := &fakeInserter{taken: map[string]bool{"00ff": true}}

	_, err := newAllocator(src, store).AllocateTenant(context.Background(), "Acme", Actor{})
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
	if len(store.inserted) != 0 {
		t.Errorf("exhaustion should insert nothing, got %v", store.inserted)
	}
}

func TestAllocateTenantHardErrorAborts(t *testing.T) {
	src := &seqSource{vals16: []uint16{0x0001}, vals32: []uint32{0}}
	hard := fmt.Errorf("connection refused")
	store := &fakeInserter{hardErr: hard}

	_, err := newAllocator(src, store).AllocateTenant(context.Background(), "Acme", Actor{})
	if !errors.Is(err, hard) {
		t.Fatalf("expected hard error passed through, got %v", err)
	}
	if errors.Is(err, ErrExhausted) {
		t.Error("hard error must not masquerade as exhaustion")
	}
}

func TestAllocateTenantCodeFormat(t *testing.T) {
	// Low values must be zero-padded to four hex digits.
	src := &seqSource{vals16: []uint16{0x0007}, vals32: []uint32{0}}
	store := &fakeInserter{taken: map[string]bool{}}

	tenant, err := newAllocator(src, store).AllocateTenant(context.Background(), "Acme", Actor{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tenant.TenantID) != 4 {
		t.Errorf("TenantID %q not 4 chars", tenant.TenantID)
	}
	if tenant.TenantID != "0007" {
		t.Errorf("TenantID = %q, want 0007", tenant.TenantID)
	}
}

func TestUserHandleFormat(t *testing.T) {
	src := &seqSource{vals16: []uint16{0}, vals32: []uint32{0xdeadbeef, 0x0000002a}}
	a := newAllocator(src, &fakeInserter{})

	h := a.UserHandle("00ab")
	if h != "00ab:deadbeef" {
		t.Errorf("UserHandle = %q, want 00ab:deadbeef", h)
	}

	h = a.UserHandle("00ab")
	if h != "00ab:0000002a" {
		t.Errorf("UserHandle = %q, want zero-padded 00ab:0000002a", h)
	}
	if !strings.HasPrefix(h, "00ab:") {
		t.Errorf("handle %q missing tenant prefix", h)
	}
}
