package session

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	u := &User{UserID: 7, Email: "a@b.c", TenantID: "00ab", TenantUserID: "00ab:deadbeef"}
	if err := store.Set(ctx, "tok1", u); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := store.Get(ctx, "tok1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("expected stored user")
	}
	if got.UserID != 7 || got.TenantID != "00ab" {
		t.Errorf("got %+v", got)
	}

	// Returned value is a copy; mutating it must not affect the store.
	got.Email = "mutated"
	again, _ := store.Get(ctx, "tok1")
	if again.Email != "a@b.c" {
		t.Error("store entry was mutated through a returned pointer")
	}
}

func TestMemoryStoreUnknownToken(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	u, err := store.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if u != nil {
		t.Errorf("unknown token yielded %+v", u)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(-time.Second) // already expired on write
	ctx := context.Background()

	_ = store.Set(ctx, "tok", &User{UserID: 1})
	u, err := store.Get(ctx, "tok")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if u != nil {
		t.Error("expired session should read as absent")
	}
}

func TestMemoryStoreSweepsAbandonedSessions(t *testing.T) {
	store := NewMemoryStore(-time.Second) // everything expires immediately
	ctx := context.Background()

	_ = store.Set(ctx, "abandoned", &User{UserID: 1})

	// Force the next Set past the sweep guard; the abandoned entry must be
	// purged even though nothing ever reads its token again.
	store.nextSweep = time.Time{}
	_ = store.Set(ctx, "fresh", &User{UserID: 2})

	store.mu.RLock()
	_, ok := store.entries["abandoned"]
	n := len(store.entries)
	store.mu.RUnlock()
	if ok {
		t.Error("expired session survived the write-path sweep")
	}
	if n != 1 {
		t.Errorf("store holds %d entries, want 1", n)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	_ = store.Set(ctx, "tok", &User{UserID: 1})
	if err := store.Delete(ctx, "tok"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if u, _ := store.Get(ctx, "tok"); u != nil {
		t.Error("deleted session still readable")
	}

	// Deleting an absent token is not an error.
	if err := store.Delete(ctx, "never-existed"); err != nil {
		t.Errorf("Delete of absent token: %v", err)
	}
}

func TestNewTokenUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok := NewToken()
		if len(tok) != 32 {
			t.Fatalf("token %q not 32 hex chars", tok)
		}
		if seen[tok] {
			t.Fatalf("duplicate token %q", tok)
		}
		seen[tok] = true
	}
}

func TestNormalizeLegacyFields(t *testing.T) {
	tests := []struct {
		name       string
		in         User
		wantTenant string
		wantHandle string
	}{
		{
			"legacy company pair",
			User{CompanyID: "00ab", CompanyUserID: "00ab:1234abcd"},
			"00ab", "00ab:1234abcd",
		},
		{
			"canonical fields win",
			User{TenantID: "00cd", TenantUserID: "00cd:x", CompanyID: "00ab", CompanyUserID: "00ab:y"},
			"00cd", "00cd:x",
		},
		{
			"nothing to normalize",
			User{TenantID: "00ef"},
			"00ef", "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := tt.in
			u.Normalize()
			if u.TenantID != tt.wantTenant {
				t.Errorf("TenantID = %q, want %q", u.TenantID, tt.wantTenant)
			}
			if u.TenantUserID != tt.wantHandle {
				t.Errorf("TenantUserID = %q, want %q", u.TenantUserID, tt.wantHandle)
			}
		})
	}
}
