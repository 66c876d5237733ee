package services

import (
	"context"
	"testing"
	"time"

	"github.com/tenantbase/backend/internal/audit"
	"github.com/tenantbase/backend/internal/models"
	"github.com/tenantbase/backend/internal/session"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// memCredStore is an in-memory CredentialStore for exercising the login flows
// without a database.
type memCredStore struct {
	users map[int64]*models.User
}

func (m *memCredStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email != nil && *u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memCredStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memCredStore) UpdatePassword(_ context.Context, id int64, hash, _ string) error {
	if u, ok := m.users[id]; ok {
		u.PasswordHash = &hash
	}
	return nil
}

func hashOf(t *testing.T, pw string) *string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	s := string(h)
	return &s
}

func sp(s string) *string { return &s }

func testAuthService(t *testing.T, users map[int64]*models.User) (*AuthService, session.Store) {
	t.Helper()
	sessions := session.NewMemoryStore(time.Minute)
	svc := NewAuthService(&memCredStore{users: users}, sessions, audit.NopWriter{}, bcrypt.MinCost, zap.NewNop())
	return svc, sessions
}

func activeUser(t *testing.T, id int64, email, pw string) *models.User {
	u := &models.User{
		ID:           id,
		TenantID:     "00ab",
		TenantUserID: sp("00ab:deadbeef"),
		Email:        sp(email),
		FirstName:    sp("Test"),
		LastName:     sp("User"),
		Active:       true,
	}
	if pw != "" {
		u.PasswordHash = hashOf(t, pw)
	}
	return u
}

func TestLoginAuthenticated(t *testing.T) {
	svc, sessions := testAuthService(t, map[int64]*models.User{
		1: activeUser(t, 1, "a@b.c", "secret"),
	})

	res, err := svc.Login(context.Background(), "a@b.c", "secret", "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Outcome != OutcomeAuthenticated {
		t.Fatalf("outcome = %v, want Authenticated", res.Outcome)
	}
	if res.Token == "" {
		t.Fatal("expected a session token")
	}

	sess, err := sessions.Get(context.Background(), res.Token)
	if err != nil || sess == nil {
		t.Fatalf("session not stored: %v", err)
	}
	if sess.UserID != 1 || sess.TenantID != "00ab" || sess.TenantUserID != "00ab:deadbeef" {
		t.Errorf("session identity = %+v", sess)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	inactive := activeUser(t, 2, "off@b.c", "secret")
	inactive.Active = false

	svc, _ := testAuthService(t, map[int64]*models.User{
		1: activeUser(t, 1, "a@b.c", "secret"),
		2: inactive,
	})

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "nobody@b.c", "secret"},
		{"inactive account", "off@b.c", "secret"},
		{"wrong password", "a@b.c", "wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Login(context.Background(), tt.email, tt.password, "")
			if err != nil {
				t.Fatalf("Login: %v", err)
			}
			// All three collapse to the same outcome with no token.
			if res.Outcome != OutcomeInvalidCredentials {
				t.Errorf("outcome = %v, want InvalidCredentials", res.Outcome)
			}
			if res.Token != "" {
				t.Error("failed login must not issue a token")
			}
		})
	}
}

func TestLoginMissingFieldsValidation(t *testing.T) {
	svc, _ := testAuthService(t, nil)

	if _, err := svc.Login(context.Background(), "", "pw", ""); err == nil {
		t.Error("expected validation error for empty email")
	}
	if _, err := svc.Login(context.Background(), "a@b.c", "", ""); err == nil {
		t.Error("expected validation error for empty password")
	}
}

func TestLoginFirstLoginMustSetPassword(t *testing.T) {
	svc, sessions := testAuthService(t, map[int64]*models.User{
		1: activeUser(t, 1, "new@b.c", ""),
	})

	res, err := svc.Login(context.Background(), "new@b.c", "anything", "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Outcome != OutcomeMustSetPassword {
		t.Fatalf("outcome = %v, want MustSetPassword", res.Outcome)
	}
	if res.UserID != 1 {
		t.Errorf("UserID = %d, want 1", res.UserID)
	}
	if res.Token != "" {
		t.Error("first-login flow must not issue a session")
	}
	if sess, _ := sessions.Get(context.Background(), res.Token); sess != nil {
		t.Error("no session should exist before the password is set")
	}
}

func TestLoginReplacesPriorToken(t *testing.T) {
	svc, sessions := testAuthService(t, map[int64]*models.User{
		1: activeUser(t, 1, "a@b.c", "secret"),
	})
	ctx := context.Background()

	prior := session.NewToken()
	_ = sessions.Set(ctx, prior, &session.User{UserID: 99})

	res, err := svc.Login(ctx, "a@b.c", "secret", prior)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token == prior {
		t.Fatal("token must be regenerated on login")
	}
	if sess, _ := sessions.Get(ctx, prior); sess != nil {
		t.Error("prior token still resolves after login")
	}
}

func TestLogoutDestroysSession(t *testing.T) {
	svc, sessions := testAuthService(t, map[int64]*models.User{
		1: activeUser(t, 1, "a@b.c", "secret"),
	})
	ctx := context.Background()

	res, _ := svc.Login(ctx, "a@b.c", "secret", "")
	if err := svc.Logout(ctx, res.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if sess, _ := sessions.Get(ctx, res.Token); sess != nil {
		t.Error("session survives logout")
	}

	// Anonymous and repeated logout both succeed.
	if err := svc.Logout(ctx, ""); err != nil {
		t.Errorf("anonymous logout: %v", err)
	}
	if err := svc.Logout(ctx, res.Token); err != nil {
		t.Errorf("repeated logout: %v", err)
	}
}

func TestChangePasswordFirstLogin(t *testing.T) {
	store := &memCredStore{users: map[int64]*models.User{
		1: activeUser(t, 1, "new@b.c", ""),
	}}
	sessions := session.NewMemoryStore(time.Minute)
	svc := NewAuthService(store, sessions, audit.NopWriter{}, bcrypt.MinCost, zap.NewNop())
	ctx := context.Background()

	// No credential yet: anonymous caller may set one.
	if err := svc.ChangePassword(ctx, 1, "newpass", "newpass", nil); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if !store.users[1].HasPassword() {
		t.Fatal("credential not stored")
	}

	// The account can now log in with it.
	res, err := svc.Login(ctx, "new@b.c", "newpass", "")
	if err != nil {
		t.Fatalf("Login after setup: %v", err)
	}
	if res.Outcome != OutcomeAuthenticated {
		t.Errorf("outcome = %v, want Authenticated", res.Outcome)
	}
}

func TestChangePasswordRules(t *testing.T) {
	svc, _ := testAuthService(t, map[int64]*models.User{
		1: activeUser(t, 1, "a@b.c", "current"),
	})
	ctx := context.Background()

	// Mismatched pair.
	if err := svc.ChangePassword(ctx, 1, "one", "two", nil); err == nil {
		t.Error("expected error for mismatched passwords")
	}
	// Empty password.
	if err := svc.ChangePassword(ctx, 1, "", "", nil); err == nil {
		t.Error("expected error for empty password")
	}
	// Credentialed account, anonymous caller.
	if err := svc.ChangePassword(ctx, 1, "newpass", "newpass", nil); err == nil {
		t.Error("anonymous caller must not change an existing credential")
	}
	// Credentialed account, different user.
	other := &session.User{UserID: 2}
	if err := svc.ChangePassword(ctx, 1, "newpass", "newpass", other); err == nil {
		t.Error("another user must not change the credential")
	}
	// Unknown account.
	if err := svc.ChangePassword(ctx, 99, "newpass", "newpass", nil); err == nil {
		t.Error("expected not-found error")
	}
	// The account itself.
	self := &session.User{UserID: 1}
	if err := svc.ChangePassword(ctx, 1, "newpass", "newpass", self); err != nil {
		t.Errorf("self change: %v", err)
	}
}
