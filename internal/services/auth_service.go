package services

import (
	"context"

	"github.com/tenantbase/backend/internal/apperr"
	"github.com/tenantbase/backend/internal/audit"
	"github.com/tenantbase/backend/internal/models"
	"github.com/tenantbase/backend/internal/session"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// CredentialStore is the slice of the user repository the authenticator
// needs. Narrow so tests can swap in a memory fake.
type CredentialStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	UpdatePassword(ctx context.Context, id int64, hash, updatedBy string) error
}

type Outcome int

const (
	OutcomeInvalidCredentials Outcome = iota
	OutcomeMustSetPassword
	OutcomeAuthenticated
)

// LoginResult reports one of three outcomes. Token is set only for
// OutcomeAuthenticated and is always freshly issued.
type LoginResult struct {
	Outcome Outcome
	UserID  int64
	User    *models.User
	Token   string
}

type AuthService struct {
	users      CredentialStore
	sessions   session.Store
	aud        audit.Writer
	bcryptCost int
	log        *zap.Logger
}

func NewAuthService(users CredentialStore, sessions session.Store, aud audit.Writer, bcryptCost int, log *zap.Logger) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{users: users, sessions: sessions, aud: aud, bcryptCost: bcryptCost, log: log}
}

// Login authenticates by email. Unknown email, inactive account, and hash
// mismatch all collapse to InvalidCredentials — responses never reveal which.
// priorToken, if any, is destroyed before the new session is issued so a
// pre-login token can never become an authenticated one.
func (s *AuthService) Login(ctx context.Context, email, password, priorToken string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, apperr.Validation("Email and password required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if user == nil || !user.Active {
		s.auditFailedLogin(ctx, user, email, "unknown or inactive account")
		return &LoginResult{Outcome: OutcomeInvalidCredentials}, nil
	}

	if !user.HasPassword() {
		// First-login flow: no credential yet, no session either.
		s.aud.Write(ctx, audit.Entry{
			UserID:       &user.ID,
			TableName:    "Auth",
			ActionType:   models.ActionLogin,
			TenantID:     &user.TenantID,
			TenantUserID: user.TenantUserID,
			Note:         "password setup required",
			UpdatedValue: map[string]any{"email": email},
		})
		return &LoginResult{Outcome: OutcomeMustSetPassword, UserID: user.ID}, nil
	}

	if bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)) != nil {
		s.auditFailedLogin(ctx, user, email, "password mismatch")
		return &LoginResult{Outcome: OutcomeInvalidCredentials}, nil
	}

	// Session fixation resistance: new token before any identity is stored.
	if priorToken != "" {
		_ = s.sessions.Delete(ctx, priorToken)
	}
	token := session.NewToken()
	sessUser := &session.User{
		UserID:       user.ID,
		Email:        valueOr(user.Email),
		FirstName:    valueOr(user.FirstName),
		LastName:     valueOr(user.LastName),
		TenantID:     user.TenantID,
		TenantUserID: valueOr(user.TenantUserID),
	}
	if err := s.sessions.Set(ctx, token, sessUser); err != nil {
		return nil, apperr.Internal(err)
	}

	s.aud.Write(ctx, audit.Entry{
		UserID:       &user.ID,
		TableName:    "Auth",
		ActionType:   models.ActionLogin,
		TenantID:     &user.TenantID,
		TenantUserID: user.TenantUserID,
		UpdatedValue: map[string]any{"email": valueOr(user.Email)},
	})

	return &LoginResult{Outcome: OutcomeAuthenticated, UserID: user.ID, User: user, Token: token}, nil
}

func (s *AuthService) auditFailedLogin(ctx context.Context, user *models.User, email, reason string) {
	e := audit.Entry{
		TableName:     "Auth",
		ActionType:    models.ActionFailedLogin,
		Note:          reason,
		ExistingValue: map[string]any{"email": email},
	}
	if user != nil {
		e.UserID = &user.ID
		e.TenantID = &user.TenantID
		e.TenantUserID = user.TenantUserID
	}
	s.aud.Write(ctx, e)
}

// Logout destroys the session and audits the event. Succeeds even when the
// token was anonymous or already gone.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	var sessUser *session.User
	if token != "" {
		sessUser, _ = s.sessions.Get(ctx, token)
		_ = s.sessions.Delete(ctx, token)
	}

	e := audit.Entry{
		TableName:  "Auth",
		ActionType: models.ActionLogout,
	}
	if sessUser != nil {
		sessUser.Normalize()
		email := sessUser.Email
		if email == "" {
			if u, err := s.users.GetByID(ctx, sessUser.UserID); err == nil && u != nil {
				email = valueOr(u.Email)
			}
		}
		e.UserID = &sessUser.UserID
		if sessUser.TenantID != "" {
			e.TenantID = &sessUser.TenantID
		}
		if sessUser.TenantUserID != "" {
			e.TenantUserID = &sessUser.TenantUserID
		}
		e.UpdatedValue = map[string]any{"email": email}
	}
	s.aud.Write(ctx, e)
	return nil
}

// ChangePassword sets a new credential. Permitted for the account itself or
// for an account still in the first-login (no credential) state.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, password, password2 string, actor *session.User) error {
	if password == "" || password != password2 {
		return apperr.Validation("Passwords do not match")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return apperr.Internal(err)
	}
	if user == nil {
		return apperr.NotFound("User not found")
	}
	if user.HasPassword() && (actor == nil || actor.UserID != userID) {
		return apperr.Auth("Unauthorized")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return apperr.Internal(err)
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hash), "self"); err != nil {
		return apperr.Internal(err)
	}

	s.aud.Write(ctx, audit.Entry{
		UserID:       &user.ID,
		TableName:    "Users",
		ActionType:   models.ActionPasswordChange,
		TenantID:     &user.TenantID,
		TenantUserID: user.TenantUserID,
		ExistingValue: map[string]any{"Password": audit.MaskToken},
		UpdatedValue:  map[string]any{"Password": audit.MaskToken},
	})
	return nil
}

func valueOr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
