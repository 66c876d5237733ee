package services

import (
	"context"
	"time"

	"github.com/tenantbase/backend/internal/apperr"
	"github.com/tenantbase/backend/internal/audit"
	"github.com/tenantbase/backend/internal/db"
	"github.com/tenantbase/backend/internal/models"
	"github.com/tenantbase/backend/internal/repositories"
	"github.com/tenantbase/backend/internal/session"
	"github.com/tenantbase/backend/internal/tenantid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the tenant-scoped slice of the user repository the service
// needs. Narrow so tests can swap in a memory fake.
type UserStore interface {
	ListByTenant(ctx context.Context, tenantID string) ([]models.User, error)
	GetByTenant(ctx context.Context, tenantID string, id int64) (*models.User, error)
	Insert(ctx context.Context, u *models.User) error
	Update(ctx context.Context, tenantID string, id int64, p repositories.UserPatch) (bool, error)
	Delete(ctx context.Context, tenantID string, id int64) (bool, error)
}

type UserService struct {
	users      UserStore
	handles    *tenantid.Allocator
	aud        audit.Writer
	bcryptCost int
	log        *zap.Logger
}

func NewUserService(users UserStore, handles *tenantid.Allocator, aud audit.Writer, bcryptCost int, log *zap.Logger) *UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{users: users, handles: handles, aud: aud, bcryptCost: bcryptCost, log: log}
}

func (s *UserService) List(ctx context.Context, actor *session.User) ([]models.User, error) {
	users, err := s.users.ListByTenant(ctx, actor.TenantID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, actor *session.User, id int64) (*models.User, error) {
	u, err := s.users.GetByTenant(ctx, actor.TenantID, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if u == nil {
		return nil, apperr.NotFound("User not found")
	}
	return u, nil
}

func (s *UserService) Me(ctx context.Context, actor *session.User) (*models.User, error) {
	return s.Get(ctx, actor, actor.UserID)
}

func (s *UserService) Create(ctx context.Context, actor *session.User, in models.UserInput) (*models.User, error) {
	if strEmpty(in.FirstName) || strEmpty(in.LastName) || strEmpty(in.Email) {
		return nil, apperr.Validation("First name, last name and email are required")
	}
	if err := checkPasswordPair(in.Password, in.Password2); err != nil {
		return nil, err
	}

	now := time.Now()
	u := &models.User{
		TenantID:    actor.TenantID,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		Comments:    in.Comments,
		Photo:       in.Photo,
		Active:      in.Active != nil && bool(*in.Active),
		CreatedBy:   strPtr(actorHandle(actor)),
		CreatedDate: &now,
	}
	if !strEmpty(in.Password) {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), s.bcryptCost)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		u.PasswordHash = strPtr(string(hash))
	}

	// The derived handle shares the allocator's collision model: the unique
	// constraint decides, a redraw accommodates the loser.
	var insertErr error
	for attempt := 0; attempt < tenantid.MaxAttempts; attempt++ {
		handle := s.handles.UserHandle(actor.TenantID)
		u.TenantUserID = &handle
		insertErr = s.users.Insert(ctx, u)
		if insertErr == nil {
			break
		}
		if db.IsUniqueViolation(insertErr) && db.ConstraintOf(insertErr) == "users_tenant_user_id_key" {
			continue
		}
		if db.IsUniqueViolation(insertErr) {
			return nil, apperr.Conflict("Email already in use")
		}
		return nil, apperr.Internal(insertErr)
	}
	if insertErr != nil {
		return nil, apperr.Internal(insertErr)
	}

	created := map[string]any{
		"FirstName": valueOr(in.FirstName),
		"LastName":  valueOr(in.LastName),
		"Email":     valueOr(in.Email),
		"Active":    boolBit(u.Active),
	}
	if in.Comments != nil {
		created["Comments"] = *in.Comments
	}
	if !strEmpty(in.Password) {
		created["Password"] = audit.MaskToken
	}
	s.aud.Write(ctx, audit.Entry{
		UserID:       &actor.UserID,
		TableName:    "Users",
		ActionType:   models.ActionCreate,
		TenantID:     &actor.TenantID,
		TenantUserID: actorHandlePtr(actor),
		UpdatedValue: created,
		EntityID:     &u.ID,
	})

	return u, nil
}

// Update applies merge semantics: only fields present in the input are
// considered, and an update where nothing differs is a no-op reporting zero
// changed fields.
func (s *UserService) Update(ctx context.Context, actor *session.User, id int64, in models.UserInput) (int, error) {
	existing, err := s.users.GetByTenant(ctx, actor.TenantID, id)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	if existing == nil {
		return 0, apperr.NotFound("User not found")
	}
	if err := checkPasswordPair(in.Password, in.Password2); err != nil {
		return 0, err
	}

	before := audit.Snapshot{}
	after := audit.Snapshot{}
	snapText(before, after, "FirstName", existing.FirstName, in.FirstName)
	snapText(before, after, "LastName", existing.LastName, in.LastName)
	snapText(before, after, "Email", existing.Email, in.Email)
	snapText(before, after, "Comments", existing.Comments, in.Comments)
	snapText(before, after, "Photo", existing.Photo, in.Photo)
	if in.Active != nil {
		before["Active"] = audit.Bit(existing.Active)
		after["Active"] = audit.Bit(bool(*in.Active))
	}
	changes := audit.Diff(before, after)

	hasPassword := !strEmpty(in.Password)
	if len(changes) == 0 && !hasPassword {
		return 0, nil
	}

	patch := repositories.UserPatch{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		Comments:    in.Comments,
		Photo:       in.Photo,
		UpdatedBy:   actorHandle(actor),
		UpdatedDate: time.Now(),
	}
	if in.Active != nil {
		b := bool(*in.Active)
		patch.Active = &b
	}
	if hasPassword {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), s.bcryptCost)
		if err != nil {
			return 0, apperr.Internal(err)
		}
		patch.PasswordHash = strPtr(string(hash))
	}

	ok, err := s.users.Update(ctx, actor.TenantID, id, patch)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, apperr.Conflict("Email already in use")
		}
		return 0, apperr.Internal(err)
	}
	if !ok {
		return 0, apperr.NotFound("User not found")
	}

	existingPayload, updatedPayload := changePayloads(map[string]any{
		"FirstName": valueOr(existing.FirstName),
		"LastName":  valueOr(existing.LastName),
		"Email":     valueOr(existing.Email),
	}, changes)
	s.aud.Write(ctx, audit.Entry{
		UserID:        &actor.UserID,
		TableName:     "Users",
		ActionType:    models.ActionUpdate,
		TenantID:      &actor.TenantID,
		TenantUserID:  actorHandlePtr(actor),
		ExistingValue: existingPayload,
		UpdatedValue:  updatedPayload,
		EntityID:      &id,
	})

	return len(changes), nil
}

func (s *UserService) Remove(ctx context.Context, actor *session.User, id int64) error {
	ok, err := s.users.Delete(ctx, actor.TenantID, id)
	if err != nil {
		return apperr.Internal(err)
	}
	if !ok {
		return apperr.NotFound("User not found")
	}

	s.aud.Write(ctx, audit.Entry{
		UserID:       &actor.UserID,
		TableName:    "Users",
		ActionType:   models.ActionDelete,
		TenantID:     &actor.TenantID,
		TenantUserID: actorHandlePtr(actor),
		UpdatedValue: map[string]any{"id": id},
		EntityID:     &id,
	})
	return nil
}

/* shared helpers for the record services */

func strEmpty(s *string) bool { return s == nil || *s == "" }

func strPtr(s string) *string { return &s }

func boolBit(b bool) int {
	if b {
		return 1
	}
	return 0
}

func actorHandle(actor *session.User) string {
	if actor != nil && actor.TenantUserID != "" {
		return actor.TenantUserID
	}
	return "system"
}

func actorHandlePtr(actor *session.User) *string {
	if actor != nil && actor.TenantUserID != "" {
		return &actor.TenantUserID
	}
	return nil
}

func checkPasswordPair(pw, pw2 *string) error {
	if pw != nil && pw2 != nil && *pw != *pw2 {
		return apperr.Validation("Passwords do not match")
	}
	return nil
}

// snapText records a text field in the before/after snapshots only when the
// input carries it (merge semantics).
func snapText(before, after audit.Snapshot, name string, old *string, next *string) {
	if next == nil {
		return
	}
	before[name] = audit.Text(old)
	after[name] = audit.Text(next)
}

// changePayloads builds the audit payload pair: the existing side always
// carries the identity fields plus prior values of whatever changed, the
// updated side carries only the changed fields.
func changePayloads(identity map[string]any, changes map[string]audit.Change) (map[string]any, map[string]any) {
	existing := make(map[string]any, len(identity)+len(changes))
	for k, v := range identity {
		existing[k] = v
	}
	updated := make(map[string]any, len(changes))
	for k, ch := range changes {
		if _, isIdentity := identity[k]; !isIdentity {
			existing[k] = ch.Old
		}
		updated[k] = ch.New
	}
	return existing, updated
}
