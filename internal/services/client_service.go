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

// ClientStore mirrors UserStore for the client repository.
type ClientStore interface {
	ListByTenant(ctx context.Context, tenantID string) ([]models.Client, error)
	GetByTenant(ctx context.Context, tenantID string, id int64) (*models.Client, error)
	Insert(ctx context.Context, c *models.Client) error
	Update(ctx context.Context, tenantID string, id int64, p repositories.ClientPatch) (bool, error)
}

type ClientService struct {
	clients    ClientStore
	handles    *tenantid.Allocator
	aud        audit.Writer
	bcryptCost int
	log        *zap.Logger
}

func NewClientService(clients ClientStore, handles *tenantid.Allocator, aud audit.Writer, bcryptCost int, log *zap.Logger) *ClientService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &ClientService{clients: clients, handles: handles, aud: aud, bcryptCost: bcryptCost, log: log}
}

func (s *ClientService) List(ctx context.Context, actor *session.User) ([]models.Client, error) {
	clients, err := s.clients.ListByTenant(ctx, actor.TenantID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return clients, nil
}

func (s *ClientService) Get(ctx context.Context, actor *session.User, id int64) (*models.Client, error) {
	c, err := s.clients.GetByTenant(ctx, actor.TenantID, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if c == nil {
		return nil, apperr.NotFound("Client not found")
	}
	return c, nil
}

func (s *ClientService) Create(ctx context.Context, actor *session.User, in models.ClientInput) (*models.Client, error) {
	if strEmpty(in.FirstName) || strEmpty(in.LastName) || strEmpty(in.Email) {
		return nil, apperr.Validation("First name, last name and email are required")
	}
	if err := checkPasswordPair(in.Password, in.Password2); err != nil {
		return nil, err
	}

	// Unparsable dates become null, never a request failure.
	var dob *time.Time
	if in.DateOfBirth != nil {
		dob = models.ParseDate(*in.DateOfBirth)
	}

	now := time.Now()
	c := &models.Client{
		TenantID:    actor.TenantID,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		Comments:    in.Comments,
		Photo:       in.Photo,
		Active:      in.Active != nil && bool(*in.Active),
		Phone:       in.Phone,
		Address:     in.Address,
		City:        in.City,
		State:       in.State,
		Zip:         in.Zip,
		Country:     in.Country,
		DateOfBirth: dob,
		Gender:      in.Gender,
		CreatedBy:   strPtr(actorHandle(actor)),
		CreatedDate: &now,
	}
	if !strEmpty(in.Password) {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), s.bcryptCost)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		c.PasswordHash = strPtr(string(hash))
	}

	var insertErr error
	for attempt := 0; attempt < tenantid.MaxAttempts; attempt++ {
		handle := s.handles.UserHandle(actor.TenantID)
		c.TenantUserID = &handle
		insertErr = s.clients.Insert(ctx, c)
		if insertErr == nil {
			break
		}
		if db.IsUniqueViolation(insertErr) && db.ConstraintOf(insertErr) == "clients_tenant_user_id_key" {
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
		"Active":    boolBit(c.Active),
	}
	if in.Comments != nil {
		created["Comments"] = *in.Comments
	}
	if in.DateOfBirth != nil {
		created["DateOfBirth"] = models.Ymd(dob)
	}
	if !strEmpty(in.Password) {
		created["Password"] = audit.MaskToken
	}
	s.aud.Write(ctx, audit.Entry{
		UserID:       &actor.UserID,
		TableName:    "Clients",
		ActionType:   models.ActionCreate,
		TenantID:     &actor.TenantID,
		TenantUserID: actorHandlePtr(actor),
		UpdatedValue: created,
		EntityID:     &c.ID,
	})

	return c, nil
}

func (s *ClientService) Update(ctx context.Context, actor *session.User, id int64, in models.ClientInput) (int, error) {
	existing, err := s.clients.GetByTenant(ctx, actor.TenantID, id)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	if existing == nil {
		return 0, apperr.NotFound("Client not found")
	}
	if err := checkPasswordPair(in.Password, in.Password2); err != nil {
		return 0, err
	}

	var dob *time.Time
	if in.DateOfBirth != nil {
		dob = models.ParseDate(*in.DateOfBirth)
	}

	before := audit.Snapshot{}
	after := audit.Snapshot{}
	snapText(before, after, "FirstName", existing.FirstName, in.FirstName)
	snapText(before, after, "LastName", existing.LastName, in.LastName)
	snapText(before, after, "Email", existing.Email, in.Email)
	snapText(before, after, "Comments", existing.Comments, in.Comments)
	snapText(before, after, "Photo", existing.Photo, in.Photo)
	snapText(before, after, "Phone", existing.Phone, in.Phone)
	snapText(before, after, "Address", existing.Address, in.Address)
	snapText(before, after, "City", existing.City, in.City)
	snapText(before, after, "State", existing.State, in.State)
	snapText(before, after, "Zip", existing.Zip, in.Zip)
	snapText(before, after, "Country", existing.Country, in.Country)
	snapText(before, after, "Gender", existing.Gender, in.Gender)
	if in.Active != nil {
		before["Active"] = audit.Bit(existing.Active)
		after["Active"] = audit.Bit(bool(*in.Active))
	}
	if in.DateOfBirth != nil {
		before["DateOfBirth"] = audit.Date(existing.DateOfBirth)
		after["DateOfBirth"] = audit.Date(dob)
	}
	changes := audit.Diff(before, after)

	hasPassword := !strEmpty(in.Password)
	if len(changes) == 0 && !hasPassword {
		return 0, nil
	}

	patch := repositories.ClientPatch{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		Comments:    in.Comments,
		Photo:       in.Photo,
		Phone:       in.Phone,
		Address:     in.Address,
		City:        in.City,
		State:       in.State,
		Zip:         in.Zip,
		Country:     in.Country,
		Gender:      in.Gender,
		HasDOB:      in.DateOfBirth != nil,
		DateOfBirth: dob,
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

	ok, err := s.clients.Update(ctx, actor.TenantID, id, patch)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, apperr.Conflict("Email already in use")
		}
		return 0, apperr.Internal(err)
	}
	if !ok {
		return 0, apperr.NotFound("Client not found")
	}

	existingPayload, updatedPayload := changePayloads(map[string]any{
		"FirstName": valueOr(existing.FirstName),
		"LastName":  valueOr(existing.LastName),
		"Email":     valueOr(existing.Email),
	}, changes)
	s.aud.Write(ctx, audit.Entry{
		UserID:        &actor.UserID,
		TableName:     "Clients",
		ActionType:    models.ActionUpdate,
		TenantID:      &actor.TenantID,
		TenantUserID:  actorHandlePtr(actor),
		ExistingValue: existingPayload,
		UpdatedValue:  updatedPayload,
		EntityID:      &id,
	})

	return len(changes), nil
}
