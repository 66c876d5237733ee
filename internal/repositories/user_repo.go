package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tenantbase/backend/internal/db"
	"github.com/tenantbase/backend/internal/models"
)

const userColumns = `
	id, tenant_id, tenant_user_id, first_name, last_name, email, password,
	active, photo, comments, created_by, created_date, updated_by, updated_date`

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.TenantID, &u.TenantUserID, &u.FirstName, &u.LastName, &u.Email,
		&u.PasswordHash, &u.Active, &u.Photo, &u.Comments,
		&u.CreatedBy, &u.CreatedDate, &u.UpdatedBy, &u.UpdatedDate,
	)
	if db.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ListByTenant(ctx context.Context, tenantID string) ([]models.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users WHERE tenant_id = $1 ORDER BY id DESC
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// GetByTenant returns (nil, nil) when the row is absent or belongs to a
// different tenant; the two cases are indistinguishable to callers.
func (r *UserRepo) GetByTenant(ctx context.Context, tenantID string, id int64) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users WHERE id = $1 AND tenant_id = $2
	`, id, tenantID))
}

// GetByEmail is the one unscoped lookup: login resolves identity globally.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users WHERE email = $1
	`, email))
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users WHERE id = $1
	`, id))
}

func (r *UserRepo) Insert(ctx context.Context, u *models.User) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO users (
			tenant_id, tenant_user_id, first_name, last_name, email, password,
			active, photo, comments, created_by, created_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`,
		u.TenantID, u.TenantUserID, u.FirstName, u.LastName, u.Email, u.PasswordHash,
		u.Active, u.Photo, u.Comments, u.CreatedBy, u.CreatedDate,
	).Scan(&u.ID)
}

// UserPatch carries merge-update values: nil keeps the stored value.
type UserPatch struct {
	FirstName    *string
	LastName     *string
	Email        *string
	Comments     *string
	Photo        *string
	Active       *bool
	PasswordHash *string
	UpdatedBy    string
	UpdatedDate  time.Time
}

func (r *UserRepo) Update(ctx context.Context, tenantID string, id int64, p UserPatch) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET
			first_name   = COALESCE($3, first_name),
			last_name    = COALESCE($4, last_name),
			email        = COALESCE($5, email),
			comments     = COALESCE($6, comments),
			photo        = COALESCE($7, photo),
			active       = COALESCE($8, active),
			password     = COALESCE($9, password),
			updated_by   = $10,
			updated_date = $11
		WHERE id = $1 AND tenant_id = $2
	`, id, tenantID,
		p.FirstName, p.LastName, p.Email, p.Comments, p.Photo, p.Active, p.PasswordHash,
		p.UpdatedBy, p.UpdatedDate)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id int64, hash, updatedBy string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET password = $2, updated_by = $3, updated_date = $4 WHERE id = $1
	`, id, hash, updatedBy, time.Now())
	return err
}

func (r *UserRepo) Delete(ctx context.Context, tenantID string, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM users WHERE id = $1 AND tenant_id = $2
	`, id, tenantID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
