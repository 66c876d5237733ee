package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tenantbase/backend/internal/db"
	"github.com/tenantbase/backend/internal/models"
)

const clientColumns = `
	id, tenant_id, tenant_user_id, first_name, last_name, email, password,
	active, photo, comments, phone, address, city, state, zip, country,
	date_of_birth, gender, created_by, created_date, updated_by, updated_date`

type ClientRepo struct {
	pool *pgxpool.Pool
}

func NewClientRepo(pool *pgxpool.Pool) *ClientRepo {
	return &ClientRepo{pool: pool}
}

func scanClient(row interface{ Scan(...any) error }) (*models.Client, error) {
	var c models.Client
	err := row.Scan(
		&c.ID, &c.TenantID, &c.TenantUserID, &c.FirstName, &c.LastName, &c.Email,
		&c.PasswordHash, &c.Active, &c.Photo, &c.Comments,
		&c.Phone, &c.Address, &c.City, &c.State, &c.Zip, &c.Country,
		&c.DateOfBirth, &c.Gender,
		&c.CreatedBy, &c.CreatedDate, &c.UpdatedBy, &c.UpdatedDate,
	)
	if db.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepo) ListByTenant(ctx context.Context, tenantID string) ([]models.Client, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+clientColumns+`
		FROM clients WHERE tenant_id = $1 ORDER BY id DESC
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *c)
	}
	return clients, rows.Err()
}

func (r *ClientRepo) GetByTenant(ctx context.Context, tenantID string, id int64) (*models.Client, error) {
	return scanClient(r.pool.QueryRow(ctx, `
		SELECT `+clientColumns+`
		FROM clients WHERE id = $1 AND tenant_id = $2
	`, id, tenantID))
}

func (r *ClientRepo) Insert(ctx context.Context, c *models.Client) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO clients (
			tenant_id, tenant_user_id, first_name, last_name, email, password,
			active, photo, comments, phone, address, city, state, zip, country,
			date_of_birth, gender, created_by, created_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id
	`,
		c.TenantID, c.TenantUserID, c.FirstName, c.LastName, c.Email, c.PasswordHash,
		c.Active, c.Photo, c.Comments, c.Phone, c.Address, c.City, c.State, c.Zip, c.Country,
		c.DateOfBirth, c.Gender, c.CreatedBy, c.CreatedDate,
	).Scan(&c.ID)
}

// ClientPatch carries merge-update values: nil keeps the stored value.
// DateOfBirth is settable to null, so it travels with an explicit flag
// instead of the COALESCE convention.
type ClientPatch struct {
	FirstName    *string
	LastName     *string
	Email        *string
	Comments     *string
	Photo        *string
	Active       *bool
	PasswordHash *string
	Phone        *string
	Address      *string
	City         *string
	State        *string
	Zip          *string
	Country      *string
	Gender       *string
	HasDOB       bool
	DateOfBirth  *time.Time
	UpdatedBy    string
	UpdatedDate  time.Time
}

func (r *ClientRepo) Update(ctx context.Context, tenantID string, id int64, p ClientPatch) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE clients SET
			first_name    = COALESCE($3, first_name),
			last_name     = COALESCE($4, last_name),
			email         = COALESCE($5, email),
			comments      = COALESCE($6, comments),
			photo         = COALESCE($7, photo),
			active        = COALESCE($8, active),
			password      = COALESCE($9, password),
			phone         = COALESCE($10, phone),
			address       = COALESCE($11, address),
			city          = COALESCE($12, city),
			state         = COALESCE($13, state),
			zip           = COALESCE($14, zip),
			country       = COALESCE($15, country),
			gender        = COALESCE($16, gender),
			date_of_birth = CASE WHEN $17 THEN $18 ELSE date_of_birth END,
			updated_by    = $19,
			updated_date  = $20
		WHERE id = $1 AND tenant_id = $2
	`, id, tenantID,
		p.FirstName, p.LastName, p.Email, p.Comments, p.Photo, p.Active, p.PasswordHash,
		p.Phone, p.Address, p.City, p.State, p.Zip, p.Country, p.Gender,
		p.HasDOB, p.DateOfBirth, p.UpdatedBy, p.UpdatedDate)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
