package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tenantbase/backend/internal/db"
	"github.com/tenantbase/backend/internal/models"
)

type TenantRepo struct {
	pool *pgxpool.Pool
}

func NewTenantRepo(pool *pgxpool.Pool) *TenantRepo {
	return &TenantRepo{pool: pool}
}

func (r *TenantRepo) List(ctx context.Context) ([]models.Tenant, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT tenant_id, tenant_name FROM tenants ORDER BY tenant_name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []models.Tenant
	for rows.Next() {
		var t models.Tenant
		if err := rows.Scan(&t.TenantID, &t.TenantName); err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

func (r *TenantRepo) Get(ctx context.Context, tenantID string) (*models.Tenant, error) {
	var t models.Tenant
	err := r.pool.QueryRow(ctx, `
		SELECT tenant_id, tenant_name FROM tenants WHERE tenant_id = $1
	`, tenantID).Scan(&t.TenantID, &t.TenantName)
	if db.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// InsertTenant satisfies tenantid.TenantInserter. The primary key on
// tenant_id is the allocator's correctness guarantee.
func (r *TenantRepo) InsertTenant(ctx context.Context, tenantID, tenantName string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tenants (tenant_id, tenant_name) VALUES ($1, $2)
	`, tenantID, tenantName)
	return err
}

func (r *TenantRepo) UpdateName(ctx context.Context, tenantID, tenantName string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tenants SET tenant_name = $2 WHERE tenant_id = $1
	`, tenantID, tenantName)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
