package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tenantbase/backend/internal/models"
)

// AuditRepo is the read side of the audit trail. Writes go through
// audit.Writer; there is no update or delete — the trail is append-only.
type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

// ListRecent selects only the columns every schema variant carries; the
// tenant/company identifier columns may not exist.
func (r *AuditRepo) ListRecent(ctx context.Context, limit, offset int) ([]models.AuditRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, table_name, action_type, message, created_date
		FROM audit ORDER BY created_date DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.AuditRecord
	for rows.Next() {
		var rec models.AuditRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.TableName, &rec.ActionType, &rec.Message, &rec.CreatedDate); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
