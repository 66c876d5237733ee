package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Entry is one audit event to persist. ExistingValue/UpdatedValue carry the
// before/after payloads; both are stringified into the Message JSON so the
// row stays parseable by existing tooling.
type Entry struct {
	UserID        *int64
	TableName     string
	ActionType    string
	TenantID      *string
	TenantUserID  *string
	Note          string
	ExistingValue any
	UpdatedValue  any
	EntityID      *int64
	CreatedDate   time.Time
}

// Writer persists audit entries. Implementations are best-effort: Write never
// returns an error because audit failures must not fail the operation they
// describe.
type Writer interface {
	Write(ctx context.Context, e Entry)
}

// insertStrategy is the write shape chosen once at startup after probing the
// audit table's columns. The schema drifted across deployments: some carry
// tenant_id/tenant_user_id, older ones company_id/company_user_id, and the
// oldest neither.
type insertStrategy int

const (
	insertWithTenant insertStrategy = iota
	insertWithCompany
	insertBare
)

const (
	sqlInsertTenant = `
		INSERT INTO audit (user_id, table_name, action_type, tenant_id, tenant_user_id, message, created_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	sqlInsertCompany = `
		INSERT INTO audit (user_id, table_name, action_type, company_id, company_user_id, message, created_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	sqlInsertBare = `
		INSERT INTO audit (user_id, table_name, action_type, message, created_date)
		VALUES ($1, $2, $3, $4, $5)`
)

// PGWriter writes audit rows through the shared pgx pool using the strategy
// fixed at construction time.
type PGWriter struct {
	pool     *pgxpool.Pool
	strategy insertStrategy
	log      *zap.Logger
}

// NewPGWriter probes the audit table once and locks in an insert strategy for
// the process lifetime. A failed probe falls back to the bare shape rather
// than refusing to start.
func NewPGWriter(ctx context.Context, pool *pgxpool.Pool, log *zap.Logger) *PGWriter {
	cols, err := auditColumns(ctx, pool)
	if err != nil {
		log.Warn("audit column probe failed, using bare insert shape", zap.Error(err))
		cols = nil
	}
	strategy := strategyFor(cols)
	log.Info("audit writer ready", zap.String("strategy", strategy.String()))
	return &PGWriter{pool: pool, strategy: strategy, log: log}
}

func auditColumns(ctx context.Context, pool *pgxpool.Pool) (map[string]bool, error) {
	rows, err := pool.Query(ctx, `
		SELECT column_name FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = 'audit'
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

// strategyFor picks the best-matching insert shape for the observed columns.
// The tenant pair wins over the legacy company pair; with neither pair fully
// present the write degrades to the bare shape instead of failing.
func strategyFor(cols map[string]bool) insertStrategy {
	if cols["tenant_id"] && cols["tenant_user_id"] {
		return insertWithTenant
	}
	if cols["company_id"] && cols["company_user_id"] {
		return insertWithCompany
	}
	return insertBare
}

func (s insertStrategy) String() string {
	switch s {
	case insertWithTenant:
		return "tenant"
	case insertWithCompany:
		return "company"
	default:
		return "bare"
	}
}

func (w *PGWriter) Write(ctx context.Context, e Entry) {
	msg := buildMessage(e)
	when := e.CreatedDate
	if when.IsZero() {
		when = time.Now()
	}

	var err error
	switch w.strategy {
	case insertWithTenant:
		_, err = w.pool.Exec(ctx, sqlInsertTenant,
			e.UserID, e.TableName, e.ActionType, e.TenantID, e.TenantUserID, msg, when)
	case insertWithCompany:
		_, err = w.pool.Exec(ctx, sqlInsertCompany,
			e.UserID, e.TableName, e.ActionType, e.TenantID, e.TenantUserID, msg, when)
	default:
		_, err = w.pool.Exec(ctx, sqlInsertBare,
			e.UserID, e.TableName, e.ActionType, msg, when)
	}
	if err != nil {
		w.log.Warn("audit write failed",
			zap.String("table", e.TableName),
			zap.String("action", e.ActionType),
			zap.Error(err))
	}
}

// buildMessage packs the entry context into one JSON string. The
// ExistingValue/UpdatedValue keys are the compliance-tooling contract.
func buildMessage(e Entry) string {
	body := map[string]any{
		"ExistingValue": stringifyValue(e.ExistingValue),
		"UpdatedValue":  stringifyValue(e.UpdatedValue),
	}
	if e.Note != "" {
		body["Note"] = e.Note
	}
	if e.EntityID != nil {
		body["EntityId"] = *e.EntityID
	}
	return safeStringify(body)
}

func stringifyValue(v any) *string {
	if v == nil {
		return nil
	}
	if s, ok := v.(string); ok {
		return &s
	}
	s := safeStringify(v)
	return &s
}

func safeStringify(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// NopWriter discards entries. Used in tests.
type NopWriter struct{}

func (NopWriter) Write(context.Context, Entry) {}
