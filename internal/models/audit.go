package models

import "time"

// Audit action types. The set is fixed; tooling that parses the audit trail
// matches on these strings.
const (
	ActionLogin          = "LOGIN"
	ActionLogout         = "LOGOUT"
	ActionFailedLogin    = "FAILED_LOGIN"
	ActionCreate         = "CREATE"
	ActionUpdate         = "UPDATE"
	ActionDelete         = "DELETE"
	ActionError          = "ERROR"
	ActionPasswordChange = "PASSWORD_CHANGE"
)

// AuditRecord is one append-only audit row. Message holds the JSON payload
// (ExistingValue/UpdatedValue diff or free-form context).
type AuditRecord struct {
	ID           int64     `json:"Id"`
	UserID       *int64    `json:"UserId"`
	TableName    string    `json:"TableName"`
	ActionType   string    `json:"ActionType"`
	TenantID     *string   `json:"TenantId,omitempty"`
	TenantUserID *string   `json:"TenantUserId,omitempty"`
	Message      string    `json:"Message"`
	CreatedDate  time.Time `json:"CreatedDate"`
}
