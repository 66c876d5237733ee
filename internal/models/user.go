package models

import "time"

// User is a tenant-scoped account. PascalCase JSON keys are the wire contract
// the existing front-end consumes.
type User struct {
	ID           int64      `json:"Id"`
	TenantID     string     `json:"TenantId"`
	TenantUserID *string    `json:"TenantUserId"`
	FirstName    *string    `json:"FirstName"`
	LastName     *string    `json:"LastName"`
	Email        *string    `json:"Email"`
	PasswordHash *string    `json:"-"`
	Active       bool       `json:"Active"`
	Photo        *string    `json:"Photo"`
	Comments     *string    `json:"Comments"`
	CreatedBy    *string    `json:"CreatedBy"`
	CreatedDate  *time.Time `json:"CreatedDate"`
	UpdatedBy    *string    `json:"UpdatedBy"`
	UpdatedDate  *time.Time `json:"UpdatedDate"`
}

// HasPassword reports whether a credential is set. An absent or empty hash
// means the account is in the must-set-password-on-first-login state.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// UserInput carries a partial user payload. Nil means the field was not
// present in the request; updates only consider present fields.
type UserInput struct {
	FirstName *string `json:"FirstName"`
	LastName  *string `json:"LastName"`
	Email     *string `json:"Email"`
	Comments  *string `json:"Comments"`
	Password  *string `json:"Password"`
	Password2 *string `json:"Password2"`
	Active    *Bit    `json:"Active"`
	Photo     *string `json:"Photo"`
}
