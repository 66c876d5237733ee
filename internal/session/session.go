package session

import (
	"crypto/rand"
	"encoding/hex"
)

// User is the identity held by an active session. Scoping identifiers come
// only from here, never from request bodies.
//
// CompanyID/CompanyUserID are the legacy field names older sessions carry;
// Normalize folds them into the canonical tenant pair.
type User struct {
	UserID       int64  `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"firstName,omitempty"`
	LastName     string `json:"lastName,omitempty"`
	TenantID     string `json:"tenantId,omitempty"`
	TenantUserID string `json:"tenantUserId,omitempty"`

	CompanyID     string `json:"companyId,omitempty"`
	CompanyUserID string `json:"companyUserId,omitempty"`
}

// Normalize maps the legacy company identifier pair onto the canonical
// tenant pair. Applied once at session load, not per handler.
func (u *User) Normalize() {
	if u.TenantID == "" && u.CompanyID != "" {
		u.TenantID = u.CompanyID
	}
	if u.TenantUserID == "" && u.CompanyUserID != "" {
		u.TenantUserID = u.CompanyUserID
	}
}

// NewToken issues an opaque 128-bit session token in hex.
func NewToken() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
