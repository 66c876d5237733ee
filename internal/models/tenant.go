package models

// Tenant is an isolated customer namespace. The 4-hex-char TenantId is
// allocator-generated and immutable; only the name may change.
type Tenant struct {
	TenantID   string `json:"TenantId"`
	TenantName string `json:"TenantName"`
}
