package dto

type ErrorResponse struct {
	Error string `json:"error"`
}

type LoginResponse struct {
	OK          bool   `json:"ok"`
	ID          int64  `json:"id"`
	RedirectURL string `json:"redirectUrl"`
}

type ChangePasswordRequiredResponse struct {
	ChangePassword bool  `json:"changePassword"`
	UserID         int64 `json:"userId"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
	Changed int  `json:"changed,omitempty"`
}

type CreatedResponse struct {
	ID           int64   `json:"id"`
	TenantUserID *string `json:"tenantUserId,omitempty"`
}
