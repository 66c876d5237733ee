package dto

type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RedirectTo string `json:"redirectTo"`
}

type ChangePasswordRequest struct {
	Password  string `json:"Password"`
	Password2 string `json:"Password2"`
}

type TenantRequest struct {
	TenantName string `json:"TenantName"`
}
