package models

import "time"

// Client is a tenant-scoped customer record. Same shape as User plus the
// contact/PII fields; clients never log in but may carry a credential.
type Client struct {
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
	Phone        *string    `json:"Phone"`
	Address      *string    `json:"Address"`
	City         *string    `json:"City"`
	State        *string    `json:"State"`
	Zip          *string    `json:"Zip"`
	Country      *string    `json:"Country"`
	DateOfBirth  *time.Time `json:"DateOfBirth"`
	Gender       *string    `json:"Gender"`
	CreatedBy    *string    `json:"CreatedBy"`
	CreatedDate  *time.Time `json:"CreatedDate"`
	UpdatedBy    *string    `json:"UpdatedBy"`
	UpdatedDate  *time.Time `json:"UpdatedDate"`
}

// ClientInput is the partial client payload; nil fields were absent from the
// request. DateOfBirth arrives as a raw string and is normalized permissively.
type ClientInput struct {
	FirstName   *string `json:"FirstName"`
	LastName    *string `json:"LastName"`
	Email       *string `json:"Email"`
	Comments    *string `json:"Comments"`
	Password    *string `json:"Password"`
	Password2   *string `json:"Password2"`
	Active      *Bit    `json:"Active"`
	Photo       *string `json:"Photo"`
	Phone       *string `json:"Phone"`
	Address     *string `json:"Address"`
	City        *string `json:"City"`
	State       *string `json:"State"`
	Zip         *string `json:"Zip"`
	Country     *string `json:"Country"`
	DateOfBirth *string `json:"DateOfBirth"`
	Gender      *string `json:"Gender"`
}
