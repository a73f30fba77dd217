package model

import "time"

// Address is the postal address stored as a JSON column on the users table.
// It travels as-is between the API and the database; only AddressLine2 is
// optional.
type Address struct {
	AddressLine1    string `json:"address_line1"`
	AddressLine2    string `json:"address_line2,omitempty"`
	City            string `json:"city"`
	StateOrProvince string `json:"state_or_province"`
	PostalCode      string `json:"postal_code"`
	Country         string `json:"country"`
}

// User mirrors the 'users' table. PasswordHash is the only credential ever
// persisted; handlers expose users through response DTOs that omit it.
type User struct {
	ID           string // users.id (UUID)
	Name         string // users.name
	Email        string // users.email (unique)
	PhoneNumber  string // users.phone_number
	Address      Address
	Role         string // users.role: "admin" or "user"
	PasswordHash string // users.password_hash (bcrypt)
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Roles accepted in users.role and in the JWT role claim.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)
