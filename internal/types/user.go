package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-warehouse-admin/internal/authz"
)

// User is the core identity record. Password hash is never serialized.
type User struct {
	ID           uuid.UUID  `json:"id" example:"d290f1ee-6c54-4b01-90e6-d701748f0851"`
	Username     string     `json:"username" example:"warehouse"`
	Email        string     `json:"email" example:"warehouse@example.com"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name" example:"Warehouse"`
	LastName     string     `json:"last_name" example:"Admin"`
	Role         authz.Role `json:"role" example:"WAREHOUSE_ADMIN"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CreateUserRequest is the admin-only user creation payload.
type CreateUserRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role,omitempty"` // defaults to WAREHOUSE_ADMIN
}

// UpdateUserParams defines the fields allowed for user updates.
// Pointers distinguish "not provided" from an explicit empty value.
type UpdateUserParams struct {
	Username  *string `json:"username,omitempty"`
	Email     *string `json:"email,omitempty"`
	Password  *string `json:"password,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Role      *string `json:"role,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
}
