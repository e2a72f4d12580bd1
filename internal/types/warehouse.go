package types

import (
	"time"

	"github.com/google/uuid"
)

// Warehouse is a physical storage location. CreatedBy is set when the
// warehouse is created and cleared (not cascaded) when that user is
// deleted, so the warehouse survives ownerless.
type Warehouse struct {
	ID                uuid.UUID  `json:"id"`
	City              string     `json:"city" example:"New York"`
	Latitude          float64    `json:"latitude" example:"40.7128"`
	Longitude         float64    `json:"longitude" example:"-74.0060"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	CreatedBy         *uuid.UUID `json:"created_by,omitempty"`
	CreatedByUsername *string    `json:"created_by_username,omitempty"`
}

// CreateWarehouseRequest is the warehouse creation payload. The owner is
// taken from the authenticated caller, never from the body.
type CreateWarehouseRequest struct {
	City      string  `json:"city"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// UpdateWarehouseParams defines the mutable warehouse fields. Ownership is
// immutable after creation.
type UpdateWarehouseParams struct {
	City      *string  `json:"city,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}
