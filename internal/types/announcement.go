package types

import (
	"time"

	"github.com/google/uuid"
)

// Announcement is a system-wide notification. Same ownership rule as
// Warehouse; the active flag is independently toggleable.
type Announcement struct {
	ID                uuid.UUID  `json:"id"`
	Title             string     `json:"title" example:"System Maintenance"`
	Content           string     `json:"content"`
	IsActive          bool       `json:"is_active"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	CreatedBy         *uuid.UUID `json:"created_by,omitempty"`
	CreatedByUsername *string    `json:"created_by_username,omitempty"`
}

// CreateAnnouncementRequest is the announcement creation payload.
type CreateAnnouncementRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	IsActive *bool  `json:"is_active,omitempty"` // defaults to true
}

// UpdateAnnouncementParams defines the mutable announcement fields.
type UpdateAnnouncementParams struct {
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}
