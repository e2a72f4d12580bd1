package auth

import (
	"time"

	"github.com/google/uuid"
)

// RefreshTokenRecord is a stored refresh token. Tokens are opaque random
// strings; revocation is a timestamp so old tokens stay auditable.
type RefreshTokenRecord struct {
	Token     string
	UserID    uuid.UUID
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// Expired reports whether the token can no longer be exchanged.
func (r *RefreshTokenRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt) || r.RevokedAt != nil
}
