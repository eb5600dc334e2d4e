package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// RefreshToken is a stored, hashed refresh token. One user may hold several,
// one per device or session.
type RefreshToken struct {
	ID        surrealmodels.RecordID `json:"id"`
	User      surrealmodels.RecordID `json:"user"`
	TokenHash string                 `json:"token_hash"`
	ExpiresAt time.Time              `json:"expires_at"`
	CreatedAt time.Time              `json:"created_at"`
}

// Expired reports whether the token is past its expiry.
func (t *RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
