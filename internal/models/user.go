package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Role gates access to privileged API surfaces.
type Role string

const (
	RoleUser    Role = "user"
	RolePremium Role = "premium"
	RoleAdmin   Role = "admin"
)

// SubscriptionPlan is the billing tier of an account.
type SubscriptionPlan string

const (
	PlanFree       SubscriptionPlan = "free"
	PlanBasic      SubscriptionPlan = "basic"
	PlanPro        SubscriptionPlan = "pro"
	PlanEnterprise SubscriptionPlan = "enterprise"
)

// User is a registered account. PasswordHash never leaves the db package's
// callers; API responses are built from PublicUser.
type User struct {
	ID           surrealmodels.RecordID `json:"id"`
	Username     string                 `json:"username"`
	Email        string                 `json:"email"`
	PasswordHash string                 `json:"password_hash"`
	Role         Role                   `json:"role"`
	Plan         SubscriptionPlan       `json:"plan"`

	EmailVerified      bool       `json:"email_verified"`
	VerifyTokenHash    *string    `json:"verify_token_hash,omitempty"`
	VerifyTokenExpires *time.Time `json:"verify_token_expires,omitempty"`
	ResetTokenHash     *string    `json:"reset_token_hash,omitempty"`
	ResetTokenExpires  *time.Time `json:"reset_token_expires,omitempty"`

	LoginAttempts int        `json:"login_attempts"`
	LockUntil     *time.Time `json:"lock_until,omitempty"`
	LastLogin     *time.Time `json:"last_login,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Locked reports whether the account is currently locked out.
func (u *User) Locked(now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}

// PublicUser is the API-safe view of a user.
type PublicUser struct {
	ID            string           `json:"id"`
	Username      string           `json:"username"`
	Email         string           `json:"email"`
	Role          Role             `json:"role"`
	Plan          SubscriptionPlan `json:"plan"`
	EmailVerified bool             `json:"email_verified"`
	CreatedAt     time.Time        `json:"created_at"`
}

// Public converts a User to its API-safe view.
func (u *User) Public() PublicUser {
	id, _ := u.ID.ID.(string)
	return PublicUser{
		ID:            id,
		Username:      u.Username,
		Email:         u.Email,
		Role:          u.Role,
		Plan:          u.Plan,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
}
