// Package db provides SurrealDB query functions for user accounts.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/raphaelgruber/flowmind/internal/models"
)

// NewUserParams carries the fields for creating an account.
type NewUserParams struct {
	Username     string
	Email        string
	PasswordHash string

	VerifyTokenHash    string
	VerifyTokenExpires time.Time
}

// QueryCreateUser creates a new user account with default role and plan.
// Returns ErrUserAlreadyExists when the email or username is taken.
func (c *Client) QueryCreateUser(ctx context.Context, p NewUserParams) (*models.User, error) {
	defer c.observe(time.Now())

	results, err := surrealdb.Query[[]models.User](ctx, c.db, `
		CREATE user SET
			username = $username,
			email = $email,
			password_hash = $password_hash,
			role = "user",
			plan = "free",
			email_verified = false,
			verify_token_hash = $verify_token_hash,
			verify_token_expires = <datetime>$verify_token_expires,
			login_attempts = 0
	`, map[string]any{
		"username":             p.Username,
		"email":                p.Email,
		"password_hash":        p.PasswordHash,
		"verify_token_hash":    p.VerifyTokenHash,
		"verify_token_expires": p.VerifyTokenExpires,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("create user: empty result")
	}
	return &(*results)[0].Result[0], nil
}

// QueryGetUser retrieves a user by record id. Returns ErrNotFound if missing.
func (c *Client) QueryGetUser(ctx context.Context, id string) (*models.User, error) {
	defer c.observe(time.Now())

	results, err := surrealdb.Query[[]models.User](ctx, c.db, `
		SELECT * FROM type::record("user", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, ErrNotFound
	}
	return &(*results)[0].Result[0], nil
}

// QueryFindUserByLogin retrieves a user by email or username.
// Returns ErrNotFound if no account matches.
func (c *Client) QueryFindUserByLogin(ctx context.Context, login string) (*models.User, error) {
	defer c.observe(time.Now())

	results, err := surrealdb.Query[[]models.User](ctx, c.db, `
		SELECT * FROM user WHERE email = $login OR username = $login LIMIT 1
	`, map[string]any{"login": login})
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, ErrNotFound
	}
	return &(*results)[0].Result[0], nil
}

// QueryRecordLoginFailure increments the failed-attempt counter and, when
// lockUntil is non-nil, locks the account until that instant.
func (c *Client) QueryRecordLoginFailure(ctx context.Context, id surrealmodels.RecordID, lockUntil *time.Time) error {
	defer c.observe(time.Now())

	sql := `
		UPDATE $user SET
			login_attempts += 1,
			updated_at = time::now()
	`
	vars := map[string]any{"user": id}
	if lockUntil != nil {
		sql = `
			UPDATE $user SET
				login_attempts += 1,
				lock_until = <datetime>$lock_until,
				updated_at = time::now()
		`
		vars["lock_until"] = *lockUntil
	}

	if _, err := surrealdb.Query[any](ctx, c.db, sql, vars); err != nil {
		return fmt.Errorf("record login failure: %w", err)
	}
	return nil
}

// QueryRecordLoginSuccess clears the failure state and stamps last_login.
func (c *Client) QueryRecordLoginSuccess(ctx context.Context, id surrealmodels.RecordID) error {
	defer c.observe(time.Now())

	_, err := surrealdb.Query[any](ctx, c.db, `
		UPDATE $user SET
			login_attempts = 0,
			lock_until = NONE,
			last_login = time::now(),
			updated_at = time::now()
	`, map[string]any{"user": id})
	if err != nil {
		return fmt.Errorf("record login success: %w", err)
	}
	return nil
}

// QueryDeleteUser removes an account.
func (c *Client) QueryDeleteUser(ctx context.Context, id surrealmodels.RecordID) error {
	defer c.observe(time.Now())

	_, err := surrealdb.Query[any](ctx, c.db, `
		DELETE $user; DELETE refresh_token WHERE user = $user
	`, map[string]any{"user": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// QueryVerifyEmail marks the account holding this verification token hash as
// verified, provided the token has not expired. Returns ErrNotFound when no
// account matches.
func (c *Client) QueryVerifyEmail(ctx context.Context, tokenHash string) (*models.User, error) {
	defer c.observe(time.Now())

	results, err := surrealdb.Query[[]models.User](ctx, c.db, `
		UPDATE user SET
			email_verified = true,
			verify_token_hash = NONE,
			verify_token_expires = NONE,
			updated_at = time::now()
		WHERE verify_token_hash = $token_hash
		  AND verify_token_expires > time::now()
	`, map[string]any{"token_hash": tokenHash})
	if err != nil {
		return nil, fmt.Errorf("verify email: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, ErrNotFound
	}
	return &(*results)[0].Result[0], nil
}

// QuerySetResetToken stores a password-reset token hash on the account with
// this email. Returns ErrNotFound when the email is unknown.
func (c *Client) QuerySetResetToken(ctx context.Context, email, tokenHash string, expires time.Time) (*models.User, error) {
	defer c.observe(time.Now())

	results, err := surrealdb.Query[[]models.User](ctx, c.db, `
		UPDATE user SET
			reset_token_hash = $token_hash,
			reset_token_expires = <datetime>$expires,
			updated_at = time::now()
		WHERE email = $email
	`, map[string]any{
		"email":      email,
		"token_hash": tokenHash,
		"expires":    expires,
	})
	if err != nil {
		return nil, fmt.Errorf("set reset token: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, ErrNotFound
	}
	return &(*results)[0].Result[0], nil
}

// QueryResetPassword replaces the password hash on the account holding this
// unexpired reset token hash, clears the token and unlocks the account.
// Returns ErrNotFound when no account matches.
func (c *Client) QueryResetPassword(ctx context.Context, tokenHash, passwordHash string) (*models.User, error) {
	defer c.observe(time.Now())

	results, err := surrealdb.Query[[]models.User](ctx, c.db, `
		UPDATE user SET
			password_hash = $password_hash,
			reset_token_hash = NONE,
			reset_token_expires = NONE,
			login_attempts = 0,
			lock_until = NONE,
			updated_at = time::now()
		WHERE reset_token_hash = $token_hash
		  AND reset_token_expires > time::now()
	`, map[string]any{
		"token_hash":    tokenHash,
		"password_hash": passwordHash,
	})
	if err != nil {
		return nil, fmt.Errorf("reset password: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, ErrNotFound
	}
	return &(*results)[0].Result[0], nil
}
