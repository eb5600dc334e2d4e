package db

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/raphaelgruber/flowmind/internal/models"
)

// QueryStoreRefreshToken persists a hashed refresh token for a user.
func (c *Client) QueryStoreRefreshToken(ctx context.Context, user surrealmodels.RecordID, tokenHash string, expires time.Time) error {
	defer c.observe(time.Now())

	_, err := surrealdb.Query[any](ctx, c.db, `
		CREATE refresh_token SET
			user = $user,
			token_hash = $token_hash,
			expires_at = <datetime>$expires
	`, map[string]any{
		"user":       user,
		"token_hash": tokenHash,
		"expires":    expires,
	})
	if err != nil {
		return fmt.Errorf("store refresh token: %w", wrapQueryError(err))
	}
	return nil
}

// QueryGetRefreshToken looks up a refresh token by its hash.
// Returns ErrNotFound when the token is unknown or already revoked.
func (c *Client) QueryGetRefreshToken(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	defer c.observe(time.Now())

	results, err := surrealdb.Query[[]models.RefreshToken](ctx, c.db, `
		SELECT * FROM refresh_token WHERE token_hash = $token_hash LIMIT 1
	`, map[string]any{"token_hash": tokenHash})
	if err != nil {
		return nil, fmt.Errorf("get refresh token: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, ErrNotFound
	}
	return &(*results)[0].Result[0], nil
}

// QueryDeleteRefreshToken revokes a single refresh token by hash.
func (c *Client) QueryDeleteRefreshToken(ctx context.Context, tokenHash string) error {
	defer c.observe(time.Now())

	_, err := surrealdb.Query[any](ctx, c.db, `
		DELETE refresh_token WHERE token_hash = $token_hash
	`, map[string]any{"token_hash": tokenHash})
	if err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

// QueryDeleteUserRefreshTokens revokes every refresh token a user holds.
// Used on logout-everywhere and after a password reset.
func (c *Client) QueryDeleteUserRefreshTokens(ctx context.Context, user surrealmodels.RecordID) error {
	defer c.observe(time.Now())

	_, err := surrealdb.Query[any](ctx, c.db, `
		DELETE refresh_token WHERE user = $user
	`, map[string]any{"user": user})
	if err != nil {
		return fmt.Errorf("delete user refresh tokens: %w", err)
	}
	return nil
}

// QueryPruneExpiredRefreshTokens removes tokens past their expiry.
func (c *Client) QueryPruneExpiredRefreshTokens(ctx context.Context) error {
	defer c.observe(time.Now())

	_, err := surrealdb.Query[any](ctx, c.db, `
		DELETE refresh_token WHERE expires_at < time::now()
	`, nil)
	if err != nil {
		return fmt.Errorf("prune refresh tokens: %w", err)
	}
	return nil
}
