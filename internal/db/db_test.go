// Package db provides integration tests for SurrealDB operations.
package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testDB *Client
var testContainer testcontainers.Container

// TestMain sets up and tears down the SurrealDB container for all tests.
func TestMain(m *testing.M) {
	// Disable ryuk (cleanup container) as it can cause issues in some environments
	os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")

	ctx := context.Background()

	// Start SurrealDB container
	var err error
	testContainer, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "surrealdb/surrealdb:v3.0.0-beta.1",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--log", "info", "--user", "root", "--pass", "root"},
			WaitingFor:   wait.ForLog("Started web server").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("Failed to start SurrealDB container: %v", err)
	}

	// Get container host and port
	host, err := testContainer.Host(ctx)
	if err != nil {
		log.Fatalf("Failed to get container host: %v", err)
	}
	// Workaround: testcontainers may return "null" as host in some environments
	if host == "" || host == "null" {
		host = "localhost"
	}
	mappedPort, err := testContainer.MappedPort(ctx, "8000")
	if err != nil {
		log.Fatalf("Failed to get mapped port: %v", err)
	}

	// Connect to test database
	testDB, err = NewClient(ctx, Config{
		URL:       fmt.Sprintf("ws://%s:%s/rpc", host, mappedPort.Port()),
		Namespace: "test",
		Database:  "test",
		Username:  "root",
		Password:  "root",
	}, nil)
	if err != nil {
		log.Fatalf("Failed to connect to test database: %v", err)
	}

	// Initialize schema
	if err := testDB.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	// Run tests
	code := m.Run()

	// Cleanup
	_ = testDB.Close(ctx)
	_ = testContainer.Terminate(ctx)

	os.Exit(code)
}

// createTestUser creates a user with a unique name and registers cleanup.
func createTestUser(t *testing.T, name string) *NewUserParams {
	t.Helper()
	return &NewUserParams{
		Username:           name,
		Email:              name + "@example.com",
		PasswordHash:       "$2a$10$fakehashfakehashfakehas",
		VerifyTokenHash:    "verify-" + name,
		VerifyTokenExpires: time.Now().Add(24 * time.Hour),
	}
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()

	user, err := testDB.QueryCreateUser(ctx, *createTestUser(t, "create-test"))
	if err != nil {
		t.Fatalf("QueryCreateUser failed: %v", err)
	}
	defer func() { _ = testDB.QueryDeleteUser(ctx, user.ID) }()

	if user.Username != "create-test" {
		t.Errorf("Expected username 'create-test', got %q", user.Username)
	}
	if user.Role != "user" || user.Plan != "free" {
		t.Errorf("Expected default role/plan, got %q/%q", user.Role, user.Plan)
	}
	if user.EmailVerified {
		t.Error("New user should not be email-verified")
	}
	if user.LoginAttempts != 0 {
		t.Errorf("Expected 0 login attempts, got %d", user.LoginAttempts)
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	ctx := context.Background()

	user, err := testDB.QueryCreateUser(ctx, *createTestUser(t, "dup-test"))
	if err != nil {
		t.Fatalf("QueryCreateUser failed: %v", err)
	}
	defer func() { _ = testDB.QueryDeleteUser(ctx, user.ID) }()

	_, err = testDB.QueryCreateUser(ctx, *createTestUser(t, "dup-test"))
	if !errors.Is(err, ErrUserAlreadyExists) {
		t.Errorf("Expected ErrUserAlreadyExists, got %v", err)
	}
}

func TestFindUserByLogin(t *testing.T) {
	ctx := context.Background()

	created, err := testDB.QueryCreateUser(ctx, *createTestUser(t, "find-test"))
	if err != nil {
		t.Fatalf("QueryCreateUser failed: %v", err)
	}
	defer func() { _ = testDB.QueryDeleteUser(ctx, created.ID) }()

	// by username
	byName, err := testDB.QueryFindUserByLogin(ctx, "find-test")
	if err != nil {
		t.Fatalf("find by username failed: %v", err)
	}
	if byName.Email != "find-test@example.com" {
		t.Errorf("Wrong user found: %q", byName.Email)
	}

	// by email
	byEmail, err := testDB.QueryFindUserByLogin(ctx, "find-test@example.com")
	if err != nil {
		t.Fatalf("find by email failed: %v", err)
	}
	if byEmail.Username != "find-test" {
		t.Errorf("Wrong user found: %q", byEmail.Username)
	}

	// unknown login
	_, err = testDB.QueryFindUserByLogin(ctx, "nobody")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestLoginFailureAndSuccess(t *testing.T) {
	ctx := context.Background()

	created, err := testDB.QueryCreateUser(ctx, *createTestUser(t, "lock-test"))
	if err != nil {
		t.Fatalf("QueryCreateUser failed: %v", err)
	}
	defer func() { _ = testDB.QueryDeleteUser(ctx, created.ID) }()

	// two plain failures
	for i := 0; i < 2; i++ {
		if err := testDB.QueryRecordLoginFailure(ctx, created.ID, nil); err != nil {
			t.Fatalf("QueryRecordLoginFailure failed: %v", err)
		}
	}

	user, err := testDB.QueryFindUserByLogin(ctx, "lock-test")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if user.LoginAttempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", user.LoginAttempts)
	}
	if user.LockUntil != nil {
		t.Error("Account should not be locked yet")
	}

	// failure that locks
	lockUntil := time.Now().Add(2 * time.Hour)
	if err := testDB.QueryRecordLoginFailure(ctx, created.ID, &lockUntil); err != nil {
		t.Fatalf("locking failure failed: %v", err)
	}

	user, err = testDB.QueryFindUserByLogin(ctx, "lock-test")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if user.LockUntil == nil || !user.Locked(time.Now()) {
		t.Error("Account should be locked")
	}

	// success clears everything
	if err := testDB.QueryRecordLoginSuccess(ctx, created.ID); err != nil {
		t.Fatalf("QueryRecordLoginSuccess failed: %v", err)
	}

	user, err = testDB.QueryFindUserByLogin(ctx, "lock-test")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if user.LoginAttempts != 0 || user.LockUntil != nil {
		t.Errorf("Expected cleared lock state, got attempts=%d lock=%v", user.LoginAttempts, user.LockUntil)
	}
	if user.LastLogin == nil {
		t.Error("LastLogin should be stamped")
	}
}

func TestVerifyEmail(t *testing.T) {
	ctx := context.Background()

	created, err := testDB.QueryCreateUser(ctx, *createTestUser(t, "verify-test"))
	if err != nil {
		t.Fatalf("QueryCreateUser failed: %v", err)
	}
	defer func() { _ = testDB.QueryDeleteUser(ctx, created.ID) }()

	// wrong token
	_, err = testDB.QueryVerifyEmail(ctx, "wrong-token")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for wrong token, got %v", err)
	}

	// correct token
	verified, err := testDB.QueryVerifyEmail(ctx, "verify-verify-test")
	if err != nil {
		t.Fatalf("QueryVerifyEmail failed: %v", err)
	}
	if !verified.EmailVerified {
		t.Error("User should be verified")
	}
	if verified.VerifyTokenHash != nil {
		t.Error("Verify token should be cleared")
	}

	// token no longer works
	_, err = testDB.QueryVerifyEmail(ctx, "verify-verify-test")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on reuse, got %v", err)
	}
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()

	created, err := testDB.QueryCreateUser(ctx, *createTestUser(t, "reset-test"))
	if err != nil {
		t.Fatalf("QueryCreateUser failed: %v", err)
	}
	defer func() { _ = testDB.QueryDeleteUser(ctx, created.ID) }()

	// unknown email
	_, err = testDB.QuerySetResetToken(ctx, "nobody@example.com", "h", time.Now().Add(10*time.Minute))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown email, got %v", err)
	}

	// set and consume the token
	_, err = testDB.QuerySetResetToken(ctx, "reset-test@example.com", "reset-hash", time.Now().Add(10*time.Minute))
	if err != nil {
		t.Fatalf("QuerySetResetToken failed: %v", err)
	}

	updated, err := testDB.QueryResetPassword(ctx, "reset-hash", "$2a$10$newhashnewhashnewhashne")
	if err != nil {
		t.Fatalf("QueryResetPassword failed: %v", err)
	}
	if updated.PasswordHash != "$2a$10$newhashnewhashnewhashne" {
		t.Error("Password hash should be replaced")
	}
	if updated.ResetTokenHash != nil {
		t.Error("Reset token should be cleared")
	}

	// token is single-use
	_, err = testDB.QueryResetPassword(ctx, "reset-hash", "x")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on reuse, got %v", err)
	}

	// expired token never matches
	_, err = testDB.QuerySetResetToken(ctx, "reset-test@example.com", "stale-hash", time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("QuerySetResetToken failed: %v", err)
	}
	_, err = testDB.QueryResetPassword(ctx, "stale-hash", "x")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for expired token, got %v", err)
	}
}

func TestRefreshTokens(t *testing.T) {
	ctx := context.Background()

	created, err := testDB.QueryCreateUser(ctx, *createTestUser(t, "token-test"))
	if err != nil {
		t.Fatalf("QueryCreateUser failed: %v", err)
	}
	defer func() { _ = testDB.QueryDeleteUser(ctx, created.ID) }()

	expires := time.Now().Add(90 * 24 * time.Hour)
	if err := testDB.QueryStoreRefreshToken(ctx, created.ID, "rt-hash-1", expires); err != nil {
		t.Fatalf("QueryStoreRefreshToken failed: %v", err)
	}
	if err := testDB.QueryStoreRefreshToken(ctx, created.ID, "rt-hash-2", expires); err != nil {
		t.Fatalf("QueryStoreRefreshToken failed: %v", err)
	}

	token, err := testDB.QueryGetRefreshToken(ctx, "rt-hash-1")
	if err != nil {
		t.Fatalf("QueryGetRefreshToken failed: %v", err)
	}
	if token.User != created.ID {
		t.Errorf("Token owner mismatch: %v vs %v", token.User, created.ID)
	}
	if token.Expired(time.Now()) {
		t.Error("Token should not be expired")
	}

	// revoke one
	if err := testDB.QueryDeleteRefreshToken(ctx, "rt-hash-1"); err != nil {
		t.Fatalf("QueryDeleteRefreshToken failed: %v", err)
	}
	if _, err := testDB.QueryGetRefreshToken(ctx, "rt-hash-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after revoke, got %v", err)
	}

	// the other survives
	if _, err := testDB.QueryGetRefreshToken(ctx, "rt-hash-2"); err != nil {
		t.Errorf("Second token should survive: %v", err)
	}

	// revoke all for the user
	if err := testDB.QueryDeleteUserRefreshTokens(ctx, created.ID); err != nil {
		t.Fatalf("QueryDeleteUserRefreshTokens failed: %v", err)
	}
	if _, err := testDB.QueryGetRefreshToken(ctx, "rt-hash-2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after revoke-all, got %v", err)
	}
}

func TestPruneExpiredRefreshTokens(t *testing.T) {
	ctx := context.Background()

	created, err := testDB.QueryCreateUser(ctx, *createTestUser(t, "prune-test"))
	if err != nil {
		t.Fatalf("QueryCreateUser failed: %v", err)
	}
	defer func() { _ = testDB.QueryDeleteUser(ctx, created.ID) }()

	if err := testDB.QueryStoreRefreshToken(ctx, created.ID, "prune-old", time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("store failed: %v", err)
	}
	if err := testDB.QueryStoreRefreshToken(ctx, created.ID, "prune-new", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("store failed: %v", err)
	}

	if err := testDB.QueryPruneExpiredRefreshTokens(ctx); err != nil {
		t.Fatalf("QueryPruneExpiredRefreshTokens failed: %v", err)
	}

	if _, err := testDB.QueryGetRefreshToken(ctx, "prune-old"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expired token should be pruned, got %v", err)
	}
	if _, err := testDB.QueryGetRefreshToken(ctx, "prune-new"); err != nil {
		t.Errorf("Live token should survive pruning: %v", err)
	}
}
