package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/raphaelgruber/flowmind/internal/auth"
	"github.com/raphaelgruber/flowmind/internal/db"
	"github.com/raphaelgruber/flowmind/internal/models"
)

// fakeStore is an in-memory UserStore mirroring the query semantics the
// account service relies on.
type fakeStore struct {
	now    func() time.Time
	nextID int

	users  map[string]*models.User         // by record id
	tokens map[string]*models.RefreshToken // by token hash
}

func newFakeStore(now func() time.Time) *fakeStore {
	return &fakeStore{
		now:    now,
		users:  make(map[string]*models.User),
		tokens: make(map[string]*models.RefreshToken),
	}
}

func (f *fakeStore) QueryCreateUser(_ context.Context, p db.NewUserParams) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == p.Email || u.Username == p.Username {
			return nil, db.ErrUserAlreadyExists
		}
	}
	f.nextID++
	id := fmt.Sprintf("u%d", f.nextID)
	now := f.now()
	user := &models.User{
		ID:                 surrealmodels.RecordID{Table: "user", ID: id},
		Username:           p.Username,
		Email:              p.Email,
		PasswordHash:       p.PasswordHash,
		Role:               models.RoleUser,
		Plan:               models.PlanFree,
		VerifyTokenHash:    &p.VerifyTokenHash,
		VerifyTokenExpires: &p.VerifyTokenExpires,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	f.users[id] = user
	return user, nil
}

func (f *fakeStore) QueryGetUser(_ context.Context, id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) QueryFindUserByLogin(_ context.Context, login string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == login || u.Username == login {
			return u, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) QueryRecordLoginFailure(_ context.Context, id surrealmodels.RecordID, lockUntil *time.Time) error {
	u := f.users[id.ID.(string)]
	u.LoginAttempts++
	if lockUntil != nil {
		u.LockUntil = lockUntil
	}
	return nil
}

func (f *fakeStore) QueryRecordLoginSuccess(_ context.Context, id surrealmodels.RecordID) error {
	u := f.users[id.ID.(string)]
	u.LoginAttempts = 0
	u.LockUntil = nil
	now := f.now()
	u.LastLogin = &now
	return nil
}

func (f *fakeStore) QueryVerifyEmail(_ context.Context, tokenHash string) (*models.User, error) {
	for _, u := range f.users {
		if u.VerifyTokenHash != nil && *u.VerifyTokenHash == tokenHash &&
			u.VerifyTokenExpires != nil && u.VerifyTokenExpires.After(f.now()) {
			u.EmailVerified = true
			u.VerifyTokenHash = nil
			u.VerifyTokenExpires = nil
			return u, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) QuerySetResetToken(_ context.Context, email, tokenHash string, expires time.Time) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			u.ResetTokenHash = &tokenHash
			u.ResetTokenExpires = &expires
			return u, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) QueryResetPassword(_ context.Context, tokenHash, passwordHash string) (*models.User, error) {
	for _, u := range f.users {
		if u.ResetTokenHash != nil && *u.ResetTokenHash == tokenHash &&
			u.ResetTokenExpires != nil && u.ResetTokenExpires.After(f.now()) {
			u.PasswordHash = passwordHash
			u.ResetTokenHash = nil
			u.ResetTokenExpires = nil
			u.LoginAttempts = 0
			u.LockUntil = nil
			return u, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) QueryStoreRefreshToken(_ context.Context, user surrealmodels.RecordID, tokenHash string, expires time.Time) error {
	f.tokens[tokenHash] = &models.RefreshToken{
		User:      user,
		TokenHash: tokenHash,
		ExpiresAt: expires,
		CreatedAt: f.now(),
	}
	return nil
}

func (f *fakeStore) QueryGetRefreshToken(_ context.Context, tokenHash string) (*models.RefreshToken, error) {
	if t, ok := f.tokens[tokenHash]; ok {
		return t, nil
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) QueryDeleteRefreshToken(_ context.Context, tokenHash string) error {
	delete(f.tokens, tokenHash)
	return nil
}

func (f *fakeStore) QueryDeleteUserRefreshTokens(_ context.Context, user surrealmodels.RecordID) error {
	for hash, t := range f.tokens {
		if t.User == user {
			delete(f.tokens, hash)
		}
	}
	return nil
}

// recordingMailer captures sent tokens.
type recordingMailer struct {
	verifyTokens map[string]string
	resetTokens  map[string]string
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{
		verifyTokens: make(map[string]string),
		resetTokens:  make(map[string]string),
	}
}

func (m *recordingMailer) SendVerification(_ context.Context, email, token string) error {
	m.verifyTokens[email] = token
	return nil
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, email, token string) error {
	m.resetTokens[email] = token
	return nil
}

type accountFixture struct {
	svc    *AccountService
	store  *fakeStore
	mailer *recordingMailer
	tokens *auth.Tokens
	now    time.Time
}

func newAccountFixture(t *testing.T) *accountFixture {
	t.Helper()

	fix := &accountFixture{
		now:    time.Date(2025, 8, 29, 10, 0, 0, 0, time.UTC),
		mailer: newRecordingMailer(),
	}
	clock := func() time.Time { return fix.now }

	fix.store = newFakeStore(clock)
	fix.tokens = auth.NewTokens("test-secret", 30*24*time.Hour, 90*24*time.Hour).WithClock(clock)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	fix.svc = NewAccountService(fix.store, fix.tokens, fix.mailer, log).WithClock(clock)
	return fix
}

func (fix *accountFixture) register(t *testing.T) *models.User {
	t.Helper()
	user, err := fix.svc.Register(context.Background(), "alice", "alice@example.com", "correct-password")
	require.NoError(t, err)
	return user
}

func TestRegister(t *testing.T) {
	fix := newAccountFixture(t)

	user := fix.register(t)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, models.PlanFree, user.Plan)
	assert.False(t, user.EmailVerified)
	// password is stored hashed
	assert.NotEqual(t, "correct-password", user.PasswordHash)
	assert.True(t, auth.CheckPassword(user.PasswordHash, "correct-password"))

	// the mailed token hashes to the stored hash
	raw := fix.mailer.verifyTokens["alice@example.com"]
	require.NotEmpty(t, raw)
	require.NotNil(t, user.VerifyTokenHash)
	assert.Equal(t, *user.VerifyTokenHash, auth.HashToken(raw))
}

func TestRegisterDuplicate(t *testing.T) {
	fix := newAccountFixture(t)
	fix.register(t)

	_, err := fix.svc.Register(context.Background(), "alice2", "alice@example.com", "pw")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	fix := newAccountFixture(t)
	fix.register(t)

	for _, login := range []string{"alice", "alice@example.com"} {
		session, err := fix.svc.Login(context.Background(), login, "correct-password")
		require.NoError(t, err, "login %q", login)

		claims, err := fix.tokens.ParseAccessToken(session.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "u1", claims.Subject)
		assert.Equal(t, models.RoleUser, claims.Role)

		// the refresh token is persisted hashed
		_, err = fix.store.QueryGetRefreshToken(context.Background(), auth.HashToken(session.RefreshToken))
		assert.NoError(t, err)
	}

	user, err := fix.store.QueryGetUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, user.LastLogin)
}

func TestLoginUnknownUser(t *testing.T) {
	fix := newAccountFixture(t)

	_, err := fix.svc.Login(context.Background(), "nobody", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginLockout(t *testing.T) {
	fix := newAccountFixture(t)
	fix.register(t)
	ctx := context.Background()

	// four failures: still just invalid credentials
	for i := 0; i < MaxLoginAttempts-1; i++ {
		_, err := fix.svc.Login(ctx, "alice", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	// the fifth locks the account
	_, err := fix.svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrAccountLocked)

	// even the correct password is refused while locked
	_, err = fix.svc.Login(ctx, "alice", "correct-password")
	assert.ErrorIs(t, err, ErrAccountLocked)

	// after the lock expires the correct password works again
	fix.now = fix.now.Add(LockDuration + time.Minute)
	session, err := fix.svc.Login(ctx, "alice", "correct-password")
	require.NoError(t, err)
	require.NotNil(t, session)

	user, err := fix.store.QueryGetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, user.LoginAttempts)
	assert.Nil(t, user.LockUntil)
}

func TestRefreshRotation(t *testing.T) {
	fix := newAccountFixture(t)
	fix.register(t)
	ctx := context.Background()

	session, err := fix.svc.Login(ctx, "alice", "correct-password")
	require.NoError(t, err)

	rotated, err := fix.svc.Refresh(ctx, session.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, session.RefreshToken, rotated.RefreshToken)

	// the old token is revoked by rotation
	_, err = fix.svc.Refresh(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	// the new one works
	_, err = fix.svc.Refresh(ctx, rotated.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshExpired(t *testing.T) {
	fix := newAccountFixture(t)
	fix.register(t)
	ctx := context.Background()

	session, err := fix.svc.Login(ctx, "alice", "correct-password")
	require.NoError(t, err)

	fix.now = fix.now.Add(91 * 24 * time.Hour)
	_, err = fix.svc.Refresh(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestLogout(t *testing.T) {
	fix := newAccountFixture(t)
	fix.register(t)
	ctx := context.Background()

	session, err := fix.svc.Login(ctx, "alice", "correct-password")
	require.NoError(t, err)

	require.NoError(t, fix.svc.Logout(ctx, session.RefreshToken))

	_, err = fix.svc.Refresh(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	// logging out twice is fine
	assert.NoError(t, fix.svc.Logout(ctx, session.RefreshToken))
}

func TestVerifyEmail(t *testing.T) {
	fix := newAccountFixture(t)
	fix.register(t)
	ctx := context.Background()

	raw := fix.mailer.verifyTokens["alice@example.com"]
	user, err := fix.svc.VerifyEmail(ctx, raw)
	require.NoError(t, err)
	assert.True(t, user.EmailVerified)

	// single use
	_, err = fix.svc.VerifyEmail(ctx, raw)
	assert.ErrorIs(t, err, ErrInvalidActionToken)

	_, err = fix.svc.VerifyEmail(ctx, "bogus")
	assert.ErrorIs(t, err, ErrInvalidActionToken)
}

func TestVerifyEmailExpiredToken(t *testing.T) {
	fix := newAccountFixture(t)
	fix.register(t)

	fix.now = fix.now.Add(VerifyTokenTTL + time.Minute)

	raw := fix.mailer.verifyTokens["alice@example.com"]
	_, err := fix.svc.VerifyEmail(context.Background(), raw)
	assert.ErrorIs(t, err, ErrInvalidActionToken)
}

func TestPasswordResetFlow(t *testing.T) {
	fix := newAccountFixture(t)
	fix.register(t)
	ctx := context.Background()

	// a live session that must die with the reset
	session, err := fix.svc.Login(ctx, "alice", "correct-password")
	require.NoError(t, err)

	require.NoError(t, fix.svc.ForgotPassword(ctx, "alice@example.com"))
	raw := fix.mailer.resetTokens["alice@example.com"]
	require.NotEmpty(t, raw)

	require.NoError(t, fix.svc.ResetPassword(ctx, raw, "new-password"))

	// old password is out, new one is in
	_, err = fix.svc.Login(ctx, "alice", "correct-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = fix.svc.Login(ctx, "alice", "new-password")
	assert.NoError(t, err)

	// existing sessions were revoked
	_, err = fix.svc.Refresh(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	// the reset token is single use
	assert.ErrorIs(t, fix.svc.ResetPassword(ctx, raw, "again"), ErrInvalidActionToken)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	fix := newAccountFixture(t)

	// silent success, nothing mailed
	require.NoError(t, fix.svc.ForgotPassword(context.Background(), "nobody@example.com"))
	assert.Empty(t, fix.mailer.resetTokens)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	fix := newAccountFixture(t)
	fix.register(t)
	ctx := context.Background()

	require.NoError(t, fix.svc.ForgotPassword(ctx, "alice@example.com"))
	raw := fix.mailer.resetTokens["alice@example.com"]

	fix.now = fix.now.Add(ResetTokenTTL + time.Minute)
	assert.ErrorIs(t, fix.svc.ResetPassword(ctx, raw, "new"), ErrInvalidActionToken)
}
