// Package service provides business logic for FlowMind operations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/raphaelgruber/flowmind/internal/auth"
	"github.com/raphaelgruber/flowmind/internal/db"
	"github.com/raphaelgruber/flowmind/internal/models"
)

// Account lockout and token lifetime policy.
const (
	MaxLoginAttempts = 5
	LockDuration     = 2 * time.Hour
	VerifyTokenTTL   = 24 * time.Hour
	ResetTokenTTL    = 10 * time.Minute
)

// Sentinel errors surfaced to the API layer.
var (
	// ErrInvalidCredentials covers unknown logins and wrong passwords alike,
	// so responses do not reveal which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountLocked indicates too many failed attempts.
	ErrAccountLocked = errors.New("account locked, try again later")

	// ErrEmailTaken indicates the email or username is already registered.
	ErrEmailTaken = errors.New("email or username already registered")

	// ErrInvalidRefreshToken indicates an unknown, revoked or expired refresh token.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrInvalidActionToken indicates an unknown, used or expired
	// verification or reset token.
	ErrInvalidActionToken = errors.New("invalid or expired token")
)

// UserStore is the persistence surface the account service needs.
// *db.Client implements it.
type UserStore interface {
	QueryCreateUser(ctx context.Context, p db.NewUserParams) (*models.User, error)
	QueryGetUser(ctx context.Context, id string) (*models.User, error)
	QueryFindUserByLogin(ctx context.Context, login string) (*models.User, error)
	QueryRecordLoginFailure(ctx context.Context, id surrealmodels.RecordID, lockUntil *time.Time) error
	QueryRecordLoginSuccess(ctx context.Context, id surrealmodels.RecordID) error
	QueryVerifyEmail(ctx context.Context, tokenHash string) (*models.User, error)
	QuerySetResetToken(ctx context.Context, email, tokenHash string, expires time.Time) (*models.User, error)
	QueryResetPassword(ctx context.Context, tokenHash, passwordHash string) (*models.User, error)

	QueryStoreRefreshToken(ctx context.Context, user surrealmodels.RecordID, tokenHash string, expires time.Time) error
	QueryGetRefreshToken(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	QueryDeleteRefreshToken(ctx context.Context, tokenHash string) error
	QueryDeleteUserRefreshTokens(ctx context.Context, user surrealmodels.RecordID) error
}

// Session is an authenticated session: the user plus a fresh token pair.
type Session struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

// AccountService handles registration, login and account lifecycle.
type AccountService struct {
	store  UserStore
	tokens *auth.Tokens
	mailer Mailer
	log    *slog.Logger
	now    func() time.Time
}

// NewAccountService creates an account service.
func NewAccountService(store UserStore, tokens *auth.Tokens, mailer Mailer, log *slog.Logger) *AccountService {
	if log == nil {
		log = slog.Default()
	}
	if mailer == nil {
		mailer = &LogMailer{Log: log}
	}
	return &AccountService{
		store:  store,
		tokens: tokens,
		mailer: mailer,
		log:    log,
		now:    time.Now,
	}
}

// WithClock replaces the wall clock, for deterministic tests.
func (s *AccountService) WithClock(now func() time.Time) *AccountService {
	s.now = now
	return s
}

// Register creates a new account and sends the verification mail.
func (s *AccountService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	rawVerify, verifyHash, err := auth.NewOpaqueToken()
	if err != nil {
		return nil, err
	}

	user, err := s.store.QueryCreateUser(ctx, db.NewUserParams{
		Username:           username,
		Email:              email,
		PasswordHash:       passwordHash,
		VerifyTokenHash:    verifyHash,
		VerifyTokenExpires: s.now().Add(VerifyTokenTTL),
	})
	if err != nil {
		if errors.Is(err, db.ErrUserAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	// Mail delivery failure is not fatal; the token can be re-requested.
	if err := s.mailer.SendVerification(ctx, user.Email, rawVerify); err != nil {
		s.log.Warn("failed to send verification mail", "email", user.Email, "error", err)
	}

	s.log.Info("user registered", "user", user.Username)
	return user, nil
}

// Login authenticates by email or username and issues a token pair.
// Five consecutive failures lock the account for two hours.
func (s *AccountService) Login(ctx context.Context, login, password string) (*Session, error) {
	user, err := s.store.QueryFindUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	now := s.now()
	if user.Locked(now) {
		return nil, ErrAccountLocked
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		var lockUntil *time.Time
		if user.LoginAttempts+1 >= MaxLoginAttempts {
			until := now.Add(LockDuration)
			lockUntil = &until
		}
		if err := s.store.QueryRecordLoginFailure(ctx, user.ID, lockUntil); err != nil {
			s.log.Error("failed to record login failure", "user", user.Username, "error", err)
		}
		if lockUntil != nil {
			s.log.Warn("account locked after repeated failures", "user", user.Username)
			return nil, ErrAccountLocked
		}
		return nil, ErrInvalidCredentials
	}

	if err := s.store.QueryRecordLoginSuccess(ctx, user.ID); err != nil {
		s.log.Error("failed to record login success", "user", user.Username, "error", err)
	}

	session, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}
	s.log.Info("user logged in", "user", user.Username)
	return session, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued.
func (s *AccountService) Refresh(ctx context.Context, rawRefresh string) (*Session, error) {
	hash := auth.HashToken(rawRefresh)

	token, err := s.store.QueryGetRefreshToken(ctx, hash)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	if token.Expired(s.now()) {
		_ = s.store.QueryDeleteRefreshToken(ctx, hash)
		return nil, ErrInvalidRefreshToken
	}

	userID, _ := token.User.ID.(string)
	user, err := s.store.QueryGetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	if err := s.store.QueryDeleteRefreshToken(ctx, hash); err != nil {
		return nil, err
	}

	return s.issueSession(ctx, user)
}

// Logout revokes one refresh token. Unknown tokens are not an error.
func (s *AccountService) Logout(ctx context.Context, rawRefresh string) error {
	return s.store.QueryDeleteRefreshToken(ctx, auth.HashToken(rawRefresh))
}

// VerifyEmail consumes a verification token.
func (s *AccountService) VerifyEmail(ctx context.Context, rawToken string) (*models.User, error) {
	user, err := s.store.QueryVerifyEmail(ctx, auth.HashToken(rawToken))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrInvalidActionToken
		}
		return nil, err
	}
	s.log.Info("email verified", "user", user.Username)
	return user, nil
}

// ForgotPassword stores a reset token and mails it. Unknown emails succeed
// silently so the endpoint does not reveal which accounts exist.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	rawReset, resetHash, err := auth.NewOpaqueToken()
	if err != nil {
		return err
	}

	user, err := s.store.QuerySetResetToken(ctx, email, resetHash, s.now().Add(ResetTokenTTL))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			s.log.Info("password reset requested for unknown email", "email", email)
			return nil
		}
		return err
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, rawReset); err != nil {
		s.log.Warn("failed to send reset mail", "email", user.Email, "error", err)
	}
	return nil
}

// ResetPassword consumes a reset token, replaces the password and revokes
// every refresh token the user holds.
func (s *AccountService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	user, err := s.store.QueryResetPassword(ctx, auth.HashToken(rawToken), passwordHash)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrInvalidActionToken
		}
		return err
	}

	if err := s.store.QueryDeleteUserRefreshTokens(ctx, user.ID); err != nil {
		s.log.Error("failed to revoke sessions after reset", "user", user.Username, "error", err)
	}

	s.log.Info("password reset", "user", user.Username)
	return nil
}

// Me loads the account behind an access-token subject.
func (s *AccountService) Me(ctx context.Context, userID string) (*models.User, error) {
	return s.store.QueryGetUser(ctx, userID)
}

func (s *AccountService) issueSession(ctx context.Context, user *models.User) (*Session, error) {
	userID, _ := user.ID.ID.(string)

	access, err := s.tokens.NewAccessToken(userID, user.Role)
	if err != nil {
		return nil, err
	}

	rawRefresh, refreshHash, err := auth.NewOpaqueToken()
	if err != nil {
		return nil, err
	}

	if err := s.store.QueryStoreRefreshToken(ctx, user.ID, refreshHash, s.now().Add(s.tokens.RefreshTTL())); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &Session{User: user, AccessToken: access, RefreshToken: rawRefresh}, nil
}
