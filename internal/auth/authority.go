// Package auth issues, validates and invalidates bearer tokens, and exposes
// the HTTP endpoints for login sessions and password management.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/onlyarts/service-core-go/internal/status"
	"github.com/ovaphlow/onlyarts/service-core-go/internal/token"
	"github.com/ovaphlow/onlyarts/service-core-go/pkg/utilities"
)

// Store persists tokens. FindTokenByValue returns nil, nil when absent.
// Concurrent updates to one row are serialized by the store.
type Store interface {
	SaveToken(ctx context.Context, t *token.Token) error
	FindTokenByValue(ctx context.Context, value string) (*token.Token, error)
	UpdateTokenStatus(ctx context.Context, value string, s status.Flags) (bool, error)
}

// Identity is what a valid token resolves to.
type Identity struct {
	UserID    string
	Purpose   token.Purpose
	ExpiresAt time.Time
}

// Authority is the session authority. It holds no state besides its
// collaborators; every call goes to the store.
type Authority struct {
	store  Store
	gen    token.Generator
	cfg    Config
	logger *zap.SugaredLogger
	now    func() time.Time
	newID  func() string
}

type Option func(*Authority)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Authority) { a.now = now }
}

func NewAuthority(store Store, gen token.Generator, cfg Config, logger *zap.SugaredLogger, opts ...Option) *Authority {
	if gen == nil {
		gen = token.RandomGenerator{}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	a := &Authority{
		store:  store,
		gen:    gen,
		cfg:    cfg.normalized(),
		logger: logger,
		now:    time.Now,
		newID:  utilities.NewSnowflakeID,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// IssueLoginToken creates a session token valid for the login TTL.
func (a *Authority) IssueLoginToken(ctx context.Context, userID string) (*token.Token, error) {
	return a.issue(ctx, userID, token.PurposeLogin, a.cfg.LoginTTL)
}

// IssueResetToken creates a single-use password reset token and returns
// its string for out-of-band delivery.
func (a *Authority) IssueResetToken(ctx context.Context, userID string) (string, error) {
	t, err := a.issue(ctx, userID, token.PurposePasswordReset, a.cfg.ResetTTL)
	if err != nil {
		return "", err
	}
	return t.Value, nil
}

func (a *Authority) issue(ctx context.Context, userID string, p token.Purpose, ttl time.Duration) (*token.Token, error) {
	if userID == "" {
		return nil, errors.New("issue token: empty user id")
	}
	value, err := a.gen.Generate(a.cfg.TokenLength)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	s, err := token.NewStatus(p)
	if err != nil {
		return nil, err
	}
	now := a.now().UTC()
	t := &token.Token{
		ID:         a.newID(),
		UserID:     userID,
		Value:      value,
		ValidFrom:  now,
		ValidUntil: now.Add(ttl),
		Status:     s,
	}
	if err := a.store.SaveToken(ctx, t); err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}
	a.logger.Debugw("token issued", "user_id", userID, "purpose", p.String(), "valid_until", t.ValidUntil)
	return t, nil
}

// Validate resolves a token string. Checks run in order: existence,
// expiry, revocation. The purpose is returned, not asserted.
func (a *Authority) Validate(ctx context.Context, value string) (*Identity, error) {
	if value == "" {
		return nil, a.reject(ErrTokenNotFound, "")
	}
	t, err := a.store.FindTokenByValue(ctx, value)
	if err != nil {
		if errors.Is(err, status.ErrUndefinedBits) {
			return nil, a.reject(ErrTokenMalformed.because(err), "")
		}
		return nil, fmt.Errorf("find token: %w", err)
	}
	if t == nil {
		return nil, a.reject(ErrTokenNotFound, "")
	}
	if t.Expired(a.now()) {
		return nil, a.reject(ErrTokenExpired, t.UserID)
	}
	if !t.Valid() {
		return nil, a.reject(ErrTokenInvalidated, t.UserID)
	}
	p, err := t.Purpose()
	if err != nil {
		return nil, a.reject(ErrTokenMalformed.because(err), t.UserID)
	}
	return &Identity{UserID: t.UserID, Purpose: p, ExpiresAt: t.ValidUntil}, nil
}

// ValidateFor is Validate plus a purpose assertion, so a reset token can
// never stand in for a login session or the other way round.
func (a *Authority) ValidateFor(ctx context.Context, value string, want token.Purpose) (*Identity, error) {
	id, err := a.Validate(ctx, value)
	if err != nil {
		return nil, err
	}
	if id.Purpose != want {
		return nil, a.reject(ErrWrongPurpose.because(fmt.Errorf("want %s, got %s", want, id.Purpose)), id.UserID)
	}
	return id, nil
}

// Invalidate clears the valid bit. Invalidating an invalid token is a no-op.
func (a *Authority) Invalidate(ctx context.Context, value string) error {
	t, err := a.store.FindTokenByValue(ctx, value)
	if err != nil {
		if errors.Is(err, status.ErrUndefinedBits) {
			return a.reject(ErrTokenMalformed.because(err), "")
		}
		return fmt.Errorf("find token: %w", err)
	}
	if t == nil {
		return a.reject(ErrTokenNotFound, "")
	}
	if !t.Valid() {
		return nil
	}
	ok, err := a.store.UpdateTokenStatus(ctx, value, t.Invalidated())
	if err != nil {
		return fmt.Errorf("update token status: %w", err)
	}
	if !ok {
		return a.reject(ErrTokenNotFound, t.UserID)
	}
	a.logger.Debugw("token invalidated", "user_id", t.UserID)
	return nil
}

func (a *Authority) reject(err *TokenError, userID string) error {
	a.logger.Infow("token rejected", "reason", err.Kind.String(), "user_id", userID)
	return err
}
