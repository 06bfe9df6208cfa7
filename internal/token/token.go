// Package token holds the bearer token record and its string generator.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/ovaphlow/onlyarts/service-core-go/internal/status"
)

// Purpose is the single use a token was issued for.
type Purpose int

const (
	PurposeUnknown Purpose = iota
	PurposeLogin
	PurposePasswordReset
)

func (p Purpose) String() string {
	switch p {
	case PurposeLogin:
		return "login"
	case PurposePasswordReset:
		return "reset_password"
	default:
		return "unknown"
	}
}

// ErrMalformedStatus means a stored status word does not carry exactly one purpose bit.
var ErrMalformedStatus = errors.New("malformed token status")

var (
	bitValid = status.Token.MustIndex("valid")
	bitReset = status.Token.MustIndex("reset_password")
	bitLogin = status.Token.MustIndex("login")
)

// NewStatus builds the status word of a freshly issued token:
// 0b101 for login, 0b011 for password reset.
func NewStatus(p Purpose) (status.Flags, error) {
	var s status.Flags
	switch p {
	case PurposeLogin:
		s = s.With(bitLogin, true)
	case PurposePasswordReset:
		s = s.With(bitReset, true)
	default:
		return 0, fmt.Errorf("cannot issue token for purpose %s", p)
	}
	return s.With(bitValid, true), nil
}

// Token is a persisted bearer credential. Rows are never deleted, only invalidated.
type Token struct {
	ID         string       `db:"id" json:"-"`
	UserID     string       `db:"user_id" json:"user_id"`
	Value      string       `db:"token" json:"token"`
	ValidFrom  time.Time    `db:"valid_from" json:"valid_from"`
	ValidUntil time.Time    `db:"valid_until" json:"valid_until"`
	Status     status.Flags `db:"status" json:"-"`
}

// Valid reports whether the token has not been invalidated or consumed.
func (t *Token) Valid() bool { return t.Status.Has(bitValid) }

// Expired reports whether now is after ValidUntil.
func (t *Token) Expired(now time.Time) bool { return now.After(t.ValidUntil) }

// Purpose decodes the purpose bits.
func (t *Token) Purpose() (Purpose, error) {
	login, reset := t.Status.Has(bitLogin), t.Status.Has(bitReset)
	switch {
	case login && !reset:
		return PurposeLogin, nil
	case reset && !login:
		return PurposePasswordReset, nil
	}
	return PurposeUnknown, fmt.Errorf("%w: %#b", ErrMalformedStatus, t.Status)
}

// Invalidated returns the status word with the valid bit cleared and
// every other bit left alone.
func (t *Token) Invalidated() status.Flags { return t.Status.With(bitValid, false) }
