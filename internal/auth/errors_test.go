package auth

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenErrorIs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &TokenError{Kind: KindExpired})
	assert.True(t, errors.Is(err, ErrTokenExpired))
	assert.False(t, errors.Is(err, ErrTokenInvalidated))
	assert.True(t, IsTokenError(err))
	assert.False(t, IsTokenError(errors.New("other")))
}

func TestTokenErrorMessage(t *testing.T) {
	assert.Equal(t, "token not_found", ErrTokenNotFound.Error())
	e := &TokenError{Kind: KindWrongPurpose, Err: errors.New("want login")}
	assert.Equal(t, "token wrong_purpose: want login", e.Error())
	assert.Equal(t, "unknown", TokenErrorKind(99).String())
}

func TestTokenErrorBecause(t *testing.T) {
	cause := errors.New("bad bits")
	err := ErrTokenMalformed.because(cause)
	assert.True(t, errors.Is(err, ErrTokenMalformed))
	assert.True(t, errors.Is(err, cause))
	assert.Nil(t, ErrTokenMalformed.Err)
	assert.Equal(t, "token malformed: bad bits", err.Error())
}
