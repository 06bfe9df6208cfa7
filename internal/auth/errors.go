package auth

import "errors"

// TokenErrorKind tells token failures apart for logs; clients see one 401.
type TokenErrorKind int

const (
	KindNotFound TokenErrorKind = iota + 1
	KindExpired
	KindInvalidated
	KindWrongPurpose
	KindMalformed
)

func (k TokenErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindExpired:
		return "expired"
	case KindInvalidated:
		return "invalidated"
	case KindWrongPurpose:
		return "wrong_purpose"
	case KindMalformed:
		return "malformed"
	}
	return "unknown"
}

// TokenError is returned by Validate, ValidateFor and Invalidate.
// None of the kinds are transient.
type TokenError struct {
	Kind TokenErrorKind
	Err  error
}

func (e *TokenError) Error() string {
	msg := "token " + e.Kind.String()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TokenError) Unwrap() error { return e.Err }

// because returns a TokenError of the same kind carrying cause.
func (e *TokenError) because(cause error) *TokenError {
	return &TokenError{Kind: e.Kind, Err: cause}
}

// Is matches any TokenError of the same kind.
func (e *TokenError) Is(target error) bool {
	t, ok := target.(*TokenError)
	return ok && t.Kind == e.Kind
}

var (
	ErrTokenNotFound    = &TokenError{Kind: KindNotFound}
	ErrTokenExpired     = &TokenError{Kind: KindExpired}
	ErrTokenInvalidated = &TokenError{Kind: KindInvalidated}
	ErrWrongPurpose     = &TokenError{Kind: KindWrongPurpose}
	ErrTokenMalformed   = &TokenError{Kind: KindMalformed}
)

// IsTokenError reports whether err carries any TokenError.
func IsTokenError(err error) bool {
	var te *TokenError
	return errors.As(err, &te)
}
