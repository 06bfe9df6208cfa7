package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/ovaphlow/onlyarts/service-core-go/internal/token"
)

// TokenHeader is the header clients of the platform send their token in.
const TokenHeader = "authtoken"

type ctxKey struct{}

// TokenFromRequest reads the authtoken header, falling back to
// "Authorization: Bearer <token>".
func TokenFromRequest(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(TokenHeader)); v != "" {
		return v
	}
	h := r.Header.Get("Authorization")
	if len(h) > len("bearer ") && strings.EqualFold(h[:len("bearer ")], "bearer ") {
		return strings.TrimSpace(h[len("bearer "):])
	}
	return ""
}

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFrom returns the identity put in place by RequireToken.
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(*Identity)
	return id, ok && id != nil
}

// RequireToken rejects requests without a valid token of purpose p.
func RequireToken(a *Authority, p token.Purpose) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := a.ValidateFor(r.Context(), TokenFromRequest(r), p)
			if err != nil {
				writeAuthError(w, a, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func writeAuthError(w http.ResponseWriter, a *Authority, err error) {
	if IsTokenError(err) {
		writeJSON(w, http.StatusUnauthorized, errorBody("invalid authentication token"))
		return
	}
	a.logger.Errorw("token validation failed", "err", err)
	writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
}
