package router

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/ovaphlow/onlyarts/service-core-go/internal/auth"
	"github.com/ovaphlow/onlyarts/service-core-go/internal/notification"
	notificationrepo "github.com/ovaphlow/onlyarts/service-core-go/internal/notification/repo"
	tokenrepo "github.com/ovaphlow/onlyarts/service-core-go/internal/token/repo"
	"github.com/ovaphlow/onlyarts/service-core-go/internal/user"
	userrepo "github.com/ovaphlow/onlyarts/service-core-go/internal/user/repo"
)

// RequestIDHeader carries the per-request id in both directions.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// RequestIDFrom returns the id assigned by RequestIDMiddleware.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestIDMiddleware keeps an incoming X-Request-ID or assigns a KSUID.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" || len(id) > 64 {
				id = ksuid.New().String()
			}
			w.Header().Set(RequestIDHeader, id)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
		})
	}
}

// LoggingMiddleware logs requests at debug level.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"request_id", RequestIDFrom(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
			)
		})
	}
}

// SecurityHeadersMiddleware sets common HTTP security headers. The API
// only returns JSON, so no-store caching is applied as well.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Cache-Control", "no-store")
			if h.Get("Content-Security-Policy") == "" {
				h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			}
			// HSTS only over TLS, 30 days
			if r.TLS != nil {
				h.Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Deps holds the handlers mounted by RegisterRoutes.
type Deps struct {
	Authority     *auth.Authority
	Auth          *auth.Handler
	Notifications *notification.Handler
	// Ping reports database health; nil skips the check.
	Ping func(ctx context.Context) error
}

// NewDeps wires repositories, services and handlers on top of db.
func NewDeps(db *sqlx.DB, cfg auth.Config, logger *zap.SugaredLogger) *Deps {
	users := user.NewUserService(userrepo.NewUserRepo(db), nil, logger)
	authority := auth.NewAuthority(tokenrepo.NewTokenRepo(db), nil, cfg, logger)
	notices := notification.NewService(notificationrepo.NewNotificationRepo(db))
	notifier := auth.NotifierFunc(func(ctx context.Context, userID, msg string) error {
		_, err := notices.Notify(ctx, userID, msg)
		return err
	})
	return &Deps{
		Authority:     authority,
		Auth:          auth.NewHandler(users, authority, auth.LogDelivery{Logger: logger}, notifier, logger),
		Notifications: notification.NewHandler(notices, logger),
		Ping:          db.PingContext,
	}
}

// RegisterRoutes mounts all handlers on a ServeMux and wraps it with the
// request id, logging and security header middleware.
func RegisterRoutes(logger *zap.SugaredLogger, deps *Deps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if deps.Ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := deps.Ping(ctx); err != nil {
				logger.Warnw("health check failed", "err", err)
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if deps.Auth != nil {
		deps.Auth.Mount(mux)
	}
	if deps.Notifications != nil && deps.Authority != nil {
		deps.Notifications.Mount(mux, deps.Authority)
	}

	return RequestIDMiddleware()(LoggingMiddleware(logger)(SecurityHeadersMiddleware()(mux)))
}
