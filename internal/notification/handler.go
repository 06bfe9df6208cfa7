package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/onlyarts/service-core-go/internal/auth"
	"github.com/ovaphlow/onlyarts/service-core-go/internal/notification/entity"
	"github.com/ovaphlow/onlyarts/service-core-go/internal/token"
)

type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Handler{svc: svc, logger: logger}
}

// Mount registers the notification routes behind a login token check.
func (h *Handler) Mount(mux *http.ServeMux, a *auth.Authority) {
	login := auth.RequireToken(a, token.PurposeLogin)
	mux.Handle("GET /v1/notifications", login(http.HandlerFunc(h.List)))
	mux.Handle("POST /v1/notifications/{id}/seen", login(http.HandlerFunc(h.MarkSeen)))
	mux.Handle("DELETE /v1/notifications/{id}", login(http.HandlerFunc(h.Remove)))
}

type item struct {
	ID          string    `json:"id"`
	NoticeTime  time.Time `json:"notice_time"`
	Description string    `json:"description"`
	Seen        bool      `json:"seen"`
}

func toItems(ns []entity.Notification) []item {
	out := make([]item, 0, len(ns))
	for i := range ns {
		out = append(out, item{ID: ns[i].ID, NoticeTime: ns[i].NoticeTime, Description: ns[i].Description, Seen: ns[i].IsSeen()})
	}
	return out
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid authentication token"})
		return
	}
	ns, err := h.svc.List(r.Context(), id.UserID)
	if err != nil {
		h.logger.Errorw("list notifications failed", "user_id", id.UserID, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, toItems(ns))
}

func (h *Handler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, h.svc.MarkSeen)
}

func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, h.svc.Remove)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, userID, id string) error) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid authentication token"})
		return
	}
	err := fn(r.Context(), id.UserID, r.PathValue("id"))
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case err != nil:
		h.logger.Errorw("update notification failed", "user_id", id.UserID, "id", r.PathValue("id"), "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
