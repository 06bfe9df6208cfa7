package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/onlyarts/service-core-go/internal/token"
	"github.com/ovaphlow/onlyarts/service-core-go/internal/user"
)

const (
	noticePasswordChanged = "Your password was changed."
	noticePasswordReset   = "Your password was reset."
)

// Handler exposes the /v1/authen and /v1/password endpoints.
type Handler struct {
	users     *user.UserService
	authority *Authority
	delivery  ResetDelivery
	notifier  Notifier
	logger    *zap.SugaredLogger
}

func NewHandler(users *user.UserService, authority *Authority, delivery ResetDelivery, notifier Notifier, logger *zap.SugaredLogger) *Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if delivery == nil {
		delivery = LogDelivery{Logger: logger}
	}
	return &Handler{users: users, authority: authority, delivery: delivery, notifier: notifier, logger: logger}
}

// TokenResponse is returned whenever a login token is issued.
type TokenResponse struct {
	UserID     string    `json:"user_id"`
	Token      string    `json:"token"`
	Purpose    string    `json:"purpose"`
	ValidFrom  time.Time `json:"valid_from"`
	ValidUntil time.Time `json:"valid_until"`
}

func tokenResponse(t *token.Token) TokenResponse {
	p, _ := t.Purpose()
	return TokenResponse{UserID: t.UserID, Token: t.Value, Purpose: p.String(), ValidFrom: t.ValidFrom, ValidUntil: t.ValidUntil}
}

// RegisterRequest request body for register endpoint.
type RegisterRequest struct {
	RoleID    string `json:"role_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	Bio       string `json:"bio"`
	Password  string `json:"password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}
	u, err := h.users.Register(r.Context(), user.RegisterInput{
		RoleID: req.RoleID, FirstName: req.FirstName, LastName: req.LastName, Avatar: req.Avatar,
		Phone: req.Phone, Email: req.Email, Address: req.Address, Bio: req.Bio, Password: req.Password,
	})
	switch {
	case errors.Is(err, user.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
		return
	case errors.Is(err, user.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	case err != nil:
		h.internal(w, "register failed", err)
		return
	}
	t, err := h.authority.IssueLoginToken(r.Context(), u.ID)
	if err != nil {
		h.internal(w, "issue login token failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, tokenResponse(t))
}

// LoginRequest login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}
	u, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrBadCredentials), errors.Is(err, user.ErrBanned), errors.Is(err, user.ErrRemoved):
			h.logger.Debugw("login rejected", "err", err)
			writeJSON(w, http.StatusNotAcceptable, errorBody(err.Error()))
		default:
			h.internal(w, "login failed", err)
		}
		return
	}
	t, err := h.authority.IssueLoginToken(r.Context(), u.ID)
	if err != nil {
		h.internal(w, "issue login token failed", err)
		return
	}
	if err := h.users.SetOnline(r.Context(), u.ID, true); err != nil {
		h.logger.Warnw("set online failed", "user_id", u.ID, "err", err)
	}
	writeJSON(w, http.StatusOK, tokenResponse(t))
}

// Logout invalidates the presented login token. Must run behind RequireToken.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())
	if err := h.authority.Invalidate(r.Context(), TokenFromRequest(r)); err != nil {
		writeAuthError(w, h.authority, err)
		return
	}
	if err := h.users.SetOnline(r.Context(), id.UserID, false); err != nil && !errors.Is(err, user.ErrUserNotFound) {
		h.logger.Warnw("set offline failed", "user_id", id.UserID, "err", err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"user_id": id.UserID})
}

// Account returns the profile of the token owner with 202, as clients of
// the platform expect. Must run behind RequireToken.
func (h *Handler) Account(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())
	u, err := h.users.GetByID(r.Context(), id.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
			return
		}
		h.internal(w, "load account failed", err)
		return
	}
	writeJSON(w, http.StatusAccepted, u)
}

// Introspect reports whether a token is active, RFC 7662 style. The token
// is read from the "token" form field.
func (h *Handler) Introspect(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid_request"))
		return
	}
	value := r.Form.Get("token")
	if value == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid_request"))
		return
	}
	id, err := h.authority.Validate(r.Context(), value)
	if err != nil {
		if IsTokenError(err) {
			writeJSON(w, http.StatusOK, map[string]any{"active": false})
			return
		}
		h.internal(w, "introspect failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"active":  true,
		"sub":     id.UserID,
		"purpose": id.Purpose.String(),
		"exp":     id.ExpiresAt.Unix(),
	})
}

// PasswordRequest carries a new password.
type PasswordRequest struct {
	Password string `json:"password"`
}

// ChangePassword needs the old password in the "oldpassword" header.
// Must run behind RequireToken.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())
	var req PasswordRequest
	if !h.decode(w, r, &req) {
		return
	}
	err := h.users.ChangePassword(r.Context(), id.UserID, r.Header.Get("oldpassword"), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrCredentialMismatch):
			writeJSON(w, http.StatusUnauthorized, errorBody(err.Error()))
		case errors.Is(err, user.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
		case errors.Is(err, user.ErrInvalidInput):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		default:
			h.internal(w, "change password failed", err)
		}
		return
	}
	h.notify(r, id.UserID, noticePasswordChanged)
	w.WriteHeader(http.StatusNoContent)
}

// AskResetRequest names the account to reset.
type AskResetRequest struct {
	Email string `json:"email"`
}

func (h *Handler) AskReset(w http.ResponseWriter, r *http.Request) {
	var req AskResetRequest
	if !h.decode(w, r, &req) {
		return
	}
	u, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
			return
		}
		h.internal(w, "ask reset failed", err)
		return
	}
	value, err := h.authority.IssueResetToken(r.Context(), u.ID)
	if err != nil {
		h.internal(w, "issue reset token failed", err)
		return
	}
	if err := h.delivery.DeliverResetToken(r.Context(), u, value); err != nil {
		h.internal(w, "deliver reset token failed", err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"message": "reset token sent"})
}

// ResetPassword consumes the reset token in the {resettoken} path segment.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	value := r.PathValue("resettoken")
	var req PasswordRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorBody(user.ErrInvalidInput.Error()))
		return
	}
	id, err := h.authority.ValidateFor(r.Context(), value, token.PurposePasswordReset)
	if err != nil {
		writeAuthError(w, h.authority, err)
		return
	}
	// consume first so a token can never reset twice
	if err := h.authority.Invalidate(r.Context(), value); err != nil {
		writeAuthError(w, h.authority, err)
		return
	}
	if err := h.users.ResetPassword(r.Context(), id.UserID, req.Password); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
			return
		}
		h.internal(w, "reset password failed", err)
		return
	}
	h.notify(r, id.UserID, noticePasswordReset)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) notify(r *http.Request, userID, msg string) {
	if h.notifier == nil {
		return
	}
	if err := h.notifier.Notify(r.Context(), userID, msg); err != nil {
		h.logger.Warnw("notify failed", "user_id", userID, "err", err)
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.logger.Debugw("invalid payload", "path", r.URL.Path, "err", err)
		writeJSON(w, http.StatusBadRequest, errorBody("invalid payload"))
		return false
	}
	return true
}

func (h *Handler) internal(w http.ResponseWriter, msg string, err error) {
	h.logger.Errorw(msg, "err", err)
	writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
}

func errorBody(msg string) map[string]string { return map[string]string{"error": msg} }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
