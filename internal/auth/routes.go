package auth

import (
	"net/http"

	"github.com/ovaphlow/onlyarts/service-core-go/internal/token"
)

// Mount registers the authentication and password routes on mux.
func (h *Handler) Mount(mux *http.ServeMux) {
	login := RequireToken(h.authority, token.PurposeLogin)

	mux.HandleFunc("POST /v1/authen/register", h.Register)
	mux.HandleFunc("POST /v1/authen/login", h.Login)
	mux.Handle("DELETE /v1/authen/logout", login(http.HandlerFunc(h.Logout)))
	mux.Handle("GET /v1/authen/account", login(http.HandlerFunc(h.Account)))
	mux.HandleFunc("POST /v1/authen/introspect", h.Introspect)

	mux.Handle("POST /v1/password/change", login(http.HandlerFunc(h.ChangePassword)))
	mux.HandleFunc("POST /v1/password/askreset", h.AskReset)
	mux.HandleFunc("POST /v1/password/resetpassword/{resettoken}", h.ResetPassword)
}
