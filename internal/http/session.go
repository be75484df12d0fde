package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/tapdev/tapdev-site/internal/auth"
	"github.com/tapdev/tapdev-site/internal/routes"
)

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string         `json:"token"`
	Principal auth.Principal `json:"principal"`
	ExpiresAt string         `json:"expires_at"`
}

func (api *AdminAPI) registerSessionRoutes(mux *http.ServeMux, protect func(string, http.HandlerFunc), base string) {
	mux.HandleFunc("POST "+joinPath(base, "login"), api.handleLogin)
	protect("POST "+joinPath(base, "logout"), api.handleLogout)
	protect("GET "+joinPath(base, "routes"), api.handleRoutes)
}

func (api *AdminAPI) handleLogin(w http.ResponseWriter, r *http.Request) {
	if api.authenticator == nil {
		unavailable(w)
		return
	}
	var payload loginPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		badRequest(w, "invalid json payload")
		return
	}
	if strings.TrimSpace(payload.Username) == "" || payload.Password == "" {
		badRequest(w, "username and password are required")
		return
	}
	principal, err := api.authenticator.Authenticate(r.Context(), payload.Username, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	session := api.sessions.Issue(principal)
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   api.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusOK, loginResponse{
		Token:     session.Token,
		Principal: principal,
		ExpiresAt: session.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (api *AdminAPI) handleLogout(w http.ResponseWriter, r *http.Request) {
	api.sessions.Revoke(auth.TokenFromRequest(r))
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   api.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (api *AdminAPI) handleRoutes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, routes.All())
}
