package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/plainpress/server/internal/services"
	"github.com/plainpress/server/internal/session"
	"github.com/plainpress/server/types"
)

// AuthHandler provides the session, login and logout endpoints.
type AuthHandler struct {
	auth    *services.AuthService
	cookies *session.CookieCodec
	logger  *slog.Logger
}

func NewAuthHandler(auth *services.AuthService, cookies *session.CookieCodec, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:    auth,
		cookies: cookies,
		logger:  logger,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, auth *services.AuthService, cookies *session.CookieCodec, logger *slog.Logger) {
	handler := NewAuthHandler(auth, cookies, logger)

	r.Get("/api/session", handler.Session)
	r.Post("/login", handler.Login)
	r.Get("/logout", handler.Logout)
}

// Session reports the visitor's authentication state.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	_, status := sessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, status)
}

// Login verifies credentials and starts an authenticated session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeBody(w, r, &req, map[string]*string{
		"username": &req.Username,
		"password": &req.Password,
	}); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	current, _ := sessionFromContext(r.Context())
	token, status, err := h.auth.Login(r.Context(), current, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			respondError(w, r, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		h.logger.Error("login failed", slog.Any("error", err))
		respondError(w, r, http.StatusInternalServerError, "Server error")
		return
	}

	if err := h.cookies.Write(w, token); err != nil {
		h.logger.Error("write session cookie failed", slog.Any("error", err))
		respondError(w, r, http.StatusInternalServerError, "Server error")
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, status)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout destroys the session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, _ := sessionFromContext(r.Context())
	if err := h.auth.Logout(r.Context(), token); err != nil {
		h.logger.Error("logout failed", slog.Any("error", err))
		respondError(w, r, http.StatusInternalServerError, "Could not log out.")
		return
	}

	h.cookies.Clear(w)
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, types.AnonymousStatus())
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
