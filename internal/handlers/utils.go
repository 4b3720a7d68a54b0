package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/plainpress/server/types"
)

const maxBodyBytes = 10 << 20

type contextKey string

const (
	contextTokenKey  contextKey = "session_token"
	contextStatusKey contextKey = "session_status"
)

// ErrorResponse is a simple error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

func withSession(ctx context.Context, token string, status types.SessionStatus) context.Context {
	ctx = context.WithValue(ctx, contextTokenKey, token)
	return context.WithValue(ctx, contextStatusKey, status)
}

func sessionFromContext(ctx context.Context) (string, types.SessionStatus) {
	token, _ := ctx.Value(contextTokenKey).(string)
	status, ok := ctx.Value(contextStatusKey).(types.SessionStatus)
	if !ok {
		return token, types.AnonymousStatus()
	}
	return token, status
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// respondError answers API clients with JSON and browsers with plain text.
func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	if wantsJSON(r) {
		writeError(w, status, message)
		return
	}
	http.Error(w, message, status)
}

func isJSONBody(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

const apiPrefix = "/api/"

// wantsJSON reports whether the client is an API consumer rather than a
// browser submitting a form. Everything under /api/ always speaks JSON.
func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, apiPrefix) ||
		isJSONBody(r) ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}

// decodeBody fills dst from a JSON body, or from form values keyed by the
// given field names for urlencoded and multipart bodies.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, fields map[string]*string) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if isJSONBody(r) {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return errors.New("invalid request")
		}
		return nil
	}

	if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return errors.New("invalid form")
	}
	for name, target := range fields {
		*target = r.PostFormValue(name)
	}
	return nil
}
