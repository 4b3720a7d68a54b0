package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/plainpress/server/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWantsJSON(t *testing.T) {
	for _, tc := range []struct {
		name        string
		path        string
		contentType string
		accept      string
		want        bool
	}{
		{name: "browser form", path: "/new", contentType: "application/x-www-form-urlencoded", accept: "text/html", want: false},
		{name: "json body", path: "/new", contentType: "application/json; charset=utf-8", want: true},
		{name: "json accept", path: "/login", accept: "application/json", want: true},
		{name: "api route without headers", path: "/api/article/42", want: true},
		{name: "api route from browser", path: "/api/articles", accept: "text/html", want: true},
		{name: "api lookalike", path: "/apiary", want: false},
		{name: "nothing", path: "/", want: false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tc.path, nil)
			if tc.contentType != "" {
				req.Header.Set("Content-Type", tc.contentType)
			}
			if tc.accept != "" {
				req.Header.Set("Accept", tc.accept)
			}
			assert.Equal(t, tc.want, wantsJSON(req))
		})
	}
}

func TestDecodeBodyForms(t *testing.T) {
	var multipartBody bytes.Buffer
	writer := multipart.NewWriter(&multipartBody)
	require.NoError(t, writer.WriteField("title", "Multipart"))
	require.NoError(t, writer.WriteField("content", "body"))
	require.NoError(t, writer.Close())

	for _, tc := range []struct {
		name        string
		contentType string
		body        string
		want        types.ArticleInput
	}{
		{
			name:        "urlencoded",
			contentType: "application/x-www-form-urlencoded",
			body:        url.Values{"title": {"Form"}, "date": {"2024-01-01"}, "content": {"text"}}.Encode(),
			want:        types.ArticleInput{Title: "Form", Date: "2024-01-01", Content: "text"},
		},
		{
			name:        "multipart",
			contentType: writer.FormDataContentType(),
			body:        multipartBody.String(),
			want:        types.ArticleInput{Title: "Multipart", Content: "body"},
		},
		{
			name:        "json",
			contentType: "application/json",
			body:        `{"title":"JSON","date":"June 1, 2024","content":"c"}`,
			want:        types.ArticleInput{Title: "JSON", Date: "June 1, 2024", Content: "c"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/new", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", tc.contentType)

			input, err := parseArticleInput(httptest.NewRecorder(), req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, input)
		})
	}
}

func TestDecodeBodyRejectsMalformedJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/new", strings.NewReader(`{"title":`))
	req.Header.Set("Content-Type", "application/json")

	_, err := parseArticleInput(httptest.NewRecorder(), req)
	assert.Error(t, err)
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	username := "someone"

	for _, tc := range []struct {
		name   string
		status types.SessionStatus
		json   bool
		want   int
	}{
		{name: "admin", status: types.SessionStatus{IsAuthenticated: true, Username: &username, IsAdmin: true}, want: http.StatusNoContent},
		{name: "anonymous browser", status: types.AnonymousStatus(), want: http.StatusFound},
		{name: "anonymous api", status: types.AnonymousStatus(), json: true, want: http.StatusUnauthorized},
		{name: "non-admin browser", status: types.SessionStatus{IsAuthenticated: true, Username: &username}, want: http.StatusFound},
		{name: "non-admin api", status: types.SessionStatus{IsAuthenticated: true, Username: &username}, json: true, want: http.StatusForbidden},
	} {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/new", nil)
			if tc.json {
				req.Header.Set("Accept", "application/json")
			}
			req = req.WithContext(withSession(context.Background(), "token", tc.status))

			rec := httptest.NewRecorder()
			RequireAdmin(next).ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
			if tc.want == http.StatusFound {
				assert.Equal(t, "/login", rec.Header().Get("Location"))
			}
		})
	}
}

func TestSessionFromContextDefaultsToAnonymous(t *testing.T) {
	token, status := sessionFromContext(context.Background())
	assert.Empty(t, token)
	assert.Equal(t, types.AnonymousStatus(), status)
}
