package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
)

// PageRouter serves the HTML pages and assets of dir. Management pages sit
// behind the admin gate.
func PageRouter(r chi.Router, dir string) {
	page := func(name string) http.HandlerFunc {
		path := filepath.Join(dir, name)
		return func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, path)
		}
	}

	r.Get("/", page("index.html"))
	r.Get("/article/{articleID}", page("article.html"))
	r.Get("/login", page("login.html"))

	r.Group(func(r chi.Router) {
		r.Use(RequireAdmin)
		r.Get("/admin", page("admin.html"))
		r.Get("/new", page("add.html"))
		r.Get("/edit/{articleID}", page("edit.html"))
	})

	r.Handle("/*", http.FileServer(http.Dir(dir)))
}

// Healthz reports that the server is up.
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
