package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/plainpress/server/internal/services"
	"github.com/plainpress/server/internal/store"
	"github.com/plainpress/server/types"
)

const (
	formFieldTitle   = "title"
	formFieldDate    = "date"
	formFieldContent = "content"
	adminPage        = "/admin"
)

// ArticleHandler provides HTTP handlers for articles.
type ArticleHandler struct {
	articles *services.ArticleService
	logger   *slog.Logger
}

func NewArticleHandler(articles *services.ArticleService, logger *slog.Logger) *ArticleHandler {
	return &ArticleHandler{articles: articles, logger: logger}
}

// ArticleRouter registers the public read routes and the admin-gated write routes.
func ArticleRouter(r chi.Router, articles *services.ArticleService, logger *slog.Logger) {
	handler := NewArticleHandler(articles, logger)

	r.Get("/api/articles", handler.ListArticles)
	r.Get("/api/article/{articleID}", handler.GetArticle)

	r.Group(func(r chi.Router) {
		r.Use(RequireAdmin)
		r.Post("/new", handler.CreateArticle)
		r.Post("/edit/{articleID}", handler.UpdateArticle)
		r.Post("/delete/{articleID}", handler.DeleteArticle)
	})
}

func (h *ArticleHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := h.articles.List(r.Context())
	if err != nil {
		h.fail(w, r, err, "failed to list articles")
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

func (h *ArticleHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	article, err := h.articles.Get(r.Context(), chi.URLParam(r, "articleID"))
	if err != nil {
		h.fail(w, r, err, "failed to fetch article")
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (h *ArticleHandler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	input, err := parseArticleInput(w, r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.articles.Create(r.Context(), input)
	if err != nil {
		h.fail(w, r, err, "failed to create article")
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusCreated, created)
		return
	}
	http.Redirect(w, r, adminPage, http.StatusFound)
}

func (h *ArticleHandler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	input, err := parseArticleInput(w, r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.articles.Update(r.Context(), chi.URLParam(r, "articleID"), input)
	if err != nil {
		h.fail(w, r, err, "failed to save article")
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, updated)
		return
	}
	http.Redirect(w, r, adminPage, http.StatusFound)
}

func (h *ArticleHandler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	if err := h.articles.Remove(r.Context(), chi.URLParam(r, "articleID")); err != nil {
		h.fail(w, r, err, "failed to delete article")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(http.StatusText(http.StatusOK)))
}

// fail maps service errors to responses. Internal details are logged, never
// sent to the client.
func (h *ArticleHandler) fail(w http.ResponseWriter, r *http.Request, err error, message string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, r, http.StatusNotFound, "article not found")
	default:
		h.logger.Error(message, slog.String("path", r.URL.Path), slog.Any("error", err))
		respondError(w, r, http.StatusInternalServerError, message)
	}
}

func parseArticleInput(w http.ResponseWriter, r *http.Request) (types.ArticleInput, error) {
	var input types.ArticleInput
	err := decodeBody(w, r, &input, map[string]*string{
		formFieldTitle:   &input.Title,
		formFieldDate:    &input.Date,
		formFieldContent: &input.Content,
	})
	return input, err
}
