package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/plainpress/server/internal/storage"
	"github.com/plainpress/server/types"
)

const (
	articleExt         = ".json"
	articleContentType = "application/json"
)

var articleIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// DocumentBackend is the subset of object storage the repository needs.
type DocumentBackend interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
}

// ArticleRepository keeps one JSON document per article, keyed by id.
type ArticleRepository struct {
	backend     DocumentBackend
	prefix      string
	skipCorrupt bool
	logger      *slog.Logger
}

// ArticleOption configures an ArticleRepository.
type ArticleOption func(*ArticleRepository)

// WithSkipCorrupt makes List skip documents that fail to parse instead of
// failing the whole listing.
func WithSkipCorrupt(skip bool) ArticleOption {
	return func(r *ArticleRepository) {
		r.skipCorrupt = skip
	}
}

// WithLogger sets the logger used to report skipped documents.
func WithLogger(logger *slog.Logger) ArticleOption {
	return func(r *ArticleRepository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewArticleRepository(backend DocumentBackend, prefix string, opts ...ArticleOption) *ArticleRepository {
	r := &ArticleRepository{
		backend: backend,
		prefix:  prefix,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// List returns every stored article ordered by date, most recent first.
func (r *ArticleRepository) List(ctx context.Context) ([]types.Article, error) {
	keys, err := r.backend.List(ctx, r.prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: list articles: %w", ErrStorage, err)
	}

	articles := make([]types.Article, 0, len(keys))
	for _, key := range keys {
		id, ok := r.idFromKey(key)
		if !ok {
			continue
		}

		article, err := r.Get(ctx, id)
		switch {
		case err == nil:
			articles = append(articles, article)
		case errors.Is(err, ErrNotFound):
			// removed between listing and reading
		case errors.Is(err, ErrCorruptDocument) && r.skipCorrupt:
			r.logger.Warn("skipping corrupt article", slog.String("id", id), slog.Any("error", err))
		default:
			return nil, err
		}
	}

	SortByDate(articles)
	return articles, nil
}

func (r *ArticleRepository) Get(ctx context.Context, id string) (types.Article, error) {
	if !articleIDPattern.MatchString(id) {
		return types.Article{}, fmt.Errorf("article %q: %w", id, ErrNotFound)
	}

	body, err := r.backend.Get(ctx, r.key(id))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return types.Article{}, fmt.Errorf("article %s: %w", id, ErrNotFound)
		}
		return types.Article{}, fmt.Errorf("%w: read article %s: %w", ErrStorage, id, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return types.Article{}, fmt.Errorf("%w: read article %s: %w", ErrStorage, id, err)
	}

	var doc types.ArticleInput
	if err := json.Unmarshal(data, &doc); err != nil {
		return types.Article{}, fmt.Errorf("%w: article %s: %w", ErrCorruptDocument, id, err)
	}
	return doc.WithID(id), nil
}

// Save writes the document for id, replacing any existing one wholesale.
// It does not check whether the article already exists.
func (r *ArticleRepository) Save(ctx context.Context, id string, input types.ArticleInput) (types.Article, error) {
	if !articleIDPattern.MatchString(id) {
		return types.Article{}, fmt.Errorf("article %q: %w", id, ErrNotFound)
	}

	data, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return types.Article{}, err
	}
	if err := r.backend.Put(ctx, r.key(id), bytes.NewReader(data), int64(len(data)), articleContentType); err != nil {
		return types.Article{}, fmt.Errorf("%w: write article %s: %w", ErrStorage, id, err)
	}
	return input.WithID(id), nil
}

func (r *ArticleRepository) Delete(ctx context.Context, id string) error {
	if !articleIDPattern.MatchString(id) {
		return fmt.Errorf("article %q: %w", id, ErrNotFound)
	}

	if err := r.backend.Delete(ctx, r.key(id)); err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return fmt.Errorf("article %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("%w: delete article %s: %w", ErrStorage, id, err)
	}
	return nil
}

// Exists reports whether a document is stored for id.
func (r *ArticleRepository) Exists(ctx context.Context, id string) (bool, error) {
	if !articleIDPattern.MatchString(id) {
		return false, nil
	}

	body, err := r.backend.Get(ctx, r.key(id))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%w: stat article %s: %w", ErrStorage, id, err)
	}
	_ = body.Close()
	return true, nil
}

func (r *ArticleRepository) key(id string) string {
	return r.prefix + id + articleExt
}

func (r *ArticleRepository) idFromKey(key string) (string, bool) {
	rest, ok := strings.CutPrefix(key, r.prefix)
	if !ok {
		return "", false
	}
	id, ok := strings.CutSuffix(rest, articleExt)
	if !ok || !articleIDPattern.MatchString(id) {
		return "", false
	}
	return id, true
}
