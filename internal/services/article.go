package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/plainpress/server/types"
)

const maxMintAttempts = 8

// ArticleRepository defines persistence operations for articles.
type ArticleRepository interface {
	List(ctx context.Context) ([]types.Article, error)
	Get(ctx context.Context, id string) (types.Article, error)
	Save(ctx context.Context, id string, input types.ArticleInput) (types.Article, error)
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}

// EventPublisher receives committed article changes.
type EventPublisher interface {
	PublishArticleEvent(ctx context.Context, event types.ArticleEvent) error
}

// ArticleService encapsulates article use-cases.
type ArticleService struct {
	repo   ArticleRepository
	ids    *IDGenerator
	locks  *keyedMutex
	events EventPublisher
	logger *slog.Logger
	now    func() time.Time
}

// ArticleServiceOption configures an ArticleService.
type ArticleServiceOption func(*ArticleService)

// WithEventPublisher publishes an event after every successful mutation.
func WithEventPublisher(events EventPublisher) ArticleServiceOption {
	return func(s *ArticleService) {
		s.events = events
	}
}

// WithIDGenerator replaces the default id generator.
func WithIDGenerator(ids *IDGenerator) ArticleServiceOption {
	return func(s *ArticleService) {
		if ids != nil {
			s.ids = ids
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) ArticleServiceOption {
	return func(s *ArticleService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewArticleService(repo ArticleRepository, opts ...ArticleServiceOption) *ArticleService {
	s := &ArticleService{
		repo:   repo,
		ids:    NewIDGenerator(),
		locks:  newKeyedMutex(),
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns all articles, most recent date first.
func (s *ArticleService) List(ctx context.Context) ([]types.Article, error) {
	return s.repo.List(ctx)
}

func (s *ArticleService) Get(ctx context.Context, id string) (types.Article, error) {
	return s.repo.Get(ctx, id)
}

// Create stores a new article under a freshly minted id. Every field is
// free-form and may be empty.
func (s *ArticleService) Create(ctx context.Context, input types.ArticleInput) (types.Article, error) {
	for range maxMintAttempts {
		id := s.ids.Next()
		article, created, err := s.createWithID(ctx, id, input)
		if err != nil {
			return types.Article{}, err
		}
		if created {
			s.publish(ctx, types.ArticleCreated, article)
			return article, nil
		}
	}
	return types.Article{}, errors.New("could not mint an unused article id")
}

func (s *ArticleService) createWithID(ctx context.Context, id string, input types.ArticleInput) (types.Article, bool, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return types.Article{}, false, err
	}
	if exists {
		return types.Article{}, false, nil
	}
	article, err := s.repo.Save(ctx, id, input)
	if err != nil {
		return types.Article{}, false, err
	}
	return article, true, nil
}

// Update overwrites the article stored under id. The store does not require
// the article to exist, so updating an unknown id creates it.
func (s *ArticleService) Update(ctx context.Context, id string, input types.ArticleInput) (types.Article, error) {
	unlock := s.locks.Lock(id)
	article, err := s.repo.Save(ctx, id, input)
	unlock()
	if err != nil {
		return types.Article{}, err
	}

	s.publish(ctx, types.ArticleUpdated, article)
	return article, nil
}

func (s *ArticleService) Remove(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	err := s.repo.Delete(ctx, id)
	unlock()
	if err != nil {
		return err
	}

	s.publish(ctx, types.ArticleDeleted, types.Article{ID: id})
	return nil
}

func (s *ArticleService) publish(ctx context.Context, eventType types.ArticleEventType, article types.Article) {
	if s.events == nil {
		return
	}
	event := types.ArticleEvent{
		Type:       eventType,
		ArticleID:  article.ID,
		Title:      article.Title,
		OccurredAt: s.now().UTC(),
	}
	if err := s.events.PublishArticleEvent(ctx, event); err != nil {
		s.logger.Warn("publish article event failed",
			slog.String("type", string(eventType)),
			slog.String("id", article.ID),
			slog.Any("error", err),
		)
	}
}
