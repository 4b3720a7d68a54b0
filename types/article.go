package types

import "time"

// Article represents a blog post.
// The ID is assigned once at creation and is the key of the stored document;
// the remaining fields make up the document body.
type Article struct {
	// ID is the opaque, immutable identifier of the article.
	ID string `json:"id"`

	// Title is the headline shown in listings.
	Title string `json:"title"`

	// Date is the free-form publication date entered by the author.
	// It is only interpreted as a calendar date when ordering listings.
	Date string `json:"date"`

	// Content is the article body.
	Content string `json:"content"`
}

// ArticleInput is the payload submitted when creating or editing an article.
// An edit overwrites the whole document with these fields.
type ArticleInput struct {
	Title   string `json:"title"`
	Date    string `json:"date"`
	Content string `json:"content"`
}

// WithID attaches an id to the input, producing the full article.
func (in ArticleInput) WithID(id string) Article {
	return Article{
		ID:      id,
		Title:   in.Title,
		Date:    in.Date,
		Content: in.Content,
	}
}

// ArticleEventType names the kind of change an ArticleEvent reports.
type ArticleEventType string

const (
	ArticleCreated ArticleEventType = "created"
	ArticleUpdated ArticleEventType = "updated"
	ArticleDeleted ArticleEventType = "deleted"
)

// ArticleEvent describes a committed change to an article.
type ArticleEvent struct {
	// Type is the kind of change.
	Type ArticleEventType `json:"type"`

	// ArticleID identifies the changed article.
	ArticleID string `json:"article_id"`

	// Title is the article title after the change. Empty for deletions.
	Title string `json:"title,omitempty"`

	// OccurredAt is the time the change was committed.
	OccurredAt time.Time `json:"occurred_at"`
}
