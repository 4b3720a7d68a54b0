package storage

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"time"
)

const documentsTable = "documents"

// PostgresClient keeps objects as rows of the documents table.
// The schema is created by the migrate command.
type PostgresClient struct {
	db *sql.DB
}

// NewPostgresClient constructs a backend on an open database handle.
func NewPostgresClient(db *sql.DB) *PostgresClient {
	return &PostgresClient{db: db}
}

// EnsureBucket verifies that the documents table has been migrated.
func (p *PostgresClient) EnsureBucket(ctx context.Context) error {
	var name sql.NullString
	if err := p.db.QueryRowContext(ctx, `SELECT to_regclass($1::text)::text`, documentsTable).Scan(&name); err != nil {
		return err
	}
	if !name.Valid {
		return errors.New("documents table is missing, run `migrate up`")
	}
	return nil
}

// Put inserts or replaces the row for key.
func (p *PostgresClient) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO documents (key, content_type, body, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE
		SET content_type = EXCLUDED.content_type,
			body = EXCLUDED.body,
			updated_at = EXCLUDED.updated_at`
	_, err = p.db.ExecContext(ctx, query, key, contentType, body, time.Now())
	return err
}

// Get returns the body stored for key.
func (p *PostgresClient) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	const query = `SELECT body FROM documents WHERE key = $1`
	var body []byte
	if err := p.db.QueryRowContext(ctx, query, key).Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(body)), nil
}

// Delete removes the row for key.
func (p *PostgresClient) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM documents WHERE key = $1`
	result, err := p.db.ExecContext(ctx, query, key)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrObjectNotFound
	}
	return nil
}

// List returns the keys starting with prefix.
func (p *PostgresClient) List(ctx context.Context, prefix string) ([]string, error) {
	const query = `
		SELECT key
		FROM documents
		WHERE left(key, length($1::text)) = $1::text
		ORDER BY key`
	rows, err := p.db.QueryContext(ctx, query, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// Bucket returns the table name.
func (p *PostgresClient) Bucket() string {
	return documentsTable
}
