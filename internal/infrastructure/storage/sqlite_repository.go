package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"ContentPublisher/internal/domain"
	"ContentPublisher/internal/ports"
)

const (
	contentsTable = "contents"
	// fixed-width so that lexical order matches chronological order
	timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

var contentColumns = []string{
	"id", "template_id", "title", "slug", "body",
	"metadata", "score", "ai_optimized", "status",
	"author", "tags", "category",
	"created_at", "updated_at", "published_at",
}

// SQLiteRepository persists content records into a SQLite file.
type SQLiteRepository struct {
	db *sql.DB
}

var _ ports.ContentRepository = (*SQLiteRepository)(nil)

// OpenSQLite opens (or creates) the database at path and runs migrations.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)")
	if err != nil {
		return nil, fmt.Errorf("open content db: %w", err)
	}

	if _, err := db.Exec(ContentSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate content db: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Close releases the database handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// Get loads one content record; unknown ids yield nil, nil.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*domain.Content, error) {
	query, args, err := sq.Select(contentColumns...).
		From(contentsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	content, err := scanContent(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get content %s: %w", id, err)
	}
	return content, nil
}

// List returns every record ordered by creation time.
func (r *SQLiteRepository) List(ctx context.Context) ([]domain.Content, error) {
	query, args, err := sq.Select(contentColumns...).
		From(contentsTable).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query contents: %w", err)
	}

	result := make([]domain.Content, 0)
	for rows.Next() {
		content, err := scanContent(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan content: %w", err)
		}
		result = append(result, *content)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

// Save upserts the full content snapshot.
func (r *SQLiteRepository) Save(ctx context.Context, content domain.Content) error {
	metadata, err := json.Marshal(content.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	score, err := json.Marshal(content.Score)
	if err != nil {
		return fmt.Errorf("marshal score: %w", err)
	}
	ai, err := json.Marshal(content.AIOptimized)
	if err != nil {
		return fmt.Errorf("marshal ai payload: %w", err)
	}
	tags, err := json.Marshal(content.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	var publishedAt any
	if content.PublishedAt != nil {
		publishedAt = formatTime(*content.PublishedAt)
	}

	query, args, err := sq.Insert(contentsTable).
		Columns(contentColumns...).
		Values(
			content.ID, content.TemplateID, content.Title, content.Slug, content.Body,
			string(metadata), string(score), string(ai), string(content.Status),
			content.Author, string(tags), content.Category,
			formatTime(content.CreatedAt), formatTime(content.UpdatedAt), publishedAt,
		).
		Suffix(`ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			body = excluded.body,
			metadata = excluded.metadata,
			score = excluded.score,
			ai_optimized = excluded.ai_optimized,
			status = excluded.status,
			author = excluded.author,
			tags = excluded.tags,
			category = excluded.category,
			updated_at = excluded.updated_at,
			published_at = excluded.published_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert content %s: %w", content.ID, err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContent(row rowScanner) (*domain.Content, error) {
	var (
		c                         domain.Content
		status                    string
		metadata, score, ai, tags string
		createdAt, updatedAt      string
		publishedAt               sql.NullString
	)

	err := row.Scan(
		&c.ID, &c.TemplateID, &c.Title, &c.Slug, &c.Body,
		&metadata, &score, &ai, &status,
		&c.Author, &tags, &c.Category,
		&createdAt, &updatedAt, &publishedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Status = domain.ContentStatus(status)
	if err := json.Unmarshal([]byte(metadata), &c.Metadata); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	if err := json.Unmarshal([]byte(score), &c.Score); err != nil {
		return nil, fmt.Errorf("decode score: %w", err)
	}
	if err := json.Unmarshal([]byte(ai), &c.AIOptimized); err != nil {
		return nil, fmt.Errorf("decode ai payload: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &c.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}

	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if publishedAt.Valid {
		ts, err := parseTime(publishedAt.String)
		if err != nil {
			return nil, err
		}
		c.PublishedAt = &ts
	}

	return &c, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return t, nil
}
