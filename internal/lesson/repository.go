package lesson

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

var ErrNotFound = errors.New("lesson not found")

type Repository interface {
	Create(ctx context.Context, l *Lesson) error
	Get(ctx context.Context, id uuid.UUID) (*Lesson, error)
	List(ctx context.Context, limit int) ([]*Lesson, error)
	Update(ctx context.Context, l *Lesson) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Schema creates the lessons table. Chapters are stored inline as jsonb.
const Schema = `
CREATE TABLE IF NOT EXISTS lessons (
	id          uuid PRIMARY KEY,
	title       text NOT NULL,
	user_color  text NOT NULL,
	chapters    jsonb NOT NULL DEFAULT '[]'::jsonb,
	created_at  timestamptz NOT NULL,
	updated_at  timestamptz NOT NULL
)`

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// OpenPostgres connects to databaseURL and verifies the connection.
func OpenPostgres(ctx context.Context, databaseURL string) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create lessons table: %w", err)
	}
	return nil
}

func (r *repository) Create(ctx context.Context, l *Lesson) error {
	if l == nil {
		return fmt.Errorf("nil lesson payload")
	}
	chapters, err := json.Marshal(l.Chapters)
	if err != nil {
		return fmt.Errorf("marshal chapters: %w", err)
	}

	const query = `
		INSERT INTO lessons (id, title, user_color, chapters, created_at, updated_at)
		VALUES ($1, $2, $3, $4::jsonb, $5, $6)`

	if _, err := r.db.ExecContext(ctx, query,
		l.ID,
		l.Title,
		string(l.UserColor),
		chapters,
		l.CreatedAt,
		l.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert lesson: %w", err)
	}
	return nil
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Lesson, error) {
	const query = `
		SELECT id, title, user_color, chapters, created_at, updated_at
		FROM lessons
		WHERE id = $1`

	l, err := scanLesson(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select lesson: %w", err)
	}
	return l, nil
}

func (r *repository) List(ctx context.Context, limit int) ([]*Lesson, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
		SELECT id, title, user_color, chapters, created_at, updated_at
		FROM lessons
		ORDER BY updated_at DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("select lessons: %w", err)
	}
	defer rows.Close()

	out := make([]*Lesson, 0, limit)
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lessons: %w", err)
	}
	return out, nil
}

func (r *repository) Update(ctx context.Context, l *Lesson) error {
	if l == nil {
		return fmt.Errorf("nil lesson payload")
	}
	chapters, err := json.Marshal(l.Chapters)
	if err != nil {
		return fmt.Errorf("marshal chapters: %w", err)
	}

	const query = `
		UPDATE lessons
		SET title = $2, user_color = $3, chapters = $4::jsonb, updated_at = $5
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, l.ID, l.Title, string(l.UserColor), chapters, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update lesson: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM lessons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLesson(row rowScanner) (*Lesson, error) {
	var (
		l            Lesson
		color        string
		chaptersJSON []byte
	)
	if err := row.Scan(&l.ID, &l.Title, &color, &chaptersJSON, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	l.UserColor = Color(color)
	if err := json.Unmarshal(chaptersJSON, &l.Chapters); err != nil {
		return nil, fmt.Errorf("unmarshal chapters: %w", err)
	}
	return &l, nil
}
