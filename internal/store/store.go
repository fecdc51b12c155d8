// Package store persists comparisons in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/salaryrace/salaryrace-go/internal/domain"
)

var (
	// ErrNotFound is returned when no comparison has the requested slug.
	ErrNotFound = errors.New("store: not found")
	// ErrSlugTaken is returned when a slug is already in use.
	ErrSlugTaken = errors.New("store: slug already exists")
	// ErrSchemaMissing is returned when the tables have not been created.
	ErrSchemaMissing = errors.New("store: schema missing")
)

// SchemaHint tells an operator how to fix ErrSchemaMissing.
const SchemaHint = "Database schema not found: run `salaryrace migrate` or set SALARYRACE_AUTO_MIGRATE=true"

// timeLayout is fixed-width so created_at sorts as text, and stays readable
// by SQLite date functions. Values are always written in UTC.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is the comparison repository. Open it once and share it.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path. Use ":memory:" for
// a private in-memory database. Open does not migrate.
func Open(ctx context.Context, path string) (*Store, error) {
	memory := path == ":memory:"
	if !memory {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("store: create directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if memory {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// dsn applies the pragmas on every pooled connection.
func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "synchronous(NORMAL)")
	if path != ":memory:" {
		q.Add("_pragma", "journal_mode(WAL)")
	}
	return "file:" + path + "?" + q.Encode()
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// DB exposes the underlying handle for tests and maintenance commands.
func (s *Store) DB() *sql.DB { return s.db }

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Create inserts c and returns it with its row id.
func (s *Store) Create(ctx context.Context, c domain.Comparison) (domain.Comparison, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO comparisons
			(slug, name_a, name_b, annual_a, annual_b, per_sec_a, per_sec_b, currency, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Slug, c.NameA, c.NameB, c.AnnualA, c.AnnualB, c.PerSecA, c.PerSecB, c.Currency,
		c.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return domain.Comparison{}, classify("create", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Comparison{}, fmt.Errorf("store: create: last insert id: %w", err)
	}
	c.ID = id
	return c, nil
}

// GetBySlug returns the comparison with the given slug.
func (s *Store) GetBySlug(ctx context.Context, slug string) (domain.Comparison, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, slug, name_a, name_b, annual_a, annual_b, per_sec_a, per_sec_b, currency, created_at
		FROM comparisons WHERE slug = ?`, slug)
	c, err := scanComparison(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Comparison{}, ErrNotFound
	}
	if err != nil {
		return domain.Comparison{}, classify("get", err)
	}
	return c, nil
}

// Recent returns up to limit comparisons, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]domain.Comparison, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, slug, name_a, name_b, annual_a, annual_b, per_sec_a, per_sec_b, currency, created_at
		FROM comparisons ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, classify("recent", err)
	}
	defer rows.Close()

	var out []domain.Comparison
	for rows.Next() {
		c, err := scanComparison(rows)
		if err != nil {
			return nil, fmt.Errorf("store: recent: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanComparison(sc scanner) (domain.Comparison, error) {
	var (
		c       domain.Comparison
		created string
	)
	if err := sc.Scan(&c.ID, &c.Slug, &c.NameA, &c.NameB, &c.AnnualA, &c.AnnualB,
		&c.PerSecA, &c.PerSecB, &c.Currency, &created); err != nil {
		return domain.Comparison{}, err
	}
	// RFC3339Nano also accepts rows written before the fixed-width layout.
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return domain.Comparison{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	c.CreatedAt = t.UTC()
	return c, nil
}

// classify maps driver errors onto the package sentinels.
func classify(op string, err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "no such table"):
		return fmt.Errorf("store: %s: %w: %v", op, ErrSchemaMissing, err)
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("store: %s: %w", op, ErrSlugTaken)
	}
	return fmt.Errorf("store: %s: %w", op, err)
}
