package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/MikhailRaia/slug-shortener/internal/model"
	"github.com/MikhailRaia/slug-shortener/internal/storage"
)

const createTableQuery = `
	CREATE TABLE IF NOT EXISTS short_links (
		id         TEXT PRIMARY KEY,
		slug       TEXT NOT NULL UNIQUE,
		dest       TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	);
`

type Storage struct {
	pool *pgxpool.Pool
}

// NewStorage connects to PostgreSQL and makes sure the schema exists.
func NewStorage(ctx context.Context, dsn string) (*Storage, error) {
	if dsn == "" {
		return nil, errors.New("database connection string is empty")
	}

	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", classify(err))
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", classify(err))
	}

	s := &Storage{
		pool: pool,
	}

	if _, err := s.pool.Exec(ctx, createTableQuery); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create short_links table: %w", err)
	}

	return s, nil
}

func (s *Storage) FindOne(ctx context.Context, slug string) (*model.ShortLink, error) {
	var link model.ShortLink

	err := s.pool.QueryRow(ctx,
		"SELECT id, slug, dest, created_at FROM short_links WHERE slug = $1", slug,
	).Scan(&link.ID, &link.Slug, &link.Dest, &link.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find slug %q: %w", slug, classify(err))
	}

	return &link, nil
}

// Insert relies on the UNIQUE constraint on slug, so concurrent inserts of
// the same slug are resolved by the database.
func (s *Storage) Insert(ctx context.Context, link model.ShortLink) (*model.ShortLink, error) {
	link.ID = uuid.NewString()

	err := s.pool.QueryRow(ctx,
		"INSERT INTO short_links (id, slug, dest) VALUES ($1, $2, $3) RETURNING created_at",
		link.ID, link.Slug, link.Dest,
	).Scan(&link.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert slug %q: %w", link.Slug, classify(err))
	}

	return &link, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Storage) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// classify maps driver errors onto the storage error kinds.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return fmt.Errorf("%w: %s", storage.ErrDuplicateKey, pgErr.Message)
	}

	if pgconn.Timeout(err) || pgconn.SafeToRetry(err) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", storage.ErrUnavailable, err)
	}

	return err
}
