// Package postgres reads the publishable entities of the collector site from
// Postgres.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/seo-snapshot-generator/internal/snapshot"
)

// DefaultPageSize matches the row cap of the hosted database API.
const DefaultPageSize = 1000

// Config controls the Postgres connection pool and fetch paging.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	PageSize        int
}

type queryCloser interface {
	Query(context.Context, string, ...any) (pgx.Rows, error)
	Ping(context.Context) error
	Close()
}

// Store implements snapshot.EntityFetcher on a pgx pool.
type Store struct {
	pool     queryCloser
	pageSize int
}

var _ snapshot.EntityFetcher = (*Store)(nil)

// New connects a pool using the provided config.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewWithPool(pool, cfg.PageSize)
}

// NewWithPool constructs a store from an existing pool (primarily for testing).
func NewWithPool(pool queryCloser, pageSize int) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Store{pool: pool, pageSize: pageSize}, nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("entity store is not configured")
	}
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// fetchAll pages through query until a short page is returned. The query must
// end with LIMIT and OFFSET placeholders following args.
func fetchAll[T any](ctx context.Context, s *Store, name, query string, scan func(pgx.Rows) (T, error), args ...any) ([]T, error) {
	if s == nil || s.pool == nil {
		return nil, fmt.Errorf("entity store is not configured")
	}
	out := make([]T, 0)
	for offset := 0; ; offset += s.pageSize {
		pageArgs := make([]any, 0, len(args)+2)
		pageArgs = append(pageArgs, args...)
		pageArgs = append(pageArgs, s.pageSize, offset)

		rows, err := s.pool.Query(ctx, query, pageArgs...)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", name, err)
		}
		n := 0
		for rows.Next() {
			item, err := scan(rows)
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan %s: %w", name, err)
			}
			out = append(out, item)
			n++
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if n < s.pageSize {
			return out, nil
		}
	}
}
