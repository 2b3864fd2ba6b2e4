// Package statepg persists contract state in PostgreSQL. The store maps the
// contract's key-value interface onto a single bytea table; the node
// serializes writes, so the store needs no transaction coordination of its
// own.
package statepg

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

const schema = `
CREATE TABLE IF NOT EXISTS nova_state (
    key   BYTEA PRIMARY KEY,
    value BYTEA NOT NULL
);`

const opTimeout = 5 * time.Second

// Store implements contract.State on a pgx connection pool. The contract
// interface has no error returns, so failures are logged and latched; hosts
// should check Err after a batch of calls.
type Store struct {
	pool *pgxpool.Pool
	log  *logrus.Entry

	mu      sync.Mutex
	lastErr error
}

// New connects to databaseURL and ensures the state table exists.
func New(ctx context.Context, databaseURL string, log *logrus.Logger) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure state table: %w", err)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{
		pool: pool,
		log:  log.WithField("component", "statepg"),
	}, nil
}

// Close releases the pool.
func (s *Store) Close() { s.pool.Close() }

// Err returns the first operation failure since the last Reset, nil when all
// operations succeeded.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Reset clears the latched error.
func (s *Store) Reset() {
	s.mu.Lock()
	s.lastErr = nil
	s.mu.Unlock()
}

func (s *Store) fail(op string, err error) {
	s.log.WithError(err).WithField("op", op).Error("state operation failed")
	s.mu.Lock()
	if s.lastErr == nil {
		s.lastErr = fmt.Errorf("state %s: %w", op, err)
	}
	s.mu.Unlock()
}

func (s *Store) Set(key, value string) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO nova_state (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		[]byte(key), []byte(value))
	if err != nil {
		s.fail("set", err)
	}
}

func (s *Store) Get(key string) *string {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	var value []byte
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM nova_state WHERE key = $1`, []byte(key)).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.fail("get", err)
		return nil
	}
	v := string(value)
	return &v
}

func (s *Store) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM nova_state WHERE key = $1`, []byte(key)); err != nil {
		s.fail("delete", err)
	}
}
