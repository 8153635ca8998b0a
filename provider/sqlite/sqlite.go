// Package sqlite provides a durable Provider backed by a single SQLite
// file. This is the natural store for offline-first use: the last-known-good
// snapshot survives process restarts and works with no external services.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS fallcache_kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	expires_at INTEGER
)`

type Provider struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite file at path and ensures the
// key-value table exists.
func Open(path string) (*Provider, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite provider: path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite provider: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite provider: ping: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite provider: create table: %w", err)
	}
	return &Provider{db: db}, nil
}

func (p *Provider) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	var exp sql.NullInt64
	err := p.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM fallcache_kv WHERE key = ?`, key,
	).Scan(&value, &exp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if exp.Valid && exp.Int64 <= time.Now().UnixMilli() {
		// lazy expiry
		_, _ = p.db.ExecContext(ctx, `DELETE FROM fallcache_kv WHERE key = ? AND expires_at <= ?`,
			key, time.Now().UnixMilli())
		return nil, false, nil
	}
	return value, true, nil
}

func (p *Provider) Set(ctx context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	var exp sql.NullInt64
	if ttl > 0 {
		exp = sql.NullInt64{Int64: time.Now().Add(ttl).UnixMilli(), Valid: true}
	}
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO fallcache_kv (key, value, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, exp)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *Provider) Del(ctx context.Context, key string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM fallcache_kv WHERE key = ?`, key)
	return err
}

func (p *Provider) Close(context.Context) error {
	return p.db.Close()
}
