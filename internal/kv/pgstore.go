package kv

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore menyimpan semua record di satu tabel kv_store(key text, value jsonb).
type PGStore struct {
	DB *pgxpool.Pool
}

func ConnectPG(ctx context.Context, dsn string) (*PGStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 8
	cfg.MinConns = 1
	cfg.HealthCheckPeriod = 30 * time.Second
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS kv_store (
			key   text PRIMARY KEY,
			value jsonb NOT NULL
		)`); err != nil {
		pool.Close()
		return nil, err
	}
	return &PGStore{DB: pool}, nil
}

func (s *PGStore) Close() { s.DB.Close() }

func (s *PGStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var raw []byte
	err := s.DB.QueryRow(ctx, `SELECT value FROM kv_store WHERE key=$1`, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (s *PGStore) Set(ctx context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(ctx, `
		INSERT INTO kv_store(key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, b)
	return err
}

func (s *PGStore) Delete(ctx context.Context, key string) error {
	_, err := s.DB.Exec(ctx, `DELETE FROM kv_store WHERE key=$1`, key)
	return err
}

// likePrefix: escape wildcard LIKE supaya prefix seperti "prod_" cocok literal.
func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}

func (s *PGStore) GetByPrefix(ctx context.Context, prefix string) ([]json.RawMessage, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT value FROM kv_store WHERE key LIKE $1 ESCAPE '\' ORDER BY key`, likePrefix(prefix))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []json.RawMessage
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, rows.Err()
}

// Update: lock row via SELECT ... FOR UPDATE di dalam tx, lalu tulis hasil fn.
// Key yang belum ada tetap bisa dibuat (fn dipanggil dengan cur=nil).
func (s *PGStore) Update(ctx context.Context, key string, fn func(cur json.RawMessage) (any, error)) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var cur []byte
	err = tx.QueryRow(ctx, `SELECT value FROM kv_store WHERE key=$1 FOR UPDATE`, key).Scan(&cur)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	next, err := fn(cur)
	if err != nil {
		return err
	}
	b, err := json.Marshal(next)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO kv_store(key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, b); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
