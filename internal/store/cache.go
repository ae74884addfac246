package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type cacheRepo struct {
	db *sql.DB
}

func (r *cacheRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var text string
	err := r.db.QueryRowContext(ctx,
		`SELECT response FROM completion_cache WHERE key = ?`, key).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read cache: %w", err)
	}
	return text, true, nil
}

func (r *cacheRepo) Put(ctx context.Context, key, model, text string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO completion_cache (key, model, response, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			model = excluded.model,
			response = excluded.response,
			created_at = excluded.created_at`,
		key, model, text, time.Now().UTC().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return nil
}

func (r *cacheRepo) Clear(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM completion_cache`)
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	return res.RowsAffected()
}
