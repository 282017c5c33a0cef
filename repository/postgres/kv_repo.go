package postgres

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/repository"
)

type kvRepository struct {
	pool *pgxpool.Pool
}

// NewKeyValueStore instantiates a Postgres-backed profile storage on table profile_storage.
func NewKeyValueStore(pool *pgxpool.Pool) repository.KeyValueStore {
	return &kvRepository{pool: pool}
}

func (r *kvRepository) Get(ctx context.Context, key string) (string, error) {
	const query = `SELECT value FROM profile_storage WHERE key = $1`

	var value string
	if err := r.pool.QueryRow(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrKeyNotFound
		}
		return "", err
	}
	return value, nil
}

func (r *kvRepository) Set(ctx context.Context, key, value string) error {
	return r.SetMany(ctx, map[string]string{key: value})
}

const upsertQuery = `
	INSERT INTO profile_storage (key, value, updated_at)
	VALUES ($1, $2, NOW())
	ON CONFLICT (key) DO UPDATE
	SET value = EXCLUDED.value,
		updated_at = NOW()
`

// SetMany upserts every pair in a single transaction.
func (r *kvRepository) SetMany(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for k, v := range values {
			batch.Queue(upsertQuery, k, v)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

const deleteQuery = `DELETE FROM profile_storage WHERE key = ANY($1)`

// Replace deletes and upserts in one transaction.
func (r *kvRepository) Replace(ctx context.Context, values map[string]string, drop []string) error {
	if len(values) == 0 && len(drop) == 0 {
		return nil
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		if len(drop) > 0 {
			batch.Queue(deleteQuery, drop)
		}
		for k, v := range values {
			batch.Queue(upsertQuery, k, v)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

// advanceQuery only overwrites a stored value that is not a smaller integer.
// The CASE keeps the cast away from non-numeric values.
const advanceQuery = `
	INSERT INTO profile_storage (key, value, updated_at)
	VALUES ($1, $2, NOW())
	ON CONFLICT (key) DO UPDATE
	SET value = EXCLUDED.value,
		updated_at = NOW()
	WHERE CASE
		WHEN profile_storage.value ~ '^[0-9]{1,18}$' THEN profile_storage.value::bigint < EXCLUDED.value::bigint
		ELSE TRUE
	END
`

func (r *kvRepository) Advance(ctx context.Context, key string, value int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, advanceQuery, key, strconv.FormatInt(value, 10))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *kvRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, deleteQuery, keys)
	return err
}

func (r *kvRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
