package redis

import (
	"context"
	"errors"
	"strconv"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/repository"
)

type kvRepository struct {
	client redislib.UniversalClient
	prefix string
}

// NewKeyValueStore creates a Redis-backed profile storage.
func NewKeyValueStore(client redislib.UniversalClient) repository.KeyValueStore {
	return &kvRepository{
		client: client,
		prefix: "storefront:",
	}
}

func (r *kvRepository) Get(ctx context.Context, key string) (string, error) {
	result, err := r.client.Get(ctx, r.key(key)).Result()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return "", domain.ErrKeyNotFound
		}
		return "", err
	}
	return result, nil
}

func (r *kvRepository) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.key(key), value, 0).Err()
}

// SetMany issues the writes inside MULTI/EXEC.
func (r *kvRepository) SetMany(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		for k, v := range values {
			pipe.Set(ctx, r.key(k), v, 0)
		}
		return nil
	})
	return err
}

// Replace runs DEL and SETs inside one MULTI/EXEC.
func (r *kvRepository) Replace(ctx context.Context, values map[string]string, drop []string) error {
	if len(values) == 0 && len(drop) == 0 {
		return nil
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		if len(drop) > 0 {
			pipe.Del(ctx, r.keys(drop)...)
		}
		for k, v := range values {
			pipe.Set(ctx, r.key(k), v, 0)
		}
		return nil
	})
	return err
}

// advanceScript compares and sets on the server so concurrent callers cannot interleave.
var advanceScript = redislib.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
	local n = tonumber(cur)
	if n and n >= tonumber(ARGV[1]) then
		return 0
	end
end
redis.call('SET', KEYS[1], ARGV[1])
return 1
`)

func (r *kvRepository) Advance(ctx context.Context, key string, value int64) (bool, error) {
	written, err := advanceScript.Run(ctx, r.client, []string{r.key(key)}, strconv.FormatInt(value, 10)).Int()
	if err != nil {
		return false, err
	}
	return written == 1, nil
}

func (r *kvRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, r.keys(keys)...).Err()
}

func (r *kvRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *kvRepository) key(k string) string {
	return r.prefix + k
}

func (r *kvRepository) keys(keys []string) []string {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	return full
}
