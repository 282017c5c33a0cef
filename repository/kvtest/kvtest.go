// Package kvtest holds behaviour checks every KeyValueStore driver must pass.
package kvtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/repository"
)

// Run exercises kv against the storage contract. kv must start empty.
func Run(t *testing.T, kv repository.KeyValueStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing key", func(t *testing.T) {
		_, err := kv.Get(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrKeyNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "greeting", "hello"))
		v, err := kv.Get(ctx, "greeting")
		require.NoError(t, err)
		assert.Equal(t, "hello", v)

		require.NoError(t, kv.Set(ctx, "greeting", "namaste"))
		v, err = kv.Get(ctx, "greeting")
		require.NoError(t, err)
		assert.Equal(t, "namaste", v)
	})

	t.Run("set many", func(t *testing.T) {
		require.NoError(t, kv.SetMany(ctx, map[string]string{
			"a": "1",
			"b": "2",
			"c": `{"json":true}`,
		}))
		for k, want := range map[string]string{"a": "1", "b": "2", "c": `{"json":true}`} {
			got, err := kv.Get(ctx, k)
			require.NoError(t, err, k)
			assert.Equal(t, want, got, k)
		}
		require.NoError(t, kv.SetMany(ctx, nil))
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, kv.Delete(ctx, "a", "b", "never-set"))
		_, err := kv.Get(ctx, "a")
		assert.ErrorIs(t, err, domain.ErrKeyNotFound)
		_, err = kv.Get(ctx, "b")
		assert.ErrorIs(t, err, domain.ErrKeyNotFound)

		require.NoError(t, kv.Delete(ctx, "a", "b"))
		require.NoError(t, kv.Delete(ctx))

		v, err := kv.Get(ctx, "c")
		require.NoError(t, err)
		assert.Equal(t, `{"json":true}`, v)
	})

	t.Run("replace drops and writes together", func(t *testing.T) {
		require.NoError(t, kv.SetMany(ctx, map[string]string{"shop_id": "5", "admin_id": "1"}))
		require.NoError(t, kv.Replace(ctx,
			map[string]string{"admin_id": "2", "admin_role": "admin"},
			[]string{"shop_id", "admin_id", "never-set"},
		))

		_, err := kv.Get(ctx, "shop_id")
		assert.ErrorIs(t, err, domain.ErrKeyNotFound)
		v, err := kv.Get(ctx, "admin_id")
		require.NoError(t, err)
		assert.Equal(t, "2", v, "a key both dropped and written keeps the new value")
		v, err = kv.Get(ctx, "admin_role")
		require.NoError(t, err)
		assert.Equal(t, "admin", v)

		require.NoError(t, kv.Replace(ctx, nil, nil))
		require.NoError(t, kv.Delete(ctx, "admin_id", "admin_role"))
	})

	t.Run("advance only moves forward", func(t *testing.T) {
		wrote, err := kv.Advance(ctx, "clock", 200)
		require.NoError(t, err)
		assert.True(t, wrote)

		wrote, err = kv.Advance(ctx, "clock", 100)
		require.NoError(t, err)
		assert.False(t, wrote)
		wrote, err = kv.Advance(ctx, "clock", 200)
		require.NoError(t, err)
		assert.False(t, wrote)

		v, err := kv.Get(ctx, "clock")
		require.NoError(t, err)
		assert.Equal(t, "200", v)

		wrote, err = kv.Advance(ctx, "clock", 1700000000000)
		require.NoError(t, err)
		assert.True(t, wrote)
		v, err = kv.Get(ctx, "clock")
		require.NoError(t, err)
		assert.Equal(t, "1700000000000", v)

		require.NoError(t, kv.Set(ctx, "clock", "garbage"))
		wrote, err = kv.Advance(ctx, "clock", 1)
		require.NoError(t, err)
		assert.True(t, wrote, "a non-numeric value is overwritten")

		require.NoError(t, kv.Delete(ctx, "clock"))
	})

	t.Run("scopes are isolated", func(t *testing.T) {
		left := repository.Scope(kv, repository.ProfilePrefix("left"))
		right := repository.Scope(kv, repository.ProfilePrefix("right"))

		require.NoError(t, left.SetMany(ctx, map[string]string{"user_session": "L"}))
		_, err := right.Get(ctx, "user_session")
		assert.ErrorIs(t, err, domain.ErrKeyNotFound)

		require.NoError(t, right.Set(ctx, "user_session", "R"))
		require.NoError(t, left.Delete(ctx, "user_session"))

		v, err := right.Get(ctx, "user_session")
		require.NoError(t, err)
		assert.Equal(t, "R", v)

		raw, err := kv.Get(ctx, "profile:right:user_session")
		require.NoError(t, err)
		assert.Equal(t, "R", raw)

		require.NoError(t, left.Replace(ctx, map[string]string{"user_name": "L"}, []string{"user_session"}))
		raw, err = kv.Get(ctx, "profile:left:user_name")
		require.NoError(t, err)
		assert.Equal(t, "L", raw)
		_, err = right.Get(ctx, "user_session")
		assert.NoError(t, err, "replace in one scope leaves the other alone")

		wrote, err := right.Advance(ctx, "user_last_activity", 42)
		require.NoError(t, err)
		assert.True(t, wrote)
		raw, err = kv.Get(ctx, "profile:right:user_last_activity")
		require.NoError(t, err)
		assert.Equal(t, "42", raw)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, kv.Ping(ctx))
	})
}
