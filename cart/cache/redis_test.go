package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/coffeecart/cart/model"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisCache(client, time.Minute), mr, func() {
		client.Close()
		mr.Close()
	}
}

func TestRedisCache(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	c := context.Background()

	cart := model.NewCart(uuid.New(), nil, time.Now())
	_, err := cart.AddItem(uuid.New(), uuid.New(), 2, decimal.RequireFromString("12.50"), time.Now())
	require.NoError(t, err)

	_, err = cache.Get(c, cart.ID)
	assert.ErrorIs(t, err, ErrCacheMiss)

	generation, err := cache.Generation(c, cart.ID)
	require.NoError(t, err)
	assert.Zero(t, generation)

	require.NoError(t, cache.Set(c, cart, generation))
	assert.True(t, mr.Exists(Key(cart.ID)))
	assert.Equal(t, time.Minute, mr.TTL(Key(cart.ID)))

	cached, err := cache.Get(c, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, cached.ID)
	require.Len(t, cached.Items, 1)
	assert.True(t, cached.Items[0].UnitPrice.Equal(decimal.RequireFromString("12.50")))

	require.NoError(t, cache.Delete(c, cart.ID))
	_, err = cache.Get(c, cart.ID)
	assert.ErrorIs(t, err, ErrCacheMiss)

	generation, err = cache.Generation(c, cart.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, generation)
	assert.Equal(t, 2*time.Minute, mr.TTL(GenerationKey(cart.ID)))
}

func TestRedisCacheSetRejectsStaleGeneration(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	c := context.Background()
	cart := model.NewCart(uuid.New(), nil, time.Now())

	before, err := cache.Generation(c, cart.ID)
	require.NoError(t, err)
	require.NoError(t, cache.Delete(c, cart.ID))

	err = cache.Set(c, cart, before)
	assert.ErrorIs(t, err, ErrStaleGeneration)
	assert.False(t, mr.Exists(Key(cart.ID)))

	current, err := cache.Generation(c, cart.ID)
	require.NoError(t, err)
	require.NoError(t, cache.Set(c, cart, current))
	assert.True(t, mr.Exists(Key(cart.ID)))
}

func TestRedisCacheInvalidJSON(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	cartID := uuid.New()
	require.NoError(t, mr.Set(Key(cartID), "{not json"))

	_, err := cache.Get(context.Background(), cartID)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}
