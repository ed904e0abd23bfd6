package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Alturino/coffeecart/cart/model"
	"github.com/Alturino/coffeecart/internal/constants"
)

var (
	ErrCacheMiss       = errors.New("cache miss")
	ErrStaleGeneration = errors.New("cart changed since generation was read")
)

// RedisCache stores cart snapshots as JSON under carts:<id>. Every Delete bumps
// a per-cart generation counter, and Set only writes when the generation still
// matches the one read before the snapshot was loaded.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (r *RedisCache) Get(c context.Context, cartID uuid.UUID) (model.Cart, error) {
	data, err := r.client.Get(c, Key(cartID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Cart{}, ErrCacheMiss
	}
	if err != nil {
		return model.Cart{}, fmt.Errorf("failed getting cartId=%s from cache with error=%w", cartID, err)
	}

	cart := model.Cart{}
	if err := json.Unmarshal(data, &cart); err != nil {
		return model.Cart{}, fmt.Errorf("failed unmarshaling cached cartId=%s with error=%w", cartID, err)
	}
	return cart, nil
}

// Generation returns the current generation of cartID, zero when none was
// recorded yet.
func (r *RedisCache) Generation(c context.Context, cartID uuid.UUID) (int64, error) {
	return r.generation(c, r.client, cartID)
}

// Set writes cart only if its generation is still generation. A concurrent
// Delete makes it return ErrStaleGeneration.
func (r *RedisCache) Set(c context.Context, cart model.Cart, generation int64) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed marshaling cartId=%s with error=%w", cart.ID, err)
	}

	err = r.client.Watch(c, func(tx *redis.Tx) error {
		current, err := r.generation(c, tx, cart.ID)
		if err != nil {
			return err
		}
		if current != generation {
			return ErrStaleGeneration
		}
		_, err = tx.TxPipelined(c, func(pipe redis.Pipeliner) error {
			pipe.Set(c, Key(cart.ID), data, r.ttl)
			return nil
		})
		return err
	}, GenerationKey(cart.ID))
	switch {
	case errors.Is(err, redis.TxFailedErr):
		return ErrStaleGeneration
	case errors.Is(err, ErrStaleGeneration):
		return err
	case err != nil:
		return fmt.Errorf("failed setting cartId=%s to cache with error=%w", cart.ID, err)
	}
	return nil
}

func (r *RedisCache) Delete(c context.Context, cartID uuid.UUID) error {
	_, err := r.client.TxPipelined(c, func(pipe redis.Pipeliner) error {
		pipe.Incr(c, GenerationKey(cartID))
		if r.ttl > 0 {
			pipe.Expire(c, GenerationKey(cartID), 2*r.ttl)
		}
		pipe.Del(c, Key(cartID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed deleting cartId=%s from cache with error=%w", cartID, err)
	}
	return nil
}

type getter interface {
	Get(c context.Context, key string) *redis.StringCmd
}

func (r *RedisCache) generation(c context.Context, cmd getter, cartID uuid.UUID) (int64, error) {
	generation, err := cmd.Get(c, GenerationKey(cartID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed getting generation of cartId=%s with error=%w", cartID, err)
	}
	return generation, nil
}

func Key(cartID uuid.UUID) string {
	return fmt.Sprintf(constants.CacheKeyCart, cartID.String())
}

func GenerationKey(cartID uuid.UUID) string {
	return fmt.Sprintf(constants.CacheKeyCartGeneration, cartID.String())
}
