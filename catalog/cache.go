package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/Alturino/coffeecart/internal/constants"
	inErrors "github.com/Alturino/coffeecart/internal/errors"
	"github.com/Alturino/coffeecart/internal/log"
	"github.com/Alturino/coffeecart/internal/otel"
)

type lookupResult struct {
	price decimal.Decimal
	found bool
}

// CachedCatalog keeps found prices in redis for ttl. Missing coffees are not
// cached, and redis failures fall back to the wrapped lookup. Concurrent misses
// share one lookup that is not bound to any single caller's deadline.
type CachedCatalog struct {
	next    Lookup
	client  *redis.Client
	ttl     time.Duration
	timeout time.Duration
	group   *singleflight.Group
}

// NewCachedCatalog wraps next. timeout bounds the shared lookup; zero disables it.
func NewCachedCatalog(next Lookup, client *redis.Client, ttl time.Duration, timeout time.Duration) CachedCatalog {
	return CachedCatalog{next: next, client: client, ttl: ttl, timeout: timeout, group: &singleflight.Group{}}
}

func CacheKey(coffeeID uuid.UUID) string {
	return fmt.Sprintf(constants.CacheKeyCoffee, coffeeID.String())
}

func (cc CachedCatalog) GetPrice(c context.Context, coffeeID uuid.UUID) (decimal.Decimal, bool, error) {
	c, span := otel.Tracer.Start(c, "CachedCatalog GetPrice")
	defer span.End()

	key := CacheKey(coffeeID)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CachedCatalog GetPrice").
		Str(log.KeyCacheKey, key).
		Logger()

	cached, err := cc.client.Get(c, key).Result()
	switch {
	case err == nil:
		price, parseErr := decimal.NewFromString(cached)
		if parseErr == nil {
			logger.Trace().Msg("found price in cache")
			return price, true, nil
		}
		logger.Warn().Err(parseErr).Msg(parseErr.Error())
	case !errors.Is(err, redis.Nil):
		logger.Warn().Err(err).Msg(err.Error())
	}

	shared := context.WithoutCancel(logger.WithContext(c))
	ch := cc.group.DoChan(key, func() (interface{}, error) {
		shared, cancel := cc.withTimeout(shared)
		defer cancel()
		price, found, err := cc.next.GetPrice(shared, coffeeID)
		if err != nil {
			return lookupResult{}, err
		}
		if found {
			if err := cc.client.Set(shared, key, price.String(), cc.ttl).Err(); err != nil {
				logger.Warn().Err(err).Msg(err.Error())
			}
		}
		return lookupResult{price: price, found: found}, nil
	})

	select {
	case <-c.Done():
		err := fmt.Errorf("failed looking up price of coffeeId=%s with error=%w", coffeeID, inErrors.Unavailable(c.Err()))
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return decimal.Zero, false, err
	case result := <-ch:
		if result.Err != nil {
			return decimal.Zero, false, result.Err
		}
		r := result.Val.(lookupResult)
		return r.price, r.found, nil
	}
}

func (cc CachedCatalog) withTimeout(c context.Context) (context.Context, context.CancelFunc) {
	if cc.timeout <= 0 {
		return context.WithCancel(c)
	}
	return context.WithTimeout(c, cc.timeout)
}
