package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"github.com/Alturino/coffeecart/cart/cache"
	"github.com/Alturino/coffeecart/cart/model"
	inErrors "github.com/Alturino/coffeecart/internal/errors"
	"github.com/Alturino/coffeecart/internal/log"
	"github.com/Alturino/coffeecart/internal/otel"
)

type CartStore interface {
	Create(c context.Context, cart model.Cart) (model.Cart, error)
	Read(c context.Context, cartID uuid.UUID) (model.Cart, error)
	FindByOwner(c context.Context, ownerID uuid.UUID) (model.Cart, error)
	GetOrCreateByOwner(c context.Context, candidate model.Cart) (model.Cart, error)
	AtomicUpdate(c context.Context, cartID uuid.UUID, fn func(*model.Cart) error) (model.Cart, error)
}

type CatalogLookup interface {
	GetPrice(c context.Context, coffeeID uuid.UUID) (decimal.Decimal, bool, error)
}

// CartCache holds cart views. Set must refuse to write when the cart's
// generation moved past generation, which Delete advances.
type CartCache interface {
	Get(c context.Context, cartID uuid.UUID) (model.Cart, error)
	Generation(c context.Context, cartID uuid.UUID) (int64, error)
	Set(c context.Context, cart model.Cart, generation int64) error
	Delete(c context.Context, cartID uuid.UUID) error
}

type CartService struct {
	store   CartStore
	catalog CatalogLookup
	cache   CartCache
	group   *singleflight.Group
	timeout time.Duration
	now     func() time.Time
}

// NewCartService wires the cart engine. cache may be nil, in which case reads
// always go to the store. timeout bounds every store call; zero disables it.
func NewCartService(
	store CartStore,
	catalog CatalogLookup,
	cache CartCache,
	timeout time.Duration,
) CartService {
	return CartService{
		store:   store,
		catalog: catalog,
		cache:   cache,
		group:   &singleflight.Group{},
		timeout: timeout,
		now:     time.Now,
	}
}

func (s CartService) GetOrCreateCart(c context.Context, ownerID *uuid.UUID) (model.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService GetOrCreateCart")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartService GetOrCreateCart").Logger()
	candidate := model.NewCart(uuid.New(), ownerID, s.now())

	sc, cancel := s.withTimeout(c)
	defer cancel()

	if ownerID == nil {
		logger = logger.With().Str(log.KeyProcess, "creating anonymous cart").Logger()
		logger.Info().Msg("creating anonymous cart")
		cart, err := s.store.Create(sc, candidate)
		if err != nil {
			err = fmt.Errorf("failed creating cart with error=%w", inErrors.Unavailable(err))
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return model.Cart{}, err
		}
		span.SetAttributes(attribute.String(log.KeyCartID, cart.ID.String()))
		logger.Info().Str(log.KeyCartID, cart.ID.String()).Msg("created anonymous cart")
		return cart, nil
	}

	logger = logger.With().
		Str(log.KeyOwnerID, ownerID.String()).
		Str(log.KeyProcess, "getting or creating cart of owner").
		Logger()
	logger.Info().Msg("getting or creating cart of owner")
	cart, err := s.store.GetOrCreateByOwner(sc, candidate)
	if err != nil {
		err = fmt.Errorf("failed getting or creating cart of ownerId=%s with error=%w", ownerID, inErrors.Unavailable(err))
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return model.Cart{}, err
	}
	span.SetAttributes(attribute.String(log.KeyCartID, cart.ID.String()))
	logger.Info().
		Str(log.KeyCartID, cart.ID.String()).
		Bool("created", cart.ID == candidate.ID).
		Msg("got or created cart of owner")
	return cart, nil
}

// FindCartById reads through the cache. Concurrent misses for one cart share
// a single store read, which runs detached from any one caller's cancellation;
// each caller still stops waiting when its own context ends.
func (s CartService) FindCartById(c context.Context, cartID uuid.UUID) (model.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService FindCartById")
	defer span.End()
	span.SetAttributes(attribute.String(log.KeyCartID, cartID.String()))

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService FindCartById").
		Str(log.KeyCartID, cartID.String()).
		Logger()

	if s.cache != nil {
		logger = logger.With().Str(log.KeyProcess, "finding cart in cache").Logger()
		logger.Trace().Msg("finding cart in cache")
		cart, err := s.cache.Get(c, cartID)
		if err == nil {
			logger.Trace().Msg("found cart in cache")
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.Warn().Err(err).Msg(err.Error())
		}
	}

	logger = logger.With().Str(log.KeyProcess, "finding cart in store").Logger()
	logger.Info().Msg("finding cart in store")
	shared := context.WithoutCancel(logger.WithContext(c))
	ch := s.group.DoChan(cartID.String(), func() (interface{}, error) {
		return s.readThrough(shared, cartID)
	})

	select {
	case <-c.Done():
		err := fmt.Errorf("failed finding cartId=%s with error=%w", cartID, inErrors.Unavailable(c.Err()))
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return model.Cart{}, err
	case result := <-ch:
		if result.Err != nil {
			err := fmt.Errorf("failed finding cartId=%s with error=%w", cartID, inErrors.Unavailable(result.Err))
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return model.Cart{}, err
		}
		logger.Info().Bool("shared", result.Shared).Msg("found cart in store")
		return result.Val.(model.Cart).Clone(), nil
	}
}

// readThrough loads the cart and caches it. The generation is read before the
// store so a mutation committed meanwhile keeps the older view out of the cache.
func (s CartService) readThrough(c context.Context, cartID uuid.UUID) (model.Cart, error) {
	sc, cancel := s.withTimeout(c)
	defer cancel()

	cacheable := false
	var generation int64
	if s.cache != nil {
		var err error
		generation, err = s.cache.Generation(sc, cartID)
		if err != nil {
			zerolog.Ctx(c).Warn().Err(err).Msg(err.Error())
		}
		cacheable = err == nil
	}

	cart, err := s.store.Read(sc, cartID)
	if err != nil {
		return model.Cart{}, err
	}
	if cacheable {
		s.cacheCart(sc, cart, generation)
	}
	return cart, nil
}

// AddItem validates the quantity before any I/O, snapshots the catalog price
// and merges into the cart under the store's atomic update.
func (s CartService) AddItem(
	c context.Context,
	cartID uuid.UUID,
	coffeeID uuid.UUID,
	quantity int32,
) (model.Item, error) {
	c, span := otel.Tracer.Start(c, "CartService AddItem")
	defer span.End()
	span.SetAttributes(
		attribute.String(log.KeyCartID, cartID.String()),
		attribute.String(log.KeyCoffeeID, coffeeID.String()),
		attribute.Int(log.KeyCartItemQuantity, int(quantity)),
	)

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddItem").
		Str(log.KeyCartID, cartID.String()).
		Str(log.KeyCoffeeID, coffeeID.String()).
		Int32(log.KeyCartItemQuantity, quantity).
		Logger()

	if err := model.ValidateQuantity(quantity); err != nil {
		inErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return model.Item{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "looking up coffee price").Logger()
	logger.Info().Msg("looking up coffee price")
	price, found, err := s.catalog.GetPrice(c, coffeeID)
	if err != nil {
		err = fmt.Errorf("failed looking up price of coffeeId=%s with error=%w", coffeeID, inErrors.Unavailable(err))
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return model.Item{}, err
	}
	if !found {
		err = fmt.Errorf("coffeeId=%s: %w", coffeeID, inErrors.ErrCoffeeNotFound)
		inErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return model.Item{}, err
	}
	logger = logger.With().Str(log.KeyPrice, price.String()).Logger()
	logger.Info().Msg("looked up coffee price")

	logger = logger.With().Str(log.KeyProcess, "adding item to cart").Logger()
	logger.Info().Msg("adding item to cart")
	var added model.Item
	err = s.mutate(c, cartID, func(cart *model.Cart) error {
		item, err := cart.AddItem(uuid.New(), coffeeID, quantity, price, s.now())
		added = item
		return err
	})
	if err != nil {
		err = fmt.Errorf("failed adding coffeeId=%s to cartId=%s with error=%w", coffeeID, cartID, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return model.Item{}, err
	}
	logger.Info().
		Str(log.KeyCartItemID, added.ID.String()).
		Int32("mergedQuantity", added.Quantity).
		Msg("added item to cart")
	return added, nil
}

func (s CartService) UpdateItem(
	c context.Context,
	cartID uuid.UUID,
	itemID uuid.UUID,
	quantity int32,
) (model.Item, error) {
	c, span := otel.Tracer.Start(c, "CartService UpdateItem")
	defer span.End()
	span.SetAttributes(
		attribute.String(log.KeyCartID, cartID.String()),
		attribute.String(log.KeyCartItemID, itemID.String()),
	)

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService UpdateItem").
		Str(log.KeyCartID, cartID.String()).
		Str(log.KeyCartItemID, itemID.String()).
		Int32(log.KeyCartItemQuantity, quantity).
		Logger()

	if err := model.ValidateQuantity(quantity); err != nil {
		inErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return model.Item{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "updating cart item").Logger()
	logger.Info().Msg("updating cart item")
	var updated model.Item
	err := s.mutate(c, cartID, func(cart *model.Cart) error {
		item, err := cart.UpdateItem(itemID, quantity, s.now())
		updated = item
		return err
	})
	if err != nil {
		err = fmt.Errorf("failed updating cartItemId=%s with error=%w", itemID, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return model.Item{}, err
	}
	logger.Info().Msg("updated cart item")
	return updated, nil
}

func (s CartService) RemoveItem(c context.Context, cartID uuid.UUID, itemID uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "CartService RemoveItem")
	defer span.End()
	span.SetAttributes(
		attribute.String(log.KeyCartID, cartID.String()),
		attribute.String(log.KeyCartItemID, itemID.String()),
	)

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService RemoveItem").
		Str(log.KeyCartID, cartID.String()).
		Str(log.KeyCartItemID, itemID.String()).
		Str(log.KeyProcess, "removing cart item").
		Logger()

	logger.Info().Msg("removing cart item")
	err := s.mutate(c, cartID, func(cart *model.Cart) error {
		return cart.RemoveItem(itemID, s.now())
	})
	if err != nil {
		err = fmt.Errorf("failed removing cartItemId=%s with error=%w", itemID, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("removed cart item")
	return nil
}

// InvalidateCart drops the cached view of cartID. Failures are only logged.
func (s CartService) InvalidateCart(c context.Context, cartID uuid.UUID) {
	if s.cache == nil {
		return
	}
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService InvalidateCart").
		Str(log.KeyCartID, cartID.String()).
		Logger()
	if err := s.cache.Delete(c, cartID); err != nil {
		logger.Warn().Err(err).Msg(err.Error())
	}
}

func (s CartService) mutate(c context.Context, cartID uuid.UUID, fn func(*model.Cart) error) error {
	sc, cancel := s.withTimeout(c)
	defer cancel()

	_, err := s.store.AtomicUpdate(sc, cartID, fn)
	if err != nil {
		return inErrors.Unavailable(err)
	}
	s.InvalidateCart(c, cartID)
	return nil
}

func (s CartService) cacheCart(c context.Context, cart model.Cart, generation int64) {
	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartService cacheCart").Logger()
	err := s.cache.Set(c, cart, generation)
	switch {
	case errors.Is(err, cache.ErrStaleGeneration):
		logger.Debug().Int64("generation", generation).Msg("cart changed while reading, skipped caching")
	case err != nil:
		logger.Warn().Err(err).Msg(err.Error())
	}
}

func (s CartService) withTimeout(c context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(c)
	}
	return context.WithTimeout(c, s.timeout)
}
