package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartModel "github.com/Alturino/coffeecart/cart/model"
	inErrors "github.com/Alturino/coffeecart/internal/errors"
	"github.com/Alturino/coffeecart/internal/repository"
	"github.com/Alturino/coffeecart/internal/testutil"
	orderModel "github.com/Alturino/coffeecart/order/model"
)

func setupPostgresStore(t *testing.T, c context.Context) (*PostgresStore, testutil.TeardownFunc) {
	pool, teardown := testutil.StartPostgres(t, c)
	return NewPostgresStore(pool, repository.New(pool)), teardown
}

func TestPostgresStore(t *testing.T) {
	c := context.Background()
	s, teardown := setupPostgresStore(t, c)
	defer teardown()

	t.Run("given unknown cart should return not found", func(t *testing.T) {
		_, err := s.Read(c, uuid.New())
		assert.ErrorIs(t, err, inErrors.ErrNotFound)

		_, err = s.AtomicUpdate(c, uuid.New(), func(*cartModel.Cart) error { return nil })
		assert.ErrorIs(t, err, inErrors.ErrNotFound)
	})

	t.Run("given item mutations should persist the diff", func(t *testing.T) {
		cart, err := s.Create(c, cartModel.NewCart(uuid.New(), nil, time.Now()))
		require.NoError(t, err)

		coffeeA, coffeeB := uuid.New(), uuid.New()
		var itemA cartModel.Item
		_, err = s.AtomicUpdate(c, cart.ID, func(cart *cartModel.Cart) error {
			var err error
			itemA, err = cart.AddItem(uuid.New(), coffeeA, 2, decimal.RequireFromString("10.00"), time.Now())
			if err != nil {
				return err
			}
			_, err = cart.AddItem(uuid.New(), coffeeB, 1, decimal.RequireFromString("5.00"), time.Now())
			return err
		})
		require.NoError(t, err)

		_, err = s.AtomicUpdate(c, cart.ID, func(cart *cartModel.Cart) error {
			_, err := cart.AddItem(uuid.New(), coffeeA, 2, decimal.RequireFromString("99.00"), time.Now())
			return err
		})
		require.NoError(t, err)

		stored, err := s.Read(c, cart.ID)
		require.NoError(t, err)
		require.Len(t, stored.Items, 2)
		found, ok := stored.FindItem(itemA.ID)
		require.True(t, ok)
		assert.EqualValues(t, 4, found.Quantity)
		assert.True(t, found.UnitPrice.Equal(decimal.RequireFromString("10.00")))
		assert.True(t, stored.ItemsAmount().Equal(decimal.RequireFromString("45.00")))

		_, err = s.AtomicUpdate(c, cart.ID, func(cart *cartModel.Cart) error {
			return cart.RemoveItem(itemA.ID, time.Now())
		})
		require.NoError(t, err)

		stored, err = s.Read(c, cart.ID)
		require.NoError(t, err)
		require.Len(t, stored.Items, 1)
		assert.Equal(t, coffeeB, stored.Items[0].CoffeeID)
	})

	t.Run("given parallel adds should cap quantity at max", func(t *testing.T) {
		cart, err := s.Create(c, cartModel.NewCart(uuid.New(), nil, time.Now()))
		require.NoError(t, err)

		coffeeID := uuid.New()
		workers := 10
		errs := make(chan error, workers)
		wg := sync.WaitGroup{}
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.AtomicUpdate(c, cart.ID, func(cart *cartModel.Cart) error {
					_, err := cart.AddItem(uuid.New(), coffeeID, 1, decimal.NewFromInt(3), time.Now())
					return err
				})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		failed := 0
		for err := range errs {
			if err != nil {
				assert.ErrorIs(t, err, inErrors.ErrInvalidArgument)
				failed++
			}
		}
		assert.Equal(t, workers-int(cartModel.MaxQuantity), failed)

		stored, err := s.Read(c, cart.ID)
		require.NoError(t, err)
		require.Len(t, stored.Items, 1)
		assert.Equal(t, cartModel.MaxQuantity, stored.Items[0].Quantity)
	})

	t.Run("given concurrent get or create for one owner should return one cart", func(t *testing.T) {
		ownerID := uuid.New()
		workers := 5
		ids := make(chan uuid.UUID, workers)
		wg := sync.WaitGroup{}
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				cart, err := s.GetOrCreateByOwner(c, cartModel.NewCart(uuid.New(), &ownerID, time.Now()))
				assert.NoError(t, err)
				ids <- cart.ID
			}()
		}
		wg.Wait()
		close(ids)

		unique := map[uuid.UUID]struct{}{}
		for id := range ids {
			unique[id] = struct{}{}
		}
		assert.Len(t, unique, 1)
	})

	t.Run("given checkout should persist order and complete cart once", func(t *testing.T) {
		now := time.Now()
		cart := cartModel.NewCart(uuid.New(), nil, now)
		_, err := s.Create(c, cart)
		require.NoError(t, err)
		_, err = s.AtomicUpdate(c, cart.ID, func(cart *cartModel.Cart) error {
			_, err := cart.AddItem(uuid.New(), uuid.New(), 2, decimal.RequireFromString("10.00"), now)
			if err != nil {
				return err
			}
			_, err = cart.AddItem(uuid.New(), uuid.New(), 1, decimal.RequireFromString("5.00"), now)
			return err
		})
		require.NoError(t, err)

		checkout := func(cart *cartModel.Cart) (orderModel.Order, error) {
			if err := cart.Complete(now); err != nil {
				return orderModel.Order{}, err
			}
			return orderModel.New(uuid.New(), *cart, decimal.RequireFromString("5.00"), orderModel.Details{}, now), nil
		}

		order, err := s.CreateFromCart(c, cart.ID, checkout)
		require.NoError(t, err)

		found, err := s.FindOrderById(c, order.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 3, found.TotalItems)
		assert.True(t, found.ItemsAmount.Equal(decimal.RequireFromString("25.00")))
		assert.True(t, found.TotalAmount.Equal(decimal.RequireFromString("30.00")))
		assert.Len(t, found.Items, 2)

		stored, err := s.Read(c, cart.ID)
		require.NoError(t, err)
		assert.Equal(t, cartModel.StatusCompleted, stored.Status)
		assert.NotNil(t, stored.CompletedAt)

		_, err = s.CreateFromCart(c, cart.ID, checkout)
		assert.ErrorIs(t, err, inErrors.ErrConflict)

		_, err = s.FindOrderById(c, uuid.New())
		assert.ErrorIs(t, err, inErrors.ErrNotFound)
	})
	t.Run("given price with three decimals should keep the snapshot exact", func(t *testing.T) {
		cart, err := s.Create(c, cartModel.NewCart(uuid.New(), nil, time.Now()))
		require.NoError(t, err)

		price := decimal.RequireFromString("9.999")
		var added cartModel.Item
		_, err = s.AtomicUpdate(c, cart.ID, func(cart *cartModel.Cart) error {
			var err error
			added, err = cart.AddItem(uuid.New(), uuid.New(), 3, price, time.Now())
			return err
		})
		require.NoError(t, err)

		stored, err := s.Read(c, cart.ID)
		require.NoError(t, err)
		found, ok := stored.FindItem(added.ID)
		require.True(t, ok)
		assert.True(t, found.UnitPrice.Equal(price), "unitPrice=%s", found.UnitPrice)
		assert.True(t, found.Subtotal().Equal(added.Subtotal()), "subtotal=%s", found.Subtotal())

		order, err := s.CreateFromCart(c, cart.ID, func(cart *cartModel.Cart) (orderModel.Order, error) {
			now := time.Now()
			if err := cart.Complete(now); err != nil {
				return orderModel.Order{}, err
			}
			return orderModel.New(uuid.New(), *cart, decimal.RequireFromString("4.995"), orderModel.Details{}, now), nil
		})
		require.NoError(t, err)

		persisted, err := s.FindOrderById(c, order.ID)
		require.NoError(t, err)
		assert.True(t, persisted.ItemsAmount.Equal(decimal.RequireFromString("29.997")))
		assert.True(t, persisted.TotalAmount.Equal(decimal.RequireFromString("34.992")))
		require.Len(t, persisted.Items, 1)
		assert.True(t, persisted.Items[0].UnitPrice.Equal(price))
	})
}
