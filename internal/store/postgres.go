package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	cartModel "github.com/Alturino/coffeecart/cart/model"
	inErrors "github.com/Alturino/coffeecart/internal/errors"
	"github.com/Alturino/coffeecart/internal/log"
	"github.com/Alturino/coffeecart/internal/repository"
	orderModel "github.com/Alturino/coffeecart/order/model"
)

const uniqueViolation = "23505"

// PostgresStore keeps carts and orders in postgres. Every mutation locks the
// cart row with SELECT ... FOR UPDATE for the duration of its transaction.
type PostgresStore struct {
	pool    *pgxpool.Pool
	queries *repository.Queries
}

func NewPostgresStore(pool *pgxpool.Pool, queries *repository.Queries) *PostgresStore {
	return &PostgresStore{pool: pool, queries: queries}
}

func (s *PostgresStore) Create(c context.Context, cart cartModel.Cart) (cartModel.Cart, error) {
	row, err := s.queries.InsertCart(c, repository.InsertCartParamsFromModel(cart))
	if err != nil {
		return cartModel.Cart{}, mapError(fmt.Errorf("failed inserting cartId=%s with error=%w", cart.ID, err), inErrors.ErrCartNotFound)
	}
	return row.Model(nil), nil
}

func (s *PostgresStore) Read(c context.Context, cartID uuid.UUID) (cartModel.Cart, error) {
	var cart cartModel.Cart
	err := s.withTx(c, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, func(q *repository.Queries) error {
		row, err := q.FindCartById(c, cartID)
		if err != nil {
			return fmt.Errorf("failed finding cartId=%s with error=%w", cartID, err)
		}
		cart, err = loadCart(c, q, row)
		return err
	})
	if err != nil {
		return cartModel.Cart{}, mapError(err, inErrors.ErrCartNotFound)
	}
	return cart, nil
}

func (s *PostgresStore) FindByOwner(c context.Context, ownerID uuid.UUID) (cartModel.Cart, error) {
	var cart cartModel.Cart
	err := s.withTx(c, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, func(q *repository.Queries) error {
		row, err := q.FindLiveCartByOwnerId(c, ownerID)
		if err != nil {
			return fmt.Errorf("failed finding cart by ownerId=%s with error=%w", ownerID, err)
		}
		cart, err = loadCart(c, q, row)
		return err
	})
	if err != nil {
		return cartModel.Cart{}, mapError(err, inErrors.ErrCartNotFound)
	}
	return cart, nil
}

// GetOrCreateByOwner inserts candidate unless its owner already has a live
// cart, then returns whichever live cart won. The partial unique index on
// carts(owner_id) keeps concurrent callers on a single cart.
func (s *PostgresStore) GetOrCreateByOwner(c context.Context, candidate cartModel.Cart) (cartModel.Cart, error) {
	if candidate.OwnerID == nil {
		return s.Create(c, candidate)
	}
	ownerID := *candidate.OwnerID

	// A second attempt covers the live cart being checked out between the
	// insert and the select.
	var lastErr error
	for range 2 {
		_, err := s.queries.InsertCartForOwner(c, repository.InsertCartParamsFromModel(candidate))
		if err != nil {
			return cartModel.Cart{}, mapError(fmt.Errorf("failed inserting cart for ownerId=%s with error=%w", ownerID, err), inErrors.ErrCartNotFound)
		}
		cart, err := s.FindByOwner(c, ownerID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, inErrors.ErrNotFound) {
			return cartModel.Cart{}, err
		}
		lastErr = err
	}
	return cartModel.Cart{}, lastErr
}

// AtomicUpdate applies fn to the locked cart and persists whatever fn changed.
// Nothing is written when fn returns an error.
func (s *PostgresStore) AtomicUpdate(
	c context.Context,
	cartID uuid.UUID,
	fn func(*cartModel.Cart) error,
) (cartModel.Cart, error) {
	var updated cartModel.Cart
	err := s.withTx(c, pgx.TxOptions{}, func(q *repository.Queries) error {
		before, err := lockCart(c, q, cartID)
		if err != nil {
			return err
		}
		after := before.Clone()
		if err := fn(&after); err != nil {
			return err
		}
		if err := persistDiff(c, q, before, after); err != nil {
			return err
		}
		updated = after
		return nil
	})
	if err != nil {
		return cartModel.Cart{}, mapError(err, inErrors.ErrCartNotFound)
	}
	return updated, nil
}

// CreateFromCart locks the cart, lets fn build the order and move the cart to
// its terminal state, then writes the order and the cart in one transaction.
func (s *PostgresStore) CreateFromCart(
	c context.Context,
	cartID uuid.UUID,
	fn func(*cartModel.Cart) (orderModel.Order, error),
) (orderModel.Order, error) {
	var order orderModel.Order
	err := s.withTx(c, pgx.TxOptions{}, func(q *repository.Queries) error {
		before, err := lockCart(c, q, cartID)
		if err != nil {
			return err
		}
		after := before.Clone()
		order, err = fn(&after)
		if err != nil {
			return err
		}

		if err := q.InsertOrder(c, repository.InsertOrderParamsFromModel(order)); err != nil {
			return fmt.Errorf("failed inserting orderId=%s with error=%w", order.ID, err)
		}
		if _, err := q.InsertOrderItems(c, repository.InsertOrderItemsParamsFromModel(order)); err != nil {
			return fmt.Errorf("failed inserting items of orderId=%s with error=%w", order.ID, err)
		}
		return persistDiff(c, q, before, after)
	})
	if err != nil {
		return orderModel.Order{}, mapError(err, inErrors.ErrCartNotFound)
	}
	return order, nil
}

func (s *PostgresStore) FindOrderById(c context.Context, orderID uuid.UUID) (orderModel.Order, error) {
	var order orderModel.Order
	err := s.withTx(c, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, func(q *repository.Queries) error {
		row, err := q.FindOrderById(c, orderID)
		if err != nil {
			return fmt.Errorf("failed finding orderId=%s with error=%w", orderID, err)
		}
		items, err := q.FindOrderItemsByOrderId(c, orderID)
		if err != nil {
			return fmt.Errorf("failed finding items of orderId=%s with error=%w", orderID, err)
		}
		order = row.Model(items)
		return nil
	})
	if err != nil {
		return orderModel.Order{}, mapError(err, inErrors.ErrOrderNotFound)
	}
	return order, nil
}

func (s *PostgresStore) withTx(
	c context.Context,
	opts pgx.TxOptions,
	fn func(q *repository.Queries) error,
) error {
	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "PostgresStore withTx").Logger()

	tx, err := s.pool.BeginTx(c, opts)
	if err != nil {
		return fmt.Errorf("failed beginning transaction with error=%w", err)
	}
	defer func() {
		err := tx.Rollback(context.WithoutCancel(c))
		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			err = fmt.Errorf("failed rolling back transaction with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
		}
	}()

	if err := fn(s.queries.WithTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(c); err != nil {
		return fmt.Errorf("failed committing transaction with error=%w", err)
	}
	return nil
}

func lockCart(c context.Context, q *repository.Queries, cartID uuid.UUID) (cartModel.Cart, error) {
	row, err := q.LockCartById(c, cartID)
	if err != nil {
		return cartModel.Cart{}, fmt.Errorf("failed locking cartId=%s with error=%w", cartID, err)
	}
	return loadCart(c, q, row)
}

func loadCart(c context.Context, q *repository.Queries, row repository.Cart) (cartModel.Cart, error) {
	items, err := q.FindCartItemsByCartId(c, row.ID)
	if err != nil {
		return cartModel.Cart{}, fmt.Errorf("failed finding items of cartId=%s with error=%w", row.ID, err)
	}
	return row.Model(items), nil
}

func persistDiff(c context.Context, q *repository.Queries, before, after cartModel.Cart) error {
	previous := make(map[uuid.UUID]cartModel.Item, len(before.Items))
	for _, item := range before.Items {
		previous[item.ID] = item
	}

	for _, item := range after.Items {
		old, ok := previous[item.ID]
		delete(previous, item.ID)
		if !ok {
			if err := q.InsertCartItem(c, repository.InsertCartItemParamsFromModel(item)); err != nil {
				return fmt.Errorf("failed inserting cartItemId=%s with error=%w", item.ID, err)
			}
			continue
		}
		if old.Quantity == item.Quantity && old.UnitPrice.Equal(item.UnitPrice) {
			continue
		}
		rows, err := q.UpdateCartItem(c, repository.UpdateCartItemParamsFromModel(item))
		if err != nil {
			return fmt.Errorf("failed updating cartItemId=%s with error=%w", item.ID, err)
		}
		if rows != 1 {
			return inErrors.ErrCartItemNotFound
		}
	}

	for id := range previous {
		rows, err := q.DeleteCartItem(c, repository.DeleteCartItemParams{ID: id, CartID: after.ID})
		if err != nil {
			return fmt.Errorf("failed deleting cartItemId=%s with error=%w", id, err)
		}
		if rows != 1 {
			return inErrors.ErrCartItemNotFound
		}
	}

	if cartChanged(before, after) {
		if err := q.UpdateCart(c, repository.UpdateCartParamsFromModel(after)); err != nil {
			return fmt.Errorf("failed updating cartId=%s with error=%w", after.ID, err)
		}
	}
	return nil
}

func cartChanged(before, after cartModel.Cart) bool {
	return before.Status != after.Status ||
		before.PaymentStatus != after.PaymentStatus ||
		!before.UpdatedAt.Equal(after.UpdatedAt) ||
		(before.CompletedAt == nil) != (after.CompletedAt == nil)
}

// mapError translates driver failures into the error taxonomy. notFound is
// returned for missing rows.
func mapError(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %w", notFound, err)
	}
	if pgconn.Timeout(err) {
		return fmt.Errorf("%w: %w", inErrors.ErrUnavailable, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if pgErr.TableName == "orders" {
			return fmt.Errorf("%w: %w", inErrors.ErrCartCheckedOut, err)
		}
		return fmt.Errorf("%w: %w", inErrors.ErrConflict, err)
	}
	return inErrors.Unavailable(err)
}
