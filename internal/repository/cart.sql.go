package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const cartColumns = `id, owner_id, status, payment_status, completed_at, created_at, updated_at`

func scanCart(row pgx.Row) (Cart, error) {
	var i Cart
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.Status,
		&i.PaymentStatus,
		&i.CompletedAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const insertCart = `-- name: InsertCart :one
INSERT INTO carts (id, owner_id, status, payment_status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)
RETURNING ` + cartColumns

type InsertCartParams struct {
	ID            uuid.UUID
	OwnerID       *uuid.UUID
	Status        string
	PaymentStatus string
	CreatedAt     time.Time
}

func (q *Queries) InsertCart(c context.Context, arg InsertCartParams) (Cart, error) {
	row := q.db.QueryRow(c, insertCart,
		arg.ID,
		arg.OwnerID,
		arg.Status,
		arg.PaymentStatus,
		arg.CreatedAt,
	)
	return scanCart(row)
}

const insertCartForOwner = `-- name: InsertCartForOwner :execrows
INSERT INTO carts (id, owner_id, status, payment_status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)
ON CONFLICT (owner_id) WHERE status = 'AWAITING_PAYMENT' DO NOTHING`

// InsertCartForOwner inserts the cart unless the owner already has a live one.
func (q *Queries) InsertCartForOwner(c context.Context, arg InsertCartParams) (int64, error) {
	result, err := q.db.Exec(c, insertCartForOwner,
		arg.ID,
		arg.OwnerID,
		arg.Status,
		arg.PaymentStatus,
		arg.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const findCartById = `-- name: FindCartById :one
SELECT ` + cartColumns + ` FROM carts WHERE id = $1`

func (q *Queries) FindCartById(c context.Context, id uuid.UUID) (Cart, error) {
	return scanCart(q.db.QueryRow(c, findCartById, id))
}

const lockCartById = `-- name: LockCartById :one
SELECT ` + cartColumns + ` FROM carts WHERE id = $1 FOR UPDATE`

func (q *Queries) LockCartById(c context.Context, id uuid.UUID) (Cart, error) {
	return scanCart(q.db.QueryRow(c, lockCartById, id))
}

const findLiveCartByOwnerId = `-- name: FindLiveCartByOwnerId :one
SELECT ` + cartColumns + ` FROM carts
WHERE owner_id = $1 AND status = 'AWAITING_PAYMENT'
ORDER BY created_at DESC
LIMIT 1`

func (q *Queries) FindLiveCartByOwnerId(c context.Context, ownerID uuid.UUID) (Cart, error) {
	return scanCart(q.db.QueryRow(c, findLiveCartByOwnerId, ownerID))
}

const updateCart = `-- name: UpdateCart :exec
UPDATE carts
SET status = $2, payment_status = $3, completed_at = $4, updated_at = $5
WHERE id = $1`

type UpdateCartParams struct {
	ID            uuid.UUID
	Status        string
	PaymentStatus string
	CompletedAt   *time.Time
	UpdatedAt     time.Time
}

func (q *Queries) UpdateCart(c context.Context, arg UpdateCartParams) error {
	_, err := q.db.Exec(c, updateCart,
		arg.ID,
		arg.Status,
		arg.PaymentStatus,
		arg.CompletedAt,
		arg.UpdatedAt,
	)
	return err
}

const findCartItemsByCartId = `-- name: FindCartItemsByCartId :many
SELECT id, cart_id, coffee_id, quantity, unit_price, created_at, updated_at
FROM cart_items
WHERE cart_id = $1
ORDER BY created_at, id`

func (q *Queries) FindCartItemsByCartId(c context.Context, cartID uuid.UUID) ([]CartItem, error) {
	rows, err := q.db.Query(c, findCartItemsByCartId, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []CartItem{}
	for rows.Next() {
		var i CartItem
		if err := rows.Scan(
			&i.ID,
			&i.CartID,
			&i.CoffeeID,
			&i.Quantity,
			&i.UnitPrice,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertCartItem = `-- name: InsertCartItem :exec
INSERT INTO cart_items (id, cart_id, coffee_id, quantity, unit_price, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

type InsertCartItemParams struct {
	ID        uuid.UUID
	CartID    uuid.UUID
	CoffeeID  uuid.UUID
	Quantity  int32
	UnitPrice pgtype.Numeric
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (q *Queries) InsertCartItem(c context.Context, arg InsertCartItemParams) error {
	_, err := q.db.Exec(c, insertCartItem,
		arg.ID,
		arg.CartID,
		arg.CoffeeID,
		arg.Quantity,
		arg.UnitPrice,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const updateCartItem = `-- name: UpdateCartItem :execrows
UPDATE cart_items
SET quantity = $3, unit_price = $4, updated_at = $5
WHERE id = $1 AND cart_id = $2`

type UpdateCartItemParams struct {
	ID        uuid.UUID
	CartID    uuid.UUID
	Quantity  int32
	UnitPrice pgtype.Numeric
	UpdatedAt time.Time
}

func (q *Queries) UpdateCartItem(c context.Context, arg UpdateCartItemParams) (int64, error) {
	result, err := q.db.Exec(c, updateCartItem,
		arg.ID,
		arg.CartID,
		arg.Quantity,
		arg.UnitPrice,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteCartItem = `-- name: DeleteCartItem :execrows
DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`

type DeleteCartItemParams struct {
	ID     uuid.UUID
	CartID uuid.UUID
}

func (q *Queries) DeleteCartItem(c context.Context, arg DeleteCartItemParams) (int64, error) {
	result, err := q.db.Exec(c, deleteCartItem, arg.ID, arg.CartID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
