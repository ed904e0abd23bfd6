package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const insertOrder = `-- name: InsertOrder :exec
INSERT INTO orders (
	id, cart_id, total_items, items_amount, shipping_fee, total_amount,
	status, delivery_address, payment_method, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

type InsertOrderParams struct {
	ID              uuid.UUID
	CartID          uuid.UUID
	TotalItems      int32
	ItemsAmount     pgtype.Numeric
	ShippingFee     pgtype.Numeric
	TotalAmount     pgtype.Numeric
	Status          string
	DeliveryAddress string
	PaymentMethod   string
	CreatedAt       time.Time
}

func (q *Queries) InsertOrder(c context.Context, arg InsertOrderParams) error {
	_, err := q.db.Exec(c, insertOrder,
		arg.ID,
		arg.CartID,
		arg.TotalItems,
		arg.ItemsAmount,
		arg.ShippingFee,
		arg.TotalAmount,
		arg.Status,
		arg.DeliveryAddress,
		arg.PaymentMethod,
		arg.CreatedAt,
	)
	return err
}

type InsertOrderItemsParams struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	CoffeeID  uuid.UUID
	Position  int32
	Quantity  int32
	UnitPrice pgtype.Numeric
}

type iteratorForInsertOrderItems struct {
	rows                 []InsertOrderItemsParams
	skippedFirstNextCall bool
}

func (r *iteratorForInsertOrderItems) Next() bool {
	if len(r.rows) == 0 {
		return false
	}
	if !r.skippedFirstNextCall {
		r.skippedFirstNextCall = true
		return true
	}
	r.rows = r.rows[1:]
	return len(r.rows) > 0
}

func (r iteratorForInsertOrderItems) Values() ([]interface{}, error) {
	return []interface{}{
		r.rows[0].ID,
		r.rows[0].OrderID,
		r.rows[0].CoffeeID,
		r.rows[0].Position,
		r.rows[0].Quantity,
		r.rows[0].UnitPrice,
	}, nil
}

func (r iteratorForInsertOrderItems) Err() error {
	return nil
}

func (q *Queries) InsertOrderItems(c context.Context, arg []InsertOrderItemsParams) (int64, error) {
	return q.db.CopyFrom(
		c,
		pgx.Identifier{"order_items"},
		[]string{"id", "order_id", "coffee_id", "position", "quantity", "unit_price"},
		&iteratorForInsertOrderItems{rows: arg},
	)
}

const findOrderById = `-- name: FindOrderById :one
SELECT id, cart_id, total_items, items_amount, shipping_fee, total_amount,
	status, delivery_address, payment_method, created_at
FROM orders
WHERE id = $1`

func (q *Queries) FindOrderById(c context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(c, findOrderById, id)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.CartID,
		&i.TotalItems,
		&i.ItemsAmount,
		&i.ShippingFee,
		&i.TotalAmount,
		&i.Status,
		&i.DeliveryAddress,
		&i.PaymentMethod,
		&i.CreatedAt,
	)
	return i, err
}

const findOrderItemsByOrderId = `-- name: FindOrderItemsByOrderId :many
SELECT id, order_id, coffee_id, position, quantity, unit_price
FROM order_items
WHERE order_id = $1
ORDER BY position`

func (q *Queries) FindOrderItemsByOrderId(c context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(c, findOrderItemsByOrderId, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []OrderItem{}
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.CoffeeID,
			&i.Position,
			&i.Quantity,
			&i.UnitPrice,
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
