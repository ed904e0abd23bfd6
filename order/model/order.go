package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	cartModel "github.com/Alturino/coffeecart/cart/model"
)

type Status string

const StatusCreated Status = "CREATED"

// Details carries the optional checkout fields supplied by the buyer.
type Details struct {
	DeliveryAddress string
	PaymentMethod   string
}

type Order struct {
	ID              uuid.UUID
	CartID          uuid.UUID
	Items           []Item
	TotalItems      int32
	ItemsAmount     decimal.Decimal
	ShippingFee     decimal.Decimal
	TotalAmount     decimal.Decimal
	Status          Status
	DeliveryAddress string
	PaymentMethod   string
	CreatedAt       time.Time
}

type Item struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	CoffeeID  uuid.UUID
	Position  int32
	Quantity  int32
	UnitPrice decimal.Decimal
}

func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt32(i.Quantity))
}

// New freezes the cart lines into an order. Items keep the cart order and the
// unit price captured when each line was added.
func New(
	id uuid.UUID,
	cart cartModel.Cart,
	shippingFee decimal.Decimal,
	details Details,
	now time.Time,
) Order {
	items := make([]Item, 0, len(cart.Items))
	for i, cartItem := range cart.Items {
		items = append(items, Item{
			ID:        uuid.New(),
			OrderID:   id,
			CoffeeID:  cartItem.CoffeeID,
			Position:  int32(i),
			Quantity:  cartItem.Quantity,
			UnitPrice: cartItem.UnitPrice,
		})
	}

	order := Order{
		ID:              id,
		CartID:          cart.ID,
		Items:           items,
		ShippingFee:     shippingFee,
		Status:          StatusCreated,
		DeliveryAddress: details.DeliveryAddress,
		PaymentMethod:   details.PaymentMethod,
		CreatedAt:       now,
	}
	order.TotalItems, order.ItemsAmount = totals(items)
	order.TotalAmount = order.ItemsAmount.Add(shippingFee)
	return order
}

func totals(items []Item) (int32, decimal.Decimal) {
	var count int32
	amount := decimal.Zero
	for _, item := range items {
		count += item.Quantity
		amount = amount.Add(item.Subtotal())
	}
	return count, amount
}

func (o Order) UniqueProductCount() int {
	return len(o.Items)
}
