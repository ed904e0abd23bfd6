package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartModel "github.com/Alturino/coffeecart/cart/model"
)

func TestNew(t *testing.T) {
	now := time.Now()
	cart := cartModel.NewCart(uuid.New(), nil, now)
	coffeeA, coffeeB := uuid.New(), uuid.New()
	_, err := cart.AddItem(uuid.New(), coffeeA, 2, decimal.RequireFromString("10.00"), now)
	require.NoError(t, err)
	_, err = cart.AddItem(uuid.New(), coffeeB, 1, decimal.RequireFromString("5.00"), now)
	require.NoError(t, err)

	orderID := uuid.New()
	order := New(
		orderID,
		cart,
		decimal.RequireFromString("5.00"),
		Details{DeliveryAddress: "Jl. Kopi 1", PaymentMethod: "cash"},
		now,
	)

	assert.Equal(t, orderID, order.ID)
	assert.Equal(t, cart.ID, order.CartID)
	assert.Equal(t, StatusCreated, order.Status)
	assert.EqualValues(t, 3, order.TotalItems)
	assert.True(t, order.ItemsAmount.Equal(decimal.RequireFromString("25.00")))
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("30.00")))
	assert.Equal(t, 2, order.UniqueProductCount())
	assert.Equal(t, "Jl. Kopi 1", order.DeliveryAddress)
	assert.Equal(t, "cash", order.PaymentMethod)

	require.Len(t, order.Items, 2)
	assert.Equal(t, coffeeA, order.Items[0].CoffeeID)
	assert.EqualValues(t, 0, order.Items[0].Position)
	assert.Equal(t, coffeeB, order.Items[1].CoffeeID)
	assert.EqualValues(t, 1, order.Items[1].Position)
	for _, item := range order.Items {
		assert.Equal(t, orderID, item.OrderID)
	}
}

func TestNewWithZeroShippingFee(t *testing.T) {
	now := time.Now()
	cart := cartModel.NewCart(uuid.New(), nil, now)
	_, err := cart.AddItem(uuid.New(), uuid.New(), 5, decimal.RequireFromString("1.10"), now)
	require.NoError(t, err)

	order := New(uuid.New(), cart, decimal.Zero, Details{}, now)

	assert.True(t, order.ItemsAmount.Equal(decimal.RequireFromString("5.50")))
	assert.True(t, order.TotalAmount.Equal(order.ItemsAmount))
}
