package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inErrors "github.com/Alturino/coffeecart/internal/errors"
)

func TestValidateQuantity(t *testing.T) {
	tests := []struct {
		name        string
		quantity    int32
		expectedErr error
	}{
		{name: "given zero should return invalid argument", quantity: 0, expectedErr: inErrors.ErrInvalidArgument},
		{name: "given negative should return invalid argument", quantity: -1, expectedErr: inErrors.ErrInvalidArgument},
		{name: "given lower bound should pass", quantity: 1},
		{name: "given upper bound should pass", quantity: 5},
		{name: "given above upper bound should return invalid argument", quantity: 6, expectedErr: inErrors.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuantity(tt.quantity)
			if tt.expectedErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestAddItemMergesAndKeepsFirstPrice(t *testing.T) {
	now := time.Now()
	cart := NewCart(uuid.New(), nil, now)
	coffeeID := uuid.New()

	first, err := cart.AddItem(uuid.New(), coffeeID, 2, decimal.RequireFromString("10.00"), now)
	require.NoError(t, err)

	merged, err := cart.AddItem(uuid.New(), coffeeID, 2, decimal.RequireFromString("99.00"), now)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, first.ID, merged.ID)
	assert.EqualValues(t, 4, merged.Quantity)
	assert.True(t, merged.UnitPrice.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, merged.Subtotal().Equal(decimal.RequireFromString("40.00")))

	_, err = cart.AddItem(uuid.New(), coffeeID, 2, decimal.RequireFromString("10.00"), now)
	assert.ErrorIs(t, err, inErrors.ErrInvalidArgument)
	assert.EqualValues(t, 4, cart.Items[0].Quantity)
}

func TestUpdateAndRemoveItem(t *testing.T) {
	now := time.Now()
	cart := NewCart(uuid.New(), nil, now)
	item, err := cart.AddItem(uuid.New(), uuid.New(), 1, decimal.RequireFromString("5.00"), now)
	require.NoError(t, err)

	updated, err := cart.UpdateItem(item.ID, 5, now)
	require.NoError(t, err)
	assert.EqualValues(t, 5, updated.Quantity)
	assert.True(t, updated.UnitPrice.Equal(item.UnitPrice))

	_, err = cart.UpdateItem(item.ID, 6, now)
	assert.ErrorIs(t, err, inErrors.ErrInvalidArgument)

	_, err = cart.UpdateItem(uuid.New(), 1, now)
	assert.ErrorIs(t, err, inErrors.ErrNotFound)

	require.NoError(t, cart.RemoveItem(item.ID, now))
	assert.Empty(t, cart.Items)
	assert.ErrorIs(t, cart.RemoveItem(item.ID, now), inErrors.ErrNotFound)
}

func TestTerminalCartRejectsMutation(t *testing.T) {
	now := time.Now()
	cart := NewCart(uuid.New(), nil, now)
	item, err := cart.AddItem(uuid.New(), uuid.New(), 1, decimal.RequireFromString("5.00"), now)
	require.NoError(t, err)
	require.NoError(t, cart.Complete(now))

	assert.Equal(t, StatusCompleted, cart.Status)
	require.NotNil(t, cart.CompletedAt)

	_, err = cart.AddItem(uuid.New(), uuid.New(), 1, decimal.NewFromInt(1), now)
	assert.ErrorIs(t, err, inErrors.ErrInvalidState)
	_, err = cart.UpdateItem(item.ID, 2, now)
	assert.ErrorIs(t, err, inErrors.ErrInvalidState)
	assert.ErrorIs(t, cart.RemoveItem(item.ID, now), inErrors.ErrInvalidState)
	assert.ErrorIs(t, cart.Complete(now), inErrors.ErrConflict)
}

func TestCanCheckout(t *testing.T) {
	now := time.Now()

	empty := NewCart(uuid.New(), nil, now)
	assert.ErrorIs(t, empty.CanCheckout(), inErrors.ErrInvalidState)

	cancelled := NewCart(uuid.New(), nil, now)
	_, err := cancelled.AddItem(uuid.New(), uuid.New(), 1, decimal.NewFromInt(1), now)
	require.NoError(t, err)
	cancelled.Status = StatusCancelled
	assert.ErrorIs(t, cancelled.CanCheckout(), inErrors.ErrInvalidState)
}

func TestTotals(t *testing.T) {
	now := time.Now()
	cart := NewCart(uuid.New(), nil, now)
	_, err := cart.AddItem(uuid.New(), uuid.New(), 2, decimal.RequireFromString("10.00"), now)
	require.NoError(t, err)
	_, err = cart.AddItem(uuid.New(), uuid.New(), 1, decimal.RequireFromString("5.00"), now)
	require.NoError(t, err)

	assert.EqualValues(t, 3, cart.TotalItems())
	assert.True(t, cart.ItemsAmount().Equal(decimal.RequireFromString("25.00")))
}

func TestCloneDoesNotShareItems(t *testing.T) {
	now := time.Now()
	owner := uuid.New()
	cart := NewCart(uuid.New(), &owner, now)
	_, err := cart.AddItem(uuid.New(), uuid.New(), 1, decimal.NewFromInt(3), now)
	require.NoError(t, err)

	clone := cart.Clone()
	clone.Items[0].Quantity = 5
	*clone.OwnerID = uuid.New()

	assert.EqualValues(t, 1, cart.Items[0].Quantity)
	assert.Equal(t, owner, *cart.OwnerID)
}
