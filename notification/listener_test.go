package notification

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/coffeecart/internal/constants"
	"github.com/Alturino/coffeecart/order/model"
	"github.com/Alturino/coffeecart/order/publisher"
)

func TestListenerReceivesOrderCreated(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	c, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan publisher.OrderCreated, 1)
	listener := NewListener(client, func(_ context.Context, event publisher.OrderCreated) error {
		received <- event
		return nil
	})
	done := make(chan error, 1)
	go func() { done <- listener.Listen(c) }()

	require.Eventually(t, func() bool {
		return len(mr.PubSubChannels(constants.ChannelOrderCreated)) == 1
	}, 2*time.Second, 10*time.Millisecond)

	mr.Publish(constants.ChannelOrderCreated, "not json")

	order := model.Order{
		ID:          uuid.New(),
		CartID:      uuid.New(),
		TotalItems:  2,
		TotalAmount: decimal.RequireFromString("24.80"),
		CreatedAt:   time.Now(),
	}
	require.NoError(t, publisher.NewRedisPublisher(client).PublishOrderCreated(c, order))

	select {
	case event := <-received:
		assert.Equal(t, order.ID, event.OrderID)
		assert.True(t, event.TotalAmount.Equal(order.TotalAmount))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for order created event")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop after cancel")
	}
}
