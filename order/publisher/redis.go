package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/Alturino/coffeecart/internal/constants"
	"github.com/Alturino/coffeecart/internal/log"
	"github.com/Alturino/coffeecart/order/model"
)

// OrderCreated is the payload sent on the order.created channel.
type OrderCreated struct {
	OrderID            uuid.UUID       `json:"orderId"`
	CartID             uuid.UUID       `json:"cartId"`
	TotalItems         int32           `json:"totalItems"`
	UniqueProductCount int             `json:"uniqueProductCount"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	DeliveryAddress    string          `json:"deliveryAddress,omitempty"`
	RequestID          string          `json:"requestId,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
}

type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client, channel: constants.ChannelOrderCreated}
}

func (p *RedisPublisher) PublishOrderCreated(c context.Context, order model.Order) error {
	payload, err := json.Marshal(OrderCreated{
		OrderID:            order.ID,
		CartID:             order.CartID,
		TotalItems:         order.TotalItems,
		UniqueProductCount: order.UniqueProductCount(),
		TotalAmount:        order.TotalAmount,
		DeliveryAddress:    order.DeliveryAddress,
		RequestID:          log.RequestIDFromContext(c),
		CreatedAt:          order.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed marshaling orderId=%s with error=%w", order.ID, err)
	}
	if err := p.client.Publish(c, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed publishing to channel=%s with error=%w", p.channel, err)
	}
	return nil
}
