// Package notification consumes order events and notifies the buyer. The
// notification itself is a structured log entry.
package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Alturino/coffeecart/internal/constants"
	"github.com/Alturino/coffeecart/internal/log"
	"github.com/Alturino/coffeecart/order/publisher"
)

type HandlerFunc func(c context.Context, event publisher.OrderCreated) error

type Listener struct {
	client  *redis.Client
	channel string
	handle  HandlerFunc
}

func NewListener(client *redis.Client, handle HandlerFunc) Listener {
	if handle == nil {
		handle = LogOrderCreated
	}
	return Listener{client: client, channel: constants.ChannelOrderCreated, handle: handle}
}

// Listen blocks until c is cancelled. A malformed message or a failing handler
// is logged and does not stop the listener.
func (l Listener) Listen(c context.Context) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Listener Listen").
		Str(log.KeyChannel, l.channel).
		Str(log.KeyProcess, "subscribing to channel").
		Logger()

	logger.Info().Msg("subscribing to channel")
	sub := l.client.Subscribe(c, l.channel)
	defer sub.Close()
	if _, err := sub.Receive(c); err != nil {
		err = fmt.Errorf("failed subscribing to channel=%s with error=%w", l.channel, err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("subscribed to channel")

	logger = logger.With().Str(log.KeyProcess, "receiving messages").Logger()
	messages := sub.Channel()
	for {
		select {
		case <-c.Done():
			logger.Info().Msg("stopped receiving messages")
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			event := publisher.OrderCreated{}
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				err = fmt.Errorf("failed decoding message with error=%w", err)
				logger.Error().Err(err).Str(log.KeyBody, msg.Payload).Msg(err.Error())
				continue
			}

			mc := c
			if event.RequestID != "" {
				mc = log.AttachRequestIDToContext(c, event.RequestID)
			}
			if err := l.handle(mc, event); err != nil {
				err = fmt.Errorf("failed handling orderId=%s with error=%w", event.OrderID, err)
				logger.Error().Err(err).Msg(err.Error())
			}
		}
	}
}

func LogOrderCreated(c context.Context, event publisher.OrderCreated) error {
	zerolog.Ctx(c).
		Info().
		Ctx(c).
		Str(log.KeyTag, "LogOrderCreated").
		Str(log.KeyOrderID, event.OrderID.String()).
		Str(log.KeyCartID, event.CartID.String()).
		Int32("totalItems", event.TotalItems).
		Str("totalAmount", event.TotalAmount.String()).
		Msg("notifying customer about created order")
	return nil
}
