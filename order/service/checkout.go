package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	otelMetric "go.opentelemetry.io/otel/metric"

	cartModel "github.com/Alturino/coffeecart/cart/model"
	inErrors "github.com/Alturino/coffeecart/internal/errors"
	"github.com/Alturino/coffeecart/internal/log"
	"github.com/Alturino/coffeecart/internal/otel"
	"github.com/Alturino/coffeecart/order/model"
)

type OrderStore interface {
	CreateFromCart(
		c context.Context,
		cartID uuid.UUID,
		fn func(*cartModel.Cart) (model.Order, error),
	) (model.Order, error)
	FindOrderById(c context.Context, orderID uuid.UUID) (model.Order, error)
}

type Publisher interface {
	PublishOrderCreated(c context.Context, order model.Order) error
}

// CartInvalidator drops cached cart views once checkout changes the cart.
type CartInvalidator interface {
	InvalidateCart(c context.Context, cartID uuid.UUID)
}

type CheckoutService struct {
	store       OrderStore
	publisher   Publisher
	carts       CartInvalidator
	shippingFee decimal.Decimal
	timeout     time.Duration
	now         func() time.Time
}

func NewCheckoutService(
	store OrderStore,
	publisher Publisher,
	carts CartInvalidator,
	shippingFee decimal.Decimal,
	timeout time.Duration,
) CheckoutService {
	return CheckoutService{
		store:       store,
		publisher:   publisher,
		carts:       carts,
		shippingFee: shippingFee,
		timeout:     timeout,
		now:         time.Now,
	}
}

// CreateOrder converts the cart into an order. The cart is read, checked,
// completed and the order persisted under one store lock, so the order always
// reflects the cart contents at that instant.
func (s CheckoutService) CreateOrder(
	c context.Context,
	cartID uuid.UUID,
	details model.Details,
) (model.Order, error) {
	c, span := otel.Tracer.Start(c, "CheckoutService CreateOrder")
	defer span.End()
	span.SetAttributes(attribute.String(log.KeyCartID, cartID.String()))

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutService CreateOrder").
		Str(log.KeyCartID, cartID.String()).
		Str(log.KeyProcess, "creating order from cart").
		Logger()

	sc, cancel := s.withTimeout(c)
	defer cancel()

	logger.Info().Msg("creating order from cart")
	orderID := uuid.New()
	order, err := s.store.CreateFromCart(sc, cartID, func(cart *cartModel.Cart) (model.Order, error) {
		now := s.now()
		if err := cart.Complete(now); err != nil {
			return model.Order{}, err
		}
		return model.New(orderID, *cart, s.shippingFee, details, now), nil
	})
	if err != nil {
		err = fmt.Errorf("failed creating order from cartId=%s with error=%w", cartID, inErrors.Unavailable(err))
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return model.Order{}, err
	}
	span.SetAttributes(attribute.String(log.KeyOrderID, order.ID.String()))
	logger = logger.With().
		Str(log.KeyOrderID, order.ID.String()).
		Int32("totalItems", order.TotalItems).
		Str("totalAmount", order.TotalAmount.String()).
		Logger()
	logger.Info().Msg("created order from cart")
	otel.OrdersCreated.Add(c, 1, otelMetric.WithAttributes(attribute.String("paymentMethod", order.PaymentMethod)))

	if s.carts != nil {
		s.carts.InvalidateCart(c, cartID)
	}

	if s.publisher != nil {
		logger = logger.With().Str(log.KeyProcess, "publishing order created").Logger()
		logger.Info().Msg("publishing order created")
		if err := s.publisher.PublishOrderCreated(c, order); err != nil {
			err = fmt.Errorf("failed publishing orderId=%s with error=%w", order.ID, err)
			span.AddEvent(err.Error())
			logger.Warn().Err(err).Msg(err.Error())
		} else {
			logger.Info().Msg("published order created")
		}
	}

	return order, nil
}

func (s CheckoutService) FindOrderById(c context.Context, orderID uuid.UUID) (model.Order, error) {
	c, span := otel.Tracer.Start(c, "CheckoutService FindOrderById")
	defer span.End()
	span.SetAttributes(attribute.String(log.KeyOrderID, orderID.String()))

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutService FindOrderById").
		Str(log.KeyOrderID, orderID.String()).
		Str(log.KeyProcess, "finding order").
		Logger()

	sc, cancel := s.withTimeout(c)
	defer cancel()

	logger.Info().Msg("finding order")
	order, err := s.store.FindOrderById(sc, orderID)
	if err != nil {
		err = fmt.Errorf("failed finding orderId=%s with error=%w", orderID, inErrors.Unavailable(err))
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return model.Order{}, err
	}
	logger.Info().Msg("found order")
	return order, nil
}

func (s CheckoutService) withTimeout(c context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(c)
	}
	return context.WithTimeout(c, s.timeout)
}
