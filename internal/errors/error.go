package errors

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidState    = errors.New("invalid state")
	ErrConflict        = errors.New("conflict")
	ErrUnavailable     = errors.New("unavailable")
)

var (
	ErrCartNotFound     = fmt.Errorf("cart %w", ErrNotFound)
	ErrCartItemNotFound = fmt.Errorf("cart item %w", ErrNotFound)
	ErrCoffeeNotFound   = fmt.Errorf("coffee %w", ErrNotFound)
	ErrOrderNotFound    = fmt.Errorf("order %w", ErrNotFound)

	ErrQuantityOutOfRange = fmt.Errorf("%w: quantity must be between 1 and 5", ErrInvalidArgument)
	ErrQuantityExceeded   = fmt.Errorf("%w: total quantity for this item cannot exceed 5", ErrInvalidArgument)

	ErrCartNotMutable = fmt.Errorf("%w: cart is no longer awaiting payment", ErrInvalidState)
	ErrCartEmpty      = fmt.Errorf("%w: cart is empty", ErrInvalidState)
	ErrCartCancelled  = fmt.Errorf("%w: cart is cancelled", ErrInvalidState)

	ErrCartCheckedOut = fmt.Errorf("%w: cart is already checked out", ErrConflict)
)

// Unavailable tags deadline errors with ErrUnavailable, the retryable class.
func Unavailable(err error) error {
	if err == nil || errors.Is(err, ErrUnavailable) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}

func HandleError(err error, span trace.Span) {
	if err == nil {
		return
	}
	span.AddEvent(err.Error())
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
}
