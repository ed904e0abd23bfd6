package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	inErrors "github.com/Alturino/coffeecart/internal/errors"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error is ok", err: nil, expected: http.StatusOK},
		{name: "wrapped not found", err: fmt.Errorf("failed finding cart with error=%w", inErrors.ErrCartNotFound), expected: http.StatusNotFound},
		{name: "quantity out of range", err: inErrors.ErrQuantityOutOfRange, expected: http.StatusBadRequest},
		{name: "merge exceeds cap", err: inErrors.ErrQuantityExceeded, expected: http.StatusBadRequest},
		{name: "empty cart", err: inErrors.ErrCartEmpty, expected: http.StatusUnprocessableEntity},
		{name: "double checkout", err: inErrors.ErrCartCheckedOut, expected: http.StatusConflict},
		{name: "deadline exceeded", err: inErrors.Unavailable(context.DeadlineExceeded), expected: http.StatusServiceUnavailable},
		{name: "unknown error", err: errors.New("boom"), expected: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusFromError(tt.err))
		})
	}
}
