package http

import (
	"errors"
	"net/http"

	inErrors "github.com/Alturino/coffeecart/internal/errors"
)

func StatusFromError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, inErrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, inErrors.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, inErrors.ErrInvalidState):
		return http.StatusUnprocessableEntity
	case errors.Is(err, inErrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, inErrors.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
