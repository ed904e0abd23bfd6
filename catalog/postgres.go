package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	inErrors "github.com/Alturino/coffeecart/internal/errors"
	"github.com/Alturino/coffeecart/internal/log"
	"github.com/Alturino/coffeecart/internal/otel"
	"github.com/Alturino/coffeecart/internal/repository"
)

type PostgresCatalog struct {
	queries *repository.Queries
}

func NewPostgresCatalog(queries *repository.Queries) PostgresCatalog {
	return PostgresCatalog{queries: queries}
}

func (p PostgresCatalog) FindCoffeeById(c context.Context, coffeeID uuid.UUID) (Coffee, error) {
	c, span := otel.Tracer.Start(c, "PostgresCatalog FindCoffeeById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PostgresCatalog FindCoffeeById").
		Str(log.KeyCoffeeID, coffeeID.String()).
		Str(log.KeyProcess, "finding coffee").
		Logger()

	logger.Debug().Msg("finding coffee")
	row, err := p.queries.FindCoffeeById(c, coffeeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Coffee{}, fmt.Errorf("coffeeId=%s: %w", coffeeID, inErrors.ErrCoffeeNotFound)
	}
	if err != nil {
		err = fmt.Errorf("failed finding coffeeId=%s with error=%w", coffeeID, inErrors.Unavailable(err))
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Coffee{}, err
	}
	logger.Debug().Msg("found coffee")
	return fromRow(row), nil
}

func (p PostgresCatalog) GetPrice(c context.Context, coffeeID uuid.UUID) (decimal.Decimal, bool, error) {
	coffee, err := p.FindCoffeeById(c, coffeeID)
	if errors.Is(err, inErrors.ErrNotFound) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	return coffee.Price, true, nil
}
