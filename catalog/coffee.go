// Package catalog answers coffee price lookups for the cart engine. Prices come
// from the local coffees table or from a remote catalog service, optionally
// fronted by a redis cache.
package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alturino/coffeecart/internal/repository"
)

type Coffee struct {
	ID          uuid.UUID       `json:"id"          validate:"required"`
	Name        string          `json:"name"        validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"       validate:"price"`
	ImageURL    string          `json:"imageUrl"`
}

func fromRow(row repository.Coffee) Coffee {
	return Coffee{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Price:       repository.Decimal(row.Price),
		ImageURL:    row.ImageUrl,
	}
}

// Lookup resolves the current unit price of a coffee. found is false when the
// catalog has no such coffee.
type Lookup interface {
	GetPrice(c context.Context, coffeeID uuid.UUID) (price decimal.Decimal, found bool, err error)
}
