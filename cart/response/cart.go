package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Cart struct {
	ID            uuid.UUID       `json:"id"`
	OwnerID       *uuid.UUID      `json:"ownerId"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"paymentStatus"`
	Items         []CartItem      `json:"items"`
	TotalItems    int32           `json:"totalItems"`
	ItemsAmount   decimal.Decimal `json:"itemsAmount"`
	CompletedAt   *time.Time      `json:"completedAt"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type CartItem struct {
	ID        uuid.UUID       `json:"id"`
	CartID    uuid.UUID       `json:"cartId"`
	CoffeeID  uuid.UUID       `json:"coffeeId"`
	Coffee    *Coffee         `json:"coffee,omitempty"`
	Quantity  int32           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Coffee is the catalog summary shown next to a line. The price shown on the
// line is always the snapshot, never the catalog's current price.
type Coffee struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	ImageURL string    `json:"imageUrl"`
}
