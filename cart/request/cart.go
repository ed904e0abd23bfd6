package request

import "github.com/google/uuid"

type CreateCart struct {
	OwnerID *uuid.UUID `json:"ownerId"`
}

// AddItem carries no quantity bounds; the cart engine enforces them.
type AddItem struct {
	CoffeeID uuid.UUID `json:"coffeeId" validate:"required"`
	Quantity int32     `json:"quantity"`
}

type UpdateItem struct {
	Quantity int32 `json:"quantity"`
}
