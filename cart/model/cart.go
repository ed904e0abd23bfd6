package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	inErrors "github.com/Alturino/coffeecart/internal/errors"
)

type Status string

const (
	StatusAwaitingPayment Status = "AWAITING_PAYMENT"
	StatusCompleted       Status = "COMPLETED"
	StatusCancelled       Status = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// Per-product purchase cap.
const (
	MinQuantity int32 = 1
	MaxQuantity int32 = 5
)

type Cart struct {
	ID            uuid.UUID
	OwnerID       *uuid.UUID
	Status        Status
	PaymentStatus PaymentStatus
	CompletedAt   *time.Time
	Items         []Item
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Item is one coffee line. UnitPrice is the catalog price captured when the
// line was created and is never refreshed from the catalog.
type Item struct {
	ID        uuid.UUID
	CartID    uuid.UUID
	CoffeeID  uuid.UUID
	Quantity  int32
	UnitPrice decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt32(i.Quantity))
}

func NewCart(id uuid.UUID, ownerID *uuid.UUID, now time.Time) Cart {
	return Cart{
		ID:            id,
		OwnerID:       ownerID,
		Status:        StatusAwaitingPayment,
		PaymentStatus: PaymentStatusPending,
		Items:         []Item{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func ValidateQuantity(quantity int32) error {
	if quantity < MinQuantity || quantity > MaxQuantity {
		return inErrors.ErrQuantityOutOfRange
	}
	return nil
}

func (c Cart) Mutable() bool {
	return c.Status == StatusAwaitingPayment
}

func (c Cart) Clone() Cart {
	clone := c
	if c.OwnerID != nil {
		ownerID := *c.OwnerID
		clone.OwnerID = &ownerID
	}
	if c.CompletedAt != nil {
		completedAt := *c.CompletedAt
		clone.CompletedAt = &completedAt
	}
	clone.Items = make([]Item, len(c.Items))
	copy(clone.Items, c.Items)
	return clone
}

func (c Cart) FindItem(itemID uuid.UUID) (Item, bool) {
	for _, item := range c.Items {
		if item.ID == itemID {
			return item, true
		}
	}
	return Item{}, false
}

func (c Cart) TotalItems() int32 {
	var total int32
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

func (c Cart) ItemsAmount() decimal.Decimal {
	amount := decimal.Zero
	for _, item := range c.Items {
		amount = amount.Add(item.Subtotal())
	}
	return amount
}

// AddItem merges quantity into the existing line for coffeeID, or appends a
// new line priced at unitPrice. A merge past MaxQuantity is rejected, not clamped.
func (c *Cart) AddItem(
	itemID uuid.UUID,
	coffeeID uuid.UUID,
	quantity int32,
	unitPrice decimal.Decimal,
	now time.Time,
) (Item, error) {
	if !c.Mutable() {
		return Item{}, inErrors.ErrCartNotMutable
	}
	if err := ValidateQuantity(quantity); err != nil {
		return Item{}, err
	}

	for i, item := range c.Items {
		if item.CoffeeID != coffeeID {
			continue
		}
		merged := item.Quantity + quantity
		if merged > MaxQuantity {
			return Item{}, inErrors.ErrQuantityExceeded
		}
		item.Quantity = merged
		item.UpdatedAt = now
		c.Items[i] = item
		c.UpdatedAt = now
		return item, nil
	}

	item := Item{
		ID:        itemID,
		CartID:    c.ID,
		CoffeeID:  coffeeID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		CreatedAt: now,
		UpdatedAt: now,
	}
	c.Items = append(c.Items, item)
	c.UpdatedAt = now
	return item, nil
}

func (c *Cart) UpdateItem(itemID uuid.UUID, quantity int32, now time.Time) (Item, error) {
	if !c.Mutable() {
		return Item{}, inErrors.ErrCartNotMutable
	}
	if err := ValidateQuantity(quantity); err != nil {
		return Item{}, err
	}
	for i, item := range c.Items {
		if item.ID != itemID {
			continue
		}
		item.Quantity = quantity
		item.UpdatedAt = now
		c.Items[i] = item
		c.UpdatedAt = now
		return item, nil
	}
	return Item{}, inErrors.ErrCartItemNotFound
}

func (c *Cart) RemoveItem(itemID uuid.UUID, now time.Time) error {
	if !c.Mutable() {
		return inErrors.ErrCartNotMutable
	}
	for i, item := range c.Items {
		if item.ID != itemID {
			continue
		}
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
		c.UpdatedAt = now
		return nil
	}
	return inErrors.ErrCartItemNotFound
}

func (c Cart) CanCheckout() error {
	switch c.Status {
	case StatusCompleted:
		return inErrors.ErrCartCheckedOut
	case StatusCancelled:
		return inErrors.ErrCartCancelled
	}
	if len(c.Items) == 0 {
		return inErrors.ErrCartEmpty
	}
	return nil
}

// Complete moves the cart to its terminal COMPLETED state. CompletedAt is set once.
func (c *Cart) Complete(now time.Time) error {
	if err := c.CanCheckout(); err != nil {
		return err
	}
	c.Status = StatusCompleted
	c.CompletedAt = &now
	c.UpdatedAt = now
	return nil
}
