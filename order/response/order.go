package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alturino/coffeecart/order/model"
)

type Order struct {
	ID                 uuid.UUID       `json:"id"`
	CartID             uuid.UUID       `json:"cartId"`
	Items              []OrderItem     `json:"items"`
	UniqueProductCount int             `json:"uniqueProductCount"`
	ItemsTotal         int32           `json:"itemsTotal"`
	ItemsAmount        decimal.Decimal `json:"itemsAmount"`
	ShippingFee        decimal.Decimal `json:"shippingFee"`
	Total              decimal.Decimal `json:"total"`
	Status             string          `json:"status"`
	DeliveryAddress    string          `json:"deliveryAddress,omitempty"`
	PaymentMethod      string          `json:"paymentMethod,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
}

type OrderItem struct {
	ID        uuid.UUID       `json:"id"`
	CoffeeID  uuid.UUID       `json:"coffeeId"`
	Quantity  int32           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

func FromOrder(o model.Order) Order {
	items := make([]OrderItem, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItem{
			ID:        item.ID,
			CoffeeID:  item.CoffeeID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal(),
		})
	}
	return Order{
		ID:                 o.ID,
		CartID:             o.CartID,
		Items:              items,
		UniqueProductCount: o.UniqueProductCount(),
		ItemsTotal:         o.TotalItems,
		ItemsAmount:        o.ItemsAmount,
		ShippingFee:        o.ShippingFee,
		Total:              o.TotalAmount,
		Status:             string(o.Status),
		DeliveryAddress:    o.DeliveryAddress,
		PaymentMethod:      o.PaymentMethod,
		CreatedAt:          o.CreatedAt,
	}
}
