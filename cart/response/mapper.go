package response

import "github.com/Alturino/coffeecart/cart/model"

func FromCart(c model.Cart) Cart {
	items := make([]CartItem, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, FromItem(item))
	}
	return Cart{
		ID:            c.ID,
		OwnerID:       c.OwnerID,
		Status:        string(c.Status),
		PaymentStatus: string(c.PaymentStatus),
		Items:         items,
		TotalItems:    c.TotalItems(),
		ItemsAmount:   c.ItemsAmount(),
		CompletedAt:   c.CompletedAt,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func FromItem(i model.Item) CartItem {
	return CartItem{
		ID:        i.ID,
		CartID:    i.CartID,
		CoffeeID:  i.CoffeeID,
		Quantity:  i.Quantity,
		UnitPrice: i.UnitPrice,
		Subtotal:  i.Subtotal(),
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}
