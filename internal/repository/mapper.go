package repository

import (
	"math/big"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	cartModel "github.com/Alturino/coffeecart/cart/model"
	orderModel "github.com/Alturino/coffeecart/order/model"
)

func Numeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{
		Exp:              d.Exponent(),
		InfinityModifier: pgtype.Finite,
		Int:              d.Coefficient(),
		NaN:              false,
		Valid:            true,
	}
}

func Decimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.NaN || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(new(big.Int).Set(n.Int), n.Exp)
}

func (c Cart) Model(items []CartItem) cartModel.Cart {
	cart := cartModel.Cart{
		ID:            c.ID,
		OwnerID:       c.OwnerID,
		Status:        cartModel.Status(c.Status),
		PaymentStatus: cartModel.PaymentStatus(c.PaymentStatus),
		CompletedAt:   c.CompletedAt,
		Items:         make([]cartModel.Item, 0, len(items)),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
	for _, item := range items {
		cart.Items = append(cart.Items, item.Model())
	}
	return cart
}

func (i CartItem) Model() cartModel.Item {
	return cartModel.Item{
		ID:        i.ID,
		CartID:    i.CartID,
		CoffeeID:  i.CoffeeID,
		Quantity:  i.Quantity,
		UnitPrice: Decimal(i.UnitPrice),
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

func (o Order) Model(items []OrderItem) orderModel.Order {
	order := orderModel.Order{
		ID:              o.ID,
		CartID:          o.CartID,
		Items:           make([]orderModel.Item, 0, len(items)),
		TotalItems:      o.TotalItems,
		ItemsAmount:     Decimal(o.ItemsAmount),
		ShippingFee:     Decimal(o.ShippingFee),
		TotalAmount:     Decimal(o.TotalAmount),
		Status:          orderModel.Status(o.Status),
		DeliveryAddress: o.DeliveryAddress,
		PaymentMethod:   o.PaymentMethod,
		CreatedAt:       o.CreatedAt,
	}
	for _, item := range items {
		order.Items = append(order.Items, orderModel.Item{
			ID:        item.ID,
			OrderID:   item.OrderID,
			CoffeeID:  item.CoffeeID,
			Position:  item.Position,
			Quantity:  item.Quantity,
			UnitPrice: Decimal(item.UnitPrice),
		})
	}
	return order
}

func InsertOrderParamsFromModel(o orderModel.Order) InsertOrderParams {
	return InsertOrderParams{
		ID:              o.ID,
		CartID:          o.CartID,
		TotalItems:      o.TotalItems,
		ItemsAmount:     Numeric(o.ItemsAmount),
		ShippingFee:     Numeric(o.ShippingFee),
		TotalAmount:     Numeric(o.TotalAmount),
		Status:          string(o.Status),
		DeliveryAddress: o.DeliveryAddress,
		PaymentMethod:   o.PaymentMethod,
		CreatedAt:       o.CreatedAt,
	}
}

func InsertOrderItemsParamsFromModel(o orderModel.Order) []InsertOrderItemsParams {
	params := make([]InsertOrderItemsParams, 0, len(o.Items))
	for _, item := range o.Items {
		params = append(params, InsertOrderItemsParams{
			ID:        item.ID,
			OrderID:   item.OrderID,
			CoffeeID:  item.CoffeeID,
			Position:  item.Position,
			Quantity:  item.Quantity,
			UnitPrice: Numeric(item.UnitPrice),
		})
	}
	return params
}

func InsertCartParamsFromModel(c cartModel.Cart) InsertCartParams {
	return InsertCartParams{
		ID:            c.ID,
		OwnerID:       c.OwnerID,
		Status:        string(c.Status),
		PaymentStatus: string(c.PaymentStatus),
		CreatedAt:     c.CreatedAt,
	}
}

func UpdateCartParamsFromModel(c cartModel.Cart) UpdateCartParams {
	return UpdateCartParams{
		ID:            c.ID,
		Status:        string(c.Status),
		PaymentStatus: string(c.PaymentStatus),
		CompletedAt:   c.CompletedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func InsertCartItemParamsFromModel(i cartModel.Item) InsertCartItemParams {
	return InsertCartItemParams{
		ID:        i.ID,
		CartID:    i.CartID,
		CoffeeID:  i.CoffeeID,
		Quantity:  i.Quantity,
		UnitPrice: Numeric(i.UnitPrice),
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

func UpdateCartItemParamsFromModel(i cartModel.Item) UpdateCartItemParams {
	return UpdateCartItemParams{
		ID:        i.ID,
		CartID:    i.CartID,
		Quantity:  i.Quantity,
		UnitPrice: Numeric(i.UnitPrice),
		UpdatedAt: i.UpdatedAt,
	}
}
