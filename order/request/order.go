package request

import "github.com/Alturino/coffeecart/order/model"

type Checkout struct {
	DeliveryAddress string `json:"deliveryAddress" validate:"max=500"`
	PaymentMethod   string `json:"paymentMethod"   validate:"max=50"`
}

func (c Checkout) Details() model.Details {
	return model.Details{
		DeliveryAddress: c.DeliveryAddress,
		PaymentMethod:   c.PaymentMethod,
	}
}
