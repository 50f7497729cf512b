package model

import "github.com/shopspring/decimal"

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderApproved  OrderStatus = "APPROVED"
	OrderRejected  OrderStatus = "REJECTED"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// ValidOrderStatus reports whether s is one of the backend's order states.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderApproved, OrderRejected, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

const (
	PaymentPending = "PENDING"
	PaymentPaid    = "PAID"
)

// PaymentMethodCOD settles on delivery; every other method is treated as paid
// up front.
const PaymentMethodCOD = "Cash on Delivery"

// PaymentStatusFor derives the payment status recorded on a new order from
// the chosen payment method.
func PaymentStatusFor(method string) string {
	if method == PaymentMethodCOD {
		return PaymentPending
	}
	return PaymentPaid
}

type OrderItem struct {
	ID           int64           `json:"id,omitempty"`
	Product      Product         `json:"product"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	SelectedSize string          `json:"selectedSize,omitempty"`
}

// Order line items are immutable once the order is created; status is the
// only field admin actions mutate afterwards.
type Order struct {
	ID              int64           `json:"id,omitempty"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Status          OrderStatus     `json:"status"`
	CreatedAt       string          `json:"createdAt,omitempty"`
	ShippingAddress string          `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	PaymentStatus   string          `json:"paymentStatus"`
	Items           []OrderItem     `json:"items"`
	User            *User           `json:"user,omitempty"`
}
