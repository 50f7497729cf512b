package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSizeList(t *testing.T) {
	p := Product{Sizes: "S, M ,L,,XL"}
	assert.Equal(t, []string{"S", "M", "L", "XL"}, p.SizeList())

	empty := Product{}
	assert.Nil(t, empty.SizeList())
}

func TestPriceForSize(t *testing.T) {
	p := Product{
		Price:      decimal.RequireFromString("100"),
		SizePrices: `{"M":120,"L":130}`,
	}

	assert.True(t, p.PriceForSize("M").Equal(decimal.RequireFromString("120")))
	assert.True(t, p.PriceForSize("S").Equal(decimal.RequireFromString("100")), "no override falls back to base")
	assert.True(t, p.PriceForSize("").Equal(decimal.RequireFromString("100")))
}

func TestPriceForSizeMalformedOverrides(t *testing.T) {
	p := Product{
		Price:      decimal.RequireFromString("100"),
		SizePrices: `not-json`,
	}
	assert.True(t, p.PriceForSize("M").Equal(decimal.RequireFromString("100")))
}

func TestPaymentStatusFor(t *testing.T) {
	assert.Equal(t, PaymentPending, PaymentStatusFor(PaymentMethodCOD))
	assert.Equal(t, PaymentPaid, PaymentStatusFor("Credit Card"))
	assert.Equal(t, PaymentPaid, PaymentStatusFor("PayPal"))
}

func TestCartLineKey(t *testing.T) {
	a := CartItem{Product: Product{ID: 1}, SelectedSize: "M"}
	b := CartItem{Product: Product{ID: 1}, SelectedSize: "L"}
	c := CartItem{Product: Product{ID: 2}, SelectedSize: "M"}

	assert.NotEqual(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
	assert.Equal(t, a.Key(), CartLineKey(1, "M"))
}

func TestValidOrderStatus(t *testing.T) {
	for _, s := range []OrderStatus{OrderPending, OrderApproved, OrderRejected, OrderDelivered, OrderCancelled} {
		assert.True(t, ValidOrderStatus(s))
	}
	assert.False(t, ValidOrderStatus("SHIPPED"))
}
