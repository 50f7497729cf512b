package model

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// CartItem is one distinct (product, size) line. Price is the unit price
// actually charged, which may be a size-specific override of the base price.
type CartItem struct {
	Product      Product         `json:"product"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	SelectedSize string          `json:"selectedSize,omitempty"`
}

// Key is the cart line identity: same product in a different size is a
// separate line.
func (i *CartItem) Key() string {
	return CartLineKey(i.Product.ID, i.SelectedSize)
}

func CartLineKey(productID int64, size string) string {
	return strconv.FormatInt(productID, 10) + "|" + size
}
