// Package checkout implements the three-step order placement flow:
// ADDRESS -> PAYMENT -> CONFIRMATION.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"shopscript-storefront/internal/model"
	"shopscript-storefront/internal/store"
)

type Step string

const (
	StepAddress      Step = "ADDRESS"
	StepPayment      Step = "PAYMENT"
	StepConfirmation Step = "CONFIRMATION"
)

var (
	ErrNotOnPayment = errors.New("checkout is not on the payment step")
	ErrEmptyCart    = errors.New("cart is empty")
	ErrNotLoggedIn  = errors.New("login required to place an order")
)

// Address is the structured shipping form. Line2 and AltMobile are optional;
// everything else is required to advance.
type Address struct {
	FullName  string `json:"fullName"`
	Line1     string `json:"addressLine1"`
	Line2     string `json:"addressLine2,omitempty"`
	City      string `json:"city"`
	State     string `json:"state"`
	District  string `json:"district"`
	ZipCode   string `json:"zipCode"`
	Mobile    string `json:"mobile"`
	AltMobile string `json:"altMobile,omitempty"`
}

// Validate lists every missing required field in one error.
func (a Address) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"full name", a.FullName},
		{"address line 1", a.Line1},
		{"city", a.City},
		{"state", a.State},
		{"district", a.District},
		{"zip code", a.ZipCode},
		{"mobile", a.Mobile},
	}

	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ShippingLabel assembles the single free-text shipping address recorded on
// the order.
func (a Address) ShippingLabel() string {
	var b strings.Builder
	b.WriteString(a.FullName)
	b.WriteString("\nMobile: ")
	b.WriteString(a.Mobile)
	if a.AltMobile != "" {
		b.WriteString(", Alt: ")
		b.WriteString(a.AltMobile)
	}
	b.WriteString("\n")
	b.WriteString(a.Line1)
	b.WriteString("\n")
	if a.Line2 != "" {
		b.WriteString(a.Line2)
		b.WriteString("\n")
	}
	b.WriteString(a.City)
	b.WriteString(", ")
	b.WriteString(a.District)
	b.WriteString("\n")
	b.WriteString(a.State)
	b.WriteString(" - ")
	b.WriteString(a.ZipCode)
	return b.String()
}

// OrderPlacer is the slice of the backend client the flow needs.
type OrderPlacer interface {
	CreateOrder(ctx context.Context, userID int64, order *model.Order) (*model.Order, error)
}

// Flow is one shopper's checkout in progress. Every transition failure leaves
// the flow on its current step with entered data intact.
type Flow struct {
	mu            sync.Mutex
	step          Step
	address       Address
	paymentMethod string
}

func NewFlow() *Flow {
	return &Flow{
		step:          StepAddress,
		paymentMethod: "Credit Card",
	}
}

func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

func (f *Flow) Address() Address {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.address
}

func (f *Flow) PaymentMethod() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paymentMethod
}

func (f *Flow) SetPaymentMethod(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paymentMethod = method
}

// SubmitAddress advances ADDRESS -> PAYMENT when validation passes. The
// entered address is kept either way so the shopper can correct it.
func (f *Flow) SubmitAddress(addr Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.address = addr
	if f.step != StepAddress {
		return nil
	}
	if err := addr.Validate(); err != nil {
		return err
	}
	f.step = StepPayment
	return nil
}

// Back returns from PAYMENT to ADDRESS; always allowed, data preserved.
func (f *Flow) Back() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step == StepPayment {
		f.step = StepAddress
	}
}

// PlaceOrder submits the current cart as an order: shipping address assembled
// from the form, payment status derived from the method (Cash on Delivery
// stays PENDING, everything else is PAID). On success the cart is cleared and
// the flow moves to CONFIRMATION; on failure it stays on PAYMENT.
func (f *Flow) PlaceOrder(ctx context.Context, orders OrderPlacer, cart *store.CartStore, user *model.User) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepPayment {
		return nil, ErrNotOnPayment
	}
	if user == nil {
		return nil, ErrNotLoggedIn
	}

	lines := cart.Items()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	order := fromCartLines(lines)
	order.TotalAmount = cart.Total()
	order.ShippingAddress = f.address.ShippingLabel()
	order.PaymentMethod = f.paymentMethod
	order.PaymentStatus = model.PaymentStatusFor(f.paymentMethod)

	placed, err := orders.CreateOrder(ctx, user.ID, order)
	if err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}

	if err := cart.ClearCart(ctx); err != nil {
		return nil, fmt.Errorf("clear cart after order: %w", err)
	}
	f.step = StepConfirmation
	return placed, nil
}

// Reset starts the flow over for the next purchase.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.step = StepAddress
	f.address = Address{}
	f.paymentMethod = "Credit Card"
}

func fromCartLines(lines []model.CartItem) *model.Order {
	order := &model.Order{
		Status: model.OrderPending,
		Items:  make([]model.OrderItem, 0, len(lines)),
	}
	for _, line := range lines {
		order.Items = append(order.Items, model.OrderItem{
			// Backend resolves the product by id; no need to echo the rest.
			Product:      model.Product{ID: line.Product.ID},
			Quantity:     line.Quantity,
			Price:        line.Price,
			SelectedSize: line.SelectedSize,
		})
	}
	return order
}
