package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopscript-storefront/internal/model"
	"shopscript-storefront/internal/storage"
	"shopscript-storefront/internal/store"
)

type fakePlacer struct {
	gotUserID int64
	gotOrder  *model.Order
	err       error
}

func (f *fakePlacer) CreateOrder(_ context.Context, userID int64, order *model.Order) (*model.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.gotUserID = userID
	f.gotOrder = order
	placed := *order
	placed.ID = 42
	return &placed, nil
}

func validAddress() Address {
	return Address{
		FullName: "Alice Kumar",
		Line1:    "12 Market Road",
		City:     "Chennai",
		State:    "Tamil Nadu",
		District: "Chennai",
		ZipCode:  "600001",
		Mobile:   "9876543210",
	}
}

func cartWithLine(t *testing.T) *store.CartStore {
	t.Helper()
	cart := store.NewCartStore(storage.NewMemoryKV())
	require.NoError(t, cart.SetUser(context.Background(), 7))
	price := decimal.RequireFromString("150")
	require.NoError(t, cart.AddToCart(context.Background(), model.Product{ID: 3, Price: price}, 2, "M", &price))
	return cart
}

func TestAddressValidationGatesPaymentStep(t *testing.T) {
	flow := NewFlow()

	incomplete := validAddress()
	incomplete.Mobile = ""
	err := flow.SubmitAddress(incomplete)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mobile")
	assert.Equal(t, StepAddress, flow.Step())
	// Entered data survives the failed attempt.
	assert.Equal(t, "Alice Kumar", flow.Address().FullName)

	require.NoError(t, flow.SubmitAddress(validAddress()))
	assert.Equal(t, StepPayment, flow.Step())

	// A repeated submit advances no further.
	require.NoError(t, flow.SubmitAddress(validAddress()))
	assert.Equal(t, StepPayment, flow.Step())
}

func TestBackPreservesAddress(t *testing.T) {
	flow := NewFlow()
	require.NoError(t, flow.SubmitAddress(validAddress()))

	flow.Back()
	assert.Equal(t, StepAddress, flow.Step())
	assert.Equal(t, validAddress(), flow.Address())
}

func TestPlaceOrderCashOnDelivery(t *testing.T) {
	ctx := context.Background()
	flow := NewFlow()
	cart := cartWithLine(t)
	placer := &fakePlacer{}
	user := &model.User{ID: 7, Username: "alice", Role: model.RoleUser}

	require.NoError(t, flow.SubmitAddress(validAddress()))
	flow.SetPaymentMethod(model.PaymentMethodCOD)

	order, err := flow.PlaceOrder(ctx, placer, cart, user)
	require.NoError(t, err)

	assert.Equal(t, StepConfirmation, flow.Step())
	assert.Equal(t, int64(7), placer.gotUserID)
	assert.Equal(t, model.PaymentPending, order.PaymentStatus)
	assert.Equal(t, model.OrderPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("300")))
	assert.Equal(t, 0, cart.ItemsCount(), "cart cleared after placement")

	require.Len(t, placer.gotOrder.Items, 1)
	item := placer.gotOrder.Items[0]
	assert.Equal(t, int64(3), item.Product.ID)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, "M", item.SelectedSize)
}

func TestPlaceOrderOtherMethodsArePaid(t *testing.T) {
	ctx := context.Background()
	flow := NewFlow()
	cart := cartWithLine(t)
	user := &model.User{ID: 7}

	require.NoError(t, flow.SubmitAddress(validAddress()))
	flow.SetPaymentMethod("PayPal")

	order, err := flow.PlaceOrder(ctx, &fakePlacer{}, cart, user)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, order.PaymentStatus)
}

func TestPlaceOrderFailureStaysOnPayment(t *testing.T) {
	ctx := context.Background()
	flow := NewFlow()
	cart := cartWithLine(t)
	user := &model.User{ID: 7}

	require.NoError(t, flow.SubmitAddress(validAddress()))

	_, err := flow.PlaceOrder(ctx, &fakePlacer{err: errors.New("backend down")}, cart, user)
	require.Error(t, err)
	assert.Equal(t, StepPayment, flow.Step())
	assert.Equal(t, 1, cart.ItemsCount(), "cart untouched on failure")
}

func TestPlaceOrderGuards(t *testing.T) {
	ctx := context.Background()
	user := &model.User{ID: 7}

	flow := NewFlow()
	cart := cartWithLine(t)
	_, err := flow.PlaceOrder(ctx, &fakePlacer{}, cart, user)
	assert.ErrorIs(t, err, ErrNotOnPayment)

	require.NoError(t, flow.SubmitAddress(validAddress()))
	_, err = flow.PlaceOrder(ctx, &fakePlacer{}, cart, nil)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	empty := store.NewCartStore(storage.NewMemoryKV())
	require.NoError(t, empty.SetUser(ctx, 7))
	_, err = flow.PlaceOrder(ctx, &fakePlacer{}, empty, user)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestShippingLabelFormat(t *testing.T) {
	addr := validAddress()
	addr.Line2 = "Flat 4B"
	addr.AltMobile = "9000000000"

	label := addr.ShippingLabel()
	assert.Equal(t,
		"Alice Kumar\nMobile: 9876543210, Alt: 9000000000\n12 Market Road\nFlat 4B\nChennai, Chennai\nTamil Nadu - 600001",
		label)

	addr.Line2 = ""
	addr.AltMobile = ""
	assert.Equal(t,
		"Alice Kumar\nMobile: 9876543210\n12 Market Road\nChennai, Chennai\nTamil Nadu - 600001",
		addr.ShippingLabel())
}
