package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopscript-storefront/internal/admin"
	"shopscript-storefront/internal/checkout"
	"shopscript-storefront/internal/client"
	"shopscript-storefront/internal/config"
	"shopscript-storefront/internal/model"
	"shopscript-storefront/internal/notify"
	"shopscript-storefront/internal/storage"
	"shopscript-storefront/internal/store"
	"shopscript-storefront/internal/ui"
)

func newTestSession(t *testing.T, backendURL string) *ui.Session {
	t.Helper()

	auth, err := store.NewSessionStore(context.Background(), storage.NewMemoryKV())
	require.NoError(t, err)

	s := &ui.Session{
		ID:          "test-session",
		Auth:        auth,
		Cart:        store.NewCartStore(storage.NewMemoryKV()),
		Checkout:    checkout.NewFlow(),
		ProductForm: admin.NewProductForm(),
		Notices:     notify.NewCenter(),
	}
	s.Client = client.NewShopClient(&config.Backend{BaseURL: backendURL, Timeout: 5 * time.Second}, s)
	return s
}

func loginShopper(t *testing.T, s *ui.Session) {
	t.Helper()
	_, err := s.Login(context.Background(), &model.JwtResponse{
		Token: "tok-1", ID: 7, Username: "alice", Role: model.RoleUser,
	}, false)
	require.NoError(t, err)
}

func newRequest(e *echo.Echo, s *ui.Session, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(ui.ContextKey, s)
	return c, rec
}

func TestAddToCartRequiresLogin(t *testing.T) {
	e := echo.New()
	s := newTestSession(t, "http://backend.invalid")
	h := NewStorefrontHandler()

	c, _ := newRequest(e, s, http.MethodPost, "/cart/items", `{"productId":1,"quantity":1}`)
	err := h.AddToCart(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)

	open, mode := s.Auth.Modal()
	assert.True(t, open, "login modal prompted")
	assert.Equal(t, store.ModalLogin, mode)
}

func TestAddToCartUsesSizeOverridePrice(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/products/1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1,"name":"Tee","price":100,"sizes":"M,L","sizePrices":"{\"M\":110}"}`))
	}))
	defer backend.Close()

	e := echo.New()
	s := newTestSession(t, backend.URL)
	loginShopper(t, s)
	h := NewStorefrontHandler()

	c, rec := newRequest(e, s, http.MethodPost, "/cart/items", `{"productId":1,"quantity":2,"size":"M"}`)
	require.NoError(t, h.AddToCart(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	items := s.Cart.Items()
	require.Len(t, items, 1)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("110")), "size override charged")
	assert.Equal(t, "M", items[0].SelectedSize)
	assert.True(t, s.Cart.Total().Equal(decimal.RequireFromString("220")))
}

func TestCheckoutAddressValidationBlocks(t *testing.T) {
	e := echo.New()
	s := newTestSession(t, "http://backend.invalid")
	h := NewStorefrontHandler()

	c, _ := newRequest(e, s, http.MethodPost, "/checkout/address", `{"fullName":"Alice"}`)
	err := h.CheckoutAddress(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	assert.Equal(t, checkout.StepAddress, s.Checkout.Step())

	notices := s.Notices.Flush()
	require.Len(t, notices, 1)
	assert.Equal(t, notify.Error, notices[0].Level)
}

func TestPlaceOrderHappyPath(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/products/"):
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":1,"name":"Tee","price":100}`))
		case r.URL.Path == "/orders/user/7":
			require.Equal(t, http.MethodPost, r.Method)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":42,"status":"PENDING","paymentStatus":"PENDING"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer backend.Close()

	e := echo.New()
	s := newTestSession(t, backend.URL)
	loginShopper(t, s)
	h := NewStorefrontHandler()

	c, _ := newRequest(e, s, http.MethodPost, "/cart/items", `{"productId":1,"quantity":1}`)
	require.NoError(t, h.AddToCart(c))

	c, _ = newRequest(e, s, http.MethodPost, "/checkout/address",
		`{"fullName":"Alice","addressLine1":"12 Market Road","city":"Chennai","state":"Tamil Nadu","district":"Chennai","zipCode":"600001","mobile":"9876543210"}`)
	require.NoError(t, h.CheckoutAddress(c))
	require.Equal(t, checkout.StepPayment, s.Checkout.Step())

	c, rec := newRequest(e, s, http.MethodPost, "/checkout/place", `{"paymentMethod":"Cash on Delivery"}`)
	require.NoError(t, h.PlaceOrder(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, checkout.StepConfirmation, s.Checkout.Step())
	assert.Equal(t, 0, s.Cart.ItemsCount())
}

func TestSessionExpiryOnBackend401(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer backend.Close()

	e := echo.New()
	s := newTestSession(t, backend.URL)
	loginShopper(t, s)
	h := NewStorefrontHandler()

	c, _ := newRequest(e, s, http.MethodGet, "/account/orders", "")
	err := h.MyOrders(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	assert.False(t, s.Auth.LoggedIn(), "401 outside login clears the session")
	assert.Equal(t, 0, s.Cart.ItemsCount(), "cart back to guest state")
}
