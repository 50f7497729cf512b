package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"shopscript-storefront/internal/checkout"
	"shopscript-storefront/internal/model"
	"shopscript-storefront/internal/notify"
	"shopscript-storefront/internal/store"
)

type StorefrontHandler struct{}

func NewStorefrontHandler() *StorefrontHandler {
	return &StorefrontHandler{}
}

// visibleProducts hides soft-deleted products from shoppers.
func visibleProducts(products []model.Product) []model.Product {
	visible := make([]model.Product, 0, len(products))
	for _, p := range products {
		if !p.Deleted {
			visible = append(visible, p)
		}
	}
	return visible
}

func (h *StorefrontHandler) Home(c echo.Context) error {
	ctx := c.Request().Context()
	s := uiSession(c)

	settings, err := s.Client.GetSettings(ctx)
	if err != nil {
		return backendError(s, err)
	}
	products, err := s.Client.ListProducts(ctx)
	if err != nil {
		return backendError(s, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"settings": settings,
		"products": visibleProducts(products),
	})
}

func (h *StorefrontHandler) Category(c echo.Context) error {
	ctx := c.Request().Context()
	s := uiSession(c)

	slug := c.Param("slug")
	sub := c.QueryParam("sub")

	products, err := s.Client.ListProducts(ctx)
	if err != nil {
		return backendError(s, err)
	}

	var matched []model.Product
	for _, p := range visibleProducts(products) {
		if !strings.EqualFold(p.Category, slug) {
			continue
		}
		if sub != "" && !strings.EqualFold(p.Subcategory, sub) {
			continue
		}
		matched = append(matched, p)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"category":    slug,
		"subcategory": sub,
		"products":    matched,
	})
}

func (h *StorefrontHandler) Product(c echo.Context) error {
	ctx := c.Request().Context()
	s := uiSession(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	product, err := s.Client.GetProduct(ctx, id)
	if err != nil {
		return backendError(s, err)
	}

	reviews, err := s.Client.ProductReviews(ctx, id)
	if err != nil {
		return backendError(s, err)
	}
	approved := make([]model.Review, 0, len(reviews))
	for _, r := range reviews {
		if r.IsApproved {
			approved = append(approved, r)
		}
	}

	// Resolved display price per size, base price filling the gaps.
	sizePrices := map[string]decimal.Decimal{}
	for _, size := range product.SizeList() {
		sizePrices[size] = product.PriceForSize(size)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"product":    product,
		"reviews":    approved,
		"sizes":      product.SizeList(),
		"sizePrices": sizePrices,
	})
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *StorefrontHandler) SubmitReview(c echo.Context) error {
	ctx := c.Request().Context()
	s := uiSession(c)

	if err := loginRequired(s); err != nil {
		return err
	}

	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	var req reviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return echo.NewHTTPError(http.StatusBadRequest, "rating must be between 1 and 5")
	}

	user := s.Auth.User()
	review, err := s.Client.CreateReview(ctx, productID, user.ID, &model.Review{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		return backendError(s, err)
	}

	s.Notices.Push(notify.Success, "Review submitted. It will appear once approved.")
	return c.JSON(http.StatusOK, review)
}

// -------- cart --------

func (h *StorefrontHandler) cartView(cart *store.CartStore) map[string]any {
	return map[string]any{
		"items":      cart.Items(),
		"total":      cart.Total(),
		"itemsCount": cart.ItemsCount(),
	}
}

func (h *StorefrontHandler) Cart(c echo.Context) error {
	s := uiSession(c)
	return c.JSON(http.StatusOK, h.cartView(s.Cart))
}

type addToCartRequest struct {
	ProductID int64  `json:"productId"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
}

func (h *StorefrontHandler) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	s := uiSession(c)

	if err := loginRequired(s); err != nil {
		return err
	}

	var req addToCartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	product, err := s.Client.GetProduct(ctx, req.ProductID)
	if err != nil {
		return backendError(s, err)
	}

	// A selected size carries its override price into the line.
	var override *decimal.Decimal
	if req.Size != "" {
		price := product.PriceForSize(req.Size)
		override = &price
	}

	if err := s.Cart.AddToCart(ctx, *product, req.Quantity, req.Size, override); err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}

	return c.JSON(http.StatusOK, h.cartView(s.Cart))
}

func (h *StorefrontHandler) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	s := uiSession(c)

	productID, err := strconv.ParseInt(c.QueryParam("productId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	size := c.QueryParam("size")

	if err := s.Cart.RemoveFromCart(ctx, productID, size); err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return c.JSON(http.StatusOK, h.cartView(s.Cart))
}

func (h *StorefrontHandler) ClearCart(c echo.Context) error {
	s := uiSession(c)
	if err := s.Cart.ClearCart(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return c.JSON(http.StatusOK, h.cartView(s.Cart))
}

// -------- checkout --------

func (h *StorefrontHandler) Checkout(c echo.Context) error {
	s := uiSession(c)
	return c.JSON(http.StatusOK, map[string]any{
		"step":          s.Checkout.Step(),
		"address":       s.Checkout.Address(),
		"paymentMethod": s.Checkout.PaymentMethod(),
		"items":         s.Cart.Items(),
		"total":         s.Cart.Total(),
	})
}

func (h *StorefrontHandler) CheckoutAddress(c echo.Context) error {
	s := uiSession(c)

	var addr checkout.Address
	if err := c.Bind(&addr); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := s.Checkout.SubmitAddress(addr); err != nil {
		s.Notices.Push(notify.Error, "Please fill in all required fields.")
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"step": s.Checkout.Step()})
}

func (h *StorefrontHandler) CheckoutBack(c echo.Context) error {
	s := uiSession(c)
	s.Checkout.Back()
	return c.JSON(http.StatusOK, map[string]any{"step": s.Checkout.Step()})
}

type placeOrderRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

func (h *StorefrontHandler) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()
	s := uiSession(c)

	if err := loginRequired(s); err != nil {
		s.Notices.Push(notify.Error, "Please login to place an order")
		return err
	}

	var req placeOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.PaymentMethod != "" {
		s.Checkout.SetPaymentMethod(req.PaymentMethod)
	}

	order, err := s.Checkout.PlaceOrder(ctx, s.Client, s.Cart, s.Auth.User())
	if err != nil {
		s.Notices.Push(notify.Error, "Failed to place order. Please try again.")
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"step":  s.Checkout.Step(),
		"order": order,
	})
}

func (h *StorefrontHandler) CheckoutReset(c echo.Context) error {
	s := uiSession(c)
	s.Checkout.Reset()
	return c.JSON(http.StatusOK, map[string]any{"step": s.Checkout.Step()})
}

// -------- account --------

func (h *StorefrontHandler) MyOrders(c echo.Context) error {
	ctx := c.Request().Context()
	s := uiSession(c)

	if err := loginRequired(s); err != nil {
		return err
	}

	orders, err := s.Client.ListUserOrders(ctx, s.Auth.User().ID)
	if err != nil {
		return backendError(s, err)
	}
	return c.JSON(http.StatusOK, orders)
}
