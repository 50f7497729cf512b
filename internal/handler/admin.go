package handler

import (
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"shopscript-storefront/internal/admin"
	"shopscript-storefront/internal/model"
	"shopscript-storefront/internal/notify"
)

type AdminHandler struct{}

func NewAdminHandler() *AdminHandler {
	return &AdminHandler{}
}

// -------- products --------

func (h *AdminHandler) Products(c echo.Context) error {
	s := uiSession(c)
	// Admins see everything, soft-deleted included.
	products, err := s.Client.ListProducts(c.Request().Context())
	if err != nil {
		return backendError(s, err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *AdminHandler) ProductForm(c echo.Context) error {
	s := uiSession(c)

	sizes := s.ProductForm.Sizes()
	sizePrices := map[string]decimal.Decimal{}
	for _, size := range sizes {
		sizePrices[size] = s.ProductForm.PriceForSize(size)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"draft":      s.ProductForm.Draft(),
		"editing":    s.ProductForm.Editing(),
		"sizes":      sizes,
		"sizePrices": sizePrices,
	})
}

func (h *AdminHandler) SetProductDraft(c echo.Context) error {
	s := uiSession(c)

	var draft admin.Draft
	if err := c.Bind(&draft); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	s.ProductForm.SetDraft(draft)
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) EditProduct(c echo.Context) error {
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

	s.ProductForm.BeginEdit(*product)
	return h.ProductForm(c)
}

type addSizeRequest struct {
	Size  string           `json:"size"`
	Price *decimal.Decimal `json:"price,omitempty"`
}

func (h *AdminHandler) AddSize(c echo.Context) error {
	s := uiSession(c)

	var req addSizeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := s.ProductForm.AddSize(req.Size, req.Price); err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return h.ProductForm(c)
}

func (h *AdminHandler) RemoveSize(c echo.Context) error {
	s := uiSession(c)
	if err := s.ProductForm.RemoveSize(c.Param("size")); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return h.ProductForm(c)
}

func (h *AdminHandler) SubmitProduct(c echo.Context) error {
	ctx := c.Request().Context()
	s := uiSession(c)

	saved, err := s.ProductForm.Submit(ctx, s.Client)
	if err != nil {
		return backendError(s, err)
	}

	s.Notices.Push(notify.Success, "Product saved")
	return c.JSON(http.StatusOK, saved)
}

func (h *AdminHandler) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	s := uiSession(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	if err := s.Client.DeleteProduct(ctx, id); err != nil {
		return backendError(s, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// -------- orders --------

func (h *AdminHandler) Orders(c echo.Context) error {
	s := uiSession(c)
	orders, err := s.Client.ListOrders(c.Request().Context())
	if err != nil {
		return backendError(s, err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *AdminHandler) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	s := uiSession(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	status := model.OrderStatus(c.QueryParam("status"))
	if !model.ValidOrderStatus(status) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order status")
	}

	order, err := s.Client.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		return backendError(s, err)
	}
	return c.JSON(http.StatusOK, order)
}

// -------- reviews --------

func (h *AdminHandler) PendingReviews(c echo.Context) error {
	s := uiSession(c)
	reviews, err := s.Client.PendingReviews(c.Request().Context())
	if err != nil {
		return backendError(s, err)
	}
	return c.JSON(http.StatusOK, reviews)
}

func (h *AdminHandler) SetReviewApproval(c echo.Context) error {
	ctx := c.Request().Context()
	s := uiSession(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid review id")
	}
	approved, err := strconv.ParseBool(c.QueryParam("approved"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid approved flag")
	}

	review, err := s.Client.SetReviewApproval(ctx, id, approved)
	if err != nil {
		return backendError(s, err)
	}
	return c.JSON(http.StatusOK, review)
}

// -------- users --------

func (h *AdminHandler) Users(c echo.Context) error {
	s := uiSession(c)
	users, err := s.Client.ListUsers(c.Request().Context())
	if err != nil {
		return backendError(s, err)
	}
	return c.JSON(http.StatusOK, users)
}

type createUserRequest struct {
	Username string     `json:"username"`
	Password string     `json:"password"`
	Mobile   string     `json:"mobile"`
	Role     model.Role `json:"role"`
}

func (h *AdminHandler) CreateUser(c echo.Context) error {
	ctx := c.Request().Context()
	s := uiSession(c)

	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}

	// Role passes through: the dashboard creates admin accounts this way.
	user, err := s.Client.CreateUser(ctx, model.RegisterRequest{
		Username: req.Username,
		Password: req.Password,
		Mobile:   req.Mobile,
		Role:     req.Role,
	})
	if err != nil {
		return backendError(s, err)
	}
	return c.JSON(http.StatusOK, user)
}

// -------- settings --------

func (h *AdminHandler) Settings(c echo.Context) error {
	s := uiSession(c)
	settings, err := s.Client.GetSettings(c.Request().Context())
	if err != nil {
		return backendError(s, err)
	}
	return c.JSON(http.StatusOK, settings)
}

func (h *AdminHandler) UpdateSettings(c echo.Context) error {
	ctx := c.Request().Context()
	s := uiSession(c)

	var settings map[string]string
	if err := c.Bind(&settings); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := s.Client.UpdateSettings(ctx, settings); err != nil {
		return backendError(s, err)
	}

	s.Notices.Push(notify.Success, "Settings saved")
	return c.NoContent(http.StatusNoContent)
}

// -------- media --------

func (h *AdminHandler) UploadImage(c echo.Context) error {
	ctx := c.Request().Context()
	s := uiSession(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "open upload")
	}
	defer file.Close()

	// Unique name so repeated uploads of the same file never collide.
	filename := uuid.NewString() + filepath.Ext(fileHeader.Filename)

	url, err := s.Client.UploadImage(ctx, filename, file)
	if err != nil {
		return backendError(s, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}
