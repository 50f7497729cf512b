package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"shopscript-storefront/internal/handler"
	"shopscript-storefront/internal/ui"
)

const sessionCookie = "sid"

type Server struct {
	echo              *echo.Echo
	sessions          *ui.Manager
	authHandler       *handler.AuthHandler
	storefrontHandler *handler.StorefrontHandler
	adminHandler      *handler.AdminHandler
}

func NewServer(sessions *ui.Manager) *Server {
	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:              e,
		sessions:          sessions,
		authHandler:       handler.NewAuthHandler(),
		storefrontHandler: handler.NewStorefrontHandler(),
		adminHandler:      handler.NewAdminHandler(),
	}

	e.Use(s.uiSessionMiddleware)

	s.setupRoutes()
	return s
}

// uiSessionMiddleware binds each request to its UI session via the sid
// cookie, minting one for first-time visitors.
func (s *Server) uiSessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		var sid string
		if cookie, err := c.Cookie(sessionCookie); err == nil {
			sid = cookie.Value
		}

		session, err := s.sessions.Get(c.Request().Context(), sid)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "init session")
		}

		if session.ID != sid {
			c.SetCookie(&http.Cookie{
				Name:     sessionCookie,
				Value:    session.ID,
				Path:     "/",
				HttpOnly: true,
			})
		}

		c.Set(ui.ContextKey, session)
		return next(c)
	}
}

// adminOnly gates the dashboard: a logged-in ADMIN session or nothing.
func (s *Server) adminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		session, _ := c.Get(ui.ContextKey).(*ui.Session)
		if session == nil || !session.Auth.LoggedIn() {
			return echo.NewHTTPError(http.StatusUnauthorized, "login required")
		}
		if !session.Auth.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "admin only")
		}
		return next(c)
	}
}

func (s *Server) setupRoutes() {
	e := s.echo

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// -------- storefront --------
	e.GET("/", s.storefrontHandler.Home)
	e.GET("/category/:slug", s.storefrontHandler.Category)
	e.GET("/products/:id", s.storefrontHandler.Product)
	e.POST("/products/:id/reviews", s.storefrontHandler.SubmitReview)

	// -------- session / auth --------
	e.GET("/session", s.authHandler.Session)
	e.POST("/login", s.authHandler.Login)
	e.POST("/register", s.authHandler.Register)
	e.POST("/logout", s.authHandler.Logout)
	e.POST("/auth-modal/open", s.authHandler.OpenModal)
	e.POST("/auth-modal/close", s.authHandler.CloseModal)
	e.POST("/forgot-password/question", s.authHandler.SecurityQuestion)
	e.POST("/forgot-password/reset", s.authHandler.ResetPassword)
	e.GET("/notifications", s.authHandler.Notifications)

	// -------- cart --------
	e.GET("/cart", s.storefrontHandler.Cart)
	e.POST("/cart/items", s.storefrontHandler.AddToCart)
	e.DELETE("/cart/items", s.storefrontHandler.RemoveFromCart)
	e.POST("/cart/clear", s.storefrontHandler.ClearCart)

	// -------- checkout --------
	e.GET("/checkout", s.storefrontHandler.Checkout)
	e.POST("/checkout/address", s.storefrontHandler.CheckoutAddress)
	e.POST("/checkout/back", s.storefrontHandler.CheckoutBack)
	e.POST("/checkout/place", s.storefrontHandler.PlaceOrder)
	e.POST("/checkout/reset", s.storefrontHandler.CheckoutReset)

	// -------- account --------
	e.GET("/account/orders", s.storefrontHandler.MyOrders)

	// -------- admin dashboard --------
	dash := e.Group("/admin", s.adminOnly)
	dash.GET("/products", s.adminHandler.Products)
	dash.DELETE("/products/:id", s.adminHandler.DeleteProduct)
	dash.GET("/products/form", s.adminHandler.ProductForm)
	dash.POST("/products/form", s.adminHandler.SetProductDraft)
	dash.POST("/products/form/edit/:id", s.adminHandler.EditProduct)
	dash.POST("/products/form/sizes", s.adminHandler.AddSize)
	dash.DELETE("/products/form/sizes/:size", s.adminHandler.RemoveSize)
	dash.POST("/products/form/submit", s.adminHandler.SubmitProduct)
	dash.GET("/orders", s.adminHandler.Orders)
	dash.PUT("/orders/:id/status", s.adminHandler.UpdateOrderStatus)
	dash.GET("/reviews/pending", s.adminHandler.PendingReviews)
	dash.PUT("/reviews/:id/approval", s.adminHandler.SetReviewApproval)
	dash.GET("/users", s.adminHandler.Users)
	dash.POST("/users", s.adminHandler.CreateUser)
	dash.GET("/settings", s.adminHandler.Settings)
	dash.POST("/settings", s.adminHandler.UpdateSettings)
	dash.POST("/uploads/image", s.adminHandler.UploadImage)
}

// Handler exposes the routing tree, used by tests to serve in-process.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
