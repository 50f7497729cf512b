package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"shopscript-storefront/internal/model"
	"shopscript-storefront/internal/store"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	// Redirect defaults to true; modal logins send false to stay in place.
	Redirect *bool `json:"redirect,omitempty"`
}

type sessionResponse struct {
	User     *model.User    `json:"user"`
	Redirect store.Redirect `json:"redirect,omitempty"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	s := uiSession(c)

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	payload, err := s.Client.Login(ctx, model.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return backendError(s, err)
	}

	shouldRedirect := req.Redirect == nil || *req.Redirect
	redirect, err := s.Login(ctx, payload, shouldRedirect)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "persist session")
	}

	user := payload.User()
	return c.JSON(http.StatusOK, sessionResponse{User: &user, Redirect: redirect})
}

type registerRequest struct {
	Username         string `json:"username"`
	Password         string `json:"password"`
	Mobile           string `json:"mobile"`
	SecurityQuestion string `json:"securityQuestion"`
	SecurityAnswer   string `json:"securityAnswer"`
	Redirect         *bool  `json:"redirect,omitempty"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	s := uiSession(c)

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}

	// Public registration is always a shopper account; admin accounts come
	// from the dashboard.
	payload, err := s.Client.Register(ctx, model.RegisterRequest{
		Username:         req.Username,
		Password:         req.Password,
		Mobile:           req.Mobile,
		SecurityQuestion: req.SecurityQuestion,
		SecurityAnswer:   req.SecurityAnswer,
		Role:             model.RoleUser,
	})
	if err != nil {
		return backendError(s, err)
	}

	shouldRedirect := req.Redirect == nil || *req.Redirect
	redirect, err := s.Login(ctx, payload, shouldRedirect)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "persist session")
	}

	user := payload.User()
	return c.JSON(http.StatusOK, sessionResponse{User: &user, Redirect: redirect})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	s := uiSession(c)
	if err := s.Logout(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "clear session")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) Session(c echo.Context) error {
	s := uiSession(c)
	open, mode := s.Auth.Modal()
	return c.JSON(http.StatusOK, map[string]any{
		"user":      s.Auth.User(),
		"loggedIn":  s.Auth.LoggedIn(),
		"modalOpen": open,
		"modalMode": mode,
	})
}

type modalRequest struct {
	Mode store.ModalMode `json:"mode"`
}

func (h *AuthHandler) OpenModal(c echo.Context) error {
	s := uiSession(c)

	var req modalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	mode := req.Mode
	if mode != store.ModalRegister {
		mode = store.ModalLogin
	}

	s.Auth.OpenModal(mode)
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) CloseModal(c echo.Context) error {
	uiSession(c).Auth.CloseModal()
	return c.NoContent(http.StatusNoContent)
}

type securityQuestionRequest struct {
	Username string `json:"username"`
}

func (h *AuthHandler) SecurityQuestion(c echo.Context) error {
	ctx := c.Request().Context()
	s := uiSession(c)

	var req securityQuestionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	question, err := s.Client.GetSecurityQuestion(ctx, req.Username)
	if err != nil {
		return backendError(s, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"question": question})
}

type resetPasswordRequest struct {
	Username    string `json:"username"`
	Answer      string `json:"answer"`
	NewPassword string `json:"newPassword"`
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()
	s := uiSession(c)

	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.NewPassword == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "new password is required")
	}

	err := s.Client.ResetPasswordWithAnswer(ctx, model.ResetPasswordRequest{
		Username:    req.Username,
		Answer:      req.Answer,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		return backendError(s, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Notifications drains the session's pending notifications.
func (h *AuthHandler) Notifications(c echo.Context) error {
	return c.JSON(http.StatusOK, uiSession(c).Notices.Flush())
}
