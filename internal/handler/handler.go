package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"shopscript-storefront/internal/client"
	"shopscript-storefront/internal/notify"
	"shopscript-storefront/internal/store"
	"shopscript-storefront/internal/ui"
)

func uiSession(c echo.Context) *ui.Session {
	s, _ := c.Get(ui.ContextKey).(*ui.Session)
	return s
}

// backendError maps a failed backend call to an HTTP error and queues the
// one-shot notification the UI shows. Nothing is retried; the caller's state
// is left as it was.
func backendError(s *ui.Session, err error) error {
	if errors.Is(err, client.ErrInvalidCredentials) {
		// Shown inline on the login form, never as a global notification.
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	}
	if errors.Is(err, client.ErrSessionExpired) {
		s.Notices.Push(notify.Error, "Your session has expired. Please log in again.")
		return echo.NewHTTPError(http.StatusUnauthorized, "session expired")
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		msg := strings.TrimSpace(apiErr.Body)
		if msg == "" {
			msg = http.StatusText(apiErr.Status)
		}
		s.Notices.Push(notify.Error, msg)
		return echo.NewHTTPError(apiErr.Status, msg)
	}

	s.Notices.Push(notify.Error, "Something went wrong. Please try again.")
	return echo.NewHTTPError(http.StatusBadGateway, "backend unreachable")
}

func loginRequired(s *ui.Session) error {
	if !s.Auth.LoggedIn() {
		s.Auth.OpenModal(store.ModalLogin)
		return echo.NewHTTPError(http.StatusUnauthorized, "login required")
	}
	return nil
}
