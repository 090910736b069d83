package web

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/internal/platform/validation"
)

// Page is the data every template receives.
type Page struct {
	Title   string
	Session *auth.Session
	Flash   *Flash
	CSRF    string
	Errors  validation.Errors
	Form    interface{}
	Data    interface{}
}

// NewPage fills the per-request fields: session, pending toast and CSRF token.
func NewPage(c echo.Context, title string) *Page {
	csrf, _ := c.Get(echomw.DefaultCSRFConfig.ContextKey).(string)
	return &Page{
		Title:   title,
		Session: auth.SessionFromContext(c.Request().Context()),
		Flash:   PopFlash(c),
		CSRF:    csrf,
		Errors:  validation.Errors{},
	}
}
