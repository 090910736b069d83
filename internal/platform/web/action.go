package web

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/validation"
)

// ActionResult is the JSON envelope every action returns. Exactly one of
// the fields is set.
type ActionResult struct {
	Data             interface{}       `json:"data,omitempty"`
	ServerError      string            `json:"serverError,omitempty"`
	ValidationErrors validation.Errors `json:"validationErrors,omitempty"`
}

func ActionOK(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, ActionResult{Data: data})
}

func ActionValidation(c echo.Context, errs validation.Errors) error {
	return c.JSON(http.StatusUnprocessableEntity, ActionResult{ValidationErrors: errs})
}

func ActionError(c echo.Context, status int, msg string) error {
	return c.JSON(status, ActionResult{ServerError: msg})
}
