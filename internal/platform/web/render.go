package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/pkg/currency"
)

//go:embed templates/*.html
var templateFS embed.FS

var weekDays = []string{"Domingo", "Segunda", "Terça", "Quarta", "Quinta", "Sexta", "Sábado"}

// Renderer implements echo.Renderer over the embedded page templates.
type Renderer struct {
	t *template.Template
}

func NewRenderer() (*Renderer, error) {
	t, err := template.New("").Funcs(Funcs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{t: t}, nil
}

// Render executes the named page into a buffer first so a template error
// never leaves a half-written response.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	var buf bytes.Buffer
	if err := r.t.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func Funcs() template.FuncMap {
	return template.FuncMap{
		"initials":  Initials,
		"currency":  currency.FormatCurrencyInCents,
		"weekDay":   WeekDayLabel,
		"weekDays":  func() []int { return []int{0, 1, 2, 3, 4, 5, 6} },
		"shortTime": ShortTime,
	}
}

// Initials joins the first letter of every word in name.
func Initials(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(r)
	}
	return b.String()
}

// WeekDayLabel names a day where 0 is Sunday.
func WeekDayLabel(day int) string {
	if day < 0 || day >= len(weekDays) {
		return ""
	}
	return weekDays[day]
}

// ShortTime trims "HH:MM:SS" to "HH:MM".
func ShortTime(t string) string {
	if len(t) == len("15:04:05") {
		return t[:5]
	}
	return t
}

// ErrorHandler writes errors as the action envelope for JSON callers and as
// the error page for browsers.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := "Erro interno do servidor"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok && code < 500 {
				msg = m
			}
		}
		if code >= 500 {
			rid, _ := c.Get("request_id").(string)
			logger.Error().Err(err).Str("request_id", rid).Str("path", c.Request().URL.Path).Msg("request failed")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		if auth.WantsJSON(c) || c.Echo().Renderer == nil {
			_ = ActionError(c, code, msg)
			return
		}

		page := NewPage(c, http.StatusText(code))
		page.Data = msg
		if rerr := c.Render(code, "error", page); rerr != nil {
			_ = c.String(code, msg)
		}
	}
}
