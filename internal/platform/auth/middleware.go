package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const sessionKey contextKey = "session"

const (
	// LoginPath is where requests without a session are sent.
	LoginPath = "/authentication"
	// ClinicFormPath is where users without a clinic are sent.
	ClinicFormPath = "/clinic-form"
)

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromContext returns the session loaded by LoadSession, or nil.
func SessionFromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey).(*Session)
	return s
}

// ClinicIDFromContext returns the session's clinic id.
func ClinicIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	s := SessionFromContext(ctx)
	if !s.HasClinic() {
		return uuid.Nil, false
	}
	return s.ClinicID, true
}

// LoadSession parses the session cookie, when present, into the request
// context. Invalid or expired cookies are cleared and the request continues
// anonymously.
func LoadSession(m *SessionManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			s, err := m.Parse(cookie.Value)
			if err != nil {
				m.Clear(c)
				return next(c)
			}

			c.SetRequest(c.Request().WithContext(WithSession(c.Request().Context(), s)))
			c.Set("user_id", s.UserID.String())
			return next(c)
		}
	}
}

// RequireUser sends anonymous page requests to LoginPath and rejects
// anonymous action calls with 401.
func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if SessionFromContext(c.Request().Context()) == nil {
				if WantsJSON(c) {
					return echo.NewHTTPError(http.StatusUnauthorized, "Não autenticado")
				}
				return c.Redirect(http.StatusFound, LoginPath)
			}
			return next(c)
		}
	}
}

// RequireClinic sends users without a clinic to ClinicFormPath. It must run
// after RequireUser.
func RequireClinic() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !SessionFromContext(c.Request().Context()).HasClinic() {
				if WantsJSON(c) {
					return echo.NewHTTPError(http.StatusForbidden, "Clínica não encontrada")
				}
				return c.Redirect(http.StatusFound, ClinicFormPath)
			}
			return next(c)
		}
	}
}

// WantsJSON reports whether the caller is an action client rather than a browser page.
func WantsJSON(c echo.Context) bool {
	req := c.Request()
	if strings.HasPrefix(req.URL.Path, "/actions/") {
		return true
	}
	return strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}
