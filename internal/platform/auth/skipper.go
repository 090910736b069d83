package auth

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// publicPaths are infrastructure endpoints that bypass sessions, CSRF and
// rate limiting.
var publicPaths = map[string]bool{
	"/health":    true,
	"/health/db": true,
	"/metrics":   true,
}

// IsPublicPath reports whether path is a public infrastructure endpoint.
func IsPublicPath(path string) bool {
	return publicPaths[path] || strings.HasPrefix(path, "/static/")
}

// PublicSkipper is an echo middleware Skipper for public paths.
func PublicSkipper(c echo.Context) bool {
	return IsPublicPath(c.Request().URL.Path)
}
