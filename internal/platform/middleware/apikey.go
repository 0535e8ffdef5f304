package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const apiKeyHeader = "X-Api-Key"

// APIKey guards routes with a static shared key, checked against the
// X-Api-Key header or a Bearer token. An empty configured key disables
// the guard, which is the development default.
func APIKey(key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if key == "" {
				return next(c)
			}
			got := c.Request().Header.Get(apiKeyHeader)
			if got == "" {
				auth := c.Request().Header.Get(echo.HeaderAuthorization)
				got = strings.TrimPrefix(auth, "Bearer ")
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid api key")
			}
			return next(c)
		}
	}
}
