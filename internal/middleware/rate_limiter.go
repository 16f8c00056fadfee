package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// AuthAttemptsPerMinute is the per-IP allowance on the sign-in and
// registration endpoints.
const AuthAttemptsPerMinute = 10

// RateLimiter limits requests to AuthAttemptsPerMinute per client IP. JSON
// callers get a JSON body, everyone else plain text.
func RateLimiter() echo.MiddlewareFunc {
	config := middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(AuthAttemptsPerMinute) / 60),
			Burst:     AuthAttemptsPerMinute,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			const msg = "Too many requests. Please try again later."
			if wantsJSON(c) {
				return c.JSON(http.StatusTooManyRequests, map[string]string{"error": msg})
			}
			return c.String(http.StatusTooManyRequests, msg)
		},
	}
	return middleware.RateLimiterWithConfig(config)
}

func wantsJSON(c echo.Context) bool {
	req := c.Request()
	return strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) ||
		strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}
