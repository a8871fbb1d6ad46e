package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const requestIDHeader = "X-Request-ID"

// healthLogPaths are probe endpoints whose repeated successes are
// suppressed from the request log. Failures are always logged.
var healthLogPaths = map[string]struct{}{
	"/healthz": {},
	"/readyz":  {},
}

// RequestLog returns Echo middleware that logs requests with structured
// fields. It generates a request ID if none is provided and propagates
// it through the response header and echo context. Probe endpoints log
// their first success and every failure; repeated successes are
// suppressed to keep probe traffic out of the log.
func RequestLog(log *slog.Logger) echo.MiddlewareFunc {
	var (
		mu         sync.Mutex
		lastHealth = map[string]bool{} // path -> last request succeeded
	)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			reqID := c.Request().Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}

			c.Set("request_id", reqID)
			c.Response().Header().Set(requestIDHeader, reqID)

			err := next(c)

			path := c.Request().URL.Path
			status := c.Response().Status
			ok := status >= 200 && status < 300

			level := slog.LevelInfo
			if _, health := healthLogPaths[path]; health {
				mu.Lock()
				suppressed := ok && lastHealth[path]
				lastHealth[path] = ok
				mu.Unlock()

				if suppressed {
					return err
				}
				if !ok {
					level = slog.LevelWarn
				}
			}

			log.Log(c.Request().Context(), level, "request",
				"method", c.Request().Method,
				"path", path,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", reqID,
			)

			return err
		}
	}
}
