package loggingmw

import (
	"log/slog"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

// RequestLogger puts a request-scoped logger into the request context and
// writes one line per finished request. Errors are rendered here so the
// logged status is the one the client sees.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			l := base.With("method", req.Method, "route", c.Path(), "url", req.URL.Path, "remote_ip", c.RealIP())
			if rid := requestID(c); rid != "" {
				l = l.With("request_id", rid)
				c.Response().Header().Set(echo.HeaderXRequestID, rid)
			}
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Echo().HTTPErrorHandler(err, c)
			}

			completed(l, c, time.Since(start), err)
			return nil
		}
	}
}

func requestID(c echo.Context) string {
	if rid := c.Request().Header.Get(echo.HeaderXRequestID); rid != "" {
		return rid
	}
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

func completed(l *slog.Logger, c echo.Context, dur time.Duration, err error) {
	status := c.Response().Status
	attrs := []any{"status", status, "duration_ms", dur.Milliseconds()}
	if p, ok := middleware.PrincipalFrom(c); ok {
		attrs = append(attrs, "user_id", p.UserID)
	}
	if err != nil {
		attrs = append(attrs, "error", err.Error())
	}

	switch {
	case status >= 500:
		l.Error("request completed", attrs...)
	case status >= 400:
		l.Warn("request completed", attrs...)
	case strings.HasPrefix(c.Request().URL.Path, "/health"):
		l.Debug("request completed", attrs...)
	default:
		l.Info("request completed", append(attrs, "bytes", c.Response().Size)...)
	}
}
