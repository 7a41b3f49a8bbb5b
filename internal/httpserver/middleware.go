package httpserver

import (
	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
)

// Common is the middleware chain every request goes through, in order.
func Common(csrfCfg *csrf.Config) []echo.MiddlewareFunc {
	mws := []echo.MiddlewareFunc{
		ecM.Recover(),
		ecM.RequestID(),
		ecM.CORSWithConfig(ecM.CORSConfig{
			AllowOrigins:     []string{"*"},
			AllowCredentials: true,
			AllowHeaders: []string{
				echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, "X-CSRF-Token",
			},
		}),
		ecM.Secure(),
	}
	if csrfCfg != nil {
		mws = append(mws, csrf.Middleware(*csrfCfg))
	}
	return mws
}

// CSRFConfig exempts the endpoints that are called before a session exists.
func CSRFConfig(secure bool) csrf.Config {
	cfg := csrf.DefaultConfig()
	cfg.Secure = secure
	cfg.SkipPaths = []string{
		"/health/live", "/health/ready",
		"/api/auth/login", "/api/auth/signup", "/api/auth/refresh",
	}
	return cfg
}
