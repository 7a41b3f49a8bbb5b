package middleware

import (
	"context"
	"errors"
	"net/http"

	jwthelp "github.com/Skotchmaster/storefront/pkg/jwt"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const principalKey = "principal"

// Refresher rotates a refresh token into a new token pair.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*tokens.Pair, error)
}

// RoleLookup reports a user's current role.
type RoleLookup interface {
	UserRole(ctx context.Context, userID uint) (string, error)
}

type AutoRefreshMiddleware struct {
	JWTSecret []byte
	Refresher Refresher
	// Roles, when set, overrides the token role on admin routes.
	Roles RoleLookup
}

func NewAutoRefreshMiddleware(secret []byte, refresher Refresher) *AutoRefreshMiddleware {
	return &AutoRefreshMiddleware{
		JWTSecret: secret,
		Refresher: refresher,
	}
}

type ValidatorFunc func(ctx context.Context, p *tokens.Principal) error

func (m *AutoRefreshMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

func (m *AutoRefreshMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, func(ctx context.Context, p *tokens.Principal) error {
		if m.Roles != nil {
			role, err := m.Roles.UserRole(ctx, p.UserID)
			if err != nil {
				logging.FromContext(ctx).Warn("role_lookup_failed", "mw", "auth", "user_id", p.UserID, "error", err)
				return echo.NewHTTPError(http.StatusForbidden, "admin access required")
			}
			p.Role = role
		}
		if !p.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	})
}

func (m *AutoRefreshMiddleware) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("mw", "auth")

		accessCookie, err := c.Cookie(jwthelp.AccessCookie)
		if err != nil || accessCookie.Value == "" {
			return m.refreshAndServe(c, next, validator)
		}

		claims, err := tokens.AccessClaimsFromToken(accessCookie.Value, m.JWTSecret)
		if err == nil {
			p, pErr := claims.Principal()
			if pErr != nil {
				clearAuthCookies(c)
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
			}
			return serve(c, next, validator, p)
		}

		if !errors.Is(err, jwt.ErrTokenExpired) {
			l.Warn("access_token_rejected", "error", err)
			clearAuthCookies(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}

		return m.refreshAndServe(c, next, validator)
	}
}

func (m *AutoRefreshMiddleware) refreshAndServe(c echo.Context, next echo.HandlerFunc, validator ValidatorFunc) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("mw", "auth")

	refreshCookie, err := c.Cookie(jwthelp.RefreshCookie)
	if err != nil || refreshCookie.Value == "" || m.Refresher == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	pair, err := m.Refresher.Refresh(ctx, refreshCookie.Value)
	if err != nil {
		l.Warn("auto_refresh_failed", "error", err)
		clearAuthCookies(c)
		return echo.NewHTTPError(http.StatusUnauthorized, "session expired")
	}

	c.SetCookie(jwthelp.CreateCookie(jwthelp.AccessCookie, pair.AccessToken, "/", pair.AccessExp))
	c.SetCookie(jwthelp.CreateCookie(jwthelp.RefreshCookie, pair.RefreshToken, "/", pair.RefreshExp))

	claims, err := tokens.AccessClaimsFromToken(pair.AccessToken, m.JWTSecret)
	if err != nil {
		clearAuthCookies(c)
		return echo.NewHTTPError(http.StatusUnauthorized, "new access token invalid")
	}
	p, err := claims.Principal()
	if err != nil {
		clearAuthCookies(c)
		return echo.NewHTTPError(http.StatusUnauthorized, "new access token invalid")
	}

	l.Info("access_token_refreshed", "user_id", p.UserID)
	return serve(c, next, validator, p)
}

func serve(c echo.Context, next echo.HandlerFunc, validator ValidatorFunc, p tokens.Principal) error {
	if validator != nil {
		if err := validator(c.Request().Context(), &p); err != nil {
			return err
		}
	}
	c.Set(principalKey, p)
	return next(c)
}

// PrincipalFrom returns the caller placed into the context by RequireAuth or RequireAdmin.
func PrincipalFrom(c echo.Context) (tokens.Principal, bool) {
	p, ok := c.Get(principalKey).(tokens.Principal)
	if !ok || !p.Authenticated() {
		return tokens.Principal{}, false
	}
	return p, true
}

func clearAuthCookies(c echo.Context) {
	c.SetCookie(jwthelp.DeleteCookie(jwthelp.AccessCookie, "/"))
	c.SetCookie(jwthelp.DeleteCookie(jwthelp.RefreshCookie, "/"))
}
