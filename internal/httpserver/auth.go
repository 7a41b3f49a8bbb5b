package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	jwthelp "github.com/Skotchmaster/storefront/pkg/jwt"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

type AuthHTTP struct {
	Svc *service.AuthService
	// CookieSecure is turned off for plain-http local development.
	CookieSecure bool
}

func (h *AuthHTTP) setCookies(c echo.Context, pair tokens.Pair) {
	access := jwthelp.CreateCookie(jwthelp.AccessCookie, pair.AccessToken, "/", pair.AccessExp)
	access.Secure = h.CookieSecure
	c.SetCookie(access)

	refresh := jwthelp.CreateCookie(jwthelp.RefreshCookie, pair.RefreshToken, "/", pair.RefreshExp)
	refresh.Secure = h.CookieSecure
	c.SetCookie(refresh)
}

func (h *AuthHTTP) clearCookies(c echo.Context) {
	c.SetCookie(jwthelp.DeleteCookie(jwthelp.AccessCookie, "/"))
	c.SetCookie(jwthelp.DeleteCookie(jwthelp.RefreshCookie, "/"))
}

func (h *AuthHTTP) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.signup")

	var req transport.SignupRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "signup", "invalid body", err)
	}

	sess, err := h.Svc.Signup(ctx, req)
	if err != nil {
		return fail(l, "signup", err)
	}

	h.setCookies(c, sess.Pair)
	l.Info("signup_success", "user_id", sess.User.ID)
	return c.JSON(http.StatusCreated, echo.Map{"user": sess.User})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "login", "invalid body", err)
	}

	sess, err := h.Svc.Login(ctx, req)
	if err != nil {
		return fail(l, "login", err)
	}

	h.setCookies(c, sess.Pair)
	l.Info("login_successful", "user_id", sess.User.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"user":     sess.User,
		"is_admin": sess.User.Role == tokens.RoleAdmin,
	})
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	cookie, err := c.Cookie(jwthelp.RefreshCookie)
	if err != nil || cookie.Value == "" {
		l.Warn("refresh_error", "status", 401, "reason", "no refresh cookie")
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh token required")
	}

	pair, err := h.Svc.Refresh(ctx, cookie.Value)
	if err != nil {
		h.clearCookies(c)
		return fail(l, "refresh", err)
	}

	h.setCookies(c, *pair)
	return c.JSON(http.StatusOK, echo.Map{"message": "tokens refreshed"})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	if cookie, err := c.Cookie(jwthelp.RefreshCookie); err == nil {
		if err := h.Svc.Logout(ctx, cookie.Value); err != nil {
			h.clearCookies(c)
			l.Error("logout_failed", "status", 500, "reason", "cannot revoke refresh token", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}
	}

	h.clearCookies(c)
	l.Info("successful_logout")
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHTTP) CurrentUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.user")

	user, err := h.Svc.CurrentUser(ctx, principal(c))
	if err != nil {
		return fail(l, "current_user", err)
	}
	return c.JSON(http.StatusOK, user)
}

// RequestAdmin promotes the caller and swaps their cookies for admin ones.
func (h *AuthHTTP) RequestAdmin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.request_admin")

	sess, err := h.Svc.RequestAdmin(ctx, principal(c))
	if err != nil {
		return fail(l, "request_admin", err)
	}

	h.setCookies(c, sess.Pair)
	l.Info("request_admin_success", "user_id", sess.User.ID)
	return c.JSON(http.StatusOK, echo.Map{"user": sess.User})
}
