package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwthelp "github.com/Skotchmaster/storefront/pkg/jwt"
	"github.com/Skotchmaster/storefront/pkg/tokens"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-access-secret")

type fakeRefresher struct {
	pair  *tokens.Pair
	err   error
	calls int
}

func (f *fakeRefresher) Refresh(_ context.Context, _ string) (*tokens.Pair, error) {
	f.calls++
	return f.pair, f.err
}

func newCtx(cookies ...*http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(got *tokens.Principal) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, _ := PrincipalFrom(c)
		*got = p
		return c.NoContent(http.StatusOK)
	}
}

func accessCookie(t *testing.T, role string, id uint, exp time.Time) *http.Cookie {
	t.Helper()
	tok, err := tokens.SignAccess(secret, role, id, exp)
	require.NoError(t, err)
	return &http.Cookie{Name: jwthelp.AccessCookie, Value: tok}
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he))
	return he.Code
}

func TestRequireAuth_ValidToken(t *testing.T) {
	m := NewAutoRefreshMiddleware(secret, nil)
	c, rec := newCtx(accessCookie(t, tokens.RoleCustomer, 3, time.Now().Add(time.Minute)))

	var got tokens.Principal
	require.NoError(t, m.RequireAuth(okHandler(&got))(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(3), got.UserID)
}

func TestRequireAuth_MissingCookies(t *testing.T) {
	m := NewAutoRefreshMiddleware(secret, &fakeRefresher{})
	c, _ := newCtx()

	var got tokens.Principal
	err := m.RequireAuth(okHandler(&got))(c)
	assert.Equal(t, http.StatusUnauthorized, httpCode(t, err))
}

func TestRequireAuth_GarbageToken(t *testing.T) {
	m := NewAutoRefreshMiddleware(secret, &fakeRefresher{})
	c, _ := newCtx(&http.Cookie{Name: jwthelp.AccessCookie, Value: "garbage"})

	var got tokens.Principal
	err := m.RequireAuth(okHandler(&got))(c)
	assert.Equal(t, http.StatusUnauthorized, httpCode(t, err))
}

func TestRequireAuth_ExpiredTokenIsRefreshed(t *testing.T) {
	newAccess, err := tokens.SignAccess(secret, tokens.RoleCustomer, 9, time.Now().Add(time.Minute))
	require.NoError(t, err)
	ref := &fakeRefresher{pair: &tokens.Pair{
		AccessToken:  newAccess,
		RefreshToken: "new-refresh",
		AccessExp:    time.Now().Add(time.Minute),
		RefreshExp:   time.Now().Add(time.Hour),
	}}
	m := NewAutoRefreshMiddleware(secret, ref)

	c, rec := newCtx(
		accessCookie(t, tokens.RoleCustomer, 9, time.Now().Add(-time.Minute)),
		&http.Cookie{Name: jwthelp.RefreshCookie, Value: "old-refresh"},
	)

	var got tokens.Principal
	require.NoError(t, m.RequireAuth(okHandler(&got))(c))
	assert.Equal(t, 1, ref.calls)
	assert.Equal(t, uint(9), got.UserID)

	var names []string
	for _, ck := range rec.Result().Cookies() {
		names = append(names, ck.Name)
	}
	assert.ElementsMatch(t, []string{jwthelp.AccessCookie, jwthelp.RefreshCookie}, names)
}

func TestRequireAuth_RefreshFails(t *testing.T) {
	m := NewAutoRefreshMiddleware(secret, &fakeRefresher{err: errors.New("revoked")})
	c, _ := newCtx(
		accessCookie(t, tokens.RoleCustomer, 9, time.Now().Add(-time.Minute)),
		&http.Cookie{Name: jwthelp.RefreshCookie, Value: "old-refresh"},
	)

	var got tokens.Principal
	err := m.RequireAuth(okHandler(&got))(c)
	assert.Equal(t, http.StatusUnauthorized, httpCode(t, err))
}

func TestRequireAdmin(t *testing.T) {
	m := NewAutoRefreshMiddleware(secret, nil)

	c, _ := newCtx(accessCookie(t, tokens.RoleCustomer, 1, time.Now().Add(time.Minute)))
	var got tokens.Principal
	err := m.RequireAdmin(okHandler(&got))(c)
	assert.Equal(t, http.StatusForbidden, httpCode(t, err))

	c, rec := newCtx(accessCookie(t, tokens.RoleAdmin, 2, time.Now().Add(time.Minute)))
	require.NoError(t, m.RequireAdmin(okHandler(&got))(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, got.IsAdmin())
}

type fakeRoles map[uint]string

func (f fakeRoles) UserRole(_ context.Context, id uint) (string, error) {
	role, ok := f[id]
	if !ok {
		return "", errors.New("record not found")
	}
	return role, nil
}

func TestRequireAdmin_UsesCurrentRole(t *testing.T) {
	m := NewAutoRefreshMiddleware(secret, nil)
	m.Roles = fakeRoles{2: tokens.RoleCustomer, 3: tokens.RoleAdmin}

	var got tokens.Principal
	c, _ := newCtx(accessCookie(t, tokens.RoleAdmin, 2, time.Now().Add(time.Minute)))
	err := m.RequireAdmin(okHandler(&got))(c)
	assert.Equal(t, http.StatusForbidden, httpCode(t, err))

	c, _ = newCtx(accessCookie(t, tokens.RoleAdmin, 9, time.Now().Add(time.Minute)))
	err = m.RequireAdmin(okHandler(&got))(c)
	assert.Equal(t, http.StatusForbidden, httpCode(t, err))

	c, rec := newCtx(accessCookie(t, tokens.RoleAdmin, 3, time.Now().Add(time.Minute)))
	require.NoError(t, m.RequireAdmin(okHandler(&got))(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(3), got.UserID)
}
