package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/testdb"
	jwthelp "github.com/Skotchmaster/storefront/pkg/jwt"
	"github.com/Skotchmaster/storefront/pkg/mykafka"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

var (
	accessSecret  = []byte("access-secret")
	refreshSecret = []byte("refresh-secret")
)

type server struct {
	e      *echo.Echo
	db     *gorm.DB
	events *mykafka.Recorder
}

func newServer(t *testing.T) *server {
	t.Helper()
	db := testdb.New(t)
	r := &repo.GormRepo{DB: db}
	ev := &mykafka.Recorder{}

	authSvc := &service.AuthService{Repo: r, JWTSecret: accessSecret, RefreshSecret: refreshSecret, Events: ev}
	deps := &Deps{
		CartHandler:     &CartHTTP{Svc: &service.CartService{Repo: r, Pricing: service.DefaultPricing(), Events: ev}},
		OrderHandler:    &OrderHTTP{Svc: &service.OrderService{Repo: r, Pricing: service.DefaultPricing(), Events: ev}},
		CatalogHandler:  &CatalogHTTP{Svc: &service.CatalogService{Repo: r, Events: ev}},
		WishlistHandler: &WishlistHTTP{Svc: &service.WishlistService{Repo: r}},
		ReviewHandler:   &ReviewHTTP{Svc: &service.ReviewService{Repo: r}},
		AuthHandler:     &AuthHTTP{Svc: authSvc},
		AdminHandler:    &AdminHTTP{Svc: &service.AdminService{Repo: r}},
		JWTSecret:       accessSecret,
		Refresher:       authSvc,
		Roles:           authSvc,
		DB:              db,
	}

	e := echo.New()
	Register(e, deps)
	return &server{e: e, db: db, events: ev}
}

func (s *server) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *server) user(t *testing.T, email, role string) *http.Cookie {
	t.Helper()
	u := &models.User{Email: email, PasswordHash: "x", Role: role}
	require.NoError(t, s.db.Create(u).Error)
	return accessCookie(t, role, u.ID, time.Now().Add(time.Hour))
}

func (s *server) product(t *testing.T, id uint, stock int, price string) {
	t.Helper()
	require.NoError(t, s.db.Create(&models.Product{
		ID:       id,
		Name:     fmt.Sprintf("Product %d", id),
		Price:    models.MustMoney(price),
		Stock:    stock,
		SKU:      fmt.Sprintf("SKU-%d", id),
		Sizes:    []string{"S", "M", "L"},
		Colors:   []string{"Blue", "Red"},
		IsActive: true,
	}).Error)
}

func (s *server) stock(t *testing.T, id uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, s.db.First(&p, id).Error)
	return p.Stock
}

func accessCookie(t *testing.T, role string, id uint, exp time.Time) *http.Cookie {
	t.Helper()
	tok, err := tokens.SignAccess(accessSecret, role, id, exp)
	require.NoError(t, err)
	return &http.Cookie{Name: jwthelp.AccessCookie, Value: tok}
}

func cookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func shipping() models.Address {
	return models.Address{
		FirstName: "Rahim",
		LastName:  "Uddin",
		Street:    "12 Lake Road",
		City:      "Dhaka",
		Country:   "Bangladesh",
	}
}

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }
