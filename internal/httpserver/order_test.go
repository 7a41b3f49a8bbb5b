package httpserver

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/mykafka"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

func TestCheckout_FromCart(t *testing.T) {
	s := newServer(t)
	s.product(t, 7, 10, "500.00")
	alice := s.user(t, "alice@example.com", tokens.RoleCustomer)

	rec := s.do(t, http.MethodPost, "/api/cart/add", transport.AddCartItemRequest{
		ProductID: 7, Quantity: 2, Size: "M", Color: "Blue",
	}, alice)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/orders", transport.CreateOrderRequest{ShippingAddress: shipping()}, alice)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var order models.Order
	decode(t, rec, &order)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, "1000.00", order.Subtotal.String())
	assert.Equal(t, "150.00", order.Shipping.String())
	assert.Equal(t, "1150.00", order.Total.String())
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, "M", order.Items[0].Size)
	assert.Equal(t, "Blue", order.Items[0].Color)

	assert.Equal(t, 8, s.stock(t, 7))

	rec = s.do(t, http.MethodGet, "/api/cart", nil, alice)
	require.Equal(t, http.StatusOK, rec.Code)
	var view service.CartView
	decode(t, rec, &view)
	assert.Empty(t, view.Items)

	rec = s.do(t, http.MethodGet, "/api/orders", nil, alice)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []models.Order
	decode(t, rec, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, order.OrderNumber, mine[0].OrderNumber)

	assert.Len(t, s.events.Topic(mykafka.TopicOrderEvents), 1)
}

func TestCheckout_InsufficientStock(t *testing.T) {
	s := newServer(t)
	s.product(t, 1, 1, "100.00")
	bob := s.user(t, "bob@example.com", tokens.RoleCustomer)

	rec := s.do(t, http.MethodPost, "/api/orders", transport.CreateOrderRequest{
		ShippingAddress: shipping(),
		Items: []transport.CreateOrderItem{
			{ProductID: 1, ProductName: "Product 1", Quantity: 3, Price: models.MustMoney("100.00")},
		},
	}, bob)
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	assert.Equal(t, 1, s.stock(t, 1))

	var n int64
	require.NoError(t, s.db.Model(&models.Order{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCheckout_RejectsClientPrice(t *testing.T) {
	s := newServer(t)
	s.product(t, 1, 5, "100.00")
	bob := s.user(t, "bob@example.com", tokens.RoleCustomer)

	rec := s.do(t, http.MethodPost, "/api/orders", transport.CreateOrderRequest{
		ShippingAddress: shipping(),
		Items: []transport.CreateOrderItem{
			{ProductID: 1, ProductName: "Product 1", Quantity: 5, Price: models.MustMoney("0.00")},
		},
	}, bob)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "catalog price")
	assert.Equal(t, 5, s.stock(t, 1))
}

func TestCheckout_EmptyCart(t *testing.T) {
	s := newServer(t)
	bob := s.user(t, "bob@example.com", tokens.RoleCustomer)

	rec := s.do(t, http.MethodPost, "/api/orders", transport.CreateOrderRequest{ShippingAddress: shipping()}, bob)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "cart is empty")
}

func TestOrders_RequireSession(t *testing.T) {
	s := newServer(t)

	for _, path := range []string{"/api/cart", "/api/orders", "/api/wishlist", "/api/auth/user"} {
		rec := s.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestOrders_OtherCustomerGetsNotFound(t *testing.T) {
	s := newServer(t)
	s.product(t, 1, 5, "10.00")
	alice := s.user(t, "alice@example.com", tokens.RoleCustomer)
	eve := s.user(t, "eve@example.com", tokens.RoleCustomer)

	rec := s.do(t, http.MethodPost, "/api/orders", transport.CreateOrderRequest{
		ShippingAddress: shipping(),
		Items:           []transport.CreateOrderItem{{ProductID: 1, ProductName: "Product 1", Quantity: 1, Price: models.MustMoney("10.00")}},
	}, alice)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var order models.Order
	decode(t, rec, &order)

	path := "/api/orders/" + itoa(order.ID)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, path, nil, alice).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, path, nil, eve).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/orders/abc", nil, alice).Code)
}

func TestAdmin_StatusLifecycle(t *testing.T) {
	s := newServer(t)
	s.product(t, 1, 5, "10.00")
	alice := s.user(t, "alice@example.com", tokens.RoleCustomer)
	admin := s.user(t, "admin@example.com", tokens.RoleAdmin)

	rec := s.do(t, http.MethodPost, "/api/orders", transport.CreateOrderRequest{
		ShippingAddress: shipping(),
		Items:           []transport.CreateOrderItem{{ProductID: 1, ProductName: "Product 1", Quantity: 1, Price: models.MustMoney("10.00")}},
	}, alice)
	require.Equal(t, http.StatusCreated, rec.Code)
	var order models.Order
	decode(t, rec, &order)
	path := "/api/admin/orders/" + itoa(order.ID) + "/status"

	rec = s.do(t, http.MethodPatch, path, transport.UpdateOrderStatusRequest{Status: models.StatusShipped}, alice)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPatch, path, transport.UpdateOrderStatusRequest{Status: "lost"}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for _, st := range []models.OrderStatus{models.StatusProcessing, models.StatusShipped} {
		rec = s.do(t, http.MethodPatch, path, transport.UpdateOrderStatusRequest{Status: st}, admin)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got models.Order
		decode(t, rec, &got)
		assert.Equal(t, st, got.Status)
	}

	// backward moves are rejected
	rec = s.do(t, http.MethodPatch, path, transport.UpdateOrderStatusRequest{Status: models.StatusProcessing}, admin)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/admin/orders?limit=10", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Data []models.Order `json:"data"`
		Meta struct {
			Total int64 `json:"total"`
			Limit int   `json:"limit"`
		} `json:"meta"`
	}
	decode(t, rec, &page)
	assert.EqualValues(t, 1, page.Meta.Total)
	assert.Equal(t, 10, page.Meta.Limit)
	require.Len(t, page.Data, 1)
	assert.Equal(t, models.StatusShipped, page.Data[0].Status)
	assert.Len(t, page.Data[0].Items, 1)
}

func TestAdmin_ListAllUnpagedByDefault(t *testing.T) {
	s := newServer(t)
	s.user(t, "alice@example.com", tokens.RoleCustomer)
	admin := s.user(t, "admin@example.com", tokens.RoleAdmin)

	for i := 0; i < 25; i++ {
		require.NoError(t, s.db.Create(&models.Order{
			UserID:          1,
			OrderNumber:     "BP-" + itoa(uint(i)),
			Status:          models.StatusPending,
			Subtotal:        models.MustMoney("10.00"),
			Tax:             models.Zero,
			Shipping:        models.Zero,
			Total:           models.MustMoney("10.00"),
			ShippingAddress: shipping(),
			BillingAddress:  shipping(),
			PaymentMethod:   models.PaymentCashOnDelivery,
			PaymentStatus:   models.PaymentPending,
		}).Error)
	}

	var page struct {
		Data []models.Order `json:"data"`
		Meta struct {
			Total   int64 `json:"total"`
			HasNext bool  `json:"has_next"`
		} `json:"meta"`
	}
	rec := s.do(t, http.MethodGet, "/api/admin/orders", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &page)
	assert.Len(t, page.Data, 25)
	assert.EqualValues(t, 25, page.Meta.Total)
	assert.False(t, page.Meta.HasNext)

	rec = s.do(t, http.MethodGet, "/api/admin/orders?limit=10&offset=10", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &page)
	assert.Len(t, page.Data, 10)
	assert.True(t, page.Meta.HasNext)
}

func TestAdmin_NonAdminForbidden(t *testing.T) {
	s := newServer(t)
	alice := s.user(t, "alice@example.com", tokens.RoleCustomer)

	for _, path := range []string{"/api/admin/orders", "/api/admin/stats", "/api/admin/products/export"} {
		assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, path, nil, alice).Code, path)
	}
}

func TestAuth_ExpiredAccessIsRefreshed(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodPost, "/api/auth/signup", transport.SignupRequest{
		Email: "Carol@Example.com", Password: "secret1", FirstName: "Carol",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	refresh := cookie(rec, "refreshToken")
	require.NotNil(t, refresh)

	var body struct {
		User models.User `json:"user"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "carol@example.com", body.User.Email)

	expired := accessCookie(t, tokens.RoleCustomer, body.User.ID, time.Now().Add(-time.Minute))
	rec = s.do(t, http.MethodGet, "/api/cart", nil, expired, refresh)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	fresh := cookie(rec, "accessToken")
	require.NotNil(t, fresh)
	assert.NotEqual(t, expired.Value, fresh.Value)

	// the rotated refresh token is revoked
	rec = s.do(t, http.MethodGet, "/api/cart", nil, expired, refresh)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
