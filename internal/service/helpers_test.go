package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/testdb"
	"github.com/Skotchmaster/storefront/pkg/mykafka"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

type fixture struct {
	db     *gorm.DB
	repo   *repo.GormRepo
	events *mykafka.Recorder
	cart   *CartService
	orders *OrderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.New(t)
	r := &repo.GormRepo{DB: db}
	ev := &mykafka.Recorder{}
	return &fixture{
		db:     db,
		repo:   r,
		events: ev,
		cart:   &CartService{Repo: r, Pricing: DefaultPricing(), Events: ev},
		orders: &OrderService{Repo: r, Pricing: DefaultPricing(), Events: ev},
	}
}

func (f *fixture) customer(t *testing.T, email string) tokens.Principal {
	t.Helper()
	u := &models.User{Email: email, PasswordHash: "x", Role: tokens.RoleCustomer}
	require.NoError(t, f.db.Create(u).Error)
	return tokens.Principal{UserID: u.ID, Role: u.Role}
}

func (f *fixture) admin(t *testing.T) tokens.Principal {
	t.Helper()
	u := &models.User{Email: "admin@example.com", PasswordHash: "x", Role: tokens.RoleAdmin}
	require.NoError(t, f.db.Create(u).Error)
	return tokens.Principal{UserID: u.ID, Role: u.Role}
}

func (f *fixture) product(t *testing.T, id uint, stock int, price string) *models.Product {
	t.Helper()
	p := &models.Product{
		ID:       id,
		Name:     fmt.Sprintf("Product %d", id),
		Price:    models.MustMoney(price),
		Stock:    stock,
		SKU:      fmt.Sprintf("SKU-%d", id),
		Sizes:    []string{"S", "M", "L"},
		Colors:   []string{"Blue", "Red"},
		IsActive: true,
	}
	require.NoError(t, f.db.Create(p).Error)
	return p
}

func (f *fixture) stock(t *testing.T, id uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, f.db.First(&p, id).Error)
	return p.Stock
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func address() models.Address {
	return models.Address{
		FirstName: "Rahim",
		LastName:  "Uddin",
		Street:    "12 Lake Road",
		City:      "Dhaka",
		Country:   "Bangladesh",
		Phone:     "+8801700000000",
		Thana:     "Gulshan",
	}
}

var anonymous = tokens.Principal{}

var nowForTest = time.UnixMilli(1700000000000)
