package repo_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/testdb"
)

func newRepo(t *testing.T) (*repo.GormRepo, *gorm.DB) {
	t.Helper()
	db := testdb.New(t)
	return &repo.GormRepo{DB: db}, db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, PasswordHash: "x", FirstName: "Test", LastName: "User", Role: "customer"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedProduct(t *testing.T, db *gorm.DB, id uint, stock int, price string) *models.Product {
	t.Helper()
	p := &models.Product{
		ID:       id,
		Name:     "Kids Tee",
		Price:    models.MustMoney(price),
		Stock:    stock,
		SKU:      fmt.Sprintf("SKU-%d", id),
		Sizes:    []string{"S", "M"},
		Colors:   []string{"Blue"},
		IsActive: true,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func stockOf(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, db.First(&p, id).Error)
	return p.Stock
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
