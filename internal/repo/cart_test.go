package repo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

func TestGetOrCreateCart_IsIdempotent(t *testing.T) {
	r, db := newRepo(t)
	ctx := context.Background()
	u := seedUser(t, db, "a@example.com")

	c1, err := r.GetOrCreateCart(ctx, u.ID)
	require.NoError(t, err)
	c2, err := r.GetOrCreateCart(ctx, u.ID)
	require.NoError(t, err)

	assert.Equal(t, c1.ID, c2.ID)
	assert.EqualValues(t, 1, count(t, db, &models.Cart{}))
}

func TestAddCartItem_MergesSameLine(t *testing.T) {
	r, db := newRepo(t)
	ctx := context.Background()
	u := seedUser(t, db, "a@example.com")
	seedProduct(t, db, 7, 10, "500.00")
	cart, err := r.GetOrCreateCart(ctx, u.ID)
	require.NoError(t, err)

	first := &models.CartItem{CartID: cart.ID, ProductID: 7, Size: "M", Color: "Blue", Quantity: 2, Price: models.MustMoney("500")}
	require.NoError(t, r.AddCartItem(ctx, first))

	second := &models.CartItem{CartID: cart.ID, ProductID: 7, Size: "M", Color: "Blue", Quantity: 3, Price: models.MustMoney("500")}
	require.NoError(t, r.AddCartItem(ctx, second))

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)

	items, err := r.ListCartItems(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	require.NotNil(t, items[0].Product)
	assert.Equal(t, "Kids Tee", items[0].Product.Name)
}

func TestAddCartItem_ConcurrentInsertIsMerged(t *testing.T) {
	r, db := newRepo(t)
	ctx := context.Background()
	u := seedUser(t, db, "a@example.com")
	seedProduct(t, db, 7, 10, "500.00")
	cart, err := r.GetOrCreateCart(ctx, u.ID)
	require.NoError(t, err)

	// another request inserts the same line between our merge and insert
	raced := false
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:race_cart_line", func(tx *gorm.DB) {
		if raced || tx.Statement.Table != "cart_items" {
			return
		}
		raced = true
		other := &models.CartItem{CartID: cart.ID, ProductID: 7, Size: "M", Color: "Blue", Quantity: 1, Price: models.MustMoney("500")}
		if err := tx.Session(&gorm.Session{NewDB: true}).Create(other).Error; err != nil {
			tx.AddError(err)
		}
	}))

	item := &models.CartItem{CartID: cart.ID, ProductID: 7, Size: "M", Color: "Blue", Quantity: 2, Price: models.MustMoney("500")}
	require.NoError(t, r.AddCartItem(ctx, item))
	require.True(t, raced)
	assert.Equal(t, 3, item.Quantity)

	items, err := r.ListCartItems(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, item.ID, items[0].ID)
}

func TestAddCartItem_DifferentSizeIsNewLine(t *testing.T) {
	r, db := newRepo(t)
	ctx := context.Background()
	u := seedUser(t, db, "a@example.com")
	seedProduct(t, db, 7, 10, "500.00")
	cart, err := r.GetOrCreateCart(ctx, u.ID)
	require.NoError(t, err)

	require.NoError(t, r.AddCartItem(ctx, &models.CartItem{CartID: cart.ID, ProductID: 7, Size: "M", Color: "Blue", Quantity: 1, Price: models.MustMoney("500")}))
	require.NoError(t, r.AddCartItem(ctx, &models.CartItem{CartID: cart.ID, ProductID: 7, Size: "S", Color: "Blue", Quantity: 1, Price: models.MustMoney("500")}))

	items, err := r.ListCartItems(ctx, cart.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestCartItem_ScopedToCart(t *testing.T) {
	r, db := newRepo(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice@example.com")
	bob := seedUser(t, db, "bob@example.com")
	seedProduct(t, db, 7, 10, "500.00")

	aliceCart, err := r.GetOrCreateCart(ctx, alice.ID)
	require.NoError(t, err)
	bobCart, err := r.GetOrCreateCart(ctx, bob.ID)
	require.NoError(t, err)

	item := &models.CartItem{CartID: aliceCart.ID, ProductID: 7, Quantity: 1, Price: models.MustMoney("500")}
	require.NoError(t, r.AddCartItem(ctx, item))

	_, err = r.UpdateCartItemQuantity(ctx, bobCart.ID, item.ID, 4)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.True(t, errors.Is(r.RemoveCartItem(ctx, bobCart.ID, item.ID), gorm.ErrRecordNotFound))

	updated, err := r.UpdateCartItemQuantity(ctx, aliceCart.ID, item.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)

	require.NoError(t, r.RemoveCartItem(ctx, aliceCart.ID, item.ID))
	assert.EqualValues(t, 0, count(t, db, &models.CartItem{}))
}

func TestClearCart(t *testing.T) {
	r, db := newRepo(t)
	ctx := context.Background()
	u := seedUser(t, db, "a@example.com")
	seedProduct(t, db, 1, 10, "10.00")
	seedProduct(t, db, 2, 10, "20.00")
	cart, err := r.GetOrCreateCart(ctx, u.ID)
	require.NoError(t, err)

	require.NoError(t, r.AddCartItem(ctx, &models.CartItem{CartID: cart.ID, ProductID: 1, Quantity: 1, Price: models.MustMoney("10")}))
	require.NoError(t, r.AddCartItem(ctx, &models.CartItem{CartID: cart.ID, ProductID: 2, Quantity: 1, Price: models.MustMoney("20")}))

	require.NoError(t, r.ClearCart(ctx, cart.ID))
	items, err := r.ListCartItems(ctx, cart.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
