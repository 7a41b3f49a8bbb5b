package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/mykafka"
)

type fakeIndex struct {
	mu        sync.Mutex
	indexed   map[uint]string
	deleted   []uint
	searchIDs []uint
	searchErr error
}

func newFakeIndex() *fakeIndex { return &fakeIndex{indexed: map[uint]string{}} }

func (f *fakeIndex) IndexProduct(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed[p.ID] = p.Name
	return nil
}

func (f *fakeIndex) DeleteProduct(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndex) Search(context.Context, string, int, int) (int64, []uint, error) {
	if f.searchErr != nil {
		return 0, nil, f.searchErr
	}
	return int64(len(f.searchIDs)), f.searchIDs, nil
}

func newCatalog(f *fixture, idx ProductIndex) *CatalogService {
	return &CatalogService{Repo: f.repo, Index: idx, Events: f.events}
}

func TestCatalog_ProductLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	idx := newFakeIndex()
	svc := newCatalog(f, idx)

	cat, err := svc.CreateCategory(ctx, admin, transport.CategoryRequest{Name: "Boys", Slug: "boys"})
	require.NoError(t, err)

	prod, err := svc.CreateProduct(ctx, admin, transport.ProductRequest{
		Name:       "Denim Jacket",
		Price:      models.MustMoney("1200"),
		Stock:      4,
		SKU:        "DJ-1",
		CategoryID: &cat.ID,
		Sizes:      []string{"4Y", "6Y"},
		IsFeatured: true,
	})
	require.NoError(t, err)
	assert.True(t, prod.IsActive)
	assert.Equal(t, "Denim Jacket", idx.indexed[prod.ID])

	name := "Denim Jacket v2"
	stock := 9
	patched, err := svc.PatchProduct(ctx, admin, prod.ID, transport.PatchProductRequest{Name: &name, Stock: &stock})
	require.NoError(t, err)
	assert.Equal(t, name, patched.Name)
	assert.Equal(t, 9, patched.Stock)
	assert.Equal(t, "1200.00", patched.Price.String())
	assert.Equal(t, name, idx.indexed[prod.ID])

	featured, err := svc.FeaturedProducts(ctx)
	require.NoError(t, err)
	require.Len(t, featured, 1)

	total, items, err := svc.ListProducts(ctx, repo.ProductFilter{Categories: []string{"Boys"}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, items, 1)

	inactive := false
	_, err = svc.ReplaceProduct(ctx, admin, prod.ID, transport.ProductRequest{
		Name: "Denim Jacket", Price: models.MustMoney("1100"), SKU: "DJ-1", IsActive: &inactive,
	})
	require.NoError(t, err)
	_, err = svc.GetProduct(ctx, prod.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.DeleteProduct(ctx, admin, prod.ID))
	assert.Equal(t, []uint{prod.ID}, idx.deleted)
	assert.ErrorIs(t, svc.DeleteProduct(ctx, admin, prod.ID), ErrNotFound)

	kinds := []string{}
	for _, ev := range f.events.Topic(mykafka.TopicProductEvents) {
		kinds = append(kinds, ev.Event.(ProductEvent).Type)
	}
	assert.Equal(t, []string{"product_created", "product_updated", "product_updated", "product_deleted"}, kinds)
}

func TestCatalog_AdminOnlyAndValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	user := f.customer(t, "c@example.com")
	svc := newCatalog(f, nil)

	_, err := svc.CreateProduct(ctx, user, transport.ProductRequest{Name: "x", SKU: "x"})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.CreateProduct(ctx, anonymous, transport.ProductRequest{Name: "x", SKU: "x"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.CreateProduct(ctx, admin, transport.ProductRequest{Name: "", SKU: "x"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreateProduct(ctx, admin, transport.ProductRequest{Name: "x", SKU: "x", Stock: -1})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreateProduct(ctx, admin, transport.ProductRequest{Name: "x", SKU: "x", Price: models.MustMoney("-5")})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateProduct(ctx, admin, transport.ProductRequest{Name: "x", SKU: "dup"})
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, admin, transport.ProductRequest{Name: "y", SKU: "dup"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.CreateCategory(ctx, admin, transport.CategoryRequest{Name: "Girls"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, svc.DeleteCategory(ctx, admin, 77), ErrNotFound)
}

func TestCatalog_UpdateCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	svc := newCatalog(f, nil)

	cat, err := svc.CreateCategory(ctx, admin, transport.CategoryRequest{Name: "Girls", Slug: "girls"})
	require.NoError(t, err)

	desc := "Dresses and more"
	updated, err := svc.UpdateCategory(ctx, admin, cat.ID, transport.PatchCategoryRequest{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "Girls", updated.Name)
	assert.Equal(t, desc, updated.Description)

	cats, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, desc, cats[0].Description)

	require.NoError(t, svc.DeleteCategory(ctx, admin, cat.ID))
}

func TestCatalog_SearchUsesIndexOrder(t *testing.T) {
	f := newFixture(t)
	f.product(t, 1, 1, "10")
	f.product(t, 2, 1, "10")
	f.product(t, 3, 1, "10")

	idx := newFakeIndex()
	idx.searchIDs = []uint{3, 1}
	svc := newCatalog(f, idx)

	total, items, err := svc.SearchProducts(context.Background(), "product", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, uint(3), items[0].ID)
	assert.Equal(t, uint(1), items[1].ID)
}

func TestCatalog_SearchFallsBackToSQL(t *testing.T) {
	f := newFixture(t)
	f.product(t, 1, 1, "10")
	f.product(t, 2, 1, "10")

	idx := newFakeIndex()
	idx.searchErr = errors.New("cluster unavailable")

	for _, svc := range []*CatalogService{newCatalog(f, idx), newCatalog(f, nil)} {
		total, items, err := svc.SearchProducts(context.Background(), "product 2", 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, items, 1)
		assert.Equal(t, uint(2), items[0].ID)
	}

	_, _, err := newCatalog(f, nil).SearchProducts(context.Background(), "  ", 1, 10)
	assert.ErrorIs(t, err, ErrValidation)
}
