package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/mykafka"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const (
	DefaultProductLimit = 24
	FeaturedLimit       = 8
)

// ProductIndex is the full-text index kept in step with the catalog.
type ProductIndex interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, from, size int) (int64, []uint, error)
}

type CatalogService struct {
	Repo   *repo.GormRepo
	Index  ProductIndex
	Events mykafka.Publisher
}

func requireAdmin(p tokens.Principal) error {
	if !p.Authenticated() {
		return ErrUnauthorized
	}
	if !p.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

func (s *CatalogService) ListProducts(ctx context.Context, f repo.ProductFilter) (int64, []models.Product, error) {
	f.Limit, f.Offset = util.Window(f.Limit, f.Offset, DefaultProductLimit)
	f.IncludeInactive = false
	return s.Repo.ListProducts(ctx, f)
}

func (s *CatalogService) FeaturedProducts(ctx context.Context) ([]models.Product, error) {
	_, items, err := s.Repo.ListProducts(ctx, repo.ProductFilter{Featured: true, Limit: FeaturedLimit})
	return items, err
}

// GetProduct hides inactive products from the storefront.
func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	prod, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, productErr(err, id)
	}
	if !prod.IsActive {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	return prod, nil
}

func validateProduct(p *models.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name required", ErrValidation)
	}
	if strings.TrimSpace(p.SKU) == "" {
		return fmt.Errorf("%w: sku required", ErrValidation)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	if p.OriginalPrice != nil && p.OriginalPrice.IsNegative() {
		return fmt.Errorf("%w: originalPrice cannot be negative", ErrValidation)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: stock cannot be negative", ErrValidation)
	}
	return nil
}

func applyProduct(dst *models.Product, req transport.ProductRequest) {
	dst.Name = req.Name
	dst.Description = req.Description
	dst.Price = req.Price
	dst.OriginalPrice = req.OriginalPrice
	dst.Stock = req.Stock
	dst.SKU = req.SKU
	dst.CategoryID = req.CategoryID
	dst.Sizes = req.Sizes
	dst.Colors = req.Colors
	dst.AgeGroup = req.AgeGroup
	dst.IsActive = req.IsActive == nil || *req.IsActive
	dst.IsFeatured = req.IsFeatured
	dst.ImageURL = req.ImageURL
	dst.ReferenceImages = req.ReferenceImages
}

func (s *CatalogService) CreateProduct(ctx context.Context, p tokens.Principal, req transport.ProductRequest) (*models.Product, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	prod := &models.Product{}
	applyProduct(prod, req)
	if err := validateProduct(prod); err != nil {
		return nil, err
	}
	if err := s.Repo.CreateProduct(ctx, prod); err != nil {
		return nil, writeErr(err)
	}

	s.productChanged(ctx, "product_created", prod)
	return prod, nil
}

// ReplaceProduct overwrites every editable field.
func (s *CatalogService) ReplaceProduct(ctx context.Context, p tokens.Principal, id uint, req transport.ProductRequest) (*models.Product, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	prod, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, productErr(err, id)
	}
	applyProduct(prod, req)
	return s.saveProduct(ctx, prod)
}

func (s *CatalogService) PatchProduct(ctx context.Context, p tokens.Principal, id uint, req transport.PatchProductRequest) (*models.Product, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	prod, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, productErr(err, id)
	}

	if req.Name != nil {
		prod.Name = *req.Name
	}
	if req.Description != nil {
		prod.Description = *req.Description
	}
	if req.Price != nil {
		prod.Price = *req.Price
	}
	if req.OriginalPrice != nil {
		prod.OriginalPrice = req.OriginalPrice
	}
	if req.Stock != nil {
		prod.Stock = *req.Stock
	}
	if req.SKU != nil {
		prod.SKU = *req.SKU
	}
	if req.CategoryID != nil {
		prod.CategoryID = req.CategoryID
	}
	if req.Sizes != nil {
		prod.Sizes = *req.Sizes
	}
	if req.Colors != nil {
		prod.Colors = *req.Colors
	}
	if req.AgeGroup != nil {
		prod.AgeGroup = *req.AgeGroup
	}
	if req.IsActive != nil {
		prod.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		prod.IsFeatured = *req.IsFeatured
	}
	if req.ImageURL != nil {
		prod.ImageURL = *req.ImageURL
	}
	if req.ReferenceImages != nil {
		prod.ReferenceImages = *req.ReferenceImages
	}
	return s.saveProduct(ctx, prod)
}

func (s *CatalogService) saveProduct(ctx context.Context, prod *models.Product) (*models.Product, error) {
	if err := validateProduct(prod); err != nil {
		return nil, err
	}
	if err := s.Repo.SaveProduct(ctx, prod); err != nil {
		return nil, writeErr(err)
	}
	s.productChanged(ctx, "product_updated", prod)
	return prod, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, p tokens.Principal, id uint) error {
	l := logging.FromContext(ctx).With("svc", "catalog.delete_product", "product_id", id)
	if err := requireAdmin(p); err != nil {
		return err
	}
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return fmt.Errorf("%w: product %d is still referenced", ErrConflict, id)
		}
		return productErr(err, id)
	}

	if s.Index != nil {
		ictx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if err := s.Index.DeleteProduct(ictx, id); err != nil {
			l.Warn("unindex_product_error", "error", err)
		}
	}
	publish(ctx, s.Events, mykafka.TopicProductEvents, idKey(id), ProductEvent{Type: "product_deleted", ProductID: id})
	return nil
}

// productChanged pushes a committed product write to the index and the event log.
func (s *CatalogService) productChanged(ctx context.Context, kind string, prod *models.Product) {
	if s.Index != nil {
		ictx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if err := s.Index.IndexProduct(ictx, prod); err != nil {
			logging.FromContext(ctx).Warn("index_product_error", "product_id", prod.ID, "error", err)
		}
	}
	price := prod.Price
	publish(ctx, s.Events, mykafka.TopicProductEvents, idKey(prod.ID), ProductEvent{
		Type: kind, ProductID: prod.ID, Name: prod.Name, Price: &price, Stock: prod.Stock,
	})
}

// SearchProducts asks the index first and falls back to a LIKE query over the
// catalog when no index is configured or it fails.
func (s *CatalogService) SearchProducts(ctx context.Context, query string, page, size int) (int64, []models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.search")
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, nil, fmt.Errorf("%w: query required", ErrValidation)
	}
	offset, limit := util.Calculate(page, size)

	if s.Index != nil {
		total, ids, err := s.Index.Search(ctx, query, offset, limit)
		if err == nil {
			prods, err := s.Repo.GetProductsByIDs(ctx, ids)
			if err != nil {
				return 0, nil, err
			}
			return total, orderByIDs(prods, ids), nil
		}
		l.Warn("index_search_error", "error", err)
	}

	return s.Repo.ListProducts(ctx, repo.ProductFilter{Search: query, Limit: limit, Offset: offset})
}

func orderByIDs(prods []models.Product, ids []uint) []models.Product {
	byID := make(map[uint]models.Product, len(prods))
	for _, p := range prods {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(prods))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.Repo.ListCategories(ctx)
}

func validateCategory(c *models.Category) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name required", ErrValidation)
	}
	if strings.TrimSpace(c.Slug) == "" {
		return fmt.Errorf("%w: slug required", ErrValidation)
	}
	return nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, p tokens.Principal, req transport.CategoryRequest) (*models.Category, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	cat := &models.Category{Name: req.Name, Slug: req.Slug, Description: req.Description, ImageURL: req.ImageURL}
	if err := validateCategory(cat); err != nil {
		return nil, err
	}
	if err := s.Repo.CreateCategory(ctx, cat); err != nil {
		return nil, writeErr(err)
	}
	return cat, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, p tokens.Principal, id uint, req transport.PatchCategoryRequest) (*models.Category, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	cat, err := s.Repo.GetCategory(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: category %d", ErrNotFound, id)
		}
		return nil, err
	}
	if req.Name != nil {
		cat.Name = *req.Name
	}
	if req.Slug != nil {
		cat.Slug = *req.Slug
	}
	if req.Description != nil {
		cat.Description = *req.Description
	}
	if req.ImageURL != nil {
		cat.ImageURL = *req.ImageURL
	}
	if err := validateCategory(cat); err != nil {
		return nil, err
	}
	if err := s.Repo.SaveCategory(ctx, cat); err != nil {
		return nil, writeErr(err)
	}
	return cat, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, p tokens.Principal, id uint) error {
	if err := requireAdmin(p); err != nil {
		return err
	}
	if err := s.Repo.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: category %d", ErrNotFound, id)
		}
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return fmt.Errorf("%w: category %d still has products", ErrConflict, id)
		}
		return err
	}
	return nil
}

func productErr(err error, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	return err
}

func writeErr(err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated), errors.Is(err, gorm.ErrCheckConstraintViolated):
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return err
}
