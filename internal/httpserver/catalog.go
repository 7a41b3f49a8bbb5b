package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/config"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

// multiValue accepts both ?category=a&category=b and ?category=a,b.
func multiValue(c echo.Context, name string) []string {
	var out []string
	for _, v := range c.QueryParams()[name] {
		out = append(out, config.CSV(v)...)
	}
	return out
}

func moneyParam(c echo.Context, name string) (*models.Money, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return nil, nil
	}
	m, err := models.NewMoney(v)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list_products")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), service.DefaultProductLimit)
	offset, limit := util.Calculate(page, size)

	f := repo.ProductFilter{
		Categories: multiValue(c, "category"),
		AgeGroups:  multiValue(c, "ageGroup"),
		Search:     c.QueryParam("search"),
		Limit:      limit,
		Offset:     offset,
	}
	f.Featured, _ = strconv.ParseBool(c.QueryParam("featured"))

	var err error
	if f.PriceMin, err = moneyParam(c, "minPrice"); err != nil {
		return badRequest(l, "list_products", "minPrice must be a number", err)
	}
	if f.PriceMax, err = moneyParam(c, "maxPrice"); err != nil {
		return badRequest(l, "list_products", "maxPrice must be a number", err)
	}

	total, items, err := h.Svc.ListProducts(ctx, f)
	if err != nil {
		return fail(l, "list_products", err)
	}

	l.Info("list_products_success", "total", total)
	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": util.TotalPages(total, limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *CatalogHTTP) Featured(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.featured")

	items, err := h.Svc.FeaturedProducts(ctx)
	if err != nil {
		return fail(l, "featured_products", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_product")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "get_product", err.Error(), err)
	}

	prod, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return fail(l, "get_product", err)
	}
	return c.JSON(http.StatusOK, prod)
}

func (h *CatalogHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	total, items, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), page, size)
	if err != nil {
		return fail(l, "search", err)
	}

	l.Info("search_success", "total", total)
	return c.JSON(http.StatusOK, transport.SearchResponse{Total: total, Products: items})
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_product")

	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "product_create", "invalid body", err)
	}

	prod, err := h.Svc.CreateProduct(ctx, principal(c), req)
	if err != nil {
		return fail(l, "product_create", err)
	}

	l.Info("product_create_success", "product_id", prod.ID)
	return c.JSON(http.StatusCreated, prod)
}

func (h *CatalogHTTP) ReplaceProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.replace_product")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "product_update", err.Error(), err)
	}
	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "product_update", "invalid body", err)
	}

	prod, err := h.Svc.ReplaceProduct(ctx, principal(c), id, req)
	if err != nil {
		return fail(l, "product_update", err)
	}

	l.Info("product_update_success", "product_id", prod.ID)
	return c.JSON(http.StatusOK, prod)
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.patch_product")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "product_patch", err.Error(), err)
	}
	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "product_patch", "invalid body", err)
	}

	prod, err := h.Svc.PatchProduct(ctx, principal(c), id, req)
	if err != nil {
		return fail(l, "product_patch", err)
	}

	l.Info("product_patch_success", "product_id", prod.ID)
	return c.JSON(http.StatusOK, prod)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_product")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "product_delete", err.Error(), err)
	}

	if err := h.Svc.DeleteProduct(ctx, principal(c), id); err != nil {
		return fail(l, "product_delete", err)
	}

	l.Info("product_delete_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list_categories")

	cats, err := h.Svc.ListCategories(ctx)
	if err != nil {
		return fail(l, "list_categories", err)
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *CatalogHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_category")

	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "category_create", "invalid body", err)
	}

	cat, err := h.Svc.CreateCategory(ctx, principal(c), req)
	if err != nil {
		return fail(l, "category_create", err)
	}

	l.Info("category_create_success", "category_id", cat.ID)
	return c.JSON(http.StatusCreated, cat)
}

func (h *CatalogHTTP) UpdateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.update_category")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "category_update", err.Error(), err)
	}
	var req transport.PatchCategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "category_update", "invalid body", err)
	}

	cat, err := h.Svc.UpdateCategory(ctx, principal(c), id, req)
	if err != nil {
		return fail(l, "category_update", err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CatalogHTTP) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_category")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "category_delete", err.Error(), err)
	}

	if err := h.Svc.DeleteCategory(ctx, principal(c), id); err != nil {
		return fail(l, "category_delete", err)
	}
	return c.NoContent(http.StatusNoContent)
}
