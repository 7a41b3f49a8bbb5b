package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type WishlistHTTP struct {
	Svc *service.WishlistService
}

func (h *WishlistHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.list")

	items, err := h.Svc.List(ctx, principal(c))
	if err != nil {
		return fail(l, "list_wishlist", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *WishlistHTTP) Add(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.add")

	var req transport.WishlistRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "add_wishlist", "invalid body", err)
	}

	item, err := h.Svc.Add(ctx, principal(c), req.ProductID)
	if err != nil {
		return fail(l, "add_wishlist", err)
	}

	l.Info("add_wishlist_success", "product_id", req.ProductID)
	return c.JSON(http.StatusCreated, item)
}

func (h *WishlistHTTP) Remove(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.remove")

	productID, err := paramID(c, "productId")
	if err != nil {
		return badRequest(l, "remove_wishlist", err.Error(), err)
	}

	if err := h.Svc.Remove(ctx, principal(c), productID); err != nil {
		return fail(l, "remove_wishlist", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Removed from wishlist"})
}

type ReviewHTTP struct {
	Svc *service.ReviewService
}

func (h *ReviewHTTP) ListByProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.list")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "list_reviews", err.Error(), err)
	}

	reviews, err := h.Svc.ListByProduct(ctx, id)
	if err != nil {
		return fail(l, "list_reviews", err)
	}
	return c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.create")

	var req transport.CreateReviewRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_review", "invalid body", err)
	}

	rv, err := h.Svc.Create(ctx, principal(c), req)
	if err != nil {
		return fail(l, "create_review", err)
	}

	l.Info("create_review_success", "review_id", rv.ID, "verified", rv.IsVerified)
	return c.JSON(http.StatusCreated, rv)
}
