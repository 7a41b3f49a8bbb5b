package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	view, err := h.Svc.GetCart(ctx, principal(c))
	if err != nil {
		return fail(l, "get_cart", err)
	}

	return c.JSON(http.StatusOK, view)
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_item")

	var req transport.AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "add_to_cart", "invalid body", err)
	}

	item, err := h.Svc.AddItem(ctx, principal(c), req)
	if err != nil {
		return fail(l, "add_to_cart", err)
	}

	l.Info("add_to_cart_success", "item_id", item.ID, "quantity", item.Quantity)
	return c.JSON(http.StatusCreated, item)
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update_item")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "update_cart_item", err.Error(), err)
	}
	var req transport.UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_cart_item", "invalid body", err)
	}

	item, err := h.Svc.UpdateItemQuantity(ctx, principal(c), id, req.Quantity)
	if err != nil {
		return fail(l, "update_cart_item", err)
	}

	return c.JSON(http.StatusOK, item)
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_item")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "remove_cart_item", err.Error(), err)
	}

	if err := h.Svc.RemoveItem(ctx, principal(c), id); err != nil {
		return fail(l, "remove_cart_item", err)
	}

	l.Info("remove_cart_item_success", "item_id", id)
	return c.JSON(http.StatusOK, echo.Map{"message": "Item removed from cart"})
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	if err := h.Svc.Clear(ctx, principal(c)); err != nil {
		return fail(l, "clear_cart", err)
	}

	l.Info("clear_cart_success")
	return c.JSON(http.StatusOK, echo.Map{"message": "Cart cleared"})
}
