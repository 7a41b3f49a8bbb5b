package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create")

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_order", "invalid body", err)
	}

	order, err := h.Svc.PlaceOrder(ctx, principal(c), req)
	if err != nil {
		return fail(l, "create_order", err)
	}

	l.Info("create_order_success", "order_id", order.ID, "order_number", order.OrderNumber)
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	orders, err := h.Svc.ListOrders(ctx, principal(c))
	if err != nil {
		return fail(l, "list_orders", err)
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "get_order", err.Error(), err)
	}

	order, err := h.Svc.GetOrder(ctx, principal(c), id)
	if err != nil {
		return fail(l, "get_order", err)
	}

	return c.JSON(http.StatusOK, order)
}

// ListAll returns every order as {"data": [...], "meta": {...}}. Without a
// limit query parameter the whole list is returned; with one it is windowed
// by limit/offset and has_next reports whether more remain.
func (h *OrderHTTP) ListAll(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_all")

	paged := c.QueryParam("limit") != ""
	limit, offset := -1, -1
	if paged {
		limit = util.ParseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)
		offset = util.ParseIntDefault(c.QueryParam("offset"), 0)
		limit, offset = util.Window(limit, offset, util.DefaultPageSize)
	}

	total, orders, err := h.Svc.ListAllOrders(ctx, principal(c), limit, offset)
	if err != nil {
		return fail(l, "list_all_orders", err)
	}

	meta := map[string]any{"total": total, "has_next": false}
	if paged {
		meta["limit"] = limit
		meta["offset"] = offset
		meta["has_next"] = int64(offset+limit) < total
	}
	return c.JSON(http.StatusOK, map[string]any{"data": orders, "meta": meta})
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "update_order_status", err.Error(), err)
	}
	var req transport.UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_order_status", "invalid body", err)
	}

	order, err := h.Svc.SetStatus(ctx, principal(c), id, req.Status)
	if err != nil {
		return fail(l, "update_order_status", err)
	}

	l.Info("update_order_status_success", "order_id", order.ID, "status", order.Status)
	return c.JSON(http.StatusOK, order)
}
