package httpserver

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/report"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type AdminHTTP struct {
	Svc *service.AdminService
}

func (h *AdminHTTP) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.stats")

	stats, err := h.Svc.Stats(ctx, principal(c))
	if err != nil {
		return fail(l, "stats", err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *AdminHTTP) ExportProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.export_products")

	return h.download(c, l, "export_products", "products", func(w io.Writer) error {
		return h.Svc.ExportProducts(ctx, principal(c), w)
	})
}

func (h *AdminHTTP) ExportOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.export_orders")

	return h.download(c, l, "export_orders", "orders", func(w io.Writer) error {
		return h.Svc.ExportOrders(ctx, principal(c), w)
	})
}

// download renders the workbook into memory first so a failure still yields a JSON error.
func (h *AdminHTTP) download(c echo.Context, l *slog.Logger, op, name string, write func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return fail(l, op, err)
	}

	filename := fmt.Sprintf("%s-%s.xlsx", name, time.Now().UTC().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	l.Info(op+"_success", "bytes", buf.Len())
	return c.Blob(http.StatusOK, report.ContentType, buf.Bytes())
}
