// Package report renders back-office exports as xlsx workbooks.
package report

import (
	"io"
	"strings"

	"github.com/tealeg/xlsx"

	"github.com/Skotchmaster/storefront/internal/models"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	timeLayout  = "2006-01-02 15:04:05"
)

func addHeader(sheet *xlsx.Sheet, headers ...string) {
	row := sheet.AddRow()
	for _, h := range headers {
		row.AddCell().SetString(h)
	}
}

func WriteProducts(w io.Writer, products []models.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return err
	}

	addHeader(sheet,
		"ID", "SKU", "Name", "Price", "OriginalPrice", "Stock", "CategoryID",
		"AgeGroup", "Sizes", "Colors", "Active", "Featured", "Rating", "Reviews", "CreatedAt",
	)
	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(p.ID))
		row.AddCell().SetString(p.SKU)
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.Price.String())
		if p.OriginalPrice != nil {
			row.AddCell().SetString(p.OriginalPrice.String())
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetInt(p.Stock)
		if p.CategoryID != nil {
			row.AddCell().SetInt(int(*p.CategoryID))
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetString(p.AgeGroup)
		row.AddCell().SetString(strings.Join(p.Sizes, ","))
		row.AddCell().SetString(strings.Join(p.Colors, ","))
		row.AddCell().SetBool(p.IsActive)
		row.AddCell().SetBool(p.IsFeatured)
		row.AddCell().SetFloat(p.Rating)
		row.AddCell().SetInt(p.ReviewCount)
		row.AddCell().SetString(p.CreatedAt.Format(timeLayout))
	}

	return file.Write(w)
}

// WriteOrders produces two sheets: one row per order and one row per line item.
func WriteOrders(w io.Writer, orders []models.Order) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return err
	}
	items, err := file.AddSheet("Items")
	if err != nil {
		return err
	}

	addHeader(sheet,
		"ID", "OrderNumber", "UserID", "Status", "PaymentMethod", "PaymentStatus",
		"Subtotal", "Tax", "Shipping", "Total", "City", "CreatedAt",
	)
	addHeader(items, "OrderNumber", "ProductID", "ProductName", "Size", "Color", "Quantity", "Price", "Total")

	for _, o := range orders {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(o.ID))
		row.AddCell().SetString(o.OrderNumber)
		row.AddCell().SetInt(int(o.UserID))
		row.AddCell().SetString(string(o.Status))
		row.AddCell().SetString(o.PaymentMethod)
		row.AddCell().SetString(string(o.PaymentStatus))
		row.AddCell().SetString(o.Subtotal.String())
		row.AddCell().SetString(o.Tax.String())
		row.AddCell().SetString(o.Shipping.String())
		row.AddCell().SetString(o.Total.String())
		row.AddCell().SetString(o.ShippingAddress.City)
		row.AddCell().SetString(o.CreatedAt.Format(timeLayout))

		for _, it := range o.Items {
			r := items.AddRow()
			r.AddCell().SetString(o.OrderNumber)
			r.AddCell().SetInt(int(it.ProductID))
			r.AddCell().SetString(it.ProductName)
			r.AddCell().SetString(it.Size)
			r.AddCell().SetString(it.Color)
			r.AddCell().SetInt(it.Quantity)
			r.AddCell().SetString(it.Price.String())
			r.AddCell().SetString(it.Total.String())
		}
	}

	return file.Write(w)
}
