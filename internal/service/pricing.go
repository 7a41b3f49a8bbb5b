package service

import "github.com/Skotchmaster/storefront/internal/models"

type Pricing struct {
	FreeShippingThreshold models.Money
	FlatRate              models.Money
}

func DefaultPricing() Pricing {
	return Pricing{
		FreeShippingThreshold: models.MoneyFromInt(5000),
		FlatRate:              models.MoneyFromInt(150),
	}
}

type Summary struct {
	ItemCount int          `json:"itemCount"`
	Subtotal  models.Money `json:"subtotal"`
	Tax       models.Money `json:"tax"`
	Shipping  models.Money `json:"shipping"`
	Total     models.Money `json:"total"`
}

func (p Pricing) Shipping(subtotal models.Money) models.Money {
	if subtotal.IsZero() || !subtotal.LessThan(p.FreeShippingThreshold) {
		return models.Zero
	}
	return p.FlatRate
}

// Summarize prices a set of lines. Tax is always zero.
func (p Pricing) Summarize(subtotal models.Money, itemCount int) Summary {
	shipping := p.Shipping(subtotal)
	return Summary{
		ItemCount: itemCount,
		Subtotal:  subtotal,
		Tax:       models.Zero,
		Shipping:  shipping,
		Total:     subtotal.Add(shipping),
	}
}
