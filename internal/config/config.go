package config

import (
	"errors"
	"os"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/config"
)

type ServiceConfig struct {
	config.Config

	FreeShippingThreshold models.Money
	ShippingFlatRate      models.Money
}

func Load() (ServiceConfig, error) {
	cfg := ServiceConfig{
		Config:                config.Load(),
		FreeShippingThreshold: models.MoneyFromInt(5000),
		ShippingFlatRate:      models.MoneyFromInt(150),
	}

	var errs []error
	if v := os.Getenv("FREE_SHIPPING_THRESHOLD"); v != "" {
		m, err := models.NewMoney(v)
		errs = append(errs, err)
		cfg.FreeShippingThreshold = m
	}
	if v := os.Getenv("SHIPPING_FLAT_RATE"); v != "" {
		m, err := models.NewMoney(v)
		errs = append(errs, err)
		cfg.ShippingFlatRate = m
	}
	return cfg, errors.Join(errs...)
}

// RequireDB checks what every subcommand needs.
func (c ServiceConfig) RequireDB() error {
	return config.NonEmpty(c.DatabaseURL, "DATABASE_URL")
}

// RequireServe checks what the HTTP server needs on top of the database.
func (c ServiceConfig) RequireServe() error {
	return errors.Join(
		c.RequireDB(),
		config.NonEmptyBytes(c.JWTAccessSecret, "JWT_SECRET"),
		config.NonEmptyBytes(c.JWTRefreshSecret, "JWT_REFRESH_SECRET"),
	)
}
