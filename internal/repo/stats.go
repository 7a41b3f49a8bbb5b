package repo

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

type Stats struct {
	TotalRevenue   models.Money `json:"totalRevenue"`
	TotalOrders    int64        `json:"totalOrders"`
	TotalProducts  int64        `json:"totalProducts"`
	TotalCustomers int64        `json:"totalCustomers"`
}

func (r *GormRepo) Stats(ctx context.Context) (*Stats, error) {
	var st Stats

	var rev struct {
		Revenue models.Money
	}
	if err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Select("COALESCE(SUM(total), 0) AS revenue").
		Where("status <> ?", models.StatusCancelled).
		Scan(&rev).Error; err != nil {
		return nil, err
	}
	st.TotalRevenue = rev.Revenue

	if err := r.DB.WithContext(ctx).Model(&models.Order{}).Count(&st.TotalOrders).Error; err != nil {
		return nil, err
	}

	var err error
	if st.TotalProducts, err = r.CountActiveProducts(ctx); err != nil {
		return nil, err
	}
	if st.TotalCustomers, err = r.CountUsersByRole(ctx, tokens.RoleCustomer); err != nil {
		return nil, err
	}
	return &st, nil
}
