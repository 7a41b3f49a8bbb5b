package service

import (
	"context"
	"io"

	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/report"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

type AdminService struct {
	Repo *repo.GormRepo
}

func (s *AdminService) Stats(ctx context.Context, p tokens.Principal) (*repo.Stats, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	return s.Repo.Stats(ctx)
}

// ExportProducts writes the whole catalog, inactive products included.
func (s *AdminService) ExportProducts(ctx context.Context, p tokens.Principal, w io.Writer) error {
	if err := requireAdmin(p); err != nil {
		return err
	}
	_, products, err := s.Repo.ListProducts(ctx, repo.ProductFilter{IncludeInactive: true})
	if err != nil {
		return err
	}
	return report.WriteProducts(w, products)
}

func (s *AdminService) ExportOrders(ctx context.Context, p tokens.Principal, w io.Writer) error {
	if err := requireAdmin(p); err != nil {
		return err
	}
	_, orders, err := s.Repo.ListAllOrders(ctx, -1, -1)
	if err != nil {
		return err
	}
	return report.WriteOrders(w, orders)
}
