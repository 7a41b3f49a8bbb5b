package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

type WishlistService struct {
	Repo *repo.GormRepo
}

func (s *WishlistService) List(ctx context.Context, p tokens.Principal) ([]models.Wishlist, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	return s.Repo.ListWishlist(ctx, p.UserID)
}

func (s *WishlistService) Add(ctx context.Context, p tokens.Principal, productID uint) (*models.Wishlist, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	if productID == 0 {
		return nil, fmt.Errorf("%w: productId required", ErrValidation)
	}
	if _, err := s.Repo.GetProduct(ctx, productID); err != nil {
		return nil, productErr(err, productID)
	}

	w := &models.Wishlist{UserID: p.UserID, ProductID: productID}
	if err := s.Repo.AddWishlist(ctx, w); err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: product %d already in wishlist", ErrConflict, productID)
		}
		return nil, err
	}
	return w, nil
}

func (s *WishlistService) Remove(ctx context.Context, p tokens.Principal, productID uint) error {
	if err := requireUser(p); err != nil {
		return err
	}
	if err := s.Repo.RemoveWishlist(ctx, p.UserID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %d not in wishlist", ErrNotFound, productID)
		}
		return err
	}
	return nil
}
