package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

type ReviewService struct {
	Repo *repo.GormRepo
}

func (s *ReviewService) ListByProduct(ctx context.Context, productID uint) ([]models.Review, error) {
	return s.Repo.ListReviews(ctx, productID)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func (s *ReviewService) Create(ctx context.Context, p tokens.Principal, req transport.CreateReviewRequest) (*models.Review, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	if req.ProductID == 0 {
		return nil, fmt.Errorf("%w: productId required", ErrValidation)
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}

	rv := &models.Review{
		UserID:    p.UserID,
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Title:     trimmed(req.Title),
		Comment:   trimmed(req.Comment),
	}
	if err := s.Repo.CreateReview(ctx, rv); err != nil {
		if errors.Is(err, repo.ErrProductNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return nil, err
	}
	return rv, nil
}
