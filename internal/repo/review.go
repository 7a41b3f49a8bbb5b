package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) ListReviews(ctx context.Context, productID uint) ([]models.Review, error) {
	var reviews []models.Review
	if err := r.DB.WithContext(ctx).Preload("User").
		Where("product_id = ?", productID).
		Order("created_at DESC, id DESC").
		Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

// CreateReview stores the review, marks it verified when the author has a
// live order containing the product, and refreshes the product's rating.
func (r *GormRepo) CreateReview(ctx context.Context, rv *models.Review) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Product{}).Where("id = ?", rv.ProductID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return fmt.Errorf("%w: %d", ErrProductNotFound, rv.ProductID)
		}

		var purchased int64
		if err := tx.Model(&models.OrderItem{}).
			Joins("JOIN orders ON orders.id = order_items.order_id").
			Where("orders.user_id = ? AND order_items.product_id = ? AND orders.status <> ?",
				rv.UserID, rv.ProductID, models.StatusCancelled).
			Count(&purchased).Error; err != nil {
			return err
		}
		rv.IsVerified = purchased > 0

		if err := tx.Create(rv).Error; err != nil {
			return err
		}

		var agg struct {
			Avg   float64
			Count int
		}
		if err := tx.Model(&models.Review{}).
			Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
			Where("product_id = ?", rv.ProductID).
			Scan(&agg).Error; err != nil {
			return err
		}

		return tx.Model(&models.Product{}).
			Where("id = ?", rv.ProductID).
			UpdateColumns(map[string]any{"rating": agg.Avg, "review_count": agg.Count}).Error
	})
}
