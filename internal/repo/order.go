package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
)

// CreateOrder persists the order, its line items and the per-line stock
// decrements in one transaction. Any failure rolls all of it back.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	items := order.Items

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dup int64
		if err := tx.Model(&models.Order{}).Where("order_number = ?", order.OrderNumber).Count(&dup).Error; err != nil {
			return err
		}
		if dup > 0 {
			return fmt.Errorf("%w: %s", ErrDuplicateOrderNumber, order.OrderNumber)
		}

		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: %s", ErrDuplicateOrderNumber, order.OrderNumber)
			}
			return err
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}

		now := tx.NowFunc()
		for _, it := range items {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", it.ProductID, it.Quantity).
				UpdateColumns(map[string]any{
					"stock":      gorm.Expr("stock - ?", it.Quantity),
					"updated_at": now,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				var exists int64
				if err := tx.Model(&models.Product{}).Where("id = ?", it.ProductID).Count(&exists).Error; err != nil {
					return err
				}
				if exists == 0 {
					return fmt.Errorf("%w: %d", ErrProductNotFound, it.ProductID)
				}
				return fmt.Errorf("%w: product %d", ErrInsufficientStock, it.ProductID)
			}
		}

		order.Items = items
		return nil
	})
}

func withItems(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).Preload("Items", withItems).First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) ListOrdersByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	if err := r.DB.WithContext(ctx).Preload("Items", withItems).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) ListAllOrders(ctx context.Context, limit, offset int) (int64, []models.Order, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Order{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var orders []models.Order
	if err := r.DB.WithContext(ctx).Preload("Items", withItems).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

// UpdateOrderStatus moves the order from one status to another only if it is
// still in the expected status.
func (r *GormRepo) UpdateOrderStatus(ctx context.Context, id uint, from, to models.OrderStatus) (*models.Order, error) {
	db := r.DB.WithContext(ctx)
	res := db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": db.NowFunc()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrStatusChanged
	}
	return r.GetOrder(ctx, id)
}
