package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

// GetOrCreateCart returns the user's cart, creating it on first use.
func (r *GormRepo) GetOrCreateCart(ctx context.Context, userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := r.DB.WithContext(ctx).Where(models.Cart{UserID: userID}).FirstOrCreate(&cart).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// a concurrent request created it first
		err = r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *GormRepo) FindCart(ctx context.Context, userID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

const cartLineKey = "cart_id = ? AND product_id = ? AND size = ? AND color = ?"

// AddCartItem merges into an existing (cart, product, size, color) line or inserts a new one.
// An insert that loses a race to a concurrent add is retried as a merge.
func (r *GormRepo) AddCartItem(ctx context.Context, item *models.CartItem) error {
	merged, err := r.mergeCartItem(ctx, item)
	if err != nil || merged {
		return err
	}

	err = r.DB.WithContext(ctx).Session(&gorm.Session{SkipDefaultTransaction: true}).Create(item).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	if merged, mErr := r.mergeCartItem(ctx, item); mErr != nil || merged {
		return mErr
	}
	return err
}

// mergeCartItem adds item.Quantity to the matching line and reloads it into item.
func (r *GormRepo) mergeCartItem(ctx context.Context, item *models.CartItem) (bool, error) {
	db := r.DB.WithContext(ctx)
	res := db.Model(&models.CartItem{}).
		Where(cartLineKey, item.CartID, item.ProductID, item.Size, item.Color).
		Update("quantity", gorm.Expr("quantity + ?", item.Quantity))
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	key := *item
	*item = models.CartItem{}
	return true, db.Where(cartLineKey, key.CartID, key.ProductID, key.Size, key.Color).First(item).Error
}

func (r *GormRepo) GetCartItem(ctx context.Context, cartID, itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.DB.WithContext(ctx).Preload("Product").
		Where("id = ? AND cart_id = ?", itemID, cartID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) UpdateCartItemQuantity(ctx context.Context, cartID, itemID uint, quantity int) (*models.CartItem, error) {
	res := r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		Update("quantity", quantity)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetCartItem(ctx, cartID, itemID)
}

func (r *GormRepo) RemoveCartItem(ctx context.Context, cartID, itemID uint) error {
	res := r.DB.WithContext(ctx).Where("id = ? AND cart_id = ?", itemID, cartID).Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ClearCart(ctx context.Context, cartID uint) error {
	return r.DB.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}

// ListCartItems joins the live product; price and quantity stay the line's own.
func (r *GormRepo) ListCartItems(ctx context.Context, cartID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.DB.WithContext(ctx).Preload("Product").
		Where("cart_id = ?", cartID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
