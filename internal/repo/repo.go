package repo

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserAlreadyExist     = errors.New("user already exist")
	ErrTokenRevoked         = errors.New("token expired or revoked")
	ErrDuplicateOrderNumber = errors.New("order number already exists")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrProductNotFound      = errors.New("product not found")
	ErrStatusChanged        = errors.New("order status changed concurrently")
	ErrAlreadyExists        = errors.New("already exists")
)

type GormRepo struct {
	DB *gorm.DB
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Category{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Wishlist{},
		&models.Review{},
	)
}
