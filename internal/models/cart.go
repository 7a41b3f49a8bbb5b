package models

import "time"

type Cart struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null"      json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CartItem is unique per (cart, product, size, color); repeated adds merge quantities.
type CartItem struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"                 json:"id"`
	CartID    uint      `gorm:"uniqueIndex:idx_cart_line;not null"       json:"cartId"`
	ProductID uint      `gorm:"uniqueIndex:idx_cart_line;not null"       json:"productId"`
	Size      string    `gorm:"uniqueIndex:idx_cart_line;not null;default:''" json:"size"`
	Color     string    `gorm:"uniqueIndex:idx_cart_line;not null;default:''" json:"color"`
	Quantity  int       `gorm:"not null;default:1;check:quantity > 0"    json:"quantity"`
	Price     Money     `gorm:"type:numeric(12,2);not null"              json:"price"`
	CreatedAt time.Time `json:"createdAt"`
	Product   *Product  `gorm:"foreignKey:ProductID"                     json:"product,omitempty"`
}

func (i CartItem) LineTotal() Money { return i.Price.Times(i.Quantity) }
