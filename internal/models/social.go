package models

import "time"

type Wishlist struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"                    json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_wishlist_user_product;not null" json:"userId"`
	ProductID uint      `gorm:"uniqueIndex:idx_wishlist_user_product;not null" json:"productId"`
	CreatedAt time.Time `json:"createdAt"`
	Product   *Product  `gorm:"foreignKey:ProductID"                        json:"product,omitempty"`
}

type Review struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"               json:"id"`
	UserID     uint      `gorm:"index;not null"                         json:"userId"`
	ProductID  uint      `gorm:"index;not null"                         json:"productId"`
	Rating     int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Title      *string   `json:"title"`
	Comment    *string   `json:"comment"`
	IsVerified bool      `gorm:"not null;default:false"                 json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	User       *User     `gorm:"foreignKey:UserID"                      json:"user,omitempty"`
}
