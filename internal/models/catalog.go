package models

import "time"

type Category struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name        string    `gorm:"uniqueIndex;not null"      json:"name"`
	Slug        string    `gorm:"uniqueIndex;not null"      json:"slug"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Product struct {
	ID              uint      `gorm:"primaryKey;autoIncrement"                  json:"id"`
	Name            string    `gorm:"not null"                                  json:"name"`
	Description     string    `gorm:"not null;default:''"                       json:"description"`
	Price           Money     `gorm:"type:numeric(12,2);not null"               json:"price"`
	OriginalPrice   *Money    `gorm:"type:numeric(12,2)"                        json:"originalPrice,omitempty"`
	Stock           int       `gorm:"not null;default:0;check:stock >= 0"       json:"stock"`
	SKU             string    `gorm:"uniqueIndex;not null"                      json:"sku"`
	CategoryID      *uint     `gorm:"index"                                     json:"categoryId"`
	Category        *Category `gorm:"foreignKey:CategoryID"                     json:"category,omitempty"`
	Sizes           []string  `gorm:"type:jsonb;serializer:json"                json:"sizes"`
	Colors          []string  `gorm:"type:jsonb;serializer:json"                json:"colors"`
	AgeGroup        string    `gorm:"index;not null;default:''"                 json:"ageGroup"`
	IsActive        bool      `gorm:"not null"                                  json:"isActive"`
	IsFeatured      bool      `gorm:"not null;default:false"                    json:"isFeatured"`
	ImageURL        string    `json:"imageUrl"`
	ReferenceImages []string  `gorm:"type:jsonb;serializer:json"                json:"referenceImages"`
	Rating          float64   `gorm:"not null;default:0"                        json:"rating"`
	ReviewCount     int       `gorm:"not null;default:0"                        json:"reviewCount"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
