package models

import "time"

type Address struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Street       string `json:"street"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zipCode"`
	Country      string `json:"country"`
	Phone        string `json:"phone,omitempty"`
	Thana        string `json:"thana,omitempty"`
	Landmark     string `json:"landmark,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

func (a Address) IsZero() bool { return a == Address{} }

type Order struct {
	ID              uint          `gorm:"primaryKey;autoIncrement"           json:"id"`
	UserID          uint          `gorm:"index;not null"                     json:"userId"`
	OrderNumber     string        `gorm:"uniqueIndex;not null"               json:"orderNumber"`
	Status          OrderStatus   `gorm:"type:varchar(20);index;not null"    json:"status"`
	Subtotal        Money         `gorm:"type:numeric(12,2);not null"        json:"subtotal"`
	Tax             Money         `gorm:"type:numeric(12,2);not null"        json:"tax"`
	Shipping        Money         `gorm:"type:numeric(12,2);not null"        json:"shipping"`
	Total           Money         `gorm:"type:numeric(12,2);not null"        json:"total"`
	ShippingAddress Address       `gorm:"type:jsonb;serializer:json;not null" json:"shippingAddress"`
	BillingAddress  Address       `gorm:"type:jsonb;serializer:json;not null" json:"billingAddress"`
	PaymentMethod   string        `gorm:"type:varchar(32);not null"          json:"paymentMethod"`
	PaymentStatus   PaymentStatus `gorm:"type:varchar(20);not null"          json:"paymentStatus"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
	Items           []OrderItem   `gorm:"foreignKey:OrderID"                 json:"items"`
}

// OrderItem is a frozen copy of a cart line at checkout time.
type OrderItem struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"           json:"id"`
	OrderID     uint      `gorm:"index;not null"                     json:"orderId"`
	ProductID   uint      `gorm:"index;not null"                     json:"productId"`
	ProductName string    `gorm:"not null"                           json:"productName"`
	Quantity    int       `gorm:"not null;check:quantity > 0"        json:"quantity"`
	Size        string    `gorm:"not null;default:''"                json:"size"`
	Color       string    `gorm:"not null;default:''"                json:"color"`
	Price       Money     `gorm:"type:numeric(12,2);not null"        json:"price"`
	Total       Money     `gorm:"type:numeric(12,2);not null"        json:"total"`
	CreatedAt   time.Time `json:"createdAt"`
}
