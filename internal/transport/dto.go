package transport

import "github.com/Skotchmaster/storefront/internal/models"

type AddCartItemRequest struct {
	ProductID uint          `json:"productId"`
	Quantity  int           `json:"quantity"`
	Size      string        `json:"size"`
	Color     string        `json:"color"`
	Price     *models.Money `json:"price,omitempty"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type CreateOrderItem struct {
	ProductID   uint          `json:"productId"`
	ProductName string        `json:"productName"`
	Quantity    int           `json:"quantity"`
	Size        string        `json:"size"`
	Color       string        `json:"color"`
	Price       models.Money  `json:"price"`
	Total       *models.Money `json:"total,omitempty"`
}

// CreateOrderRequest is the checkout form. Items and amounts may be omitted,
// in which case they are derived from the caller's cart.
type CreateOrderRequest struct {
	OrderNumber     string               `json:"orderNumber"`
	Status          models.OrderStatus   `json:"status"`
	Subtotal        *models.Money        `json:"subtotal,omitempty"`
	Tax             *models.Money        `json:"tax,omitempty"`
	Shipping        *models.Money        `json:"shipping,omitempty"`
	Total           *models.Money        `json:"total,omitempty"`
	ShippingAddress models.Address       `json:"shippingAddress"`
	BillingAddress  models.Address       `json:"billingAddress"`
	PaymentMethod   string               `json:"paymentMethod"`
	PaymentStatus   models.PaymentStatus `json:"paymentStatus"`
	Items           []CreateOrderItem    `json:"items"`
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

type ProductRequest struct {
	Name            string        `json:"name"`
	Description     string        `json:"description"`
	Price           models.Money  `json:"price"`
	OriginalPrice   *models.Money `json:"originalPrice"`
	Stock           int           `json:"stock"`
	SKU             string        `json:"sku"`
	CategoryID      *uint         `json:"categoryId"`
	Sizes           []string      `json:"sizes"`
	Colors          []string      `json:"colors"`
	AgeGroup        string        `json:"ageGroup"`
	IsActive        *bool         `json:"isActive"`
	IsFeatured      bool          `json:"isFeatured"`
	ImageURL        string        `json:"imageUrl"`
	ReferenceImages []string      `json:"referenceImages"`
}

type PatchProductRequest struct {
	Name            *string       `json:"name"`
	Description     *string       `json:"description"`
	Price           *models.Money `json:"price"`
	OriginalPrice   *models.Money `json:"originalPrice"`
	Stock           *int          `json:"stock"`
	SKU             *string       `json:"sku"`
	CategoryID      *uint         `json:"categoryId"`
	Sizes           *[]string     `json:"sizes"`
	Colors          *[]string     `json:"colors"`
	AgeGroup        *string       `json:"ageGroup"`
	IsActive        *bool         `json:"isActive"`
	IsFeatured      *bool         `json:"isFeatured"`
	ImageURL        *string       `json:"imageUrl"`
	ReferenceImages *[]string     `json:"referenceImages"`
}

type CategoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

type PatchCategoryRequest struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageUrl"`
}

type WishlistRequest struct {
	ProductID uint `json:"productId"`
}

type CreateReviewRequest struct {
	ProductID uint    `json:"productId"`
	Rating    int     `json:"rating"`
	Title     *string `json:"title"`
	Comment   *string `json:"comment"`
}

type SignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SearchResponse struct {
	Total    int64            `json:"total"`
	Products []models.Product `json:"products"`
}
