package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/mykafka"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

type CartView struct {
	Cart    *models.Cart      `json:"cart"`
	Items   []models.CartItem `json:"items"`
	Summary Summary           `json:"summary"`
}

type CartService struct {
	Repo    *repo.GormRepo
	Pricing Pricing
	Events  mykafka.Publisher
}

func requireUser(p tokens.Principal) error {
	if !p.Authenticated() {
		return ErrUnauthorized
	}
	return nil
}

func (s *CartService) GetCart(ctx context.Context, p tokens.Principal) (*CartView, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	cart, err := s.Repo.GetOrCreateCart(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	items, err := s.Repo.ListCartItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}

	subtotal, count := models.Zero, 0
	for _, it := range items {
		subtotal = subtotal.Add(it.LineTotal())
		count += it.Quantity
	}
	return &CartView{Cart: cart, Items: items, Summary: s.Pricing.Summarize(subtotal, count)}, nil
}

// AddItem puts a product into the caller's cart. The unit price is taken from
// the catalog at the time of the add.
type productGetter interface {
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
}

// activeProduct loads a product the storefront may sell. Inactive products are not found.
func activeProduct(ctx context.Context, r productGetter, id uint) (*models.Product, error) {
	product, err := r.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	return product, nil
}

func offered(p *models.Product, size, color string) error {
	if len(p.Sizes) > 0 && size != "" && !slices.Contains(p.Sizes, size) {
		return fmt.Errorf("%w: size %q not offered", ErrValidation, size)
	}
	if len(p.Colors) > 0 && color != "" && !slices.Contains(p.Colors, color) {
		return fmt.Errorf("%w: color %q not offered", ErrValidation, color)
	}
	return nil
}

func (s *CartService) AddItem(ctx context.Context, p tokens.Principal, req transport.AddCartItemRequest) (*models.CartItem, error) {
	l := logging.FromContext(ctx).With("svc", "cart.add_item", "user_id", p.UserID)
	if err := requireUser(p); err != nil {
		return nil, err
	}
	if req.ProductID == 0 {
		return nil, fmt.Errorf("%w: productId required", ErrValidation)
	}
	if req.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be a positive integer", ErrValidation)
	}

	product, err := activeProduct(ctx, s.Repo, req.ProductID)
	if err != nil {
		return nil, err
	}
	if err := offered(product, req.Size, req.Color); err != nil {
		return nil, err
	}
	if req.Price != nil && !req.Price.Equal(product.Price) {
		l.Debug("client_price_ignored", "client_price", req.Price.String(), "price", product.Price.String())
	}

	cart, err := s.Repo.GetOrCreateCart(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	item := &models.CartItem{
		CartID:    cart.ID,
		ProductID: product.ID,
		Size:      req.Size,
		Color:     req.Color,
		Quantity:  req.Quantity,
		Price:     product.Price,
	}
	if err := s.Repo.AddCartItem(ctx, item); err != nil {
		l.Error("add_item_error", "error", err)
		return nil, err
	}
	item.Product = product

	publish(ctx, s.Events, mykafka.TopicCartEvents, idKey(p.UserID), CartEvent{
		Type: "cart_item_added", UserID: p.UserID, ProductID: product.ID, Quantity: req.Quantity,
	})
	return item, nil
}

func (s *CartService) UpdateItemQuantity(ctx context.Context, p tokens.Principal, itemID uint, quantity int) (*models.CartItem, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be a positive integer", ErrValidation)
	}
	cart, err := s.Repo.FindCart(ctx, p.UserID)
	if err != nil {
		return nil, cartItemErr(err, itemID)
	}
	item, err := s.Repo.UpdateCartItemQuantity(ctx, cart.ID, itemID, quantity)
	if err != nil {
		return nil, cartItemErr(err, itemID)
	}
	return item, nil
}

func (s *CartService) RemoveItem(ctx context.Context, p tokens.Principal, itemID uint) error {
	if err := requireUser(p); err != nil {
		return err
	}
	cart, err := s.Repo.FindCart(ctx, p.UserID)
	if err != nil {
		return cartItemErr(err, itemID)
	}
	if err := s.Repo.RemoveCartItem(ctx, cart.ID, itemID); err != nil {
		return cartItemErr(err, itemID)
	}

	publish(ctx, s.Events, mykafka.TopicCartEvents, idKey(p.UserID), CartEvent{
		Type: "cart_item_removed", UserID: p.UserID,
	})
	return nil
}

func (s *CartService) Clear(ctx context.Context, p tokens.Principal) error {
	if err := requireUser(p); err != nil {
		return err
	}
	cart, err := s.Repo.FindCart(ctx, p.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.Repo.ClearCart(ctx, cart.ID); err != nil {
		return err
	}

	publish(ctx, s.Events, mykafka.TopicCartEvents, idKey(p.UserID), CartEvent{
		Type: "cart_cleared", UserID: p.UserID,
	})
	return nil
}

func cartItemErr(err error, itemID uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: cart item %d", ErrNotFound, itemID)
	}
	return err
}
