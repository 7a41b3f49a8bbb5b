package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/mykafka"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

// OrderStore is the slice of the repository the order workflow needs.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID uint) ([]models.Order, error)
	ListAllOrders(ctx context.Context, limit, offset int) (int64, []models.Order, error)
	UpdateOrderStatus(ctx context.Context, id uint, from, to models.OrderStatus) (*models.Order, error)
	FindCart(ctx context.Context, userID uint) (*models.Cart, error)
	ListCartItems(ctx context.Context, cartID uint) ([]models.CartItem, error)
	ClearCart(ctx context.Context, cartID uint) error
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
}

type OrderService struct {
	Repo    OrderStore
	Pricing Pricing
	Events  mykafka.Publisher
}

// DraftOrder is the order header as submitted at checkout.
type DraftOrder struct {
	OrderNumber     string
	Status          models.OrderStatus
	Subtotal        models.Money
	Tax             models.Money
	Shipping        models.Money
	Total           models.Money
	ShippingAddress models.Address
	BillingAddress  models.Address
	PaymentMethod   string
	PaymentStatus   models.PaymentStatus
}

type LineItem struct {
	ProductID   uint
	ProductName string
	Quantity    int
	Size        string
	Color       string
	Price       models.Money
	Total       models.Money
}

func NewOrderNumber(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("BP-%d-%s", now.UnixMilli(), strings.ToUpper(suffix))
}

func validateOrder(draft *DraftOrder, lines []LineItem) error {
	if strings.TrimSpace(draft.OrderNumber) == "" {
		return fmt.Errorf("%w: orderNumber required", ErrValidation)
	}
	if len(lines) == 0 {
		return fmt.Errorf("%w: items required", ErrValidation)
	}

	subtotal := models.Zero
	for i := range lines {
		ln := &lines[i]
		if ln.ProductID == 0 {
			return fmt.Errorf("%w: items[%d]: productId required", ErrValidation, i)
		}
		if ln.Quantity < 1 {
			return fmt.Errorf("%w: items[%d]: quantity must be >= 1", ErrValidation, i)
		}
		if ln.Price.IsNegative() {
			return fmt.Errorf("%w: items[%d]: price must be >= 0", ErrValidation, i)
		}
		if strings.TrimSpace(ln.ProductName) == "" {
			return fmt.Errorf("%w: items[%d]: productName required", ErrValidation, i)
		}
		want := ln.Price.Times(ln.Quantity)
		if ln.Total.IsZero() {
			ln.Total = want
		} else if !ln.Total.Equal(want) {
			return fmt.Errorf("%w: items[%d]: total %s != %s", ErrValidation, i, ln.Total, want)
		}
		subtotal = subtotal.Add(ln.Total)
	}

	for name, m := range map[string]models.Money{
		"subtotal": draft.Subtotal, "tax": draft.Tax, "shipping": draft.Shipping, "total": draft.Total,
	} {
		if m.IsNegative() {
			return fmt.Errorf("%w: %s must be >= 0", ErrValidation, name)
		}
	}
	if !draft.Subtotal.Equal(subtotal) {
		return fmt.Errorf("%w: subtotal %s does not match items %s", ErrValidation, draft.Subtotal, subtotal)
	}
	if want := draft.Subtotal.Add(draft.Tax).Add(draft.Shipping); !draft.Total.Equal(want) {
		return fmt.Errorf("%w: total %s != %s", ErrValidation, draft.Total, want)
	}

	switch draft.Status {
	case "":
		draft.Status = models.StatusPending
	case models.StatusPending:
	default:
		return fmt.Errorf("%w: new orders start as pending", ErrValidation)
	}
	if draft.PaymentStatus == "" {
		draft.PaymentStatus = models.PaymentPending
	}
	if !draft.PaymentStatus.Valid() {
		return fmt.Errorf("%w: unknown payment status %q", ErrValidation, draft.PaymentStatus)
	}
	if strings.TrimSpace(draft.PaymentMethod) == "" {
		return fmt.Errorf("%w: paymentMethod required", ErrValidation)
	}

	a := draft.ShippingAddress
	if a.FirstName == "" || a.LastName == "" || a.Street == "" || a.City == "" {
		return fmt.Errorf("%w: shipping address needs firstName, lastName, street and city", ErrValidation)
	}
	if draft.BillingAddress.IsZero() {
		draft.BillingAddress = draft.ShippingAddress
	}
	return nil
}

// CreateOrder validates the draft, persists order, items and stock decrements
// atomically, then clears the caller's cart.
func (s *OrderService) CreateOrder(ctx context.Context, p tokens.Principal, draft DraftOrder, lines []LineItem) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.create", "user_id", p.UserID)
	if err := requireUser(p); err != nil {
		return nil, err
	}
	if err := validateOrder(&draft, lines); err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, len(lines))
	for i, ln := range lines {
		items[i] = models.OrderItem{
			ProductID:   ln.ProductID,
			ProductName: ln.ProductName,
			Quantity:    ln.Quantity,
			Size:        ln.Size,
			Color:       ln.Color,
			Price:       ln.Price,
			Total:       ln.Total,
		}
	}
	order := &models.Order{
		UserID:          p.UserID,
		OrderNumber:     draft.OrderNumber,
		Status:          draft.Status,
		Subtotal:        draft.Subtotal,
		Tax:             draft.Tax,
		Shipping:        draft.Shipping,
		Total:           draft.Total,
		ShippingAddress: draft.ShippingAddress,
		BillingAddress:  draft.BillingAddress,
		PaymentMethod:   draft.PaymentMethod,
		PaymentStatus:   draft.PaymentStatus,
		Items:           items,
	}

	if err := s.Repo.CreateOrder(ctx, order); err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicateOrderNumber):
			l.Warn("create_order_error", "reason", "duplicate order number", "order_number", draft.OrderNumber)
			return nil, fmt.Errorf("%w: %v", ErrConflict, err)
		case errors.Is(err, repo.ErrInsufficientStock):
			return nil, fmt.Errorf("%w: %v", ErrInsufficientStock, err)
		case errors.Is(err, repo.ErrProductNotFound):
			return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
		default:
			l.Error("create_order_error", "error", err)
			return nil, fmt.Errorf("%w: %v", ErrTransaction, err)
		}
	}

	s.clearCart(ctx, p.UserID)

	publish(ctx, s.Events, mykafka.TopicOrderEvents, idKey(p.UserID), OrderEvent{
		Type:        "order_created",
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Status:      order.Status,
		Total:       order.Total,
		At:          order.CreatedAt,
	})
	l.Info("order_created", "order_id", order.ID, "order_number", order.OrderNumber)
	return order, nil
}

// clearCart runs after the order committed. A failure leaves a stale cart,
// which the user can clear, so it is only logged.
func (s *OrderService) clearCart(ctx context.Context, userID uint) {
	l := logging.FromContext(ctx).With("svc", "order.clear_cart", "user_id", userID)

	cart, err := s.Repo.FindCart(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return
	}
	if err == nil {
		err = s.Repo.ClearCart(ctx, cart.ID)
	}
	if err != nil {
		l.Warn("cart_clear_error", "error", err)
	}
}

// PlaceOrder fills in what the checkout form may leave out: the lines come
// from the cart, the amounts from the pricing rule and the number is generated.
func (s *OrderService) PlaceOrder(ctx context.Context, p tokens.Principal, req transport.CreateOrderRequest) (*models.Order, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}

	var (
		lines []LineItem
		err   error
	)
	if len(req.Items) > 0 {
		lines, err = s.linesFromRequest(ctx, req.Items)
	} else {
		lines, err = s.linesFromCart(ctx, p.UserID)
	}
	if err != nil {
		return nil, err
	}

	subtotal := models.Zero
	for _, ln := range lines {
		subtotal = subtotal.Add(ln.Price.Times(ln.Quantity))
	}

	draft := DraftOrder{
		OrderNumber:     req.OrderNumber,
		Status:          req.Status,
		Subtotal:        subtotal,
		Tax:             models.Zero,
		Shipping:        s.Pricing.Shipping(subtotal),
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   req.PaymentStatus,
	}
	if req.Subtotal != nil {
		draft.Subtotal = *req.Subtotal
	}
	if req.Tax != nil && !req.Tax.IsZero() {
		return nil, fmt.Errorf("%w: tax is not charged", ErrValidation)
	}
	if req.Shipping != nil && !req.Shipping.Equal(draft.Shipping) {
		return nil, fmt.Errorf("%w: shipping %s does not match %s", ErrValidation, *req.Shipping, draft.Shipping)
	}
	draft.Total = draft.Subtotal.Add(draft.Tax).Add(draft.Shipping)
	if req.Total != nil {
		draft.Total = *req.Total
	}
	if draft.OrderNumber == "" {
		draft.OrderNumber = NewOrderNumber(time.Now())
	}
	if draft.PaymentMethod == "" {
		draft.PaymentMethod = models.PaymentCashOnDelivery
	}

	return s.CreateOrder(ctx, p, draft, lines)
}

// linesFromRequest prices client-sent lines from the catalog. The client price
// must match, and the product name always comes from the catalog.
func (s *OrderService) linesFromRequest(ctx context.Context, items []transport.CreateOrderItem) ([]LineItem, error) {
	lines := make([]LineItem, len(items))
	for i, it := range items {
		if it.ProductID == 0 {
			return nil, fmt.Errorf("%w: items[%d]: productId required", ErrValidation, i)
		}
		prod, err := activeProduct(ctx, s.Repo, it.ProductID)
		if err != nil {
			return nil, err
		}
		if !it.Price.Equal(prod.Price) {
			return nil, fmt.Errorf("%w: items[%d]: price %s does not match catalog price %s", ErrValidation, i, it.Price, prod.Price)
		}
		if err := offered(prod, it.Size, it.Color); err != nil {
			return nil, err
		}
		lines[i] = LineItem{
			ProductID:   prod.ID,
			ProductName: prod.Name,
			Quantity:    it.Quantity,
			Size:        it.Size,
			Color:       it.Color,
			Price:       prod.Price,
		}
		if it.Total != nil {
			lines[i].Total = *it.Total
		}
	}
	return lines, nil
}

func (s *OrderService) linesFromCart(ctx context.Context, userID uint) ([]LineItem, error) {
	cart, err := s.Repo.FindCart(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: cart is empty", ErrValidation)
	}
	if err != nil {
		return nil, err
	}
	items, err := s.Repo.ListCartItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", ErrValidation)
	}

	lines := make([]LineItem, 0, len(items))
	for _, it := range items {
		if it.Product == nil {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, it.ProductID)
		}
		lines = append(lines, LineItem{
			ProductID:   it.ProductID,
			ProductName: it.Product.Name,
			Quantity:    it.Quantity,
			Size:        it.Size,
			Color:       it.Color,
			Price:       it.Price,
			Total:       it.LineTotal(),
		})
	}
	return lines, nil
}

func (s *OrderService) ListOrders(ctx context.Context, p tokens.Principal) ([]models.Order, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	return s.Repo.ListOrdersByUser(ctx, p.UserID)
}

// GetOrder returns the order if the caller owns it. Admins may read any order.
func (s *OrderService) GetOrder(ctx context.Context, p tokens.Principal, id uint) (*models.Order, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
		}
		return nil, err
	}
	if order.UserID != p.UserID && !p.IsAdmin() {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
	}
	return order, nil
}

func (s *OrderService) ListAllOrders(ctx context.Context, p tokens.Principal, limit, offset int) (int64, []models.Order, error) {
	if !p.IsAdmin() {
		return 0, nil, ErrForbidden
	}
	return s.Repo.ListAllOrders(ctx, limit, offset)
}

// SetStatus moves an order along its lifecycle. Only admins may do it.
func (s *OrderService) SetStatus(ctx context.Context, p tokens.Principal, id uint, status models.OrderStatus) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.set_status", "order_id", id)
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	current, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
		}
		return nil, err
	}
	if !models.CanTransition(current.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, status)
	}

	order, err := s.Repo.UpdateOrderStatus(ctx, id, current.Status, status)
	if err != nil {
		if errors.Is(err, repo.ErrStatusChanged) {
			l.Warn("set_status_error", "reason", "concurrent update", "from", current.Status, "to", status)
			return nil, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return nil, err
	}

	publish(ctx, s.Events, mykafka.TopicOrderEvents, idKey(order.UserID), OrderEvent{
		Type:        "order_status_changed",
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Status:      order.Status,
		From:        current.Status,
		Total:       order.Total,
		At:          order.UpdatedAt,
	})
	l.Info("order_status_changed", "from", current.Status, "to", order.Status)
	return order, nil
}
