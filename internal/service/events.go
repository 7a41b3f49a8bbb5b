package service

import (
	"context"
	"strconv"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/mykafka"
)

const publishTimeout = 5 * time.Second

type OrderEvent struct {
	Type        string             `json:"type"`
	OrderID     uint               `json:"orderId"`
	OrderNumber string             `json:"orderNumber"`
	UserID      uint               `json:"userId"`
	Status      models.OrderStatus `json:"status"`
	From        models.OrderStatus `json:"from,omitempty"`
	Total       models.Money       `json:"total"`
	At          time.Time          `json:"at"`
}

type CartEvent struct {
	Type      string `json:"type"`
	UserID    uint   `json:"userId"`
	ProductID uint   `json:"productId,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
}

type ProductEvent struct {
	Type      string        `json:"type"`
	ProductID uint          `json:"productId"`
	Name      string        `json:"name,omitempty"`
	Price     *models.Money `json:"price,omitempty"`
	Stock     int           `json:"stock"`
}

type UserEvent struct {
	Type   string `json:"type"`
	UserID uint   `json:"userId"`
	Role   string `json:"role,omitempty"`
}

// publish sends an event after the database work is done. Failures are logged
// and never reach the caller.
func publish(ctx context.Context, p mykafka.Publisher, topic, key string, event any) {
	if p == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.PublishEvent(pctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("publish_event_error", "topic", topic, "key", key, "error", err)
	}
}

func idKey(id uint) string { return strconv.FormatUint(uint64(id), 10) }
