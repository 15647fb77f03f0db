package domain

import "time"

// Типы агрегатов и событий, которые попадают в outbox.
const (
	AggregateTypeProduct = "product"
	AggregateTypeOrder   = "order"

	EventTypeProductCreated = "product.created"
	EventTypeOrderCreated   = "order.created"
)

// ProductCreatedEvent — payload события создания товара.
type ProductCreatedEvent struct {
	ProductID  string    `json:"product_id"`
	Name       string    `json:"name"`
	Price      float64   `json:"price"`
	OccurredAt time.Time `json:"occurred_at"`
}

// OrderCreatedItem — позиция в payload события создания заказа.
type OrderCreatedItem struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

// OrderCreatedEvent — payload события создания заказа.
type OrderCreatedEvent struct {
	OrderID    string             `json:"order_id"`
	UserID     string             `json:"user_id"`
	Items      []OrderCreatedItem `json:"items"`
	OccurredAt time.Time          `json:"occurred_at"`
}
