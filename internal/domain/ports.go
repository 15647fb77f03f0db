package domain

import (
	"context"
	"time"
)

// ProductRepository описывает доступ к коллекции товаров.
type ProductRepository interface {
	// Create сохраняет товар и возвращает присвоенный хранилищем идентификатор.
	Create(ctx context.Context, product Product) (string, error)
	// List возвращает проекции товаров по фильтру в порядке вставки.
	List(ctx context.Context, filter ProductFilter, offset, limit int) ([]ProductSummary, error)
	// CountExisting возвращает, сколько из переданных (уникальных) идентификаторов существует.
	CountExisting(ctx context.Context, ids []string) (int, error)
}

// OrderRepository описывает доступ к коллекции заказов.
type OrderRepository interface {
	// Create сохраняет заказ целиком и возвращает присвоенный идентификатор.
	Create(ctx context.Context, order Order) (string, error)
	// ListViewsByUser выполняет агрегацию заказов пользователя:
	// flatten -> inner join с каталогом -> группировка -> сортировка по id -> skip/limit.
	ListViewsByUser(ctx context.Context, userID string, offset, limit int) ([]OrderView, error)
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(ctx context.Context, event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(ctx context.Context, msg OutboxMessage) (OutboxMessage, error)
	PullPending(ctx context.Context, limit int) ([]OutboxMessage, error)
	Stats(ctx context.Context) (OutboxStats, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
