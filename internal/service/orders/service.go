// Package orders реализует приём заказов и агрегированный листинг заказов пользователя.
package orders

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
	"github.com/vladislavdragonenkov/storefront/internal/service/outbox"
)

// Service — сценарии работы с заказами.
type Service struct {
	products domain.ProductRepository
	orders   domain.OrderRepository
	ids      domain.IdentityScheme
	outbox   domain.OutboxRepository
	metrics  *metrics.CatalogMetrics
	logger   *log.Entry
	now      func() time.Time
}

// Option настраивает Service.
type Option func(*Service)

// WithOutbox включает публикацию события order.created.
func WithOutbox(repo domain.OutboxRepository) Option {
	return func(s *Service) { s.outbox = repo }
}

// WithMetrics задаёт метрики сервиса.
func WithMetrics(m *metrics.CatalogMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger задаёт logger сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService конструирует сервис. ids должна совпадать со схемой идентификаторов
// хранилища товаров.
func NewService(products domain.ProductRepository, orders domain.OrderRepository, ids domain.IdentityScheme, opts ...Option) *Service {
	s := &Service{
		products: products,
		orders:   orders,
		ids:      ids,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.WithField("component", "order-service")
	}
	return s
}

// CreateOrder проверяет и сохраняет заказ. Проверки выполняются по порядку:
// непустые позиции, userId, количество, формат ссылок, существование товаров.
// При любой ошибке заказ не сохраняется.
func (s *Service) CreateOrder(ctx context.Context, userID string, items []domain.OrderItem) (string, error) {
	order := domain.Order{
		UserID: userID,
		Items:  append([]domain.OrderItem(nil), items...),
	}
	if err := order.Normalize(s.ids); err != nil {
		s.metrics.RecordOrderRejected(metrics.RejectReasonValidation)
		return "", err
	}

	distinct := order.DistinctProductIDs()
	found, err := s.products.CountExisting(ctx, distinct)
	if err != nil {
		s.metrics.RecordOrderRejected(metrics.RejectReasonInternal)
		return "", s.internal("count products", err)
	}
	if found != len(distinct) {
		s.metrics.RecordOrderRejected(metrics.RejectReasonReferential)
		s.logger.WithFields(log.Fields{
			"user_id":   order.UserID,
			"requested": len(distinct),
			"found":     found,
		}).Info("order rejected: unknown products")
		return "", domain.ErrProductsMissing
	}

	order.CreatedAt = s.now()
	id, err := s.orders.Create(ctx, order)
	if err != nil {
		s.metrics.RecordOrderRejected(metrics.RejectReasonInternal)
		return "", s.internal("create order", err)
	}
	order.ID = id

	s.metrics.RecordOrderCreated()
	s.enqueueCreated(ctx, order)
	s.logger.WithFields(log.Fields{
		"order_id": id,
		"user_id":  order.UserID,
		"items":    len(order.Items),
	}).Info("order created")

	return id, nil
}

// ListOrdersForUser возвращает страницу агрегированных заказов и курсоры соседних страниц.
func (s *Service) ListOrdersForUser(ctx context.Context, userID string, limit, offset int) (domain.OrderPage, error) {
	userID, err := domain.NormalizeUserID(userID)
	if err != nil {
		return domain.OrderPage{}, err
	}
	if err := domain.ValidateWindow(limit, offset); err != nil {
		return domain.OrderPage{}, err
	}

	started := time.Now()
	views, err := s.orders.ListViewsByUser(ctx, userID, offset, limit)
	s.metrics.ObserveList(metrics.OperationListOrders, time.Since(started))
	if err != nil {
		return domain.OrderPage{}, s.internal("list orders", err)
	}
	if views == nil {
		views = []domain.OrderView{}
	}
	s.metrics.ObserveOrdersReturned(len(views))

	return domain.OrderPage{
		Data: views,
		Page: domain.NewPage(offset, limit, len(views)),
	}, nil
}

func (s *Service) enqueueCreated(ctx context.Context, order domain.Order) {
	if s.outbox == nil {
		return
	}

	items := make([]domain.OrderCreatedItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, domain.OrderCreatedItem{ProductID: item.ProductID, Qty: item.Qty})
	}
	msg, err := outbox.NewMessage(domain.AggregateTypeOrder, order.ID, domain.EventTypeOrderCreated, domain.OrderCreatedEvent{
		OrderID:    order.ID,
		UserID:     order.UserID,
		Items:      items,
		OccurredAt: order.CreatedAt,
	})
	if err == nil {
		_, err = s.outbox.Enqueue(ctx, msg)
	}
	if err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to enqueue order.created event")
	}
}

// internal логирует причину и возвращает ошибку категории ErrInternal.
func (s *Service) internal(op string, err error) error {
	s.logger.WithError(err).Error(op + " failed")
	return fmt.Errorf("%w: %s: %w", domain.ErrInternal, op, err)
}
