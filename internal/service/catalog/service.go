// Package catalog реализует создание и поиск товаров.
package catalog

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
	"github.com/vladislavdragonenkov/storefront/internal/service/outbox"
)

// Service — сценарии работы с каталогом.
type Service struct {
	products domain.ProductRepository
	outbox   domain.OutboxRepository
	metrics  *metrics.CatalogMetrics
	logger   *log.Entry
	now      func() time.Time
}

// Option настраивает Service.
type Option func(*Service)

// WithOutbox включает публикацию события product.created.
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

// NewService конструирует сервис каталога.
func NewService(products domain.ProductRepository, opts ...Option) *Service {
	s := &Service{
		products: products,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.WithField("component", "catalog-service")
	}
	return s
}

// CreateProduct проверяет товар и сохраняет его.
func (s *Service) CreateProduct(ctx context.Context, product domain.Product) (string, error) {
	if err := product.Validate(); err != nil {
		return "", err
	}

	product.CreatedAt = s.now()
	id, err := s.products.Create(ctx, product)
	if err != nil {
		s.logger.WithError(err).Error("create product failed")
		return "", fmt.Errorf("%w: create product: %w", domain.ErrInternal, err)
	}

	s.metrics.RecordProductCreated()
	s.enqueueCreated(ctx, id, product)
	s.logger.WithFields(log.Fields{
		"product_id": id,
		"sizes":      len(product.Sizes),
	}).Info("product created")

	return id, nil
}

// ListProducts возвращает проекции товаров по фильтрам name и size.
func (s *Service) ListProducts(ctx context.Context, name, size string, limit, offset int) ([]domain.ProductSummary, error) {
	filter, err := domain.NewProductFilter(name, size)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateProductWindow(limit, offset); err != nil {
		return nil, err
	}

	started := time.Now()
	products, err := s.products.List(ctx, filter, offset, limit)
	s.metrics.ObserveList(metrics.OperationListProducts, time.Since(started))
	if err != nil {
		s.logger.WithError(err).Error("list products failed")
		return nil, fmt.Errorf("%w: list products: %w", domain.ErrInternal, err)
	}
	if products == nil {
		products = []domain.ProductSummary{}
	}
	return products, nil
}

func (s *Service) enqueueCreated(ctx context.Context, id string, product domain.Product) {
	if s.outbox == nil {
		return
	}

	msg, err := outbox.NewMessage(domain.AggregateTypeProduct, id, domain.EventTypeProductCreated, domain.ProductCreatedEvent{
		ProductID:  id,
		Name:       product.Name,
		Price:      product.Price,
		OccurredAt: product.CreatedAt,
	})
	if err == nil {
		_, err = s.outbox.Enqueue(ctx, msg)
	}
	if err != nil {
		s.logger.WithError(err).WithField("product_id", id).Warn("failed to enqueue product.created event")
	}
}
