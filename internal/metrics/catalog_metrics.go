package metrics

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Причины отказа в создании заказа.
const (
	RejectReasonValidation  = "validation"
	RejectReasonReferential = "referential"
	RejectReasonInternal    = "internal"
)

// Операции чтения, для которых снимается длительность.
const (
	OperationListOrders   = "list_orders"
	OperationListProducts = "list_products"
)

// CatalogMetrics содержит метрики каталога, заказов и HTTP-слоя.
// Нулевой указатель допустим: все Record* превращаются в no-op.
type CatalogMetrics struct {
	productsCreated prometheus.Counter
	ordersCreated   prometheus.Counter
	orderRejections *prometheus.CounterVec

	listDuration   *prometheus.HistogramVec
	ordersReturned prometheus.Histogram

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewCatalogMetrics регистрирует метрики в DefaultRegisterer.
func NewCatalogMetrics() *CatalogMetrics {
	return NewCatalogMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewCatalogMetricsWithRegisterer регистрирует метрики в переданном реестре.
// Повторная регистрация возвращает уже существующие коллекторы.
func NewCatalogMetricsWithRegisterer(registerer prometheus.Registerer) *CatalogMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &CatalogMetrics{
		productsCreated: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_products_created_total",
			Help: "Total number of products created",
		})),
		ordersCreated: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_orders_created_total",
			Help: "Total number of orders created",
		})),
		orderRejections: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_order_rejections_total",
			Help: "Total number of rejected order submissions by reason",
		}, []string{"reason"})),
		listDuration: register(registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storefront_list_duration_seconds",
			Help:    "Duration of listing operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}, []string{"operation"})),
		ordersReturned: register(registerer, prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "storefront_orders_page_size",
			Help:    "Number of aggregated orders returned per page",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		})),
		httpRequests: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		}, []string{"method", "route", "status"})),
		httpDuration: register(registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"})),
	}
}

func register[C prometheus.Collector](registerer prometheus.Registerer, collector C) C {
	if err := registerer.Register(collector); err != nil {
		var alreadyRegistered prometheus.AlreadyRegisteredError
		if errors.As(err, &alreadyRegistered) {
			existing, ok := alreadyRegistered.ExistingCollector.(C)
			if !ok {
				panic(fmt.Sprintf("collector %T already registered with unexpected type", collector))
			}
			return existing
		}
		panic(fmt.Sprintf("register collector %T: %v", collector, err))
	}
	return collector
}

// RecordProductCreated увеличивает счётчик созданных товаров.
func (m *CatalogMetrics) RecordProductCreated() {
	if m == nil {
		return
	}
	m.productsCreated.Inc()
}

// RecordOrderCreated увеличивает счётчик созданных заказов.
func (m *CatalogMetrics) RecordOrderCreated() {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
}

// RecordOrderRejected учитывает отказ по причине reason.
func (m *CatalogMetrics) RecordOrderRejected(reason string) {
	if m == nil {
		return
	}
	m.orderRejections.WithLabelValues(reason).Inc()
}

// ObserveList записывает длительность операции чтения.
func (m *CatalogMetrics) ObserveList(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.listDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveOrdersReturned записывает размер возвращённой страницы заказов.
func (m *CatalogMetrics) ObserveOrdersReturned(n int) {
	if m == nil {
		return
	}
	m.ordersReturned.Observe(float64(n))
}

// ObserveHTTPRequest учитывает завершённый HTTP-запрос.
func (m *CatalogMetrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
