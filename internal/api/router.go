package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/metrics"
)

// Config собирает зависимости HTTP-слоя.
type Config struct {
	Catalog CatalogService
	Orders  OrderService
	Metrics *metrics.CatalogMetrics
	Logger  *log.Entry
}

// NewRouter строит chi-роутер публичного API.
func NewRouter(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.WithField("component", "http")
	}

	h := &handlers{
		catalog:  cfg.Catalog,
		orders:   cfg.Orders,
		validate: newValidator(),
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(logger, cfg.Metrics))
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Detail: "Not Found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Detail: "Method Not Allowed"})
	})

	r.Get("/", h.welcome)
	r.Post("/products", h.createProduct)
	r.Get("/products", h.listProducts)
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{user_id}", h.listOrders)

	return r
}

// accessLog пишет строку лога и HTTP-метрики на каждый запрос.
// Метка route — шаблон chi, а не сырой путь.
func accessLog(logger *log.Entry, m *metrics.CatalogMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				route := "unmatched"
				if rctx := chi.RouteContext(r.Context()); rctx != nil {
					if pattern := rctx.RoutePattern(); pattern != "" {
						route = pattern
					}
				}
				elapsed := time.Since(started)
				m.ObserveHTTPRequest(r.Method, route, status, elapsed)

				entry := logger.WithFields(log.Fields{
					"method":      r.Method,
					"route":       route,
					"status":      status,
					"duration_ms": elapsed.Milliseconds(),
					"request_id":  middleware.GetReqID(r.Context()),
				})
				if status >= http.StatusInternalServerError {
					entry.Warn("http request")
					return
				}
				entry.Debug("http request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
