package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// CatalogService — операции каталога, доступные HTTP-слою.
type CatalogService interface {
	CreateProduct(ctx context.Context, product domain.Product) (string, error)
	ListProducts(ctx context.Context, name, size string, limit, offset int) ([]domain.ProductSummary, error)
}

// OrderService — операции заказов, доступные HTTP-слою.
type OrderService interface {
	CreateOrder(ctx context.Context, userID string, items []domain.OrderItem) (string, error)
	ListOrdersForUser(ctx context.Context, userID string, limit, offset int) (domain.OrderPage, error)
}

const welcomeMessage = "Welcome to the E-commerce Application!"

type handlers struct {
	catalog  CatalogService
	orders   OrderService
	validate *validator.Validate
	logger   *log.Entry
}

func (h *handlers) welcome(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, welcomeResponse{Message: welcomeMessage})
}

func (h *handlers) createProduct(w http.ResponseWriter, r *http.Request) {
	const fallback = "Failed to create product"

	var req createProductRequest
	if err := decodeBody(w, r, h.validate, &req); err != nil {
		writeError(w, h.logger, err, fallback)
		return
	}

	id, err := h.catalog.CreateProduct(r.Context(), req.toDomain())
	if err != nil {
		writeError(w, h.logger, err, fallback)
		return
	}
	writeJSON(w, http.StatusCreated, createdResponse{ID: id})
}

func (h *handlers) listProducts(w http.ResponseWriter, r *http.Request) {
	const fallback = "Failed to retrieve products"

	query := r.URL.Query()
	limit, offset, err := parseWindow(query)
	if err != nil {
		writeError(w, h.logger, err, fallback)
		return
	}

	products, err := h.catalog.ListProducts(r.Context(), query.Get("name"), query.Get("size"), limit, offset)
	if err != nil {
		writeError(w, h.logger, err, fallback)
		return
	}
	page := domain.NewPage(offset, limit, len(products))
	writeJSON(w, http.StatusOK, toProductListResponse(products, page))
}

func (h *handlers) createOrder(w http.ResponseWriter, r *http.Request) {
	const fallback = "Failed to create order"

	var req createOrderRequest
	if err := decodeBody(w, r, h.validate, &req); err != nil {
		writeError(w, h.logger, err, fallback)
		return
	}

	id, err := h.orders.CreateOrder(r.Context(), *req.UserID, req.toDomain())
	if err != nil {
		writeError(w, h.logger, err, fallback)
		return
	}
	writeJSON(w, http.StatusCreated, createdResponse{ID: id})
}

func (h *handlers) listOrders(w http.ResponseWriter, r *http.Request) {
	const fallback = "Failed to retrieve orders"

	userID, err := userIDParam(r)
	if err != nil {
		writeError(w, h.logger, err, fallback)
		return
	}
	limit, offset, err := parseWindow(r.URL.Query())
	if err != nil {
		writeError(w, h.logger, err, fallback)
		return
	}

	page, err := h.orders.ListOrdersForUser(r.Context(), userID, limit, offset)
	if err != nil {
		writeError(w, h.logger, err, fallback)
		return
	}
	writeJSON(w, http.StatusOK, toOrderListResponse(page))
}

// userIDParam возвращает user_id из пути. chi матчит по RawPath, если он есть
// (например, в id закодирован "/"), и тогда значение нужно раскодировать;
// иначе r.URL.Path уже раскодирован и повторный unescape исказил бы "%".
func userIDParam(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "user_id")
	if r.URL.RawPath == "" {
		return raw, nil
	}
	userID, err := url.PathUnescape(raw)
	if err != nil {
		return "", newSchemaError("path.user_id", "invalid path escape", "value_error")
	}
	return userID, nil
}

// parseWindow читает limit и offset; нечисловое значение — ошибка схемы,
// проверка диапазона остаётся за сервисом.
func parseWindow(query url.Values) (limit, offset int, err error) {
	limit, err = intParam(query, "limit", domain.DefaultPageLimit)
	if err != nil {
		return 0, 0, err
	}
	offset, err = intParam(query, "offset", 0)
	if err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}

func intParam(query url.Values, name string, def int) (int, error) {
	raw := query.Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, newSchemaError("query."+name, "value is not a valid integer", "int_parsing")
	}
	return v, nil
}
