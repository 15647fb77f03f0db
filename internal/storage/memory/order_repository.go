package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/aggregation"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// OrderRepository — in-memory хранилище заказов. Листинг выполняет
// конвейер агрегации поверх каталога products.
type OrderRepository struct {
	mu       sync.RWMutex
	ids      domain.IdentityScheme
	orders   []domain.Order
	products *ProductRepository
}

// NewOrderRepository возвращает in-memory репозиторий, связанный с каталогом.
func NewOrderRepository(products *ProductRepository) *OrderRepository {
	return &OrderRepository{
		ids:      domain.UUIDScheme{},
		products: products,
	}
}

// Create сохраняет копию заказа целиком.
func (r *OrderRepository) Create(_ context.Context, order domain.Order) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order.ID = r.ids.NewID()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	// Сохраняем копию, чтобы избежать непредсказуемых мутаций извне.
	order.Items = append([]domain.OrderItem(nil), order.Items...)
	r.orders = append(r.orders, order)
	return order.ID, nil
}

// ListViewsByUser возвращает агрегированные заказы пользователя.
func (r *OrderRepository) ListViewsByUser(_ context.Context, userID string, offset, limit int) ([]domain.OrderView, error) {
	r.mu.RLock()
	owned := make([]domain.Order, 0)
	for _, order := range r.orders {
		if order.UserID == userID {
			owned = append(owned, order)
		}
	}
	r.mu.RUnlock()

	return aggregation.Run(owned, r.products.Lookup, offset, limit), nil
}

var _ domain.OrderRepository = (*OrderRepository)(nil)
