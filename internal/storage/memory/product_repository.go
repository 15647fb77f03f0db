package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// ProductRepository — in-memory каталог. Порядок вставки сохраняется для листинга.
type ProductRepository struct {
	mu    sync.RWMutex
	ids   domain.IdentityScheme
	order []string
	items map[string]domain.Product
}

// NewProductRepository возвращает in-memory каталог с UUID-идентификаторами.
func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		ids:   domain.UUIDScheme{},
		items: make(map[string]domain.Product),
	}
}

// Create сохраняет копию товара и присваивает ему идентификатор.
func (r *ProductRepository) Create(_ context.Context, product domain.Product) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product.ID = r.ids.NewID()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	product.Sizes = append([]domain.SizeQuantity(nil), product.Sizes...)

	r.items[product.ID] = product
	r.order = append(r.order, product.ID)
	return product.ID, nil
}

// List возвращает проекции товаров, подходящих под фильтр.
func (r *ProductRepository) List(_ context.Context, filter domain.ProductFilter, offset, limit int) ([]domain.ProductSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.ProductSummary, 0)
	skipped := 0
	for _, id := range r.order {
		product := r.items[id]
		if !filter.Matches(product) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if limit > 0 && len(result) >= limit {
			break
		}
		result = append(result, product.Summary())
	}
	return result, nil
}

// CountExisting считает, сколько идентификаторов из набора есть в каталоге.
func (r *ProductRepository) CountExisting(_ context.Context, ids []string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, id := range ids {
		if _, ok := r.items[id]; ok {
			count++
		}
	}
	return count, nil
}

// Lookup возвращает товар по идентификатору.
func (r *ProductRepository) Lookup(id string) (domain.Product, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.items[id]
	return product, ok
}

// Delete удаляет товар. Заказы со ссылкой на него становятся висячими.
func (r *ProductRepository) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return false
	}
	delete(r.items, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Ping всегда успешен: хранилище живёт в памяти процесса.
func (r *ProductRepository) Ping(context.Context) error { return nil }

var _ domain.ProductRepository = (*ProductRepository)(nil)
