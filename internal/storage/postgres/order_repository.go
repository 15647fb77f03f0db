package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/aggregation"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// listViewsQuery отбирает страницу заказов, у которых осталась хотя бы одна
// позиция с существующим товаром, и возвращает уцелевшие позиции этих заказов.
const listViewsQuery = `
	WITH page AS (
		SELECT o.id
		FROM orders o
		WHERE o.user_id = $1
		  AND EXISTS (
				SELECT 1
				FROM order_items oi
				JOIN products p ON p.id = oi.product_id
				WHERE oi.order_id = o.id
		  )
		ORDER BY o.id
		OFFSET $2
		LIMIT $3
	)
	SELECT page.id, p.id, p.name, p.price, oi.qty
	FROM page
	JOIN order_items oi ON oi.order_id = page.id
	JOIN products p ON p.id = oi.product_id
	ORDER BY page.id, oi.position
`

// OrderRepository — PostgreSQL-реализация OrderRepository.
type OrderRepository struct {
	db  *sql.DB
	ids domain.IdentityScheme
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) *OrderRepository {
	return &OrderRepository{db: store.DB(), ids: domain.UUIDScheme{}}
}

// Create сохраняет заказ и позиции в одной транзакции.
func (r *OrderRepository) Create(ctx context.Context, order domain.Order) (id string, err error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	order.ID = r.ids.NewID()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, created_at)
		VALUES ($1,$2,$3)
	`, order.ID, order.UserID, order.CreatedAt); err != nil {
		return "", fmt.Errorf("insert order: %w", err)
	}

	for i, item := range order.Items {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, position, product_id, qty)
			VALUES ($1,$2,$3,$4)
		`, order.ID, i, item.ProductID, item.Qty); err != nil {
			return "", fmt.Errorf("insert order item: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("commit create order: %w", err)
	}
	return order.ID, nil
}

// ListViewsByUser выполняет фильтрацию, join, сортировку и пагинацию в SQL;
// группировка и подсчёт Total выполняются в порядке позиций.
func (r *OrderRepository) ListViewsByUser(ctx context.Context, userID string, offset, limit int) ([]domain.OrderView, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, listViewsQuery, userID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list order views: %w", err)
	}
	defer rows.Close()

	joined := make([]aggregation.JoinedRow, 0)
	for rows.Next() {
		var row aggregation.JoinedRow
		if err := rows.Scan(&row.OrderID, &row.Product.ID, &row.Product.Name, &row.Product.Price, &row.Qty); err != nil {
			return nil, fmt.Errorf("scan order view row: %w", err)
		}
		joined = append(joined, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order view rows: %w", err)
	}

	views := aggregation.Group(joined)
	aggregation.SortByID(views)
	return views, nil
}

var _ domain.OrderRepository = (*OrderRepository)(nil)
