package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// ProductRepository — PostgreSQL-реализация каталога.
type ProductRepository struct {
	db  *sql.DB
	ids domain.IdentityScheme
}

// NewProductRepository создаёт PostgreSQL-реализацию ProductRepository.
func NewProductRepository(store *Store) *ProductRepository {
	return &ProductRepository{db: store.DB(), ids: domain.UUIDScheme{}}
}

// Create сохраняет товар и его размеры в одной транзакции.
func (r *ProductRepository) Create(ctx context.Context, product domain.Product) (id string, err error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	product.ID = r.ids.NewID()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
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
		INSERT INTO products (id, name, price, created_at)
		VALUES ($1,$2,$3,$4)
	`, product.ID, product.Name, product.Price, product.CreatedAt); err != nil {
		return "", fmt.Errorf("insert product: %w", err)
	}

	for i, size := range product.Sizes {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO product_sizes (product_id, position, size, quantity)
			VALUES ($1,$2,$3,$4)
		`, product.ID, i, size.Size, size.Quantity); err != nil {
			return "", fmt.Errorf("insert product size: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("commit create product: %w", err)
	}
	return product.ID, nil
}

// List возвращает проекции товаров. Имя ищется как подстрока без учёта регистра,
// размер сравнивается точно.
func (r *ProductRepository) List(ctx context.Context, filter domain.ProductFilter, offset, limit int) ([]domain.ProductSummary, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.price
		FROM products p
		WHERE ($1::text = '' OR p.name ILIKE '%' || $2::text || '%')
		  AND ($3::text = '' OR EXISTS (
				SELECT 1 FROM product_sizes s
				WHERE s.product_id = p.id AND s.size = $3::text
		  ))
		ORDER BY p.created_at, p.id
		OFFSET $4
		LIMIT $5
	`, filter.Name, escapeLike(filter.Name), filter.Size, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	result := make([]domain.ProductSummary, 0, limit)
	for rows.Next() {
		var p domain.ProductSummary
		if err := rows.Scan(&p.ID, &p.Name, &p.Price); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return result, nil
}

// CountExisting считает существующие товары среди переданных идентификаторов.
func (r *ProductRepository) CountExisting(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var count int
	if err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM products WHERE id = ANY($1::uuid[])
	`, ids).Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike экранирует метасимволы LIKE, чтобы пользовательский ввод искался буквально.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var _ domain.ProductRepository = (*ProductRepository)(nil)
