package mongo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// ProductRepository — каталог в коллекции products.
type ProductRepository struct {
	coll *mongo.Collection
}

// NewProductRepository создаёт MongoDB-реализацию ProductRepository.
func NewProductRepository(store *Store) *ProductRepository {
	return &ProductRepository{coll: store.Database().Collection(productsCollection)}
}

// Create вставляет документ товара; идентификатор присваивает драйвер.
func (r *ProductRepository) Create(ctx context.Context, product domain.Product) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	doc := newProductDocument(product)
	doc.ID = primitive.NewObjectID()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("insert product: %w", err)
	}
	return doc.ID.Hex(), nil
}

// List возвращает проекции {_id, name, price}. Имя ищется как экранированное
// регулярное выражение без учёта регистра, размер сравнивается точно.
func (r *ProductRepository) List(ctx context.Context, filter domain.ProductFilter, offset, limit int) ([]domain.ProductSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	query := bson.D{}
	if filter.Name != "" {
		query = append(query, bson.E{Key: "name", Value: primitive.Regex{
			Pattern: regexp.QuoteMeta(filter.Name),
			Options: "i",
		}})
	}
	if filter.Size != "" {
		query = append(query, bson.E{Key: "sizes.size", Value: filter.Size})
	}

	opts := options.Find().
		SetProjection(bson.D{{Key: "_id", Value: 1}, {Key: "name", Value: 1}, {Key: "price", Value: 1}}).
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	result := make([]domain.ProductSummary, 0, len(docs))
	for _, doc := range docs {
		result = append(result, doc.summary())
	}
	return result, nil
}

// CountExisting считает документы с _id из набора.
func (r *ProductRepository) CountExisting(ctx context.Context, ids []string) (int, error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	count, err := r.coll.CountDocuments(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: oids}}}})
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return int(count), nil
}

var _ domain.ProductRepository = (*ProductRepository)(nil)
