package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// OrderRepository — заказы в коллекции orders.
type OrderRepository struct {
	coll *mongo.Collection
}

// NewOrderRepository создаёт MongoDB-реализацию OrderRepository.
func NewOrderRepository(store *Store) *OrderRepository {
	return &OrderRepository{coll: store.Database().Collection(ordersCollection)}
}

// Create вставляет заказ одним документом.
func (r *OrderRepository) Create(ctx context.Context, order domain.Order) (string, error) {
	doc := orderDocument{
		ID:        primitive.NewObjectID(),
		UserID:    order.UserID,
		Items:     make([]orderItemDocument, 0, len(order.Items)),
		CreatedAt: order.CreatedAt,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	for _, item := range order.Items {
		oid, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			return "", fmt.Errorf("%w: %s", domain.ErrProductIDInvalid, item.ProductID)
		}
		doc.Items = append(doc.Items, orderItemDocument{ProductID: oid, Qty: item.Qty})
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("insert order: %w", err)
	}
	return doc.ID.Hex(), nil
}

// ListViewsByUser выполняет aggregation pipeline на сервере.
func (r *OrderRepository) ListViewsByUser(ctx context.Context, userID string, offset, limit int) ([]domain.OrderView, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := r.coll.Aggregate(ctx, ordersForUserPipeline(userID, offset, limit))
	if err != nil {
		return nil, fmt.Errorf("aggregate orders: %w", err)
	}

	var docs []orderViewDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode order views: %w", err)
	}

	views := make([]domain.OrderView, 0, len(docs))
	for _, doc := range docs {
		views = append(views, doc.view())
	}
	return views, nil
}

var _ domain.OrderRepository = (*OrderRepository)(nil)
