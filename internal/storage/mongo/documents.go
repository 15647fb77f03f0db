package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

type sizeDocument struct {
	Size     string `bson:"size"`
	Quantity int    `bson:"quantity"`
}

type productDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Price     float64            `bson:"price"`
	Sizes     []sizeDocument     `bson:"sizes,omitempty"`
	CreatedAt time.Time          `bson:"createdAt,omitempty"`
}

type orderItemDocument struct {
	ProductID primitive.ObjectID `bson:"productId"`
	Qty       int                `bson:"qty"`
}

type orderDocument struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty"`
	UserID    string              `bson:"userId"`
	Items     []orderItemDocument `bson:"items"`
	CreatedAt time.Time           `bson:"createdAt"`
}

// orderViewDocument — результат aggregation pipeline для одного заказа.
type orderViewDocument struct {
	ID    primitive.ObjectID `bson:"_id"`
	Total float64            `bson:"total"`
	Items []struct {
		ProductDetails struct {
			ID   primitive.ObjectID `bson:"id"`
			Name string             `bson:"name"`
		} `bson:"productDetails"`
		Qty int `bson:"qty"`
	} `bson:"items"`
}

func newProductDocument(p domain.Product) productDocument {
	doc := productDocument{
		Name:      p.Name,
		Price:     p.Price,
		Sizes:     make([]sizeDocument, 0, len(p.Sizes)),
		CreatedAt: p.CreatedAt,
	}
	for _, s := range p.Sizes {
		doc.Sizes = append(doc.Sizes, sizeDocument{Size: s.Size, Quantity: s.Quantity})
	}
	return doc
}

func (d productDocument) summary() domain.ProductSummary {
	return domain.ProductSummary{ID: d.ID.Hex(), Name: d.Name, Price: d.Price}
}

func (d orderViewDocument) view() domain.OrderView {
	view := domain.OrderView{
		ID:    d.ID.Hex(),
		Total: d.Total,
		Items: make([]domain.OrderViewItem, 0, len(d.Items)),
	}
	for _, item := range d.Items {
		view.Items = append(view.Items, domain.OrderViewItem{
			ProductDetails: domain.ProductDetails{
				ID:   item.ProductDetails.ID.Hex(),
				Name: item.ProductDetails.Name,
			},
			Qty: item.Qty,
		})
	}
	return view
}
