// Package aggregation реализует конвейер чтения заказов:
// flatten -> inner join с каталогом -> группировка -> сортировка по id -> skip/limit.
// Хранилища, которые не умеют выполнять его на своей стороне, используют этот пакет.
package aggregation

import (
	"sort"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// Row — одна позиция заказа после flatten.
type Row struct {
	OrderID string
	Item    domain.OrderItem
}

// JoinedRow — позиция, для которой нашёлся товар в каталоге.
type JoinedRow struct {
	OrderID string
	Qty     int
	Product domain.Product
}

// Flatten раскладывает заказы на позиции, сохраняя порядок заказов и позиций.
func Flatten(orders []domain.Order) []Row {
	rows := make([]Row, 0, len(orders))
	for _, order := range orders {
		for _, item := range order.Items {
			rows = append(rows, Row{OrderID: order.ID, Item: item})
		}
	}
	return rows
}

// ProductLookup находит товар по идентификатору.
type ProductLookup func(id string) (domain.Product, bool)

// Join выполняет inner join: позиции с висячими ссылками отбрасываются.
func Join(rows []Row, lookup ProductLookup) []JoinedRow {
	joined := make([]JoinedRow, 0, len(rows))
	for _, row := range rows {
		product, ok := lookup(row.Item.ProductID)
		if !ok {
			continue
		}
		joined = append(joined, JoinedRow{OrderID: row.OrderID, Qty: row.Item.Qty, Product: product})
	}
	return joined
}

// Group собирает позиции по заказу. Порядок позиций внутри заказа сохраняется,
// Total суммируется в том же порядке. Заказы без уцелевших позиций не появляются.
func Group(rows []JoinedRow) []domain.OrderView {
	index := make(map[string]int)
	views := make([]domain.OrderView, 0)
	for _, row := range rows {
		i, ok := index[row.OrderID]
		if !ok {
			i = len(views)
			index[row.OrderID] = i
			views = append(views, domain.OrderView{ID: row.OrderID})
		}
		views[i].Items = append(views[i].Items, domain.OrderViewItem{
			ProductDetails: domain.ProductDetails{ID: row.Product.ID, Name: row.Product.Name},
			Qty:            row.Qty,
		})
		views[i].Total += float64(row.Qty) * row.Product.Price
	}
	return views
}

// SortByID упорядочивает заказы по идентификатору по возрастанию.
func SortByID(views []domain.OrderView) {
	sort.SliceStable(views, func(i, j int) bool { return views[i].ID < views[j].ID })
}

// Paginate возвращает окно [offset, offset+limit).
func Paginate(views []domain.OrderView, offset, limit int) []domain.OrderView {
	if offset >= len(views) || limit <= 0 {
		return []domain.OrderView{}
	}
	end := offset + limit
	if end > len(views) {
		end = len(views)
	}
	return views[offset:end]
}

// Run выполняет весь конвейер над заказами одного пользователя.
func Run(orders []domain.Order, lookup ProductLookup, offset, limit int) []domain.OrderView {
	views := Group(Join(Flatten(orders), lookup))
	SortByID(views)
	return Paginate(views, offset, limit)
}
