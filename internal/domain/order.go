package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxUserIDLen ограничивает длину идентификатора пользователя в запросах списка.
const MaxUserIDLen = 100

// OrderItem представляет одну позицию заказа.
type OrderItem struct {
	// ProductID — слабая ссылка на товар: проверяется один раз при создании заказа.
	ProductID string
	// Qty — количество единиц товара.
	Qty int
}

// Order — заказ пользователя. После создания не меняется.
type Order struct {
	ID        string
	UserID    string
	Items     []OrderItem
	CreatedAt time.Time
}

// ProductDetails — сведения о товаре внутри агрегированного заказа.
type ProductDetails struct {
	ID   string
	Name string
}

// OrderViewItem — позиция агрегированного заказа.
type OrderViewItem struct {
	ProductDetails ProductDetails
	Qty            int
}

// OrderView — заказ после join с каталогом. Вычисляется при каждом чтении и не хранится.
// Total считается по текущим ценам, поэтому не является исторической суммой.
type OrderView struct {
	ID    string
	Items []OrderViewItem
	Total float64
}

// OrderPage — страница агрегированных заказов с курсорами.
type OrderPage struct {
	Data []OrderView
	Page Page
}

// NormalizeUserID проверяет длину исходного значения, затем обрезает пробелы
// и проверяет, что идентификатор не пустой.
func NormalizeUserID(raw string) (string, error) {
	if utf8.RuneCountInString(raw) > MaxUserIDLen {
		return "", ErrUserIDTooLong
	}
	userID := strings.TrimSpace(raw)
	if userID == "" {
		return "", ErrUserIDRequired
	}
	return userID, nil
}

// Normalize проверяет заказ перед сохранением и приводит ссылки на товары
// к каноническому виду схемы идентификаторов. Возвращает первую найденную ошибку.
func (o *Order) Normalize(ids IdentityScheme) error {
	if len(o.Items) == 0 {
		return ErrItemsRequired
	}

	userID := strings.TrimSpace(o.UserID)
	if userID == "" {
		return ErrUserIDRequired
	}
	o.UserID = userID

	items := make([]OrderItem, len(o.Items))
	for i, item := range o.Items {
		if item.Qty <= 0 {
			return ErrItemQtyInvalid
		}
		productID, ok := ids.Canonical(item.ProductID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrProductIDInvalid, item.ProductID)
		}
		items[i] = OrderItem{ProductID: productID, Qty: item.Qty}
	}
	o.Items = items

	return nil
}

// DistinctProductIDs возвращает уникальные ссылки на товары в порядке первого появления.
func (o Order) DistinctProductIDs() []string {
	seen := make(map[string]struct{}, len(o.Items))
	ids := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}
