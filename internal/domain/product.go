package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MaxNameFilterLen ограничивает длину строки поиска по названию.
	MaxNameFilterLen = 100
	// MaxSizeFilterLen ограничивает длину фильтра по размеру.
	MaxSizeFilterLen = 20
)

// SizeQuantity — доступный остаток товара в конкретном размере.
type SizeQuantity struct {
	Size     string
	Quantity int
}

// Product — позиция каталога. После создания не меняется.
type Product struct {
	ID        string
	Name      string
	Price     float64
	Sizes     []SizeQuantity
	CreatedAt time.Time
}

// ProductSummary — проекция товара для списка.
type ProductSummary struct {
	ID    string
	Name  string
	Price float64
}

// Validate проверяет инварианты товара и возвращает первую найденную ошибку.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrProductNameRequired
	}
	if !(p.Price > 0) {
		return ErrProductPriceInvalid
	}
	if len(p.Sizes) == 0 {
		return ErrSizesRequired
	}
	for _, s := range p.Sizes {
		if strings.TrimSpace(s.Size) == "" {
			return ErrSizeRequired
		}
		if s.Quantity < 0 {
			return ErrSizeQuantityNegative
		}
	}
	return nil
}

// Summary возвращает проекцию для списка товаров.
func (p Product) Summary() ProductSummary {
	return ProductSummary{ID: p.ID, Name: p.Name, Price: p.Price}
}

// HasSize сообщает, продаётся ли товар в указанном размере.
func (p Product) HasSize(size string) bool {
	for _, s := range p.Sizes {
		if s.Size == size {
			return true
		}
	}
	return false
}

// ProductFilter — фильтры списка товаров. Пустое поле означает «без фильтра».
type ProductFilter struct {
	// Name — подстрока названия без учёта регистра, спецсимволы трактуются буквально.
	Name string
	// Size — точное совпадение с одним из размеров товара.
	Size string
}

// NewProductFilter нормализует и проверяет фильтры списка товаров.
func NewProductFilter(name, size string) (ProductFilter, error) {
	name = strings.TrimSpace(name)
	size = strings.TrimSpace(size)
	if utf8.RuneCountInString(name) > MaxNameFilterLen {
		return ProductFilter{}, ErrNameFilterTooLong
	}
	if utf8.RuneCountInString(size) > MaxSizeFilterLen {
		return ProductFilter{}, ErrSizeFilterTooLong
	}
	return ProductFilter{Name: name, Size: size}, nil
}

// Matches применяет фильтр к товару (используется in-memory хранилищем).
func (f ProductFilter) Matches(p Product) bool {
	if f.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Name)) {
		return false
	}
	if f.Size != "" && !p.HasSize(f.Size) {
		return false
	}
	return true
}
