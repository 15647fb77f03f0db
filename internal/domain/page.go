package domain

import "strconv"

const (
	// DefaultPageLimit — размер страницы по умолчанию.
	DefaultPageLimit = 10
	// MaxPageLimit — максимальный размер страницы.
	MaxPageLimit = 100
)

// Page описывает окно пагинации и курсоры соседних страниц.
// Курсоры — десятичные строки; nil означает отсутствие курсора.
type Page struct {
	Next     *string
	Limit    int
	Offset   int
	Previous *string
}

// NewPage вычисляет курсоры по offset, limit и числу фактически возвращённых строк.
//
// Next выдаётся, если страница заполнена целиком: это эвристика, и при точном
// совпадении остатка с limit следующий запрос вернёт пустую страницу.
// Previous выдаётся при offset > 0 и равен offset-limit даже когда значение
// отрицательное (offset=5, limit=10 -> "-5").
func NewPage(offset, limit, returned int) Page {
	page := Page{Limit: limit, Offset: offset}
	if returned == limit {
		next := strconv.Itoa(offset + limit)
		page.Next = &next
	}
	if offset > 0 {
		prev := strconv.Itoa(offset - limit)
		page.Previous = &prev
	}
	return page
}

// ValidateWindow проверяет параметры пагинации списка заказов.
func ValidateWindow(limit, offset int) error {
	if limit < 1 || limit > MaxPageLimit {
		return ErrLimitInvalid
	}
	if offset < 0 {
		return ErrOffsetInvalid
	}
	return nil
}

// ValidateProductWindow проверяет параметры пагинации каталога: верхней границы limit нет.
func ValidateProductWindow(limit, offset int) error {
	if limit < 1 {
		return ErrProductLimitInvalid
	}
	if offset < 0 {
		return ErrOffsetInvalid
	}
	return nil
}
