package domain

import "errors"

// Категории ошибок. Конкретные ошибки ниже оборачивают одну из них,
// поэтому транспортный слой классифицирует их через errors.Is.
var (
	// ErrValidation — некорректный ввод клиента, повтор запроса не поможет.
	ErrValidation = errors.New("validation error")
	// ErrReferential — заказ ссылается на товар, которого нет в каталоге.
	ErrReferential = errors.New("referential error")
	// ErrInternal — хранилище недоступно или произошла непредвиденная ошибка.
	ErrInternal = errors.New("internal error")
)

var (
	// Ошибка пустого userId (после trim).
	ErrUserIDRequired = newRuleError(ErrValidation, "user id cannot be empty")
	// Ошибка слишком длинного userId.
	ErrUserIDTooLong = newRuleError(ErrValidation, "user id is too long")
	// Ошибка отсутствия хотя бы одного товара в заказе.
	ErrItemsRequired = newRuleError(ErrValidation, "order must contain at least one item")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = newRuleError(ErrValidation, "item quantity must be greater than 0")
	// Ошибка идентификатора товара, не подходящего под схему идентификаторов хранилища.
	ErrProductIDInvalid = newRuleError(ErrValidation, "invalid product id")
	// Ошибка пустого названия товара.
	ErrProductNameRequired = newRuleError(ErrValidation, "product name cannot be empty")
	// Ошибка неположительной цены.
	ErrProductPriceInvalid = newRuleError(ErrValidation, "price must be greater than 0")
	// Ошибка отсутствия размеров у товара.
	ErrSizesRequired = newRuleError(ErrValidation, "at least one size must be provided")
	// Ошибка пустого названия размера.
	ErrSizeRequired = newRuleError(ErrValidation, "size cannot be empty")
	// Ошибка отрицательного остатка по размеру.
	ErrSizeQuantityNegative = newRuleError(ErrValidation, "quantity cannot be negative")
	// Ошибка слишком длинной строки поиска по названию.
	ErrNameFilterTooLong = newRuleError(ErrValidation, "search term too long")
	// Ошибка слишком длинного фильтра по размеру.
	ErrSizeFilterTooLong = newRuleError(ErrValidation, "size parameter too long")
	// Ошибка limit вне допустимого диапазона.
	ErrLimitInvalid = newRuleError(ErrValidation, "limit must be between 1 and 100")
	// Ошибка limit каталога меньше 1.
	ErrProductLimitInvalid = newRuleError(ErrValidation, "limit must be greater than or equal to 1")
	// Ошибка отрицательного offset.
	ErrOffsetInvalid = newRuleError(ErrValidation, "offset must be greater than or equal to 0")

	// ErrProductsMissing возвращается, если хотя бы одного товара из заказа нет в каталоге.
	ErrProductsMissing = newRuleError(ErrReferential, "one or more products do not exist")

	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// ruleError хранит человекочитаемое сообщение и категорию ошибки.
type ruleError struct {
	kind error
	msg  string
}

func newRuleError(kind error, msg string) error {
	return &ruleError{kind: kind, msg: msg}
}

func (e *ruleError) Error() string { return e.msg }

func (e *ruleError) Unwrap() error { return e.kind }

// IsValidation проверяет, является ли ошибка ошибкой валидации.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsReferential проверяет, является ли ошибка нарушением ссылочной целостности.
func IsReferential(err error) bool {
	return errors.Is(err, ErrReferential)
}
