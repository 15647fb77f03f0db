package domain

import "github.com/google/uuid"

// IdentityScheme описывает формат идентификаторов конкретного хранилища.
// Ссылки на товары в заказе проверяются именно по этой схеме.
type IdentityScheme interface {
	// NewID выдаёт новый идентификатор документа.
	NewID() string
	// Canonical приводит идентификатор к каноническому виду; false, если формат неверный.
	Canonical(id string) (string, bool)
}

// UUIDScheme использует UUIDv7: строки сортируются в порядке создания,
// как ObjectID в документном хранилище.
type UUIDScheme struct{}

// NewID возвращает новый UUIDv7.
func (UUIDScheme) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Canonical разбирает UUID и возвращает его в нижнем регистре.
func (UUIDScheme) Canonical(id string) (string, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

var _ IdentityScheme = UUIDScheme{}
