package mongo

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// ObjectIDScheme — идентификаторы MongoDB: 24 шестнадцатеричных символа.
type ObjectIDScheme struct{}

// NewID возвращает новый ObjectID в hex-виде.
func (ObjectIDScheme) NewID() string {
	return primitive.NewObjectID().Hex()
}

// Canonical разбирает hex-строку ObjectID.
func (ObjectIDScheme) Canonical(id string) (string, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return "", false
	}
	return oid.Hex(), true
}

var _ domain.IdentityScheme = ObjectIDScheme{}

// objectIDs разбирает набор hex-идентификаторов, пропуская некорректные.
func objectIDs(ids []string) []primitive.ObjectID {
	result := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		result = append(result, oid)
	}
	return result
}
