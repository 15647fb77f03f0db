package mongo

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ordersForUserPipeline строит конвейер листинга заказов:
// $match -> $unwind items -> $lookup products -> $unwind (inner join)
// -> $group с суммой qty*price -> $sort по _id -> $skip -> $limit.
func ordersForUserPipeline(userID string, offset, limit int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "userId", Value: userID}}}},
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: productsCollection},
			{Key: "localField", Value: "items.productId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "productInfo"},
		}}},
		// Без preserveNullAndEmptyArrays позиции с висячими ссылками отбрасываются.
		{{Key: "$unwind", Value: "$productInfo"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$_id"},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: bson.D{
				{Key: "$multiply", Value: bson.A{"$items.qty", "$productInfo.price"}},
			}}}},
			{Key: "items", Value: bson.D{{Key: "$push", Value: bson.D{
				{Key: "productDetails", Value: bson.D{
					{Key: "id", Value: "$productInfo._id"},
					{Key: "name", Value: "$productInfo.name"},
				}},
				{Key: "qty", Value: "$items.qty"},
			}}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		{{Key: "$skip", Value: int64(offset)}},
		{{Key: "$limit", Value: int64(limit)}},
	}
}
