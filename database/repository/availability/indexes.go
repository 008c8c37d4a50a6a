package availabilityRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// EnsureIndexes creates the lookup indexes used by rule queries.
func (repo *MongoAvailabilityRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "providerId", Value: 1}, {Key: "active", Value: 1}, {Key: "weekday", Value: 1}}},
		{Keys: bson.D{{Key: "providerId", Value: 1}, {Key: "active", Value: 1}, {Key: "dateStart", Value: 1}, {Key: "dateEnd", Value: 1}}},
		{Keys: bson.D{{Key: "id", Value: 1}}},
	}
	if _, err := repo.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create availability rule indexes: %w", err)
	}
	return nil
}
