package availabilityRepo

import (
	"context"
	"fmt"
	"time"

	"meetpoint/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrRuleNotFound is returned when a rule does not exist or is not owned
// by the calling provider.
var ErrRuleNotFound = fmt.Errorf("availability rule not found")

// MongoAvailabilityRepo implements Repository on MongoDB.
type MongoAvailabilityRepo struct {
	coll *mongo.Collection
}

// NewMongoAvailabilityRepo constructs the repository over the
// availability_rules collection.
func NewMongoAvailabilityRepo(db *mongo.Database) *MongoAvailabilityRepo {
	return &MongoAvailabilityRepo{coll: db.Collection("availability_rules")}
}

func (repo *MongoAvailabilityRepo) CreateRule(ctx context.Context, rule *models.AvailabilityRule) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now().UTC()
	}
	if _, err := repo.coll.InsertOne(ctx, rule); err != nil {
		return fmt.Errorf("failed to insert availability rule: %w", err)
	}
	return nil
}

func (repo *MongoAvailabilityRepo) GetRulesByProvider(ctx context.Context, providerID string) ([]models.AvailabilityRule, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := repo.coll.Find(ctx, bson.M{"providerId": providerID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch availability rules: %w", err)
	}
	defer cursor.Close(ctx)

	var rules []models.AvailabilityRule
	if err := cursor.All(ctx, &rules); err != nil {
		return nil, fmt.Errorf("error decoding availability rules: %w", err)
	}
	return rules, nil
}

func (repo *MongoAvailabilityRepo) GetActiveRulesForDate(ctx context.Context, providerID, date string, weekday int) ([]models.AvailabilityRule, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"providerId": providerID,
		"active":     true,
		"$or": bson.A{
			bson.M{"weekday": weekday},
			bson.M{
				"weekday":   bson.M{"$exists": false},
				"dateStart": bson.M{"$lte": date},
				"dateEnd":   bson.M{"$gte": date},
			},
		},
	}

	cursor, err := repo.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rules for date %s: %w", date, err)
	}
	defer cursor.Close(ctx)

	var rules []models.AvailabilityRule
	if err := cursor.All(ctx, &rules); err != nil {
		return nil, fmt.Errorf("error decoding rules for date %s: %w", date, err)
	}
	return rules, nil
}

func (repo *MongoAvailabilityRepo) SetRuleActive(ctx context.Context, ruleID, providerID string, active bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := repo.coll.UpdateOne(ctx,
		bson.M{"id": ruleID, "providerId": providerID},
		bson.M{"$set": bson.M{"active": active}},
	)
	if err != nil {
		return fmt.Errorf("failed to update rule active flag: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrRuleNotFound
	}
	return nil
}
