package sessionRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"meetpoint/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no session matches the given ID.
	ErrNotFound = errors.New("session not found")
	// ErrSlotConflict is returned when a concurrent booking already
	// occupies the requested window.
	ErrSlotConflict = errors.New("slot already occupied")
	// ErrPairConflict is returned when the requester already holds an
	// active session with this provider over the requested window.
	ErrPairConflict = errors.New("overlapping session for this pair")
)

// MongoSessionRepo implements Repository on MongoDB.
type MongoSessionRepo struct {
	coll *mongo.Collection
}

// NewMongoSessionRepo constructs the repository over the sessions
// collection.
func NewMongoSessionRepo(db *mongo.Database) *MongoSessionRepo {
	return &MongoSessionRepo{coll: db.Collection("sessions")}
}

func (repo *MongoSessionRepo) GetByID(ctx context.Context, id string) (*models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var session models.Session
	err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&session)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session %s: %w", id, err)
	}
	return &session, nil
}

func (repo *MongoSessionRepo) ListByProviderAndDate(ctx context.Context, providerID, date string, statuses []string) ([]models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"providerId": providerID,
		"date":       date,
		"status":     bson.M{"$in": statuses},
	}
	return repo.list(ctx, filter, nil)
}

func (repo *MongoSessionRepo) ListByPairAndDate(ctx context.Context, requesterID, providerID, date string, statuses []string) ([]models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"requesterId": requesterID,
		"providerId":  providerID,
		"date":        date,
		"status":      bson.M{"$in": statuses},
	}
	return repo.list(ctx, filter, nil)
}

// ConditionalTransition performs the atomic guard-and-set update that keeps
// transitions race-free: the status predicate and the write happen in a
// single document update, so two concurrent actors can never both win.
func (repo *MongoSessionRepo) ConditionalTransition(ctx context.Context, id string, from []string, to string, set map[string]interface{}) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	updates := bson.M{"status": to}
	for k, v := range set {
		updates[k] = v
	}
	res, err := repo.coll.UpdateOne(ctx,
		bson.M{"id": id, "status": bson.M{"$in": from}},
		bson.M{"$set": updates},
	)
	if err != nil {
		return false, fmt.Errorf("failed to transition session %s to %s: %w", id, to, err)
	}
	return res.MatchedCount > 0, nil
}

func (repo *MongoSessionRepo) ListDuePending(ctx context.Context, now time.Time) ([]models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"status":  models.SessionPending,
		"startAt": bson.M{"$lte": now},
	}
	return repo.list(ctx, filter, nil)
}

func (repo *MongoSessionRepo) ListByParty(ctx context.Context, partyID, status string, page, perPage int) ([]models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"$or": bson.A{
			bson.M{"requesterId": partyID},
			bson.M{"providerId": partyID},
		},
	}
	if status != "" {
		filter["status"] = status
	}
	if page < 1 {
		page = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "startAt", Value: -1}}).
		SetSkip(int64((page - 1) * perPage)).
		SetLimit(int64(perPage))
	return repo.list(ctx, filter, opts)
}

func (repo *MongoSessionRepo) ListUpcomingForParty(ctx context.Context, partyID string, from, to time.Time) ([]models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"$or": bson.A{
			bson.M{"requesterId": partyID},
			bson.M{"providerId": partyID},
		},
		"status":  bson.M{"$in": bson.A{models.SessionPending, models.SessionConfirmed}},
		"startAt": bson.M{"$gte": from, "$lte": to},
	}
	opts := options.Find().SetSort(bson.D{{Key: "startAt", Value: 1}})
	return repo.list(ctx, filter, opts)
}

func (repo *MongoSessionRepo) list(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Session, error) {
	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = repo.coll.Find(ctx, filter, opts)
	} else {
		cursor, err = repo.coll.Find(ctx, filter)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []models.Session
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("error decoding sessions: %w", err)
	}
	return sessions, nil
}
