package sessionRepo

import (
	"context"
	"fmt"
	"time"

	"meetpoint/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CreateTransactionally inserts a pending session with conflict detection
// that holds up under concurrency. The pre-checks inside the transaction
// reject conflicts already on disk, but snapshot isolation only detects
// write-write conflicts: two concurrent creates of the same window each
// see an empty snapshot and both commit. So after committing we re-read
// committed data, and whoever observes a colliding document deletes its
// own insert and reports the conflict. The unique active-pair index (see
// EnsureIndexes) additionally rejects exact duplicates at insert time.
func (repo *MongoSessionRepo) CreateTransactionally(ctx context.Context, session *models.Session) error {
	client := repo.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		// Occupied-slot check: any confirmed/in_progress/completed session
		// overlapping the window blocks the insert.
		occupied, err := repo.coll.CountDocuments(sc, repo.occupiedFilter(session, false))
		if err != nil {
			return fmt.Errorf("conflict check failed: %w", err)
		}
		if occupied > 0 {
			return ErrSlotConflict
		}

		// Duplicate-pair check: the same requester may not hold an
		// overlapping pending/confirmed/in_progress session with this
		// provider.
		dup, err := repo.coll.CountDocuments(sc, repo.pairFilter(session, false))
		if err != nil {
			return fmt.Errorf("duplicate check failed: %w", err)
		}
		if dup > 0 {
			return ErrPairConflict
		}

		if _, err := repo.coll.InsertOne(sc, session); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrPairConflict
			}
			return fmt.Errorf("insert session failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return err
	}

	return repo.recheckAfterInsert(ctx, session)
}

// recheckAfterInsert re-runs both conflict checks against committed data,
// excluding the session's own document. On a collision it removes the own
// document and returns the conflict; a concurrent racer doing the same is
// fine, the slot simply stays free and both callers can retry.
func (repo *MongoSessionRepo) recheckAfterInsert(ctx context.Context, session *models.Session) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	occupied, err := repo.coll.CountDocuments(ctx, repo.occupiedFilter(session, true))
	if err != nil {
		return fmt.Errorf("post-insert conflict check failed: %w", err)
	}
	if occupied > 0 {
		return repo.rollbackCreate(ctx, session.ID, ErrSlotConflict)
	}

	dup, err := repo.coll.CountDocuments(ctx, repo.pairFilter(session, true))
	if err != nil {
		return fmt.Errorf("post-insert duplicate check failed: %w", err)
	}
	if dup > 0 {
		return repo.rollbackCreate(ctx, session.ID, ErrPairConflict)
	}
	return nil
}

func (repo *MongoSessionRepo) rollbackCreate(ctx context.Context, sessionID string, cause error) error {
	if _, err := repo.coll.DeleteOne(ctx, bson.M{"id": sessionID}); err != nil {
		return fmt.Errorf("rollback of conflicting session %s failed: %w", sessionID, err)
	}
	return cause
}

func (repo *MongoSessionRepo) occupiedFilter(session *models.Session, excludeSelf bool) bson.M {
	filter := bson.M{
		"providerId": session.ProviderID,
		"date":       session.Date,
		"status":     bson.M{"$in": models.OccupyingStatuses},
		"start":      bson.M{"$lt": session.End},
		"end":        bson.M{"$gt": session.Start},
	}
	if excludeSelf {
		filter["id"] = bson.M{"$ne": session.ID}
	}
	return filter
}

func (repo *MongoSessionRepo) pairFilter(session *models.Session, excludeSelf bool) bson.M {
	filter := bson.M{
		"requesterId": session.RequesterID,
		"providerId":  session.ProviderID,
		"date":        session.Date,
		"status":      bson.M{"$in": models.ActiveStatuses},
		"start":       bson.M{"$lt": session.End},
		"end":         bson.M{"$gt": session.Start},
	}
	if excludeSelf {
		filter["id"] = bson.M{"$ne": session.ID}
	}
	return filter
}
