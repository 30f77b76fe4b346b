package repository

import (
	"context"
	"time"

	apperrors "lessondesk/pkg/errors"
	"lessondesk/pkg/logger"
	"lessondesk/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SlotLockRepository owns the Teacher_slot_locks collection, the
// authoritative collision-prevention record. Lock ids are deterministic
// (SlotRef.LockID), so _id uniqueness is the last line of defense against
// two commits racing past the in-transaction recheck.
type SlotLockRepository interface {
	InsertMany(ctx context.Context, locks []*model.TeacherSlotLock) error
	FindExisting(ctx context.Context, ids []string) ([]model.TeacherSlotLock, error)
	DeleteByBookingID(ctx context.Context, bookingID string) (int64, error)
}

type mongoSlotLockRepository struct {
	locks *mongo.Collection
	log   *logger.Logger
}

func NewMongoSlotLockRepository(db *mongo.Database, log *logger.Logger) SlotLockRepository {
	return &mongoSlotLockRepository{
		locks: db.Collection(locksCollection),
		log:   log,
	}
}

func (r *mongoSlotLockRepository) InsertMany(ctx context.Context, locks []*model.TeacherSlotLock) error {
	if len(locks) == 0 {
		return nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	now := time.Now()
	docs := make([]any, 0, len(locks))
	for _, lock := range locks {
		if lock.BookedAt.IsZero() {
			lock.BookedAt = now
		}
		docs = append(docs, lock)
	}

	if _, err := r.locks.InsertMany(ctx, docs); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Conflict("slot lock already exists")
		}
		r.log.Error("failed to insert slot locks", "error", err, "count", len(locks))
		return apperrors.Internal("failed to insert slot locks", err)
	}
	return nil
}

func (r *mongoSlotLockRepository) FindExisting(ctx context.Context, ids []string) ([]model.TeacherSlotLock, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cursor, err := r.locks.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		r.log.Error("failed to query slot locks", "error", err)
		return nil, apperrors.Internal("failed to query slot locks", err)
	}
	defer cursor.Close(ctx)

	var locks []model.TeacherSlotLock
	if err := cursor.All(ctx, &locks); err != nil {
		r.log.Error("failed to decode slot locks", "error", err)
		return nil, apperrors.Internal("failed to decode slot locks", err)
	}
	return locks, nil
}

func (r *mongoSlotLockRepository) DeleteByBookingID(ctx context.Context, bookingID string) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := r.locks.DeleteMany(ctx, bson.M{"booking_id": bookingID})
	if err != nil {
		r.log.Error("failed to delete slot locks", "error", err, "booking_id", bookingID)
		return 0, apperrors.Internal("failed to delete slot locks", err)
	}
	return result.DeletedCount, nil
}
