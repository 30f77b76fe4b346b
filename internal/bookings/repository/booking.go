package repository

import (
	"context"
	"errors"

	bookingerrors "lessondesk/internal/bookings/errors"
	apperrors "lessondesk/pkg/errors"
	"lessondesk/pkg/logger"
	"lessondesk/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BookingRepository persists parent bookings and their occurrence
// children. Writes that must be atomic with lock creation are invoked
// under a session context by the service layer.
type BookingRepository interface {
	Insert(ctx context.Context, booking *model.Booking) (string, error)
	InsertOccurrences(ctx context.Context, occurrences []model.BookingOccurrence) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*model.Booking, error)
	List(ctx context.Context, limit int, offset int64) ([]model.Booking, int64, error)
	ListOccurrences(ctx context.Context, bookingID string) ([]model.BookingOccurrence, error)
	Delete(ctx context.Context, id string) error
	DeleteOccurrences(ctx context.Context, bookingID string) (int64, error)
}

type mongoBookingRepository struct {
	bookings    *mongo.Collection
	occurrences *mongo.Collection
	log         *logger.Logger
}

func NewMongoBookingRepository(db *mongo.Database, log *logger.Logger) BookingRepository {
	return &mongoBookingRepository{
		bookings:    db.Collection(bookingsCollection),
		occurrences: db.Collection(occurrencesCollection),
		log:         log,
	}
}

func (r *mongoBookingRepository) Insert(ctx context.Context, booking *model.Booking) (string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := r.bookings.InsertOne(ctx, booking)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// unique partial index on idempotency_key
			return "", apperrors.Conflict("a booking with this idempotency key already exists")
		}
		r.log.Error("failed to insert booking", "error", err)
		return "", apperrors.Internal("failed to insert booking", err)
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", apperrors.Internal("unexpected inserted id type", nil)
	}
	return oid.Hex(), nil
}

func (r *mongoBookingRepository) InsertOccurrences(ctx context.Context, occurrences []model.BookingOccurrence) error {
	if len(occurrences) == 0 {
		return nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	docs := make([]any, 0, len(occurrences))
	for i := range occurrences {
		docs = append(docs, occurrences[i])
	}

	if _, err := r.occurrences.InsertMany(ctx, docs); err != nil {
		r.log.Error("failed to insert occurrences", "error", err, "count", len(occurrences))
		return apperrors.Internal("failed to insert occurrences", err)
	}
	return nil
}

func (r *mongoBookingRepository) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, bookingerrors.InvalidBookingID(id)
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var booking model.Booking
	err = r.bookings.FindOne(ctx, bson.M{"_id": oid}).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, bookingerrors.BookingNotFound(id)
	}
	if err != nil {
		r.log.Error("failed to get booking", "error", err, "booking_id", id)
		return nil, apperrors.Internal("failed to get booking", err)
	}
	return &booking, nil
}

func (r *mongoBookingRepository) GetByIdempotencyKey(ctx context.Context, key string) (*model.Booking, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var booking model.Booking
	err := r.bookings.FindOne(ctx, bson.M{"idempotency_key": key}).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("failed to look up idempotency key", "error", err)
		return nil, apperrors.Internal("failed to look up idempotency key", err)
	}
	return &booking, nil
}

func (r *mongoBookingRepository) List(ctx context.Context, limit int, offset int64) ([]model.Booking, int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	total, err := r.bookings.CountDocuments(ctx, bson.M{})
	if err != nil {
		r.log.Error("failed to count bookings", "error", err)
		return nil, 0, apperrors.Internal("failed to count bookings", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.bookings.Find(ctx, bson.M{}, opts)
	if err != nil {
		r.log.Error("failed to list bookings", "error", err)
		return nil, 0, apperrors.Internal("failed to list bookings", err)
	}
	defer cursor.Close(ctx)

	var bookings []model.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		r.log.Error("failed to decode bookings", "error", err)
		return nil, 0, apperrors.Internal("failed to decode bookings", err)
	}
	return bookings, total, nil
}

func (r *mongoBookingRepository) ListOccurrences(ctx context.Context, bookingID string) ([]model.BookingOccurrence, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time_slot", Value: 1}})
	cursor, err := r.occurrences.Find(ctx, bson.M{"booking_id": bookingID}, opts)
	if err != nil {
		r.log.Error("failed to list occurrences", "error", err, "booking_id", bookingID)
		return nil, apperrors.Internal("failed to list occurrences", err)
	}
	defer cursor.Close(ctx)

	var occurrences []model.BookingOccurrence
	if err := cursor.All(ctx, &occurrences); err != nil {
		r.log.Error("failed to decode occurrences", "error", err)
		return nil, apperrors.Internal("failed to decode occurrences", err)
	}
	return occurrences, nil
}

func (r *mongoBookingRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return bookingerrors.InvalidBookingID(id)
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := r.bookings.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		r.log.Error("failed to delete booking", "error", err, "booking_id", id)
		return apperrors.Internal("failed to delete booking", err)
	}
	if result.DeletedCount == 0 {
		return bookingerrors.BookingNotFound(id)
	}
	return nil
}

func (r *mongoBookingRepository) DeleteOccurrences(ctx context.Context, bookingID string) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := r.occurrences.DeleteMany(ctx, bson.M{"booking_id": bookingID})
	if err != nil {
		r.log.Error("failed to delete occurrences", "error", err, "booking_id", bookingID)
		return 0, apperrors.Internal("failed to delete occurrences", err)
	}
	return result.DeletedCount, nil
}
