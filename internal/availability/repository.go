package availability

import (
	"context"
	"time"

	apperrors "lessondesk/pkg/errors"
	"lessondesk/pkg/logger"
	"lessondesk/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	occurrencesCollection = "Booking_occurrences"
	holidaysCollection    = "Holidays"

	queryTimeout = 5 * time.Second
)

// Repository reads the two collections the index is built from.
type Repository interface {
	ListConfirmedOccurrences(ctx context.Context, from, to string) ([]model.BookingOccurrence, error)
	ListHolidays(ctx context.Context, from, to string) ([]model.HolidayMark, error)
}

type mongoAvailabilityRepository struct {
	occurrences *mongo.Collection
	holidays    *mongo.Collection
	log         *logger.Logger
}

func NewMongoAvailabilityRepository(db *mongo.Database, log *logger.Logger) Repository {
	return &mongoAvailabilityRepository{
		occurrences: db.Collection(occurrencesCollection),
		holidays:    db.Collection(holidaysCollection),
		log:         log,
	}
}

// withTimeout adds a query deadline unless the context already belongs to
// a Mongo session, which carries its own transaction lifetime.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, queryTimeout)
}

func (r *mongoAvailabilityRepository) ListConfirmedOccurrences(ctx context.Context, from, to string) ([]model.BookingOccurrence, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{
		"status": model.StatusConfirmed,
		"date":   bson.M{"$gte": from, "$lte": to},
	}

	cursor, err := r.occurrences.Find(ctx, filter)
	if err != nil {
		r.log.Error("failed to list confirmed occurrences", "error", err, "from", from, "to", to)
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

func (r *mongoAvailabilityRepository) ListHolidays(ctx context.Context, from, to string) ([]model.HolidayMark, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{"date": bson.M{"$gte": from, "$lte": to}}

	cursor, err := r.holidays.Find(ctx, filter)
	if err != nil {
		r.log.Error("failed to list holidays", "error", err, "from", from, "to", to)
		return nil, apperrors.Internal("failed to list holidays", err)
	}
	defer cursor.Close(ctx)

	var holidays []model.HolidayMark
	if err := cursor.All(ctx, &holidays); err != nil {
		r.log.Error("failed to decode holidays", "error", err)
		return nil, apperrors.Internal("failed to decode holidays", err)
	}

	return holidays, nil
}
