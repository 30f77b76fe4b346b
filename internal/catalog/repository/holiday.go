package repository

import (
	"context"
	"time"

	catalogerrors "lessondesk/internal/catalog/errors"
	apperrors "lessondesk/pkg/errors"
	"lessondesk/pkg/logger"
	"lessondesk/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type HolidayRepository interface {
	Create(ctx context.Context, mark *model.HolidayMark) (string, error)
	List(ctx context.Context, from, to string) ([]model.HolidayMark, error)
	Delete(ctx context.Context, id string) error
}

type mongoHolidayRepository struct {
	holidays *mongo.Collection
	log      *logger.Logger
}

func NewMongoHolidayRepository(db *mongo.Database, log *logger.Logger) HolidayRepository {
	return &mongoHolidayRepository{
		holidays: db.Collection(holidaysCollection),
		log:      log,
	}
}

func (r *mongoHolidayRepository) Create(ctx context.Context, mark *model.HolidayMark) (string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	mark.CreatedAt = time.Now()
	result, err := r.holidays.InsertOne(ctx, mark)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// unique index on date
			return "", catalogerrors.DuplicateHoliday(mark.Date)
		}
		r.log.Error("failed to create holiday", "error", err)
		return "", apperrors.Internal("failed to create holiday", err)
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", apperrors.Internal("unexpected inserted id type", nil)
	}
	return oid.Hex(), nil
}

// List returns holidays inside [from, to]; an empty bound is open-ended.
func (r *mongoHolidayRepository) List(ctx context.Context, from, to string) ([]model.HolidayMark, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	dateFilter := bson.M{}
	if from != "" {
		dateFilter["$gte"] = from
	}
	if to != "" {
		dateFilter["$lte"] = to
	}
	filter := bson.M{}
	if len(dateFilter) > 0 {
		filter["date"] = dateFilter
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := r.holidays.Find(ctx, filter, opts)
	if err != nil {
		r.log.Error("failed to list holidays", "error", err)
		return nil, apperrors.Internal("failed to list holidays", err)
	}
	defer cursor.Close(ctx)

	var marks []model.HolidayMark
	if err := cursor.All(ctx, &marks); err != nil {
		return nil, apperrors.Internal("failed to decode holidays", err)
	}
	return marks, nil
}

func (r *mongoHolidayRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return catalogerrors.InvalidID("holiday", id)
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := r.holidays.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		r.log.Error("failed to delete holiday", "error", err, "id", id)
		return apperrors.Internal("failed to delete holiday", err)
	}
	if result.DeletedCount == 0 {
		return catalogerrors.NotFound("holiday", id)
	}
	return nil
}
