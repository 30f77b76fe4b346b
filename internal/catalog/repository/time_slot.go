package repository

import (
	"context"
	"errors"
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

type TimeSlotRepository interface {
	Create(ctx context.Context, def *model.TimeSlotDefinition) (string, error)
	GetByID(ctx context.Context, id string) (*model.TimeSlotDefinition, error)
	List(ctx context.Context, limit int, offset int64) ([]model.TimeSlotDefinition, int64, error)
	Update(ctx context.Context, id string, update *model.TimeSlotDefinitionUpdate) error
	Delete(ctx context.Context, id string) error
}

type mongoTimeSlotRepository struct {
	slots *mongo.Collection
	log   *logger.Logger
}

func NewMongoTimeSlotRepository(db *mongo.Database, log *logger.Logger) TimeSlotRepository {
	return &mongoTimeSlotRepository{
		slots: db.Collection(timeSlotsCollection),
		log:   log,
	}
}

func (r *mongoTimeSlotRepository) Create(ctx context.Context, def *model.TimeSlotDefinition) (string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	def.CreatedAt = time.Now()
	result, err := r.slots.InsertOne(ctx, def)
	if err != nil {
		r.log.Error("failed to create time slot", "error", err)
		return "", apperrors.Internal("failed to create time slot", err)
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", apperrors.Internal("unexpected inserted id type", nil)
	}
	return oid.Hex(), nil
}

func (r *mongoTimeSlotRepository) GetByID(ctx context.Context, id string) (*model.TimeSlotDefinition, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, catalogerrors.InvalidID("time slot", id)
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var def model.TimeSlotDefinition
	err = r.slots.FindOne(ctx, bson.M{"_id": oid}).Decode(&def)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, catalogerrors.NotFound("time slot", id)
	}
	if err != nil {
		r.log.Error("failed to get time slot", "error", err, "id", id)
		return nil, apperrors.Internal("failed to get time slot", err)
	}
	return &def, nil
}

func (r *mongoTimeSlotRepository) List(ctx context.Context, limit int, offset int64) ([]model.TimeSlotDefinition, int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	total, err := r.slots.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, apperrors.Internal("failed to count time slots", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "day_of_week", Value: 1}, {Key: "start_time", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.slots.Find(ctx, bson.M{}, opts)
	if err != nil {
		r.log.Error("failed to list time slots", "error", err)
		return nil, 0, apperrors.Internal("failed to list time slots", err)
	}
	defer cursor.Close(ctx)

	var defs []model.TimeSlotDefinition
	if err := cursor.All(ctx, &defs); err != nil {
		return nil, 0, apperrors.Internal("failed to decode time slots", err)
	}
	return defs, total, nil
}

func (r *mongoTimeSlotRepository) Update(ctx context.Context, id string, update *model.TimeSlotDefinitionUpdate) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return catalogerrors.InvalidID("time slot", id)
	}

	set := bson.M{}
	if update.DayOfWeek != "" {
		set["day_of_week"] = update.DayOfWeek
	}
	if update.StartTime != "" {
		set["start_time"] = update.StartTime
	}
	if update.TeacherIDs != nil {
		set["teacher_ids"] = *update.TeacherIDs
	}
	if len(set) == 0 {
		return apperrors.InvalidInput("no fields to update")
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := r.slots.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		r.log.Error("failed to update time slot", "error", err, "id", id)
		return apperrors.Internal("failed to update time slot", err)
	}
	if result.MatchedCount == 0 {
		return catalogerrors.NotFound("time slot", id)
	}
	return nil
}

func (r *mongoTimeSlotRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return catalogerrors.InvalidID("time slot", id)
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := r.slots.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		r.log.Error("failed to delete time slot", "error", err, "id", id)
		return apperrors.Internal("failed to delete time slot", err)
	}
	if result.DeletedCount == 0 {
		return catalogerrors.NotFound("time slot", id)
	}
	return nil
}
