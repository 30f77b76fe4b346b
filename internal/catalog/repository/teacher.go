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

type TeacherRepository interface {
	Create(ctx context.Context, teacher *model.Teacher) (string, error)
	GetByID(ctx context.Context, id string) (*model.Teacher, error)
	List(ctx context.Context, limit int, offset int64) ([]model.Teacher, int64, error)
	Update(ctx context.Context, id string, update *model.TeacherUpdate) error
	Delete(ctx context.Context, id string) error
}

type mongoTeacherRepository struct {
	teachers *mongo.Collection
	log      *logger.Logger
}

func NewMongoTeacherRepository(db *mongo.Database, log *logger.Logger) TeacherRepository {
	return &mongoTeacherRepository{
		teachers: db.Collection(teachersCollection),
		log:      log,
	}
}

func (r *mongoTeacherRepository) Create(ctx context.Context, teacher *model.Teacher) (string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	teacher.CreatedAt = time.Now()
	result, err := r.teachers.InsertOne(ctx, teacher)
	if err != nil {
		r.log.Error("failed to create teacher", "error", err)
		return "", apperrors.Internal("failed to create teacher", err)
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", apperrors.Internal("unexpected inserted id type", nil)
	}
	return oid.Hex(), nil
}

func (r *mongoTeacherRepository) GetByID(ctx context.Context, id string) (*model.Teacher, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, catalogerrors.InvalidID("teacher", id)
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var teacher model.Teacher
	err = r.teachers.FindOne(ctx, bson.M{"_id": oid}).Decode(&teacher)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, catalogerrors.NotFound("teacher", id)
	}
	if err != nil {
		r.log.Error("failed to get teacher", "error", err, "id", id)
		return nil, apperrors.Internal("failed to get teacher", err)
	}
	return &teacher, nil
}

func (r *mongoTeacherRepository) List(ctx context.Context, limit int, offset int64) ([]model.Teacher, int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	total, err := r.teachers.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, apperrors.Internal("failed to count teachers", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.teachers.Find(ctx, bson.M{}, opts)
	if err != nil {
		r.log.Error("failed to list teachers", "error", err)
		return nil, 0, apperrors.Internal("failed to list teachers", err)
	}
	defer cursor.Close(ctx)

	var teachers []model.Teacher
	if err := cursor.All(ctx, &teachers); err != nil {
		return nil, 0, apperrors.Internal("failed to decode teachers", err)
	}
	return teachers, total, nil
}

func (r *mongoTeacherRepository) Update(ctx context.Context, id string, update *model.TeacherUpdate) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return catalogerrors.InvalidID("teacher", id)
	}

	set := bson.M{}
	if update.Name != "" {
		set["name"] = update.Name
	}
	if update.Phone != "" {
		set["phone"] = update.Phone
	}
	if update.Email != "" {
		set["email"] = update.Email
	}
	if update.Active != nil {
		set["active"] = *update.Active
	}
	if len(set) == 0 {
		return apperrors.InvalidInput("no fields to update")
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := r.teachers.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		r.log.Error("failed to update teacher", "error", err, "id", id)
		return apperrors.Internal("failed to update teacher", err)
	}
	if result.MatchedCount == 0 {
		return catalogerrors.NotFound("teacher", id)
	}
	return nil
}

func (r *mongoTeacherRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return catalogerrors.InvalidID("teacher", id)
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := r.teachers.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		r.log.Error("failed to delete teacher", "error", err, "id", id)
		return apperrors.Internal("failed to delete teacher", err)
	}
	if result.DeletedCount == 0 {
		return catalogerrors.NotFound("teacher", id)
	}
	return nil
}
