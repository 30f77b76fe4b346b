package repository

import (
	"context"
	"time"

	apperrors "lessondesk/pkg/errors"
	"lessondesk/pkg/logger"
	"lessondesk/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StudentRepository dedups students by phone. The upsert runs outside the
// commit transaction and is best-effort.
type StudentRepository interface {
	UpsertByPhone(ctx context.Context, student *model.Student) error
}

type mongoStudentRepository struct {
	students *mongo.Collection
	log      *logger.Logger
}

func NewMongoStudentRepository(db *mongo.Database, log *logger.Logger) StudentRepository {
	return &mongoStudentRepository{
		students: db.Collection(studentsCollection),
		log:      log,
	}
}

func (r *mongoStudentRepository) UpsertByPhone(ctx context.Context, student *model.Student) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"name":  student.Name,
			"email": student.Email,
		},
		"$setOnInsert": bson.M{
			"phone":      student.Phone,
			"created_at": time.Now(),
		},
	}

	_, err := r.students.UpdateOne(ctx, bson.M{"phone": student.Phone}, update, options.Update().SetUpsert(true))
	if err != nil {
		r.log.Error("failed to upsert student", "error", err, "phone", student.Phone)
		return apperrors.Internal("failed to upsert student", err)
	}
	return nil
}
