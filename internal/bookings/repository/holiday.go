package repository

import (
	"context"

	apperrors "lessondesk/pkg/errors"
	"lessondesk/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// HolidayRepository answers the commit-time holiday recheck. Holiday marks
// are the single source of truth for blocked dates; no synthetic lock rows
// are materialized for them.
type HolidayRepository interface {
	FindDates(ctx context.Context, dates []string) ([]string, error)
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

// FindDates returns the subset of dates that are holiday-marked.
func (r *mongoHolidayRepository) FindDates(ctx context.Context, dates []string) ([]string, error) {
	if len(dates) == 0 {
		return nil, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cursor, err := r.holidays.Find(ctx, bson.M{"date": bson.M{"$in": dates}})
	if err != nil {
		r.log.Error("failed to query holidays", "error", err)
		return nil, apperrors.Internal("failed to query holidays", err)
	}
	defer cursor.Close(ctx)

	var marks []struct {
		Date string `bson:"date"`
	}
	if err := cursor.All(ctx, &marks); err != nil {
		r.log.Error("failed to decode holidays", "error", err)
		return nil, apperrors.Internal("failed to decode holidays", err)
	}

	found := make([]string, 0, len(marks))
	for _, m := range marks {
		found = append(found, m.Date)
	}
	return found, nil
}
