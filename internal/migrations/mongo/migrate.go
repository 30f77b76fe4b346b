package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lessondesk/internal/migrations/mongo/validators"
	"lessondesk/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Migrator creates the collections with their schema validators and the
// indexes the booking engine relies on. Running it repeatedly is safe.
type Migrator struct {
	db  *mongo.Database
	log *logger.Logger
}

func NewMigrator(db *mongo.Database, log *logger.Logger) *Migrator {
	return &Migrator{db: db, log: log}
}

type collectionSpec struct {
	name      string
	validator bson.M
	indexes   []mongo.IndexModel
}

func (m *Migrator) Run(ctx context.Context) error {
	specs := []collectionSpec{
		{
			name:      "Bookings",
			validator: validators.Bookings(),
			indexes: []mongo.IndexModel{
				{
					Keys: bson.D{{Key: "idempotency_key", Value: 1}},
					// partial: only documents that carry a key participate
					Options: options.Index().
						SetUnique(true).
						SetPartialFilterExpression(bson.M{"idempotency_key": bson.M{"$exists": true}}),
				},
				{Keys: bson.D{{Key: "created_at", Value: -1}}},
				{Keys: bson.D{{Key: "phone", Value: 1}}},
			},
		},
		{
			name:      "Booking_occurrences",
			validator: validators.BookingOccurrences(),
			indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "status", Value: 1}, {Key: "date", Value: 1}}},
				{Keys: bson.D{{Key: "date", Value: 1}, {Key: "time_slot", Value: 1}, {Key: "teacher_id", Value: 1}}},
				{Keys: bson.D{{Key: "booking_id", Value: 1}}},
			},
		},
		{
			name:      "Teacher_slot_locks",
			validator: validators.TeacherSlotLocks(),
			indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "booking_id", Value: 1}}},
				{Keys: bson.D{{Key: "teacher_id", Value: 1}, {Key: "date", Value: 1}}},
			},
		},
		{
			name:      "Holidays",
			validator: validators.Holidays(),
			indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "date", Value: 1}}, Options: options.Index().SetUnique(true)},
			},
		},
		{
			name:      "Time_slots",
			validator: validators.TimeSlots(),
			indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "day_of_week", Value: 1}, {Key: "start_time", Value: 1}}},
			},
		},
		{
			name:      "Teachers",
			validator: validators.Teachers(),
			indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "name", Value: 1}}},
			},
		},
		{
			name:      "Price_tiers",
			validator: validators.PriceTiers(),
			indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "min_classes", Value: 1}, {Key: "max_classes", Value: 1}}},
			},
		},
		{
			name:      "Students",
			validator: validators.Students(),
			indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "phone", Value: 1}}, Options: options.Index().SetUnique(true)},
			},
		},
	}

	for _, spec := range specs {
		if err := m.ensureCollection(ctx, spec); err != nil {
			return err
		}
	}

	m.log.Info("migrations applied", "collections", len(specs))
	return nil
}

func (m *Migrator) ensureCollection(ctx context.Context, spec collectionSpec) error {
	err := m.db.CreateCollection(ctx, spec.name, options.CreateCollection().SetValidator(spec.validator))
	if err != nil {
		if !isNamespaceExists(err) {
			return fmt.Errorf("failed to create collection %s: %w", spec.name, err)
		}
		// collection exists; update its validator in place
		cmd := bson.D{
			{Key: "collMod", Value: spec.name},
			{Key: "validator", Value: spec.validator},
			{Key: "validationLevel", Value: "moderate"},
		}
		if err := m.db.RunCommand(ctx, cmd).Err(); err != nil {
			return fmt.Errorf("failed to update validator for %s: %w", spec.name, err)
		}
	}

	if len(spec.indexes) > 0 {
		if _, err := m.db.Collection(spec.name).Indexes().CreateMany(ctx, spec.indexes); err != nil {
			return fmt.Errorf("failed to create indexes for %s: %w", spec.name, err)
		}
	}

	m.log.Info("collection ensured", "collection", spec.name, "indexes", len(spec.indexes))
	return nil
}

func isNamespaceExists(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code == 48 // NamespaceExists
	}
	return strings.Contains(err.Error(), "already exists")
}
