package repository

import (
	"context"
	"errors"

	catalogerrors "lessondesk/internal/catalog/errors"
	apperrors "lessondesk/pkg/errors"
	"lessondesk/pkg/logger"
	"lessondesk/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PriceTierRepository also serves the booking coordinator's price lookup
// through FindTierForCount.
type PriceTierRepository interface {
	Create(ctx context.Context, tier *model.PriceTier) (string, error)
	List(ctx context.Context) ([]model.PriceTier, error)
	FindTierForCount(ctx context.Context, count int) (*model.PriceTier, error)
	Delete(ctx context.Context, id string) error
}

type mongoPriceTierRepository struct {
	tiers *mongo.Collection
	log   *logger.Logger
}

func NewMongoPriceTierRepository(db *mongo.Database, log *logger.Logger) PriceTierRepository {
	return &mongoPriceTierRepository{
		tiers: db.Collection(priceTiersCollection),
		log:   log,
	}
}

func (r *mongoPriceTierRepository) Create(ctx context.Context, tier *model.PriceTier) (string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := r.tiers.InsertOne(ctx, tier)
	if err != nil {
		r.log.Error("failed to create price tier", "error", err)
		return "", apperrors.Internal("failed to create price tier", err)
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", apperrors.Internal("unexpected inserted id type", nil)
	}
	return oid.Hex(), nil
}

func (r *mongoPriceTierRepository) List(ctx context.Context) ([]model.PriceTier, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "min_classes", Value: 1}})
	cursor, err := r.tiers.Find(ctx, bson.M{}, opts)
	if err != nil {
		r.log.Error("failed to list price tiers", "error", err)
		return nil, apperrors.Internal("failed to list price tiers", err)
	}
	defer cursor.Close(ctx)

	var tiers []model.PriceTier
	if err := cursor.All(ctx, &tiers); err != nil {
		return nil, apperrors.Internal("failed to decode price tiers", err)
	}
	return tiers, nil
}

// FindTierForCount returns the tier whose range contains count, or nil
// when no tier covers it.
func (r *mongoPriceTierRepository) FindTierForCount(ctx context.Context, count int) (*model.PriceTier, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{
		"min_classes": bson.M{"$lte": count},
		"max_classes": bson.M{"$gte": count},
	}

	var tier model.PriceTier
	err := r.tiers.FindOne(ctx, filter).Decode(&tier)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("failed to look up price tier", "error", err, "count", count)
		return nil, apperrors.Internal("failed to look up price tier", err)
	}
	return &tier, nil
}

func (r *mongoPriceTierRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return catalogerrors.InvalidID("price tier", id)
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := r.tiers.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		r.log.Error("failed to delete price tier", "error", err, "id", id)
		return apperrors.Internal("failed to delete price tier", err)
	}
	if result.DeletedCount == 0 {
		return catalogerrors.NotFound("price tier", id)
	}
	return nil
}
