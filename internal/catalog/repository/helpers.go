package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	timeSlotsCollection  = "Time_slots"
	teachersCollection   = "Teachers"
	holidaysCollection   = "Holidays"
	priceTiersCollection = "Price_tiers"

	queryTimeout = 5 * time.Second
)

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, queryTimeout)
}
