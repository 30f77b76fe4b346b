package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	bookingsCollection    = "Bookings"
	occurrencesCollection = "Booking_occurrences"
	locksCollection       = "Teacher_slot_locks"
	studentsCollection    = "Students"
	holidaysCollection    = "Holidays"

	queryTimeout = 5 * time.Second
)

// withTimeout adds a query deadline unless the context already belongs to
// a Mongo session, which carries its own transaction lifetime.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, queryTimeout)
}
