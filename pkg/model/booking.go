package model

import (
	"time"
)

const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Booking is the parent record for one committed multi-week reservation.
// Its occurrences and slot locks are created with it in one transaction
// and removed with it on cancellation.
type Booking struct {
	ID              string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	StudentName     string    `json:"student_name" bson:"student_name" validate:"required,min=2,max=100"`
	Email           string    `json:"email" bson:"email" validate:"omitempty,email"`
	Phone           string    `json:"phone" bson:"phone" validate:"required,e164"`
	Status          string    `json:"status" bson:"status" validate:"required,oneof=confirmed cancelled"`
	TotalPrice      int       `json:"total_price" bson:"total_price" validate:"min=0"`
	OccurrenceCount int       `json:"occurrence_count" bson:"occurrence_count" validate:"required,min=1"`
	IdempotencyKey  string    `json:"idempotency_key,omitempty" bson:"idempotency_key,omitempty" validate:"omitempty,uuid4"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// BookingOccurrence is one concrete lesson instance owned by a Booking.
// Teacher and student fields are denormalized for calendar rendering.
type BookingOccurrence struct {
	ID          string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	BookingID   string `json:"booking_id" bson:"booking_id" validate:"omitempty,mongodb"`
	Date        string `json:"date" bson:"date" validate:"required,lesson_date"`
	TimeSlot    string `json:"time_slot" bson:"time_slot" validate:"required,lesson_time"`
	TeacherID   string `json:"teacher_id" bson:"teacher_id" validate:"required,mongodb"`
	TeacherName string `json:"teacher_name" bson:"teacher_name" validate:"omitempty,max=100"`
	StudentName string `json:"student_name" bson:"student_name" validate:"omitempty,max=100"`
	Notes       string `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=500"`
	Status      string `json:"status" bson:"status" validate:"required,oneof=confirmed cancelled"`
}

// Slot returns the occurrence's availability triple.
func (o *BookingOccurrence) Slot() SlotRef {
	return SlotRef{Date: o.Date, TimeSlot: o.TimeSlot, TeacherID: o.TeacherID}
}

// CommitRequest is the coordinator input: final available occurrences plus
// student contact data. ExpectedTotal guards against a stale price shown to
// the operator; IdempotencyKey deduplicates resubmissions.
type CommitRequest struct {
	StudentName    string              `json:"student_name" validate:"required,min=2,max=100"`
	Email          string              `json:"email" validate:"omitempty,email"`
	Phone          string              `json:"phone" validate:"required,e164"`
	Notes          string              `json:"notes,omitempty" validate:"omitempty,max=500"`
	Occurrences    []BookingOccurrence `json:"occurrences" validate:"required,min=1,dive"`
	ExpectedTotal  int                 `json:"expected_total" validate:"min=0"`
	IdempotencyKey string              `json:"idempotency_key" validate:"omitempty,uuid4"`
}
