package model

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the canonical wire/storage format for lesson dates.
	DateLayout = "2006-01-02"
	// TimeLayout is the canonical wire/storage format for time-slot starts.
	TimeLayout = "15:04"
)

// SlotRef identifies one concrete (date, time slot, teacher) triple.
// It is the unit of availability: a triple is either free or held by
// exactly one booking.
type SlotRef struct {
	Date      string `json:"date" bson:"date" validate:"required,lesson_date"`
	TimeSlot  string `json:"time_slot" bson:"time_slot" validate:"required,lesson_time"`
	TeacherID string `json:"teacher_id" bson:"teacher_id" validate:"required,mongodb"`
}

// Key returns the availability-index key for the triple.
func (s SlotRef) Key() string {
	return s.Date + "|" + s.TimeSlot + "|" + s.TeacherID
}

// LockID returns the Teacher_slot_locks document id for the triple:
// {teacherId}/{date}_{timeSlot}. Lock existence for this id means the
// triple is taken.
func (s SlotRef) LockID() string {
	return fmt.Sprintf("%s/%s_%s", s.TeacherID, s.Date, s.TimeSlot)
}

func (s SlotRef) String() string {
	return s.Key()
}

// ParseDate parses a canonical lesson date.
func ParseDate(date string) (time.Time, error) {
	return time.Parse(DateLayout, date)
}

// AddWeeks shifts a canonical lesson date forward by n weeks.
// Returns an error when the date is not in DateLayout.
func AddWeeks(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, 7*n).Format(DateLayout), nil
}
