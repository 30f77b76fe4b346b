package model

import "time"

// TimeSlotDefinition is a (day-of-week, time-of-day) template listing the
// teachers eligible to teach it. Referenced, never owned, by bookings.
type TimeSlotDefinition struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	DayOfWeek  string    `json:"day_of_week" bson:"day_of_week" validate:"required,oneof=Sunday Monday Tuesday Wednesday Thursday Friday Saturday"`
	StartTime  string    `json:"start_time" bson:"start_time" validate:"required,lesson_time"`
	TeacherIDs []string  `json:"teacher_ids" bson:"teacher_ids" validate:"required,min=1,dive,mongodb"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type TimeSlotDefinitionUpdate struct {
	DayOfWeek  string    `json:"day_of_week,omitempty" validate:"omitempty,oneof=Sunday Monday Tuesday Wednesday Thursday Friday Saturday"`
	StartTime  string    `json:"start_time,omitempty" validate:"omitempty,lesson_time"`
	TeacherIDs *[]string `json:"teacher_ids,omitempty" validate:"omitempty,min=1,dive,mongodb"`
}

// Teacher is identity plus contact info; its calendar lives in the
// Teacher_slot_locks collection, not on this document.
type Teacher struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Phone     string    `json:"phone" bson:"phone" validate:"omitempty,e164"`
	Email     string    `json:"email" bson:"email" validate:"omitempty,email"`
	Active    bool      `json:"active" bson:"active"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type TeacherUpdate struct {
	Name   string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Phone  string `json:"phone,omitempty" validate:"omitempty,e164"`
	Email  string `json:"email,omitempty" validate:"omitempty,email"`
	Active *bool  `json:"active,omitempty"`
}

// HolidayMark flags a calendar date as globally unavailable. A holiday
// blocks every triple on that date without materialized lock rows.
type HolidayMark struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Date      string    `json:"date" bson:"date" validate:"required,lesson_date"`
	Label     string    `json:"label" bson:"label" validate:"required,min=2,max=100"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// PriceTier maps an occurrence-count range to a per-class price.
// Tiers must not overlap; lookup is by count(available occurrences).
type PriceTier struct {
	ID            string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	MinClasses    int    `json:"min_classes" bson:"min_classes" validate:"required,min=1"`
	MaxClasses    int    `json:"max_classes" bson:"max_classes" validate:"required,gtefield=MinClasses"`
	PricePerClass int    `json:"price_per_class" bson:"price_per_class" validate:"required,min=0"`
}

// Contains reports whether count falls inside the tier's range.
func (p *PriceTier) Contains(count int) bool {
	return count >= p.MinClasses && count <= p.MaxClasses
}

// Student is the CRM-side record upserted best-effort on commit,
// deduplicated by phone.
type Student struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Phone     string    `json:"phone" bson:"phone" validate:"required,e164"`
	Email     string    `json:"email" bson:"email" validate:"omitempty,email"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}
