package model

import "time"

// TeacherSlotLock is the authoritative collision-prevention record: one
// document per taken (teacherId, date, timeSlot) triple, keyed by
// SlotRef.LockID so a duplicate insert fails on _id uniqueness.
type TeacherSlotLock struct {
	ID          string    `json:"id" bson:"_id"`
	TeacherID   string    `json:"teacher_id" bson:"teacher_id"`
	Date        string    `json:"date" bson:"date"`
	TimeSlot    string    `json:"time_slot" bson:"time_slot"`
	BookingID   string    `json:"booking_id" bson:"booking_id"`
	StudentName string    `json:"student_name" bson:"student_name"`
	Status      string    `json:"status" bson:"status"`
	BookedAt    time.Time `json:"booked_at" bson:"booked_at"`
}

// NewTeacherSlotLock builds the lock document for a committed occurrence.
func NewTeacherSlotLock(slot SlotRef, bookingID, studentName string) *TeacherSlotLock {
	return &TeacherSlotLock{
		ID:          slot.LockID(),
		TeacherID:   slot.TeacherID,
		Date:        slot.Date,
		TimeSlot:    slot.TimeSlot,
		BookingID:   bookingID,
		StudentName: studentName,
		Status:      StatusConfirmed,
	}
}
