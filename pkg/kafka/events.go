package kafka

// Topics carrying booking lifecycle and payment events.
const (
	TopicBookingConfirmed  = "bookings.confirmed"
	TopicBookingCancelled  = "bookings.cancelled"
	TopicPaymentsCompleted = "payments.completed"

	TopicBookingsDLQ = "bookings.dlq"
	TopicPaymentsDLQ = "payments.dlq"
)

// Event types set in the event-type header.
const (
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
	EventPaymentCompleted = "payment.completed"
)

// BookingEvent is published after a commit or cancellation succeeds.
type BookingEvent struct {
	BookingID       string `json:"booking_id"`
	StudentName     string `json:"student_name"`
	Phone           string `json:"phone"`
	OccurrenceCount int    `json:"occurrence_count"`
	TotalPrice      int    `json:"total_price"`
	Status          string `json:"status"`
}

// PaymentCompletedEvent mirrors the payment gateway's webhook payload: a
// checkout reference plus the booking metadata captured at session
// creation. The payments consumer feeds it straight into the coordinator.
type PaymentCompletedEvent struct {
	Reference      string            `json:"reference"`
	SessionID      string            `json:"session_id"`
	StudentName    string            `json:"student_name"`
	Email          string            `json:"email,omitempty"`
	Phone          string            `json:"phone"`
	Notes          string            `json:"notes,omitempty"`
	AmountPaid     int               `json:"amount_paid"`
	IdempotencyKey string            `json:"idempotency_key,omitempty"`
	Occurrences    []EventOccurrence `json:"occurrences"`
}

// EventOccurrence is the wire shape of one selected lesson slot.
type EventOccurrence struct {
	Date      string `json:"date"`
	TimeSlot  string `json:"time_slot"`
	TeacherID string `json:"teacher_id"`
	Notes     string `json:"notes,omitempty"`
}
