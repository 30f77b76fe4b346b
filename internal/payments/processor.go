package payments

import (
	"context"

	bookinghandler "lessondesk/internal/bookings/handler"
	apperrors "lessondesk/pkg/errors"
	"lessondesk/pkg/kafka"
	"lessondesk/pkg/logger"
	"lessondesk/pkg/model"
)

// Committer is the slice of the booking service the processor needs.
type Committer interface {
	Commit(ctx context.Context, req *model.CommitRequest) (*model.Booking, error)
}

// Processor consumes payment-completed events and commits the booking
// each one describes, exactly as if the operator had submitted it. The
// event's idempotency key makes gateway redeliveries harmless.
type Processor struct {
	committer Committer
	log       *logger.Logger
}

func NewProcessor(committer Committer, log *logger.Logger) *Processor {
	return &Processor{committer: committer, log: log}
}

// Handle implements kafka.MessageHandler. Business rejections are
// permanent (the message goes to the DLQ for manual follow-up);
// infrastructure failures are transient and retried.
func (p *Processor) Handle(ctx context.Context, msg kafka.Message) error {
	if eventType := msg.GetEventType(); eventType != kafka.EventPaymentCompleted {
		p.log.Warn("ignoring unexpected event type", "event_type", eventType, "event_id", msg.GetEventID())
		return nil
	}

	var event kafka.PaymentCompletedEvent
	if err := msg.DecodeValue(&event); err != nil {
		return kafka.NewPermanentError("malformed payment event", err)
	}

	req := bookinghandler.CommitRequestFromPayment(&event)
	booking, err := p.committer.Commit(ctx, req)
	if err != nil {
		return classifyCommitError(err)
	}

	p.log.Info("payment event committed booking",
		"booking_id", booking.ID,
		"reference", event.Reference,
		"event_id", msg.GetEventID())
	return nil
}

func classifyCommitError(err error) error {
	appErr := apperrors.AsAppError(err)
	switch appErr.Code {
	case apperrors.CodeConflict, apperrors.CodeValidation, apperrors.CodeInvalidInput, apperrors.CodeNotFound:
		return kafka.NewPermanentError("commit rejected", err)
	default:
		return kafka.NewTransientError("commit failed", err)
	}
}
