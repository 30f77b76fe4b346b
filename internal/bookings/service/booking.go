package service

import (
	"context"
	"time"

	"lessondesk/internal/availability"
	bookingerrors "lessondesk/internal/bookings/errors"
	"lessondesk/internal/bookings/repository"
	"lessondesk/internal/bookings/validator"
	"lessondesk/internal/expansion"
	apperrors "lessondesk/pkg/errors"
	"lessondesk/pkg/kafka"
	"lessondesk/pkg/logger"
	"lessondesk/pkg/model"
	"lessondesk/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"

	mongodb "lessondesk/pkg/db/mongo"
)

const eventSource = "bookings-service"

// ExpandRequest asks for weekly recurrences of one or more base slots.
type ExpandRequest struct {
	Bases []model.SlotRef `json:"bases" validate:"required,min=1,dive"`
	Weeks int             `json:"weeks" validate:"required,min=1"`
}

// BookingDetail pairs a booking with its occurrence children.
type BookingDetail struct {
	Booking     model.Booking             `json:"booking"`
	Occurrences []model.BookingOccurrence `json:"occurrences"`
}

// AvailabilityView is the read-side answer for a date window: which
// triples are taken and which dates are blocked.
type AvailabilityView struct {
	From     string                    `json:"from"`
	To       string                    `json:"to"`
	Booked   []model.BookingOccurrence `json:"booked"`
	Holidays []model.HolidayMark       `json:"holidays"`
}

// PriceTierLookup resolves the per-class price for an occurrence count.
type PriceTierLookup interface {
	FindTierForCount(ctx context.Context, count int) (*model.PriceTier, error)
}

// EventPublisher abstracts the Kafka producer for one topic.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// SnapshotRefresher lets the service push fresh state into the shared
// availability index after a successful write.
type SnapshotRefresher interface {
	Refresh(ctx context.Context) error
}

// SelectionSink tracks slots handed to the operator but not yet
// committed, so the refresh loop can re-verify them. Satisfied by
// *refresh.Watcher.
type SelectionSink interface {
	Select(slots ...model.SlotRef)
	Deselect(slots ...model.SlotRef)
}

// ExpandResult is the expansion preview plus the tier price for the
// available subset. Prices stay zero when no tier covers the count.
type ExpandResult struct {
	*expansion.Result
	PricePerClass int `json:"price_per_class"`
	PricedTotal   int `json:"priced_total"`
}

type Service interface {
	Expand(ctx context.Context, req *ExpandRequest) (*ExpandResult, error)
	Commit(ctx context.Context, req *model.CommitRequest) (*model.Booking, error)
	Cancel(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*BookingDetail, error)
	List(ctx context.Context, limit int, offset int64) ([]model.Booking, int64, error)
	Availability(ctx context.Context, from, to string) (*AvailabilityView, error)
}

// Config carries the expansion and window tunables the service needs.
type Config struct {
	ExpansionTriesMultiplier int
	MaxRecurrenceWeeks       int
	VisibleWindowWeeks       int
}

type bookingService struct {
	bookings  repository.BookingRepository
	locks     repository.SlotLockRepository
	students  repository.StudentRepository
	holidays  repository.HolidayRepository
	availRepo availability.Repository
	tiers     PriceTierLookup
	tx        mongodb.TransactionManager

	index           SnapshotRefresher // may be nil
	selections      SelectionSink     // may be nil
	confirmedEvents EventPublisher    // may be nil
	cancelledEvents EventPublisher    // may be nil

	validator *validator.Validator
	cfg       Config
	log       *logger.Logger
}

func NewBookingService(
	bookings repository.BookingRepository,
	locks repository.SlotLockRepository,
	students repository.StudentRepository,
	holidays repository.HolidayRepository,
	availRepo availability.Repository,
	tiers PriceTierLookup,
	tx mongodb.TransactionManager,
	index SnapshotRefresher,
	selections SelectionSink,
	confirmedEvents, cancelledEvents EventPublisher,
	cfg Config,
	log *logger.Logger,
) Service {
	return &bookingService{
		bookings:        bookings,
		locks:           locks,
		students:        students,
		holidays:        holidays,
		availRepo:       availRepo,
		tiers:           tiers,
		tx:              tx,
		index:           index,
		selections:      selections,
		confirmedEvents: confirmedEvents,
		cancelledEvents: cancelledEvents,
		validator:       validator.New(),
		cfg:             cfg,
		log:             log,
	}
}

// Expand builds a fresh availability snapshot covering the whole search
// range and walks it. Shortfalls come back inside the result, not as
// errors.
func (s *bookingService) Expand(ctx context.Context, req *ExpandRequest) (*ExpandResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	if req.Weeks > s.cfg.MaxRecurrenceWeeks {
		return nil, apperrors.InvalidInput("requested weeks exceed the recurrence cap")
	}

	from, to, err := expansionWindow(req.Bases, req.Weeks*s.cfg.ExpansionTriesMultiplier)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	idx := availability.NewIndex(s.availRepo, s.log)
	if err := idx.Load(ctx, from, to); err != nil {
		return nil, err
	}

	expander := expansion.NewExpander(idx, s.cfg.ExpansionTriesMultiplier, s.cfg.MaxRecurrenceWeeks, s.log)
	result, err := expander.Expand(req.Bases, req.Weeks)
	if err != nil {
		return nil, err
	}

	if s.selections != nil {
		s.selections.Select(result.Available()...)
	}

	out := &ExpandResult{Result: result}
	if result.TotalAvailable > 0 {
		tier, err := s.tiers.FindTierForCount(ctx, result.TotalAvailable)
		if err != nil {
			return nil, err
		}
		if tier != nil {
			out.PricePerClass = tier.PricePerClass
			out.PricedTotal = tier.PricePerClass * result.TotalAvailable
		}
	}
	return out, nil
}

// expansionWindow spans the earliest base date through the last candidate
// week any base could reach.
func expansionWindow(bases []model.SlotRef, maxTries int) (string, string, error) {
	from, to := "", ""
	for _, base := range bases {
		if _, err := model.ParseDate(base.Date); err != nil {
			return "", "", err
		}
		if from == "" || base.Date < from {
			from = base.Date
		}
		last, err := model.AddWeeks(base.Date, maxTries)
		if err != nil {
			return "", "", err
		}
		if last > to {
			to = last
		}
	}
	return from, to, nil
}

// Commit atomically creates the booking, its occurrences and the slot
// locks. The availability recheck runs inside the same transaction as the
// writes, so two commits racing for a triple cannot both pass it.
func (s *bookingService) Commit(ctx context.Context, req *model.CommitRequest) (*model.Booking, error) {
	s.sanitizeCommit(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	if dupes := duplicateSlots(req.Occurrences); len(dupes) > 0 {
		return nil, apperrors.Validation("request selects the same slot more than once",
			map[string]any{"duplicate_slots": dupes})
	}

	if req.IdempotencyKey != "" {
		existing, err := s.bookings.GetByIdempotencyKey(ctx, req.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			s.log.Info("idempotent commit replay", "booking_id", existing.ID, "idempotency_key", req.IdempotencyKey)
			return existing, nil
		}
	}

	count := len(req.Occurrences)
	tier, err := s.tiers.FindTierForCount(ctx, count)
	if err != nil {
		return nil, err
	}
	if tier == nil {
		return nil, bookingerrors.NoPriceTier(count)
	}
	total := count * tier.PricePerClass
	if req.ExpectedTotal != 0 && req.ExpectedTotal != total {
		return nil, bookingerrors.PriceMismatch(req.ExpectedTotal, total)
	}

	booking := &model.Booking{
		StudentName:     req.StudentName,
		Email:           req.Email,
		Phone:           req.Phone,
		Status:          model.StatusConfirmed,
		TotalPrice:      total,
		OccurrenceCount: count,
		IdempotencyKey:  req.IdempotencyKey,
		CreatedAt:       time.Now(),
	}

	err = s.tx.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.recheckAvailability(sessCtx, req.Occurrences); err != nil {
			return err
		}

		id, err := s.bookings.Insert(sessCtx, booking)
		if err != nil {
			return err
		}
		booking.ID = id

		occurrences := make([]model.BookingOccurrence, 0, count)
		locks := make([]*model.TeacherSlotLock, 0, count)
		for _, occ := range req.Occurrences {
			occ.ID = ""
			occ.BookingID = id
			occ.StudentName = req.StudentName
			occ.Status = model.StatusConfirmed
			if occ.Notes == "" {
				occ.Notes = req.Notes
			}
			occurrences = append(occurrences, occ)
			locks = append(locks, model.NewTeacherSlotLock(occ.Slot(), id, req.StudentName))
		}

		if err := s.bookings.InsertOccurrences(sessCtx, occurrences); err != nil {
			return err
		}
		return s.locks.InsertMany(sessCtx, locks)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("booking committed",
		"booking_id", booking.ID,
		"occurrences", count,
		"total_price", total)

	s.afterCommit(ctx, booking, req)
	return booking, nil
}

// recheckAvailability re-validates every target triple under the
// transaction session: holiday marks first, then existing slot locks.
func (s *bookingService) recheckAvailability(sessCtx mongo.SessionContext, occurrences []model.BookingOccurrence) error {
	dates := make([]string, 0, len(occurrences))
	lockIDs := make([]string, 0, len(occurrences))
	byLockID := make(map[string]model.SlotRef, len(occurrences))
	for _, occ := range occurrences {
		slot := occ.Slot()
		dates = append(dates, slot.Date)
		lockIDs = append(lockIDs, slot.LockID())
		byLockID[slot.LockID()] = slot
	}

	holidayDates, err := s.holidays.FindDates(sessCtx, dates)
	if err != nil {
		return err
	}
	if len(holidayDates) > 0 {
		return bookingerrors.HolidayConflict(holidayDates)
	}

	existing, err := s.locks.FindExisting(sessCtx, lockIDs)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		conflicting := make([]model.SlotRef, 0, len(existing))
		for _, lock := range existing {
			conflicting = append(conflicting, byLockID[lock.ID])
		}
		return bookingerrors.SlotConflict(conflicting)
	}
	return nil
}

// afterCommit runs the best-effort side effects: student upsert, index
// refresh, event publish. None of them can fail the commit.
func (s *bookingService) afterCommit(ctx context.Context, booking *model.Booking, req *model.CommitRequest) {
	student := &model.Student{Name: req.StudentName, Phone: req.Phone, Email: req.Email}
	if err := s.students.UpsertByPhone(ctx, student); err != nil {
		s.log.Warn("student upsert failed", "error", err, "booking_id", booking.ID)
	}

	if s.index != nil {
		if err := s.index.Refresh(ctx); err != nil {
			s.log.Warn("availability refresh failed", "error", err)
		}
	}

	if s.selections != nil {
		slots := make([]model.SlotRef, 0, len(req.Occurrences))
		for _, occ := range req.Occurrences {
			slots = append(slots, occ.Slot())
		}
		s.selections.Deselect(slots...)
	}

	s.publishBookingEvent(ctx, s.confirmedEvents, kafka.EventBookingConfirmed, booking)
}

func (s *bookingService) publishBookingEvent(ctx context.Context, publisher EventPublisher, eventType string, booking *model.Booking) {
	if publisher == nil {
		return
	}

	msg := kafka.NewMessage().
		WithKey(booking.ID).
		WithValue(kafka.BookingEvent{
			BookingID:       booking.ID,
			StudentName:     booking.StudentName,
			Phone:           booking.Phone,
			OccurrenceCount: booking.OccurrenceCount,
			TotalPrice:      booking.TotalPrice,
			Status:          booking.Status,
		}).
		WithEventType(eventType).
		WithSource(eventSource).
		Build()

	if err := publisher.Publish(ctx, msg); err != nil {
		s.log.Warn("failed to publish booking event", "error", err, "event_type", eventType, "booking_id", booking.ID)
	}
}

// Cancel removes the booking, its occurrences and its slot locks in one
// transaction. Partial cancellation is not allowed.
func (s *bookingService) Cancel(ctx context.Context, id string) error {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return err
	}

	err = s.tx.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		deleted, err := s.bookings.DeleteOccurrences(sessCtx, id)
		if err != nil {
			return err
		}
		removed, err := s.locks.DeleteByBookingID(sessCtx, id)
		if err != nil {
			return err
		}
		if deleted != removed {
			s.log.Warn("occurrence/lock count mismatch on cancel",
				"booking_id", id, "occurrences", deleted, "locks", removed)
		}
		return s.bookings.Delete(sessCtx, id)
	})
	if err != nil {
		return err
	}

	s.log.Info("booking cancelled", "booking_id", id, "occurrences", booking.OccurrenceCount)

	if s.index != nil {
		if err := s.index.Refresh(ctx); err != nil {
			s.log.Warn("availability refresh failed", "error", err)
		}
	}

	booking.Status = model.StatusCancelled
	s.publishBookingEvent(ctx, s.cancelledEvents, kafka.EventBookingCancelled, booking)
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*BookingDetail, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	occurrences, err := s.bookings.ListOccurrences(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	return &BookingDetail{Booking: *booking, Occurrences: occurrences}, nil
}

func (s *bookingService) List(ctx context.Context, limit int, offset int64) ([]model.Booking, int64, error) {
	return s.bookings.List(ctx, limit, offset)
}

// Availability reports the taken triples and holiday dates for a window.
// An empty window defaults to today through the visible horizon.
func (s *bookingService) Availability(ctx context.Context, from, to string) (*AvailabilityView, error) {
	if from == "" {
		from = time.Now().Format(model.DateLayout)
	}
	if to == "" {
		end, err := model.AddWeeks(from, s.cfg.VisibleWindowWeeks)
		if err != nil {
			return nil, apperrors.InvalidInput("invalid from date: " + from)
		}
		to = end
	}
	if _, err := model.ParseDate(from); err != nil {
		return nil, apperrors.InvalidInput("invalid from date: " + from)
	}
	if _, err := model.ParseDate(to); err != nil {
		return nil, apperrors.InvalidInput("invalid to date: " + to)
	}
	if to < from {
		return nil, apperrors.InvalidInput("to must not precede from")
	}

	booked, err := s.availRepo.ListConfirmedOccurrences(ctx, from, to)
	if err != nil {
		return nil, err
	}
	holidays, err := s.availRepo.ListHolidays(ctx, from, to)
	if err != nil {
		return nil, err
	}

	return &AvailabilityView{From: from, To: to, Booked: booked, Holidays: holidays}, nil
}

func (s *bookingService) sanitizeCommit(req *model.CommitRequest) {
	req.StudentName = sanitizer.NormalizeName(req.StudentName)
	req.Email = sanitizer.TrimAndNormalize(req.Email)
	req.Phone = sanitizer.NormalizePhone(req.Phone)
	req.Notes = sanitizer.NormalizeNotes(req.Notes)
	for i := range req.Occurrences {
		req.Occurrences[i].TeacherName = sanitizer.NormalizeName(req.Occurrences[i].TeacherName)
		req.Occurrences[i].Notes = sanitizer.NormalizeNotes(req.Occurrences[i].Notes)
		if req.Occurrences[i].Status == "" {
			req.Occurrences[i].Status = model.StatusConfirmed
		}
	}
}

// duplicateSlots returns lock ids selected more than once in one request.
func duplicateSlots(occurrences []model.BookingOccurrence) []string {
	seen := make(map[string]int, len(occurrences))
	for _, occ := range occurrences {
		seen[occ.Slot().LockID()]++
	}
	var dupes []string
	for id, n := range seen {
		if n > 1 {
			dupes = append(dupes, id)
		}
	}
	return dupes
}
