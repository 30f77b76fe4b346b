package service

import (
	"context"
	"testing"

	"lessondesk/internal/availability"
	"lessondesk/pkg/kafka"
	"lessondesk/pkg/logger"
	"lessondesk/pkg/model"

	apperrors "lessondesk/pkg/errors"

	"go.mongodb.org/mongo-driver/mongo"

	mongodb "lessondesk/pkg/db/mongo"
)

type mockBookingRepo struct {
	insertFunc             func(ctx context.Context, booking *model.Booking) (string, error)
	insertOccurrencesFunc  func(ctx context.Context, occurrences []model.BookingOccurrence) error
	getByIDFunc            func(ctx context.Context, id string) (*model.Booking, error)
	getByIdempotencyFunc   func(ctx context.Context, key string) (*model.Booking, error)
	listFunc               func(ctx context.Context, limit int, offset int64) ([]model.Booking, int64, error)
	listOccurrencesFunc    func(ctx context.Context, bookingID string) ([]model.BookingOccurrence, error)
	deleteFunc             func(ctx context.Context, id string) error
	deleteOccurrencesFunc  func(ctx context.Context, bookingID string) (int64, error)
}

func (m *mockBookingRepo) Insert(ctx context.Context, booking *model.Booking) (string, error) {
	return m.insertFunc(ctx, booking)
}
func (m *mockBookingRepo) InsertOccurrences(ctx context.Context, occurrences []model.BookingOccurrence) error {
	return m.insertOccurrencesFunc(ctx, occurrences)
}
func (m *mockBookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	return m.getByIDFunc(ctx, id)
}
func (m *mockBookingRepo) GetByIdempotencyKey(ctx context.Context, key string) (*model.Booking, error) {
	return m.getByIdempotencyFunc(ctx, key)
}
func (m *mockBookingRepo) List(ctx context.Context, limit int, offset int64) ([]model.Booking, int64, error) {
	return m.listFunc(ctx, limit, offset)
}
func (m *mockBookingRepo) ListOccurrences(ctx context.Context, bookingID string) ([]model.BookingOccurrence, error) {
	return m.listOccurrencesFunc(ctx, bookingID)
}
func (m *mockBookingRepo) Delete(ctx context.Context, id string) error {
	return m.deleteFunc(ctx, id)
}
func (m *mockBookingRepo) DeleteOccurrences(ctx context.Context, bookingID string) (int64, error) {
	return m.deleteOccurrencesFunc(ctx, bookingID)
}

type mockLockRepo struct {
	insertManyFunc        func(ctx context.Context, locks []*model.TeacherSlotLock) error
	findExistingFunc      func(ctx context.Context, ids []string) ([]model.TeacherSlotLock, error)
	deleteByBookingIDFunc func(ctx context.Context, bookingID string) (int64, error)
}

func (m *mockLockRepo) InsertMany(ctx context.Context, locks []*model.TeacherSlotLock) error {
	return m.insertManyFunc(ctx, locks)
}
func (m *mockLockRepo) FindExisting(ctx context.Context, ids []string) ([]model.TeacherSlotLock, error) {
	return m.findExistingFunc(ctx, ids)
}
func (m *mockLockRepo) DeleteByBookingID(ctx context.Context, bookingID string) (int64, error) {
	return m.deleteByBookingIDFunc(ctx, bookingID)
}

type mockStudentRepo struct {
	upserted []*model.Student
}

func (m *mockStudentRepo) UpsertByPhone(ctx context.Context, student *model.Student) error {
	m.upserted = append(m.upserted, student)
	return nil
}

type mockHolidayRepo struct {
	findDatesFunc func(ctx context.Context, dates []string) ([]string, error)
}

func (m *mockHolidayRepo) FindDates(ctx context.Context, dates []string) ([]string, error) {
	return m.findDatesFunc(ctx, dates)
}

type mockAvailRepo struct {
	occurrences []model.BookingOccurrence
	holidays    []model.HolidayMark
}

func (m *mockAvailRepo) ListConfirmedOccurrences(ctx context.Context, from, to string) ([]model.BookingOccurrence, error) {
	return m.occurrences, nil
}
func (m *mockAvailRepo) ListHolidays(ctx context.Context, from, to string) ([]model.HolidayMark, error) {
	return m.holidays, nil
}

type mockTiers struct {
	tier *model.PriceTier
	err  error
}

func (m *mockTiers) FindTierForCount(ctx context.Context, count int) (*model.PriceTier, error) {
	return m.tier, m.err
}

// mockTxManager runs the transaction function directly; the repositories
// behind it are mocks, so no real session is needed.
type mockTxManager struct {
	executed bool
}

func (m *mockTxManager) ExecuteTransaction(ctx context.Context, fn mongodb.TransactionFunc) error {
	m.executed = true
	return fn(mongo.SessionContext(nil))
}

type mockPublisher struct {
	published []kafka.Message
	err       error
}

func (m *mockPublisher) Publish(ctx context.Context, msg kafka.Message) error {
	m.published = append(m.published, msg)
	return m.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT})
}

const (
	teacherA  = "507f1f77bcf86cd799439011"
	bookingID = "665f1f77bcf86cd799439100"
)

type fixture struct {
	bookings  *mockBookingRepo
	locks     *mockLockRepo
	students  *mockStudentRepo
	holidays  *mockHolidayRepo
	avail     *mockAvailRepo
	tiers     *mockTiers
	tx        *mockTxManager
	confirmed *mockPublisher
	cancelled *mockPublisher
	service   Service
}

func newFixture() *fixture {
	f := &fixture{
		bookings: &mockBookingRepo{
			insertFunc: func(ctx context.Context, booking *model.Booking) (string, error) {
				return bookingID, nil
			},
			insertOccurrencesFunc: func(ctx context.Context, occurrences []model.BookingOccurrence) error {
				return nil
			},
			getByIdempotencyFunc: func(ctx context.Context, key string) (*model.Booking, error) {
				return nil, nil
			},
		},
		locks: &mockLockRepo{
			insertManyFunc: func(ctx context.Context, locks []*model.TeacherSlotLock) error {
				return nil
			},
			findExistingFunc: func(ctx context.Context, ids []string) ([]model.TeacherSlotLock, error) {
				return nil, nil
			},
		},
		students: &mockStudentRepo{},
		holidays: &mockHolidayRepo{
			findDatesFunc: func(ctx context.Context, dates []string) ([]string, error) {
				return nil, nil
			},
		},
		avail:     &mockAvailRepo{},
		tiers:     &mockTiers{tier: &model.PriceTier{MinClasses: 1, MaxClasses: 10, PricePerClass: 120}},
		tx:        &mockTxManager{},
		confirmed: &mockPublisher{},
		cancelled: &mockPublisher{},
	}

	f.service = NewBookingService(
		f.bookings, f.locks, f.students, f.holidays, f.avail, f.tiers, f.tx,
		nil, nil, f.confirmed, f.cancelled,
		Config{ExpansionTriesMultiplier: 4, MaxRecurrenceWeeks: 52, VisibleWindowWeeks: 4},
		testLogger(),
	)
	return f
}

func validCommitRequest() *model.CommitRequest {
	return &model.CommitRequest{
		StudentName: "Dana Levi",
		Phone:       "+972541234567",
		Occurrences: []model.BookingOccurrence{
			{Date: "2026-09-07", TimeSlot: "15:00", TeacherID: teacherA},
			{Date: "2026-09-14", TimeSlot: "15:00", TeacherID: teacherA},
			{Date: "2026-09-21", TimeSlot: "15:00", TeacherID: teacherA},
		},
	}
}

func TestCommitSuccess(t *testing.T) {
	f := newFixture()

	var insertedOccurrences []model.BookingOccurrence
	var insertedLocks []*model.TeacherSlotLock
	f.bookings.insertOccurrencesFunc = func(ctx context.Context, occurrences []model.BookingOccurrence) error {
		insertedOccurrences = occurrences
		return nil
	}
	f.locks.insertManyFunc = func(ctx context.Context, locks []*model.TeacherSlotLock) error {
		insertedLocks = locks
		return nil
	}

	booking, err := f.service.Commit(context.Background(), validCommitRequest())
	if err != nil {
		t.Fatalf("Commit() returned error: %v", err)
	}

	if booking.ID != bookingID {
		t.Errorf("booking ID = %s, want %s", booking.ID, bookingID)
	}
	if booking.TotalPrice != 3*120 {
		t.Errorf("TotalPrice = %d, want %d", booking.TotalPrice, 3*120)
	}
	if booking.OccurrenceCount != 3 {
		t.Errorf("OccurrenceCount = %d, want 3", booking.OccurrenceCount)
	}

	if len(insertedOccurrences) != 3 || len(insertedLocks) != 3 {
		t.Fatalf("inserted %d occurrences and %d locks, want 3 and 3",
			len(insertedOccurrences), len(insertedLocks))
	}
	for i, occ := range insertedOccurrences {
		if occ.BookingID != bookingID {
			t.Errorf("occurrence %d booking id = %s, want %s", i, occ.BookingID, bookingID)
		}
		if occ.Status != model.StatusConfirmed {
			t.Errorf("occurrence %d status = %s, want confirmed", i, occ.Status)
		}
	}
	for i, lock := range insertedLocks {
		if lock.BookingID != bookingID {
			t.Errorf("lock %d booking id = %s, want %s", i, lock.BookingID, bookingID)
		}
	}
	if insertedLocks[0].ID != teacherA+"/2026-09-07_15:00" {
		t.Errorf("lock id = %s, want %s", insertedLocks[0].ID, teacherA+"/2026-09-07_15:00")
	}

	if len(f.students.upserted) != 1 {
		t.Errorf("student upserted %d times, want 1", len(f.students.upserted))
	}
	if len(f.confirmed.published) != 1 {
		t.Errorf("published %d confirmed events, want 1", len(f.confirmed.published))
	}
	if got := f.confirmed.published[0].GetEventType(); got != kafka.EventBookingConfirmed {
		t.Errorf("event type = %s, want %s", got, kafka.EventBookingConfirmed)
	}
}

func TestCommitConflictAbortsWithoutWrites(t *testing.T) {
	f := newFixture()

	f.locks.findExistingFunc = func(ctx context.Context, ids []string) ([]model.TeacherSlotLock, error) {
		return []model.TeacherSlotLock{{
			ID:        teacherA + "/2026-09-14_15:00",
			TeacherID: teacherA,
			Date:      "2026-09-14",
			TimeSlot:  "15:00",
			BookingID: "someone-else",
		}}, nil
	}
	f.bookings.insertFunc = func(ctx context.Context, booking *model.Booking) (string, error) {
		t.Fatal("booking must not be inserted when the recheck finds a conflict")
		return "", nil
	}

	_, err := f.service.Commit(context.Background(), validCommitRequest())
	if err == nil {
		t.Fatal("expected ConflictError")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeConflict {
		t.Fatalf("Code = %s, want %s", appErr.Code, apperrors.CodeConflict)
	}
	slots, ok := appErr.Details["conflicting_slots"].([]string)
	if !ok || len(slots) != 1 {
		t.Fatalf("Details[conflicting_slots] = %v, want one entry", appErr.Details["conflicting_slots"])
	}
	if slots[0] != "2026-09-14|15:00|"+teacherA {
		t.Errorf("conflicting slot = %s", slots[0])
	}

	if len(f.students.upserted) != 0 {
		t.Error("student must not be upserted on conflict")
	}
	if len(f.confirmed.published) != 0 {
		t.Error("no event may be published on conflict")
	}
}

func TestCommitHolidayConflict(t *testing.T) {
	f := newFixture()

	f.holidays.findDatesFunc = func(ctx context.Context, dates []string) ([]string, error) {
		return []string{"2026-09-21"}, nil
	}
	f.bookings.insertFunc = func(ctx context.Context, booking *model.Booking) (string, error) {
		t.Fatal("booking must not be inserted when a date is holiday-blocked")
		return "", nil
	}

	_, err := f.service.Commit(context.Background(), validCommitRequest())
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeConflict {
		t.Fatalf("Code = %s, want %s", appErr.Code, apperrors.CodeConflict)
	}
	dates, ok := appErr.Details["holiday_dates"].([]string)
	if !ok || len(dates) != 1 || dates[0] != "2026-09-21" {
		t.Errorf("Details[holiday_dates] = %v, want [2026-09-21]", appErr.Details["holiday_dates"])
	}
}

func TestCommitValidation(t *testing.T) {
	f := newFixture()

	tests := []struct {
		name   string
		mutate func(req *model.CommitRequest)
	}{
		{"missing student name", func(req *model.CommitRequest) { req.StudentName = "" }},
		{"missing phone", func(req *model.CommitRequest) { req.Phone = "" }},
		{"no occurrences", func(req *model.CommitRequest) { req.Occurrences = nil }},
		{"bad occurrence date", func(req *model.CommitRequest) { req.Occurrences[0].Date = "07-09-2026" }},
		{"bad occurrence time", func(req *model.CommitRequest) { req.Occurrences[0].TimeSlot = "3pm" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCommitRequest()
			tt.mutate(req)

			_, err := f.service.Commit(context.Background(), req)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if code := apperrors.AsAppError(err).Code; code != apperrors.CodeValidation {
				t.Errorf("Code = %s, want %s", code, apperrors.CodeValidation)
			}
		})
	}
}

func TestCommitRejectsDuplicateSlotInRequest(t *testing.T) {
	f := newFixture()

	req := validCommitRequest()
	req.Occurrences = append(req.Occurrences, req.Occurrences[0])

	_, err := f.service.Commit(context.Background(), req)
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if code := apperrors.AsAppError(err).Code; code != apperrors.CodeValidation {
		t.Errorf("Code = %s, want %s", code, apperrors.CodeValidation)
	}
}

func TestCommitIdempotentReplay(t *testing.T) {
	f := newFixture()

	existing := &model.Booking{ID: bookingID, StudentName: "Dana Levi", Status: model.StatusConfirmed}
	f.bookings.getByIdempotencyFunc = func(ctx context.Context, key string) (*model.Booking, error) {
		return existing, nil
	}

	req := validCommitRequest()
	req.IdempotencyKey = "0b3f9f7e-9f0a-4d2c-8a3e-0f6d4b8f2a71"

	booking, err := f.service.Commit(context.Background(), req)
	if err != nil {
		t.Fatalf("Commit() returned error: %v", err)
	}
	if booking != existing {
		t.Error("replay must return the already-committed booking")
	}
	if f.tx.executed {
		t.Error("no transaction may run on an idempotent replay")
	}
}

func TestCommitPriceMismatch(t *testing.T) {
	f := newFixture()

	req := validCommitRequest()
	req.ExpectedTotal = 999 // tier gives 3 * 120 = 360

	_, err := f.service.Commit(context.Background(), req)
	if code := apperrors.AsAppError(err).Code; code != apperrors.CodeConflict {
		t.Errorf("Code = %s, want %s", code, apperrors.CodeConflict)
	}
	if f.tx.executed {
		t.Error("no transaction may run on a price mismatch")
	}
}

func TestCommitNoPriceTier(t *testing.T) {
	f := newFixture()
	f.tiers.tier = nil

	_, err := f.service.Commit(context.Background(), validCommitRequest())
	if code := apperrors.AsAppError(err).Code; code != apperrors.CodeValidation {
		t.Errorf("Code = %s, want %s", code, apperrors.CodeValidation)
	}
}

func TestCancelRemovesAllThreeFamilies(t *testing.T) {
	f := newFixture()

	var deletedOccurrences, deletedLocks, deletedBooking bool
	f.bookings.getByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return &model.Booking{ID: bookingID, StudentName: "Dana Levi", Status: model.StatusConfirmed, OccurrenceCount: 3}, nil
	}
	f.bookings.deleteOccurrencesFunc = func(ctx context.Context, id string) (int64, error) {
		deletedOccurrences = true
		return 3, nil
	}
	f.locks.deleteByBookingIDFunc = func(ctx context.Context, id string) (int64, error) {
		deletedLocks = true
		return 3, nil
	}
	f.bookings.deleteFunc = func(ctx context.Context, id string) error {
		deletedBooking = true
		return nil
	}

	if err := f.service.Cancel(context.Background(), bookingID); err != nil {
		t.Fatalf("Cancel() returned error: %v", err)
	}

	if !deletedOccurrences || !deletedLocks || !deletedBooking {
		t.Errorf("cancel removed occurrences=%v locks=%v booking=%v, want all three",
			deletedOccurrences, deletedLocks, deletedBooking)
	}
	if len(f.cancelled.published) != 1 {
		t.Fatalf("published %d cancelled events, want 1", len(f.cancelled.published))
	}
	if got := f.cancelled.published[0].GetEventType(); got != kafka.EventBookingCancelled {
		t.Errorf("event type = %s, want %s", got, kafka.EventBookingCancelled)
	}
}

func TestCancelNotFound(t *testing.T) {
	f := newFixture()

	f.bookings.getByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return nil, apperrors.NotFoundWithID("booking", id)
	}

	err := f.service.Cancel(context.Background(), bookingID)
	if code := apperrors.AsAppError(err).Code; code != apperrors.CodeNotFound {
		t.Errorf("Code = %s, want %s", code, apperrors.CodeNotFound)
	}
	if f.tx.executed {
		t.Error("no transaction may run for an unknown booking")
	}
}

func TestExpandUsesFreshSnapshot(t *testing.T) {
	f := newFixture()

	f.avail.occurrences = []model.BookingOccurrence{
		{BookingID: "other", Date: "2026-09-14", TimeSlot: "15:00", TeacherID: teacherA, Status: model.StatusConfirmed},
	}

	result, err := f.service.Expand(context.Background(), &ExpandRequest{
		Bases: []model.SlotRef{{Date: "2026-09-07", TimeSlot: "15:00", TeacherID: teacherA}},
		Weeks: 3,
	})
	if err != nil {
		t.Fatalf("Expand() returned error: %v", err)
	}

	base := result.Bases[0]
	if base.Found != 3 {
		t.Errorf("Found = %d, want 3", base.Found)
	}
	if len(base.Records) != 4 {
		t.Fatalf("got %d records, want 4", len(base.Records))
	}
	if !base.Records[1].Skipped || base.Records[1].Reason != availability.ReasonConflict {
		t.Errorf("record for 2026-09-14 = %+v, want skipped with conflict reason", base.Records[1])
	}
	if result.PricedTotal != 360 || result.PricePerClass != 120 {
		t.Errorf("priced preview = %d at %d per class, want 360 at 120",
			result.PricedTotal, result.PricePerClass)
	}
}

func TestExpandWithoutTierLeavesPriceZero(t *testing.T) {
	f := newFixture()
	f.tiers.tier = nil

	result, err := f.service.Expand(context.Background(), &ExpandRequest{
		Bases: []model.SlotRef{{Date: "2026-09-07", TimeSlot: "15:00", TeacherID: teacherA}},
		Weeks: 2,
	})
	if err != nil {
		t.Fatalf("Expand() returned error: %v", err)
	}
	if result.PricedTotal != 0 || result.PricePerClass != 0 {
		t.Errorf("priced preview = %d at %d per class, want zeros without a tier",
			result.PricedTotal, result.PricePerClass)
	}
}

func TestExpandRejectsWeeksOverCap(t *testing.T) {
	f := newFixture()

	_, err := f.service.Expand(context.Background(), &ExpandRequest{
		Bases: []model.SlotRef{{Date: "2026-09-07", TimeSlot: "15:00", TeacherID: teacherA}},
		Weeks: 53,
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if code := apperrors.AsAppError(err).Code; code != apperrors.CodeInvalidInput {
		t.Errorf("Code = %s, want %s", code, apperrors.CodeInvalidInput)
	}
}

func TestAvailabilityWindowValidation(t *testing.T) {
	f := newFixture()

	if _, err := f.service.Availability(context.Background(), "2026-09-30", "2026-09-01"); err == nil {
		t.Error("inverted window must be rejected")
	}
	if _, err := f.service.Availability(context.Background(), "not-a-date", "2026-09-30"); err == nil {
		t.Error("malformed from date must be rejected")
	}

	view, err := f.service.Availability(context.Background(), "2026-09-01", "2026-09-30")
	if err != nil {
		t.Fatalf("Availability() returned error: %v", err)
	}
	if view.From != "2026-09-01" || view.To != "2026-09-30" {
		t.Errorf("window = %s..%s", view.From, view.To)
	}
}
