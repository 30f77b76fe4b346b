package availability

import (
	"context"
	"errors"
	"testing"

	"lessondesk/pkg/logger"
	"lessondesk/pkg/model"
)

type mockRepository struct {
	listOccurrencesFunc func(ctx context.Context, from, to string) ([]model.BookingOccurrence, error)
	listHolidaysFunc    func(ctx context.Context, from, to string) ([]model.HolidayMark, error)
}

func (m *mockRepository) ListConfirmedOccurrences(ctx context.Context, from, to string) ([]model.BookingOccurrence, error) {
	return m.listOccurrencesFunc(ctx, from, to)
}

func (m *mockRepository) ListHolidays(ctx context.Context, from, to string) ([]model.HolidayMark, error) {
	return m.listHolidaysFunc(ctx, from, to)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT})
}

func loadedIndex(t *testing.T, occurrences []model.BookingOccurrence, holidays []model.HolidayMark) *Index {
	t.Helper()

	repo := &mockRepository{
		listOccurrencesFunc: func(ctx context.Context, from, to string) ([]model.BookingOccurrence, error) {
			return occurrences, nil
		},
		listHolidaysFunc: func(ctx context.Context, from, to string) ([]model.HolidayMark, error) {
			return holidays, nil
		},
	}

	idx := NewIndex(repo, testLogger())
	if err := idx.Load(context.Background(), "2026-09-01", "2026-09-30"); err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	return idx
}

func TestIndexCheck(t *testing.T) {
	occurrences := []model.BookingOccurrence{
		{
			BookingID:   "665f1f77bcf86cd799439100",
			Date:        "2026-09-07",
			TimeSlot:    "15:00",
			TeacherID:   "507f1f77bcf86cd799439011",
			StudentName: "Dana Levi",
			Status:      model.StatusConfirmed,
		},
	}
	holidays := []model.HolidayMark{
		{Date: "2026-09-14", Label: "rosh hashana"},
	}

	idx := loadedIndex(t, occurrences, holidays)

	tests := []struct {
		name          string
		slot          model.SlotRef
		wantAvailable bool
		wantReason    string
	}{
		{
			name:          "free slot",
			slot:          model.SlotRef{Date: "2026-09-21", TimeSlot: "15:00", TeacherID: "507f1f77bcf86cd799439011"},
			wantAvailable: true,
		},
		{
			name:          "booked slot",
			slot:          model.SlotRef{Date: "2026-09-07", TimeSlot: "15:00", TeacherID: "507f1f77bcf86cd799439011"},
			wantAvailable: false,
			wantReason:    ReasonConflict,
		},
		{
			name:          "same date and time, different teacher",
			slot:          model.SlotRef{Date: "2026-09-07", TimeSlot: "15:00", TeacherID: "507f1f77bcf86cd799439022"},
			wantAvailable: true,
		},
		{
			name:          "holiday blocks every teacher",
			slot:          model.SlotRef{Date: "2026-09-14", TimeSlot: "15:00", TeacherID: "507f1f77bcf86cd799439022"},
			wantAvailable: false,
			wantReason:    ReasonHoliday,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := idx.Check(tt.slot)
			if status.Available != tt.wantAvailable {
				t.Errorf("Check(%s).Available = %v, want %v", tt.slot, status.Available, tt.wantAvailable)
			}
			if status.Reason != tt.wantReason {
				t.Errorf("Check(%s).Reason = %q, want %q", tt.slot, status.Reason, tt.wantReason)
			}
		})
	}
}

func TestIndexHolidayWinsOverConflict(t *testing.T) {
	occurrences := []model.BookingOccurrence{
		{
			BookingID: "665f1f77bcf86cd799439100",
			Date:      "2026-09-14",
			TimeSlot:  "15:00",
			TeacherID: "507f1f77bcf86cd799439011",
			Status:    model.StatusConfirmed,
		},
	}
	holidays := []model.HolidayMark{{Date: "2026-09-14", Label: "rosh hashana"}}

	idx := loadedIndex(t, occurrences, holidays)

	status := idx.Check(model.SlotRef{Date: "2026-09-14", TimeSlot: "15:00", TeacherID: "507f1f77bcf86cd799439011"})
	if status.Available {
		t.Fatal("expected slot to be unavailable")
	}
	if status.Reason != ReasonHoliday {
		t.Errorf("Reason = %q, want %q", status.Reason, ReasonHoliday)
	}
}

func TestIndexEmptyWindow(t *testing.T) {
	idx := loadedIndex(t, nil, nil)

	slot := model.SlotRef{Date: "2026-09-07", TimeSlot: "15:00", TeacherID: "507f1f77bcf86cd799439011"}
	if !idx.IsAvailable(slot) {
		t.Error("empty snapshot should report every slot as available")
	}
}

func TestIndexRefreshReloadsWindow(t *testing.T) {
	calls := 0
	var occurrences []model.BookingOccurrence

	repo := &mockRepository{
		listOccurrencesFunc: func(ctx context.Context, from, to string) ([]model.BookingOccurrence, error) {
			calls++
			if from != "2026-09-01" || to != "2026-09-30" {
				t.Errorf("unexpected window: %s..%s", from, to)
			}
			return occurrences, nil
		},
		listHolidaysFunc: func(ctx context.Context, from, to string) ([]model.HolidayMark, error) {
			return nil, nil
		},
	}

	idx := NewIndex(repo, testLogger())
	if err := idx.Load(context.Background(), "2026-09-01", "2026-09-30"); err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	slot := model.SlotRef{Date: "2026-09-07", TimeSlot: "15:00", TeacherID: "507f1f77bcf86cd799439011"}
	if !idx.IsAvailable(slot) {
		t.Fatal("slot should be free before refresh")
	}

	occurrences = []model.BookingOccurrence{
		{BookingID: "665f1f77bcf86cd799439100", Date: "2026-09-07", TimeSlot: "15:00", TeacherID: "507f1f77bcf86cd799439011", Status: model.StatusConfirmed},
	}
	if err := idx.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() returned error: %v", err)
	}

	if idx.IsAvailable(slot) {
		t.Error("slot should be taken after refresh")
	}
	if calls != 2 {
		t.Errorf("repository called %d times, want 2", calls)
	}
}

func TestIndexRefreshBeforeLoadIsNoop(t *testing.T) {
	repo := &mockRepository{
		listOccurrencesFunc: func(ctx context.Context, from, to string) ([]model.BookingOccurrence, error) {
			t.Fatal("repository should not be queried before the first Load")
			return nil, nil
		},
		listHolidaysFunc: func(ctx context.Context, from, to string) ([]model.HolidayMark, error) {
			return nil, nil
		},
	}

	idx := NewIndex(repo, testLogger())
	if err := idx.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() returned error: %v", err)
	}
}

func TestIndexLoadPropagatesRepositoryError(t *testing.T) {
	wantErr := errors.New("connection reset")
	repo := &mockRepository{
		listOccurrencesFunc: func(ctx context.Context, from, to string) ([]model.BookingOccurrence, error) {
			return nil, wantErr
		},
		listHolidaysFunc: func(ctx context.Context, from, to string) ([]model.HolidayMark, error) {
			return nil, nil
		},
	}

	idx := NewIndex(repo, testLogger())
	if err := idx.Load(context.Background(), "2026-09-01", "2026-09-30"); !errors.Is(err, wantErr) {
		t.Errorf("Load() error = %v, want %v", err, wantErr)
	}
}

func TestIndexCoverMergesWindows(t *testing.T) {
	var queriedFrom, queriedTo string
	booked := model.BookingOccurrence{
		BookingID: "665f1f77bcf86cd799439100",
		Date:      "2026-10-19",
		TimeSlot:  "10:00",
		TeacherID: "507f1f77bcf86cd799439011",
		Status:    model.StatusConfirmed,
	}
	repo := &mockRepository{
		listOccurrencesFunc: func(ctx context.Context, from, to string) ([]model.BookingOccurrence, error) {
			queriedFrom, queriedTo = from, to
			if booked.Date >= from && booked.Date <= to {
				return []model.BookingOccurrence{booked}, nil
			}
			return nil, nil
		},
		listHolidaysFunc: func(ctx context.Context, from, to string) ([]model.HolidayMark, error) {
			return nil, nil
		},
	}

	idx := NewIndex(repo, testLogger())
	if err := idx.Load(context.Background(), "2026-09-01", "2026-09-30"); err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if !idx.IsAvailable(booked.Slot()) {
		t.Fatal("slot outside the loaded window must read as free before Cover")
	}

	if err := idx.Cover(context.Background(), "2026-10-01", "2026-10-31"); err != nil {
		t.Fatalf("Cover() returned error: %v", err)
	}
	if queriedFrom != "2026-09-01" || queriedTo != "2026-10-31" {
		t.Errorf("Cover queried [%s, %s], want the merged [2026-09-01, 2026-10-31]", queriedFrom, queriedTo)
	}
	if idx.IsAvailable(booked.Slot()) {
		t.Error("booked slot inside the widened window must read as taken")
	}
	if from, to := idx.Window(); from != "2026-09-01" || to != "2026-10-31" {
		t.Errorf("Window() = [%s, %s], want [2026-09-01, 2026-10-31]", from, to)
	}
}

func TestIndexCoverBeforeLoadActsAsLoad(t *testing.T) {
	repo := &mockRepository{
		listOccurrencesFunc: func(ctx context.Context, from, to string) ([]model.BookingOccurrence, error) {
			return nil, nil
		},
		listHolidaysFunc: func(ctx context.Context, from, to string) ([]model.HolidayMark, error) {
			return nil, nil
		},
	}

	idx := NewIndex(repo, testLogger())
	if err := idx.Cover(context.Background(), "2026-09-01", "2026-09-30"); err != nil {
		t.Fatalf("Cover() returned error: %v", err)
	}
	if from, to := idx.Window(); from != "2026-09-01" || to != "2026-09-30" {
		t.Errorf("Window() = [%s, %s], want [2026-09-01, 2026-09-30]", from, to)
	}
}
