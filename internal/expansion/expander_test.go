package expansion

import (
	"testing"

	"lessondesk/internal/availability"
	apperrors "lessondesk/pkg/errors"
	"lessondesk/pkg/logger"
	"lessondesk/pkg/model"
)

type mockChecker struct {
	checkFunc func(slot model.SlotRef) availability.Status
}

func (m *mockChecker) Check(slot model.SlotRef) availability.Status {
	return m.checkFunc(slot)
}

func allFree() *mockChecker {
	return &mockChecker{checkFunc: func(model.SlotRef) availability.Status {
		return availability.Status{Available: true}
	}}
}

func blockedDates(reasons map[string]string) *mockChecker {
	return &mockChecker{checkFunc: func(slot model.SlotRef) availability.Status {
		if reason, ok := reasons[slot.Date]; ok {
			return availability.Status{Available: false, Reason: reason}
		}
		return availability.Status{Available: true}
	}}
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT})
}

func newTestExpander(checker Checker) *Expander {
	return NewExpander(checker, 4, 52, testLogger())
}

var baseMonday = model.SlotRef{Date: "2024-03-04", TimeSlot: "10:00", TeacherID: "507f1f77bcf86cd799439011"}

func TestExpandAllWeeksFree(t *testing.T) {
	e := newTestExpander(allFree())

	result, err := e.Expand([]model.SlotRef{baseMonday}, 3)
	if err != nil {
		t.Fatalf("Expand() returned error: %v", err)
	}

	base := result.Bases[0]
	if base.Found != 3 || base.Shortfall != 0 {
		t.Fatalf("Found = %d, Shortfall = %d, want 3 and 0", base.Found, base.Shortfall)
	}
	if len(base.Records) != 3 {
		t.Fatalf("got %d records, want 3", len(base.Records))
	}

	wantDates := []string{"2024-03-04", "2024-03-11", "2024-03-18"}
	for i, rec := range base.Records {
		if rec.Date != wantDates[i] {
			t.Errorf("record %d date = %s, want %s", i, rec.Date, wantDates[i])
		}
		if !rec.Available || rec.Skipped {
			t.Errorf("record %d should be available", i)
		}
		if rec.Week != i {
			t.Errorf("record %d week = %d, want %d", i, rec.Week, i)
		}
	}
}

func TestExpandSkipsConflictAndKeepsSearching(t *testing.T) {
	e := newTestExpander(blockedDates(map[string]string{
		"2024-03-11": availability.ReasonConflict,
	}))

	result, err := e.Expand([]model.SlotRef{baseMonday}, 3)
	if err != nil {
		t.Fatalf("Expand() returned error: %v", err)
	}

	base := result.Bases[0]
	if base.Found != 3 {
		t.Fatalf("Found = %d, want 3", base.Found)
	}
	if len(base.Records) != 4 {
		t.Fatalf("got %d records, want 4", len(base.Records))
	}

	want := []struct {
		date      string
		available bool
		reason    string
	}{
		{"2024-03-04", true, ""},
		{"2024-03-11", false, availability.ReasonConflict},
		{"2024-03-18", true, ""},
		{"2024-03-25", true, ""},
	}
	for i, w := range want {
		rec := base.Records[i]
		if rec.Date != w.date || rec.Available != w.available || rec.Reason != w.reason {
			t.Errorf("record %d = {%s available=%v reason=%q}, want {%s available=%v reason=%q}",
				i, rec.Date, rec.Available, rec.Reason, w.date, w.available, w.reason)
		}
	}
}

func TestExpandRecordsHolidayReason(t *testing.T) {
	e := newTestExpander(blockedDates(map[string]string{
		"2024-03-18": availability.ReasonHoliday,
	}))

	result, err := e.Expand([]model.SlotRef{baseMonday}, 3)
	if err != nil {
		t.Fatalf("Expand() returned error: %v", err)
	}

	base := result.Bases[0]
	if base.Found != 3 {
		t.Fatalf("Found = %d, want 3", base.Found)
	}

	var holidayRecord *Record
	for i := range base.Records {
		if base.Records[i].Date == "2024-03-18" {
			holidayRecord = &base.Records[i]
		}
	}
	if holidayRecord == nil {
		t.Fatal("2024-03-18 should appear in the records")
	}
	if !holidayRecord.Skipped || holidayRecord.Reason != availability.ReasonHoliday {
		t.Errorf("holiday record = {skipped=%v reason=%q}, want skipped with holiday reason",
			holidayRecord.Skipped, holidayRecord.Reason)
	}
}

func TestExpandHaltsAtSearchBound(t *testing.T) {
	// Free for the first two weeks, then permanently blocked.
	checker := &mockChecker{checkFunc: func(slot model.SlotRef) availability.Status {
		if slot.Date <= "2024-03-11" {
			return availability.Status{Available: true}
		}
		return availability.Status{Available: false, Reason: availability.ReasonConflict}
	}}
	e := newTestExpander(checker)

	result, err := e.Expand([]model.SlotRef{baseMonday}, 10)
	if err != nil {
		t.Fatalf("Expand() returned error: %v", err)
	}

	base := result.Bases[0]
	if len(base.Records) != 40 {
		t.Errorf("got %d records, want 40 (the search bound)", len(base.Records))
	}
	if base.Found != 2 {
		t.Errorf("Found = %d, want 2", base.Found)
	}
	if base.Shortfall != 8 {
		t.Errorf("Shortfall = %d, want 8", base.Shortfall)
	}
	if !result.HasShortfall() {
		t.Error("result should report a shortfall")
	}
}

func TestExpandDeterministic(t *testing.T) {
	e := newTestExpander(blockedDates(map[string]string{
		"2024-03-11": availability.ReasonConflict,
		"2024-03-25": availability.ReasonHoliday,
	}))

	first, err := e.Expand([]model.SlotRef{baseMonday}, 4)
	if err != nil {
		t.Fatalf("Expand() returned error: %v", err)
	}
	second, err := e.Expand([]model.SlotRef{baseMonday}, 4)
	if err != nil {
		t.Fatalf("Expand() returned error: %v", err)
	}

	a, b := first.Bases[0], second.Bases[0]
	if len(a.Records) != len(b.Records) || a.Found != b.Found {
		t.Fatalf("runs differ: %d/%d records, %d/%d found",
			len(a.Records), len(b.Records), a.Found, b.Found)
	}
	for i := range a.Records {
		if a.Records[i] != b.Records[i] {
			t.Errorf("record %d differs: %+v vs %+v", i, a.Records[i], b.Records[i])
		}
	}
}

func TestExpandTwoBasesCannotClaimSameSlot(t *testing.T) {
	e := newTestExpander(allFree())

	// Identical base selections compete for the same triples: the second
	// base must be pushed to later weeks.
	result, err := e.Expand([]model.SlotRef{baseMonday, baseMonday}, 2)
	if err != nil {
		t.Fatalf("Expand() returned error: %v", err)
	}

	seen := make(map[string]int)
	for _, slot := range result.Available() {
		seen[slot.Key()]++
	}
	for key, count := range seen {
		if count > 1 {
			t.Errorf("slot %s claimed %d times in one run", key, count)
		}
	}
	if result.TotalAvailable != 4 {
		t.Errorf("TotalAvailable = %d, want 4", result.TotalAvailable)
	}
}

func TestExpandInputValidation(t *testing.T) {
	e := newTestExpander(allFree())

	tests := []struct {
		name  string
		bases []model.SlotRef
		weeks int
	}{
		{"no bases", nil, 3},
		{"zero weeks", []model.SlotRef{baseMonday}, 0},
		{"weeks over cap", []model.SlotRef{baseMonday}, 53},
		{"bad base date", []model.SlotRef{{Date: "04/03/2024", TimeSlot: "10:00", TeacherID: "507f1f77bcf86cd799439011"}}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Expand(tt.bases, tt.weeks)
			if err == nil {
				t.Fatal("expected an error")
			}
			if code := apperrors.AsAppError(err).Code; code != apperrors.CodeInvalidInput {
				t.Errorf("Code = %s, want %s", code, apperrors.CodeInvalidInput)
			}
		})
	}
}
