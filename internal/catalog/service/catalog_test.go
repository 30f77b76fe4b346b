package service

import (
	"context"
	"testing"

	apperrors "lessondesk/pkg/errors"
	"lessondesk/pkg/logger"
	"lessondesk/pkg/model"
)

type mockTimeSlotRepo struct {
	createFunc func(ctx context.Context, def *model.TimeSlotDefinition) (string, error)
	updateFunc func(ctx context.Context, id string, update *model.TimeSlotDefinitionUpdate) error
}

func (m *mockTimeSlotRepo) Create(ctx context.Context, def *model.TimeSlotDefinition) (string, error) {
	return m.createFunc(ctx, def)
}
func (m *mockTimeSlotRepo) GetByID(ctx context.Context, id string) (*model.TimeSlotDefinition, error) {
	return nil, nil
}
func (m *mockTimeSlotRepo) List(ctx context.Context, limit int, offset int64) ([]model.TimeSlotDefinition, int64, error) {
	return nil, 0, nil
}
func (m *mockTimeSlotRepo) Update(ctx context.Context, id string, update *model.TimeSlotDefinitionUpdate) error {
	return m.updateFunc(ctx, id, update)
}
func (m *mockTimeSlotRepo) Delete(ctx context.Context, id string) error { return nil }

type mockTeacherRepo struct {
	createFunc func(ctx context.Context, teacher *model.Teacher) (string, error)
}

func (m *mockTeacherRepo) Create(ctx context.Context, teacher *model.Teacher) (string, error) {
	return m.createFunc(ctx, teacher)
}
func (m *mockTeacherRepo) GetByID(ctx context.Context, id string) (*model.Teacher, error) {
	return nil, nil
}
func (m *mockTeacherRepo) List(ctx context.Context, limit int, offset int64) ([]model.Teacher, int64, error) {
	return nil, 0, nil
}
func (m *mockTeacherRepo) Update(ctx context.Context, id string, update *model.TeacherUpdate) error {
	return nil
}
func (m *mockTeacherRepo) Delete(ctx context.Context, id string) error { return nil }

type mockHolidayRepo struct {
	createFunc func(ctx context.Context, mark *model.HolidayMark) (string, error)
}

func (m *mockHolidayRepo) Create(ctx context.Context, mark *model.HolidayMark) (string, error) {
	return m.createFunc(ctx, mark)
}
func (m *mockHolidayRepo) List(ctx context.Context, from, to string) ([]model.HolidayMark, error) {
	return nil, nil
}
func (m *mockHolidayRepo) Delete(ctx context.Context, id string) error { return nil }

type mockPriceTierRepo struct {
	tiers      []model.PriceTier
	createFunc func(ctx context.Context, tier *model.PriceTier) (string, error)
}

func (m *mockPriceTierRepo) Create(ctx context.Context, tier *model.PriceTier) (string, error) {
	return m.createFunc(ctx, tier)
}
func (m *mockPriceTierRepo) List(ctx context.Context) ([]model.PriceTier, error) {
	return m.tiers, nil
}
func (m *mockPriceTierRepo) FindTierForCount(ctx context.Context, count int) (*model.PriceTier, error) {
	for i := range m.tiers {
		if m.tiers[i].Contains(count) {
			return &m.tiers[i], nil
		}
	}
	return nil, nil
}
func (m *mockPriceTierRepo) Delete(ctx context.Context, id string) error { return nil }

func newService(tiers *mockPriceTierRepo, slots *mockTimeSlotRepo, teachers *mockTeacherRepo, holidays *mockHolidayRepo) Service {
	if tiers == nil {
		tiers = &mockPriceTierRepo{createFunc: func(ctx context.Context, tier *model.PriceTier) (string, error) {
			return "665f1f77bcf86cd799439001", nil
		}}
	}
	if slots == nil {
		slots = &mockTimeSlotRepo{createFunc: func(ctx context.Context, def *model.TimeSlotDefinition) (string, error) {
			return "665f1f77bcf86cd799439002", nil
		}}
	}
	if teachers == nil {
		teachers = &mockTeacherRepo{createFunc: func(ctx context.Context, teacher *model.Teacher) (string, error) {
			return "665f1f77bcf86cd799439003", nil
		}}
	}
	if holidays == nil {
		holidays = &mockHolidayRepo{createFunc: func(ctx context.Context, mark *model.HolidayMark) (string, error) {
			return "665f1f77bcf86cd799439004", nil
		}}
	}
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT})
	return NewCatalogService(slots, teachers, holidays, tiers, log)
}

func TestCreateTimeSlotValidation(t *testing.T) {
	svc := newService(nil, nil, nil, nil)

	tests := []struct {
		name string
		def  model.TimeSlotDefinition
	}{
		{"missing day", model.TimeSlotDefinition{StartTime: "15:00", TeacherIDs: []string{"507f1f77bcf86cd799439011"}}},
		{"bad day", model.TimeSlotDefinition{DayOfWeek: "Funday", StartTime: "15:00", TeacherIDs: []string{"507f1f77bcf86cd799439011"}}},
		{"bad time", model.TimeSlotDefinition{DayOfWeek: "Monday", StartTime: "3pm", TeacherIDs: []string{"507f1f77bcf86cd799439011"}}},
		{"no teachers", model.TimeSlotDefinition{DayOfWeek: "Monday", StartTime: "15:00"}},
		{"bad teacher id", model.TimeSlotDefinition{DayOfWeek: "Monday", StartTime: "15:00", TeacherIDs: []string{"nope"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTimeSlot(context.Background(), &tt.def)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if code := apperrors.AsAppError(err).Code; code != apperrors.CodeValidation {
				t.Errorf("Code = %s, want %s", code, apperrors.CodeValidation)
			}
		})
	}
}

func TestCreateTimeSlotDedupsTeachers(t *testing.T) {
	var created *model.TimeSlotDefinition
	slots := &mockTimeSlotRepo{createFunc: func(ctx context.Context, def *model.TimeSlotDefinition) (string, error) {
		created = def
		return "665f1f77bcf86cd799439002", nil
	}}
	svc := newService(nil, slots, nil, nil)

	_, err := svc.CreateTimeSlot(context.Background(), &model.TimeSlotDefinition{
		DayOfWeek:  "Monday",
		StartTime:  "15:00",
		TeacherIDs: []string{"507f1f77bcf86cd799439011", " 507f1f77bcf86cd799439011 "},
	})
	if err != nil {
		t.Fatalf("CreateTimeSlot() returned error: %v", err)
	}
	if len(created.TeacherIDs) != 1 {
		t.Errorf("TeacherIDs = %v, want one deduped entry", created.TeacherIDs)
	}
}

func TestCreateHolidayNormalizesLabel(t *testing.T) {
	var created *model.HolidayMark
	holidays := &mockHolidayRepo{createFunc: func(ctx context.Context, mark *model.HolidayMark) (string, error) {
		created = mark
		return "665f1f77bcf86cd799439004", nil
	}}
	svc := newService(nil, nil, nil, holidays)

	_, err := svc.CreateHoliday(context.Background(), &model.HolidayMark{
		Date:  "2026-09-14",
		Label: "  Rosh Hashana  ",
	})
	if err != nil {
		t.Fatalf("CreateHoliday() returned error: %v", err)
	}
	if created.Label != "rosh hashana" {
		t.Errorf("Label = %q, want %q", created.Label, "rosh hashana")
	}
}

func TestCreateHolidayRejectsBadDate(t *testing.T) {
	svc := newService(nil, nil, nil, nil)

	_, err := svc.CreateHoliday(context.Background(), &model.HolidayMark{Date: "14.09.2026", Label: "x y"})
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if code := apperrors.AsAppError(err).Code; code != apperrors.CodeValidation {
		t.Errorf("Code = %s, want %s", code, apperrors.CodeValidation)
	}
}

func TestCreatePriceTierRejectsOverlap(t *testing.T) {
	tiers := &mockPriceTierRepo{
		tiers: []model.PriceTier{{MinClasses: 1, MaxClasses: 5, PricePerClass: 140}},
		createFunc: func(ctx context.Context, tier *model.PriceTier) (string, error) {
			t.Fatal("overlapping tier must not be created")
			return "", nil
		},
	}
	svc := newService(tiers, nil, nil, nil)

	_, err := svc.CreatePriceTier(context.Background(), &model.PriceTier{
		MinClasses: 4, MaxClasses: 10, PricePerClass: 120,
	})
	if err == nil {
		t.Fatal("expected a conflict error")
	}
	if code := apperrors.AsAppError(err).Code; code != apperrors.CodeConflict {
		t.Errorf("Code = %s, want %s", code, apperrors.CodeConflict)
	}
}

func TestCreatePriceTierAdjacentRangesAllowed(t *testing.T) {
	created := false
	tiers := &mockPriceTierRepo{
		tiers: []model.PriceTier{{MinClasses: 1, MaxClasses: 5, PricePerClass: 140}},
		createFunc: func(ctx context.Context, tier *model.PriceTier) (string, error) {
			created = true
			return "665f1f77bcf86cd799439001", nil
		},
	}
	svc := newService(tiers, nil, nil, nil)

	_, err := svc.CreatePriceTier(context.Background(), &model.PriceTier{
		MinClasses: 6, MaxClasses: 10, PricePerClass: 120,
	})
	if err != nil {
		t.Fatalf("CreatePriceTier() returned error: %v", err)
	}
	if !created {
		t.Error("adjacent tier should be created")
	}
}

func TestCreatePriceTierInvertedRange(t *testing.T) {
	svc := newService(nil, nil, nil, nil)

	_, err := svc.CreatePriceTier(context.Background(), &model.PriceTier{
		MinClasses: 10, MaxClasses: 5, PricePerClass: 120,
	})
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if code := apperrors.AsAppError(err).Code; code != apperrors.CodeValidation {
		t.Errorf("Code = %s, want %s", code, apperrors.CodeValidation)
	}
}
