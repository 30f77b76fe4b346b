package service

import (
	"context"

	catalogerrors "lessondesk/internal/catalog/errors"
	"lessondesk/internal/catalog/repository"
	"lessondesk/internal/catalog/validator"
	"lessondesk/pkg/logger"
	"lessondesk/pkg/model"
	"lessondesk/pkg/sanitizer"
)

// Service manages the administrator-owned catalog: time-slot templates,
// teachers, holiday marks and the price-tier table.
type Service interface {
	CreateTimeSlot(ctx context.Context, def *model.TimeSlotDefinition) (string, error)
	GetTimeSlot(ctx context.Context, id string) (*model.TimeSlotDefinition, error)
	ListTimeSlots(ctx context.Context, limit int, offset int64) ([]model.TimeSlotDefinition, int64, error)
	UpdateTimeSlot(ctx context.Context, id string, update *model.TimeSlotDefinitionUpdate) error
	DeleteTimeSlot(ctx context.Context, id string) error

	CreateTeacher(ctx context.Context, teacher *model.Teacher) (string, error)
	GetTeacher(ctx context.Context, id string) (*model.Teacher, error)
	ListTeachers(ctx context.Context, limit int, offset int64) ([]model.Teacher, int64, error)
	UpdateTeacher(ctx context.Context, id string, update *model.TeacherUpdate) error
	DeleteTeacher(ctx context.Context, id string) error

	CreateHoliday(ctx context.Context, mark *model.HolidayMark) (string, error)
	ListHolidays(ctx context.Context, from, to string) ([]model.HolidayMark, error)
	DeleteHoliday(ctx context.Context, id string) error

	CreatePriceTier(ctx context.Context, tier *model.PriceTier) (string, error)
	ListPriceTiers(ctx context.Context) ([]model.PriceTier, error)
	DeletePriceTier(ctx context.Context, id string) error
}

type catalogService struct {
	timeSlots repository.TimeSlotRepository
	teachers  repository.TeacherRepository
	holidays  repository.HolidayRepository
	tiers     repository.PriceTierRepository
	validator *validator.Validator
	log       *logger.Logger
}

func NewCatalogService(
	timeSlots repository.TimeSlotRepository,
	teachers repository.TeacherRepository,
	holidays repository.HolidayRepository,
	tiers repository.PriceTierRepository,
	log *logger.Logger,
) Service {
	return &catalogService{
		timeSlots: timeSlots,
		teachers:  teachers,
		holidays:  holidays,
		tiers:     tiers,
		validator: validator.New(),
		log:       log,
	}
}

func (s *catalogService) CreateTimeSlot(ctx context.Context, def *model.TimeSlotDefinition) (string, error) {
	def.TeacherIDs = sanitizer.SanitizeSlice(def.TeacherIDs, sanitizer.TrimAndNormalize)
	if err := s.validator.Struct(def); err != nil {
		return "", err
	}

	id, err := s.timeSlots.Create(ctx, def)
	if err != nil {
		return "", err
	}
	s.log.Info("time slot created", "id", id, "day", def.DayOfWeek, "start", def.StartTime)
	return id, nil
}

func (s *catalogService) GetTimeSlot(ctx context.Context, id string) (*model.TimeSlotDefinition, error) {
	return s.timeSlots.GetByID(ctx, id)
}

func (s *catalogService) ListTimeSlots(ctx context.Context, limit int, offset int64) ([]model.TimeSlotDefinition, int64, error) {
	return s.timeSlots.List(ctx, limit, offset)
}

func (s *catalogService) UpdateTimeSlot(ctx context.Context, id string, update *model.TimeSlotDefinitionUpdate) error {
	if update.TeacherIDs != nil {
		cleaned := sanitizer.SanitizeSlice(*update.TeacherIDs, sanitizer.TrimAndNormalize)
		update.TeacherIDs = &cleaned
	}
	if err := s.validator.Struct(update); err != nil {
		return err
	}
	return s.timeSlots.Update(ctx, id, update)
}

func (s *catalogService) DeleteTimeSlot(ctx context.Context, id string) error {
	return s.timeSlots.Delete(ctx, id)
}

func (s *catalogService) CreateTeacher(ctx context.Context, teacher *model.Teacher) (string, error) {
	teacher.Name = sanitizer.NormalizeName(teacher.Name)
	teacher.Phone = sanitizer.NormalizePhone(teacher.Phone)
	teacher.Email = sanitizer.TrimAndNormalize(teacher.Email)
	if err := s.validator.Struct(teacher); err != nil {
		return "", err
	}

	id, err := s.teachers.Create(ctx, teacher)
	if err != nil {
		return "", err
	}
	s.log.Info("teacher created", "id", id, "name", teacher.Name)
	return id, nil
}

func (s *catalogService) GetTeacher(ctx context.Context, id string) (*model.Teacher, error) {
	return s.teachers.GetByID(ctx, id)
}

func (s *catalogService) ListTeachers(ctx context.Context, limit int, offset int64) ([]model.Teacher, int64, error) {
	return s.teachers.List(ctx, limit, offset)
}

func (s *catalogService) UpdateTeacher(ctx context.Context, id string, update *model.TeacherUpdate) error {
	update.Name = sanitizer.NormalizeName(update.Name)
	if update.Phone != "" {
		update.Phone = sanitizer.NormalizePhone(update.Phone)
	}
	update.Email = sanitizer.TrimAndNormalize(update.Email)
	if err := s.validator.Struct(update); err != nil {
		return err
	}
	return s.teachers.Update(ctx, id, update)
}

func (s *catalogService) DeleteTeacher(ctx context.Context, id string) error {
	return s.teachers.Delete(ctx, id)
}

func (s *catalogService) CreateHoliday(ctx context.Context, mark *model.HolidayMark) (string, error) {
	mark.Label = sanitizer.NormalizeLabel(mark.Label)
	if err := s.validator.Struct(mark); err != nil {
		return "", err
	}

	id, err := s.holidays.Create(ctx, mark)
	if err != nil {
		return "", err
	}
	s.log.Info("holiday marked", "id", id, "date", mark.Date, "label", mark.Label)
	return id, nil
}

func (s *catalogService) ListHolidays(ctx context.Context, from, to string) ([]model.HolidayMark, error) {
	return s.holidays.List(ctx, from, to)
}

func (s *catalogService) DeleteHoliday(ctx context.Context, id string) error {
	return s.holidays.Delete(ctx, id)
}

// CreatePriceTier rejects ranges that intersect an existing tier, keeping
// the count-to-price lookup unambiguous.
func (s *catalogService) CreatePriceTier(ctx context.Context, tier *model.PriceTier) (string, error) {
	if err := s.validator.Struct(tier); err != nil {
		return "", err
	}

	existing, err := s.tiers.List(ctx)
	if err != nil {
		return "", err
	}
	for _, other := range existing {
		if tier.MinClasses <= other.MaxClasses && other.MinClasses <= tier.MaxClasses {
			return "", catalogerrors.TierOverlap(tier.MinClasses, tier.MaxClasses)
		}
	}

	id, err := s.tiers.Create(ctx, tier)
	if err != nil {
		return "", err
	}
	s.log.Info("price tier created", "id", id,
		"min_classes", tier.MinClasses, "max_classes", tier.MaxClasses,
		"price_per_class", tier.PricePerClass)
	return id, nil
}

func (s *catalogService) ListPriceTiers(ctx context.Context) ([]model.PriceTier, error) {
	return s.tiers.List(ctx)
}

func (s *catalogService) DeletePriceTier(ctx context.Context, id string) error {
	return s.tiers.Delete(ctx, id)
}
