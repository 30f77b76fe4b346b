package errors

import (
	"fmt"

	apperrors "lessondesk/pkg/errors"
	"lessondesk/pkg/model"
)

func BookingNotFound(id string) *apperrors.AppError {
	return apperrors.NotFoundWithID("booking", id)
}

func InvalidBookingID(id string) *apperrors.AppError {
	return apperrors.InvalidInput(fmt.Sprintf("invalid booking id: %s", id))
}

// SlotConflict reports the triples that lost availability between
// expansion and commit. The whole commit is aborted; nothing was written.
func SlotConflict(slots []model.SlotRef) *apperrors.AppError {
	keys := make([]string, 0, len(slots))
	for _, slot := range slots {
		keys = append(keys, slot.Key())
	}
	return apperrors.Conflict("one or more slots are no longer available").
		WithDetails(map[string]any{"conflicting_slots": keys})
}

// HolidayConflict reports occurrences that now fall on blocked dates.
func HolidayConflict(dates []string) *apperrors.AppError {
	return apperrors.Conflict("one or more dates are blocked by a holiday").
		WithDetails(map[string]any{"holiday_dates": dates})
}

// PriceMismatch rejects a commit whose client-side total no longer matches
// the tier table.
func PriceMismatch(expected, computed int) *apperrors.AppError {
	return apperrors.Conflict("price changed since expansion").
		WithDetails(map[string]any{"expected_total": expected, "computed_total": computed})
}

func NoPriceTier(count int) *apperrors.AppError {
	return apperrors.Validation(
		fmt.Sprintf("no price tier covers %d classes", count),
		map[string]any{"occurrence_count": count},
	)
}
