package errors

import (
	"fmt"

	apperrors "lessondesk/pkg/errors"
)

func NotFound(resource, id string) *apperrors.AppError {
	return apperrors.NotFoundWithID(resource, id)
}

func InvalidID(resource, id string) *apperrors.AppError {
	return apperrors.InvalidInput(fmt.Sprintf("invalid %s id: %s", resource, id))
}

func DuplicateHoliday(date string) *apperrors.AppError {
	return apperrors.Conflict(fmt.Sprintf("holiday already marked for %s", date))
}

// TierOverlap rejects a price tier whose class range intersects an
// existing tier. Overlapping tiers would make price lookup ambiguous.
func TierOverlap(minClasses, maxClasses int) *apperrors.AppError {
	return apperrors.Conflict("price tier range overlaps an existing tier").
		WithDetails(map[string]any{"min_classes": minClasses, "max_classes": maxClasses})
}
