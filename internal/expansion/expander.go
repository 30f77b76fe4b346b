package expansion

import (
	"fmt"

	"lessondesk/internal/availability"
	apperrors "lessondesk/pkg/errors"
	"lessondesk/pkg/logger"
	"lessondesk/pkg/model"
)

// Checker answers availability for one triple. Satisfied by
// *availability.Index.
type Checker interface {
	Check(slot model.SlotRef) availability.Status
}

// Record is one examined candidate occurrence. Skipped candidates are
// recorded with their reason, not discarded, so the operator sees what was
// skipped and why.
type Record struct {
	model.SlotRef
	Week      int    `json:"week"`
	Available bool   `json:"available"`
	Skipped   bool   `json:"skipped"`
	Reason    string `json:"reason,omitempty"`
}

// BaseResult is the expansion outcome for one base selection. Shortfall is
// a result state, never an error: Found < Requested means the search bound
// was hit before enough free weeks turned up.
type BaseResult struct {
	Base      model.SlotRef `json:"base"`
	Records   []Record      `json:"records"`
	Requested int           `json:"requested"`
	Found     int           `json:"found"`
	Shortfall int           `json:"shortfall"`
}

// Result aggregates all base selections of one expansion run.
type Result struct {
	Bases          []BaseResult `json:"bases"`
	TotalAvailable int          `json:"total_available"`
	TotalSkipped   int          `json:"total_skipped"`
}

// Available flattens the free occurrences across all bases, in base order
// then week order.
func (r *Result) Available() []model.SlotRef {
	var slots []model.SlotRef
	for _, base := range r.Bases {
		for _, rec := range base.Records {
			if rec.Available {
				slots = append(slots, rec.SlotRef)
			}
		}
	}
	return slots
}

// HasShortfall reports whether any base found fewer weeks than requested.
func (r *Result) HasShortfall() bool {
	for _, base := range r.Bases {
		if base.Shortfall > 0 {
			return true
		}
	}
	return false
}

// Expander walks each base selection week by week against the availability
// index until the requested count of free occurrences is found or the
// search bound is hit.
type Expander struct {
	index           Checker
	triesMultiplier int
	maxWeeks        int
	log             *logger.Logger
}

func NewExpander(index Checker, triesMultiplier, maxWeeks int, log *logger.Logger) *Expander {
	return &Expander{
		index:           index,
		triesMultiplier: triesMultiplier,
		maxWeeks:        maxWeeks,
		log:             log,
	}
}

// Expand produces weeks available occurrences per base selection. The only
// errors are malformed input; insufficient availability comes back as data.
func (e *Expander) Expand(bases []model.SlotRef, weeks int) (*Result, error) {
	if len(bases) == 0 {
		return nil, apperrors.InvalidInput("at least one base selection is required")
	}
	if weeks < 1 {
		return nil, apperrors.InvalidInput(fmt.Sprintf("weeks must be at least 1, got %d", weeks))
	}
	if weeks > e.maxWeeks {
		return nil, apperrors.InvalidInput(fmt.Sprintf("weeks must not exceed %d, got %d", e.maxWeeks, weeks))
	}
	for _, base := range bases {
		if _, err := model.ParseDate(base.Date); err != nil {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid base date %q", base.Date))
		}
	}

	result := &Result{Bases: make([]BaseResult, 0, len(bases))}

	// claimed prevents two bases in the same run from taking one triple;
	// the index only knows about committed bookings.
	claimed := make(map[string]struct{})

	for _, base := range bases {
		baseResult := e.expandBase(base, weeks, claimed)
		result.TotalAvailable += baseResult.Found
		result.TotalSkipped += len(baseResult.Records) - baseResult.Found
		result.Bases = append(result.Bases, baseResult)
	}

	if result.HasShortfall() {
		e.log.Warn("expansion shortfall",
			"requested_per_base", weeks,
			"total_available", result.TotalAvailable,
			"total_skipped", result.TotalSkipped)
	}

	return result, nil
}

func (e *Expander) expandBase(base model.SlotRef, weeks int, claimed map[string]struct{}) BaseResult {
	maxTries := weeks * e.triesMultiplier

	baseResult := BaseResult{
		Base:      base,
		Records:   make([]Record, 0, weeks),
		Requested: weeks,
	}

	for week, tries := 0, 0; baseResult.Found < weeks && tries < maxTries; week, tries = week+1, tries+1 {
		// Base dates are validated up front, so AddWeeks cannot fail here.
		date, _ := model.AddWeeks(base.Date, week)
		slot := model.SlotRef{Date: date, TimeSlot: base.TimeSlot, TeacherID: base.TeacherID}

		status := e.index.Check(slot)
		if _, taken := claimed[slot.Key()]; taken && status.Available {
			status = availability.Status{Available: false, Reason: availability.ReasonConflict}
		}

		record := Record{
			SlotRef:   slot,
			Week:      week,
			Available: status.Available,
			Skipped:   !status.Available,
			Reason:    status.Reason,
		}
		baseResult.Records = append(baseResult.Records, record)

		if status.Available {
			claimed[slot.Key()] = struct{}{}
			baseResult.Found++
		}
	}

	baseResult.Shortfall = weeks - baseResult.Found
	return baseResult
}
