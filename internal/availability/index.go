package availability

import (
	"context"
	"sync"
	"time"

	"lessondesk/pkg/logger"
	"lessondesk/pkg/model"
)

// Skip reasons reported for unavailable triples. Holiday wins when both
// apply: a blocked date is blocked regardless of who booked what on it.
const (
	ReasonHoliday  = "holiday"
	ReasonConflict = "conflict"
)

// Hold summarizes who occupies a taken triple.
type Hold struct {
	BookingID   string
	StudentName string
}

// Status is the answer for one triple: free, or taken with a reason.
type Status struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
	Hold      *Hold  `json:"-"`
}

// Index is an in-memory snapshot of taken triples and holiday dates over a
// date window. Reads are lock-free against concurrent reloads: Load swaps
// fully built maps under a short write lock.
type Index struct {
	repo Repository
	log  *logger.Logger

	mu       sync.RWMutex
	booked   map[string]Hold   // SlotRef.Key() -> occupant
	holidays map[string]string // date -> label
	from, to string
	loadedAt time.Time
}

func NewIndex(repo Repository, log *logger.Logger) *Index {
	return &Index{
		repo:     repo,
		log:      log,
		booked:   make(map[string]Hold),
		holidays: make(map[string]string),
	}
}

// Load rebuilds the snapshot for [from, to]. An empty result set is a
// valid snapshot: no bookings and no holidays means everything is free.
func (idx *Index) Load(ctx context.Context, from, to string) error {
	occurrences, err := idx.repo.ListConfirmedOccurrences(ctx, from, to)
	if err != nil {
		return err
	}
	holidays, err := idx.repo.ListHolidays(ctx, from, to)
	if err != nil {
		return err
	}

	booked := make(map[string]Hold, len(occurrences))
	for _, occ := range occurrences {
		booked[occ.Slot().Key()] = Hold{
			BookingID:   occ.BookingID,
			StudentName: occ.StudentName,
		}
	}

	holidaySet := make(map[string]string, len(holidays))
	for _, h := range holidays {
		holidaySet[h.Date] = h.Label
	}

	idx.mu.Lock()
	idx.booked = booked
	idx.holidays = holidaySet
	idx.from, idx.to = from, to
	idx.loadedAt = time.Now()
	idx.mu.Unlock()

	idx.log.Debug("availability index loaded",
		"from", from, "to", to,
		"booked", len(booked), "holidays", len(holidaySet))

	return nil
}

// Refresh reloads the snapshot over the window of the previous Load.
// Before the first Load it is a no-op.
func (idx *Index) Refresh(ctx context.Context) error {
	idx.mu.RLock()
	from, to := idx.from, idx.to
	idx.mu.RUnlock()

	if from == "" || to == "" {
		return nil
	}
	return idx.Load(ctx, from, to)
}

// Cover reloads the snapshot over a window widened to include [from, to].
// Existing bounds are kept where they reach further, so the window only
// ever grows. Before the first Load it behaves like Load.
func (idx *Index) Cover(ctx context.Context, from, to string) error {
	idx.mu.RLock()
	if idx.from != "" && idx.from < from {
		from = idx.from
	}
	if idx.to > to {
		to = idx.to
	}
	idx.mu.RUnlock()

	return idx.Load(ctx, from, to)
}

// Check resolves one triple against the snapshot. Holiday is checked
// before booking conflicts.
func (idx *Index) Check(slot model.SlotRef) Status {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if _, ok := idx.holidays[slot.Date]; ok {
		return Status{Available: false, Reason: ReasonHoliday}
	}
	if hold, ok := idx.booked[slot.Key()]; ok {
		return Status{Available: false, Reason: ReasonConflict, Hold: &hold}
	}
	return Status{Available: true}
}

func (idx *Index) IsAvailable(slot model.SlotRef) bool {
	return idx.Check(slot).Available
}

// Holiday returns the label for a blocked date, if any.
func (idx *Index) Holiday(date string) (string, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	label, ok := idx.holidays[date]
	return label, ok
}

// Window returns the date range covered by the current snapshot.
func (idx *Index) Window() (from, to string) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.from, idx.to
}

func (idx *Index) LoadedAt() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.loadedAt
}
