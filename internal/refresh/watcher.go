package refresh

import (
	"context"
	"sync"
	"time"

	"lessondesk/internal/availability"
	"lessondesk/pkg/logger"
	"lessondesk/pkg/model"
)

// Index is the slice of the availability index the watcher needs.
// Satisfied by *availability.Index.
type Index interface {
	Refresh(ctx context.Context) error
	Cover(ctx context.Context, from, to string) error
	Check(slot model.SlotRef) availability.Status
}

// Invalidation reports one selected slot that lost availability to a
// concurrent booking (or a freshly marked holiday) since selection.
type Invalidation struct {
	Slot   model.SlotRef `json:"slot"`
	Reason string        `json:"reason"`
}

// Watcher keeps not-yet-committed slot selections honest against
// concurrent bookings. It owns its own snapshot of the selected slots and
// communicates invalidations over a channel; it never mutates booking
// state. Final correctness is still enforced by the commit-time recheck —
// this is staleness control for the operator, not a guarantee.
type Watcher struct {
	index    Index
	interval time.Duration
	ttl      time.Duration
	log      *logger.Logger

	mu       sync.Mutex
	selected map[string]selection

	invalidations chan []Invalidation
}

// selection remembers when a slot entered the watch set so abandoned
// expansions can be aged out instead of accumulating forever.
type selection struct {
	slot    model.SlotRef
	addedAt time.Time
}

// NewWatcher builds a watcher sweeping every interval. Selections older
// than ttl are dropped silently on the next sweep; ttl <= 0 disables
// aging.
func NewWatcher(index Index, interval, ttl time.Duration, log *logger.Logger) *Watcher {
	return &Watcher{
		index:         index,
		interval:      interval,
		ttl:           ttl,
		log:           log,
		selected:      make(map[string]selection),
		invalidations: make(chan []Invalidation, 16),
	}
}

// Select registers slots to be re-verified on every sweep. Re-selecting
// a slot resets its age.
func (w *Watcher) Select(slots ...model.SlotRef) {
	now := time.Now()
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, slot := range slots {
		w.selected[slot.Key()] = selection{slot: slot, addedAt: now}
	}
}

// Deselect drops slots from the watch set, e.g. after commit or when the
// operator removes them.
func (w *Watcher) Deselect(slots ...model.SlotRef) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, slot := range slots {
		delete(w.selected, slot.Key())
	}
}

func (w *Watcher) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selected = make(map[string]selection)
}

func (w *Watcher) Selected() []model.SlotRef {
	w.mu.Lock()
	defer w.mu.Unlock()
	slots := make([]model.SlotRef, 0, len(w.selected))
	for _, sel := range w.selected {
		slots = append(slots, sel.slot)
	}
	return slots
}

// Invalidations delivers batches of newly conflicting selections. Slow
// consumers lose batches rather than stalling the sweep.
func (w *Watcher) Invalidations() <-chan []Invalidation {
	return w.invalidations
}

// Run sweeps on a fixed interval until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Sweep(ctx); err != nil {
				w.log.Error("refresh sweep failed", "error", err)
			}
		}
	}
}

// Sweep forces an index refresh and re-evaluates every selected slot.
// The refresh window is stretched to cover every watched date, so
// selections reaching past the visible window are still verified.
// Invalidated slots are removed from the watch set and published.
func (w *Watcher) Sweep(ctx context.Context) error {
	now := time.Now()
	w.mu.Lock()
	from, to := "", ""
	for key, sel := range w.selected {
		if w.ttl > 0 && now.Sub(sel.addedAt) > w.ttl {
			delete(w.selected, key)
			continue
		}
		if from == "" || sel.slot.Date < from {
			from = sel.slot.Date
		}
		if sel.slot.Date > to {
			to = sel.slot.Date
		}
	}
	w.mu.Unlock()

	if from != "" {
		if err := w.index.Cover(ctx, from, to); err != nil {
			return err
		}
	} else if err := w.index.Refresh(ctx); err != nil {
		return err
	}

	w.mu.Lock()
	var invalidated []Invalidation
	for key, sel := range w.selected {
		status := w.index.Check(sel.slot)
		if status.Available {
			continue
		}
		invalidated = append(invalidated, Invalidation{Slot: sel.slot, Reason: status.Reason})
		delete(w.selected, key)
	}
	w.mu.Unlock()

	if len(invalidated) == 0 {
		return nil
	}

	w.log.Warn("selected slots lost availability", "count", len(invalidated))

	select {
	case w.invalidations <- invalidated:
	default:
		w.log.Warn("invalidation channel full, dropping batch", "count", len(invalidated))
	}

	return nil
}
