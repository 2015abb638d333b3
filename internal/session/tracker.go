package session

import (
	"sync"

	"github.com/google/uuid"
)

// SeenTracker remembers, per patient, which rejected bookings have
// already been rendered in the current process lifetime. It gates the
// deferred deletion of rejected booking records: a rejection is never
// removed before the owning patient has had at least one render cycle
// showing it. Nothing here is persisted; a restart resets all sets.
type SeenTracker struct {
	mu   sync.RWMutex
	seen map[uuid.UUID]map[uuid.UUID]struct{}
}

func NewSeenTracker() *SeenTracker {
	return &SeenTracker{
		seen: make(map[uuid.UUID]map[uuid.UUID]struct{}),
	}
}

// MarkSeen records that the patient has rendered the booking while it
// was in rejected status. Idempotent.
func (t *SeenTracker) MarkSeen(patientID, bookingID uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	set, ok := t.seen[patientID]
	if !ok {
		set = make(map[uuid.UUID]struct{})
		t.seen[patientID] = set
	}
	set[bookingID] = struct{}{}
}

func (t *SeenTracker) IsSeen(patientID, bookingID uuid.UUID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, ok := t.seen[patientID][bookingID]
	return ok
}

// Seen returns a snapshot of the patient's seen set.
func (t *SeenTracker) Seen(patientID uuid.UUID) []uuid.UUID {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(t.seen[patientID]))
	for id := range t.seen[patientID] {
		ids = append(ids, id)
	}
	return ids
}

// Forget drops a single booking from the patient's seen set, typically
// after its record has been reconciled away.
func (t *SeenTracker) Forget(patientID, bookingID uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.seen[patientID], bookingID)
	if len(t.seen[patientID]) == 0 {
		delete(t.seen, patientID)
	}
}

// Reset clears the patient's whole session state.
func (t *SeenTracker) Reset(patientID uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.seen, patientID)
}
