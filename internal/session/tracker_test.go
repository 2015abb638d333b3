package session

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestMarkAndForget(t *testing.T) {
	tracker := NewSeenTracker()
	patientID := uuid.New()
	bookingID := uuid.New()

	assert.False(t, tracker.IsSeen(patientID, bookingID))

	tracker.MarkSeen(patientID, bookingID)
	assert.True(t, tracker.IsSeen(patientID, bookingID))

	// Idempotent.
	tracker.MarkSeen(patientID, bookingID)
	assert.Len(t, tracker.Seen(patientID), 1)

	tracker.Forget(patientID, bookingID)
	assert.False(t, tracker.IsSeen(patientID, bookingID))
	assert.Empty(t, tracker.Seen(patientID))
}

func TestSetsArePerPatient(t *testing.T) {
	tracker := NewSeenTracker()
	patientA := uuid.New()
	patientB := uuid.New()
	bookingID := uuid.New()

	tracker.MarkSeen(patientA, bookingID)

	assert.True(t, tracker.IsSeen(patientA, bookingID))
	assert.False(t, tracker.IsSeen(patientB, bookingID))
	assert.Empty(t, tracker.Seen(patientB))
}

func TestReset(t *testing.T) {
	tracker := NewSeenTracker()
	patientID := uuid.New()

	tracker.MarkSeen(patientID, uuid.New())
	tracker.MarkSeen(patientID, uuid.New())
	assert.Len(t, tracker.Seen(patientID), 2)

	tracker.Reset(patientID)
	assert.Empty(t, tracker.Seen(patientID))
}

func TestForgetUnknownIsNoop(t *testing.T) {
	tracker := NewSeenTracker()

	tracker.Forget(uuid.New(), uuid.New())
	tracker.Reset(uuid.New())
}

func TestConcurrentAccess(t *testing.T) {
	tracker := NewSeenTracker()
	patientID := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := uuid.New()
			tracker.MarkSeen(patientID, id)
			tracker.IsSeen(patientID, id)
			tracker.Seen(patientID)
			tracker.Forget(patientID, id)
		}()
	}
	wg.Wait()

	assert.Empty(t, tracker.Seen(patientID))
}
