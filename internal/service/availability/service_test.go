package availability

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/internal/repository"
	"github.com/medibook/booking-api/pkg/metrics"
)

var testMetrics = metrics.NewMetrics("test", "availability")

type stubBookingRepo struct {
	busy map[uuid.UUID]struct{}
}

func (r *stubBookingRepo) Create(context.Context, *model.Booking) error { return nil }
func (r *stubBookingRepo) Get(context.Context, uuid.UUID) (*model.Booking, error) {
	return nil, repository.ErrNotFound
}
func (r *stubBookingRepo) UpdateStatusIfPending(context.Context, uuid.UUID, model.BookingStatus) error {
	return repository.ErrNotFound
}
func (r *stubBookingRepo) Delete(context.Context, uuid.UUID) error { return nil }
func (r *stubBookingRepo) List(context.Context, *model.BookingFilters) ([]*model.Booking, error) {
	return nil, nil
}

func (r *stubBookingRepo) HasActiveForDoctor(_ context.Context, doctorID uuid.UUID) (bool, error) {
	_, ok := r.busy[doctorID]
	return ok, nil
}

func (r *stubBookingRepo) ActiveDoctorIDs(context.Context) (map[uuid.UUID]struct{}, error) {
	return r.busy, nil
}

type stubDoctorRepo struct {
	doctors []*model.Doctor
	calls   int
}

func (r *stubDoctorRepo) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	for _, d := range r.doctors {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubDoctorRepo) List(context.Context) ([]*model.Doctor, error) {
	r.calls++
	return r.doctors, nil
}

func TestStatus(t *testing.T) {
	busyDoctor := uuid.New()
	freeDoctor := uuid.New()
	bookings := &stubBookingRepo{busy: map[uuid.UUID]struct{}{busyDoctor: {}}}
	svc := NewService(bookings, &stubDoctorRepo{}, time.Minute, testMetrics)

	status, err := svc.Status(context.Background(), busyDoctor)
	require.NoError(t, err)
	assert.Equal(t, model.DoctorStatusBusy, status)

	status, err = svc.Status(context.Background(), freeDoctor)
	require.NoError(t, err)
	assert.Equal(t, model.DoctorStatusAvailable, status)
}

func TestListDoctors(t *testing.T) {
	busyDoctor := &model.Doctor{ID: uuid.New(), FirstName: "John", LastName: "Smith"}
	freeDoctor := &model.Doctor{ID: uuid.New(), FirstName: "Mary", LastName: "Jones"}
	bookings := &stubBookingRepo{busy: map[uuid.UUID]struct{}{busyDoctor.ID: {}}}
	doctors := &stubDoctorRepo{doctors: []*model.Doctor{busyDoctor, freeDoctor}}
	svc := NewService(bookings, doctors, time.Minute, testMetrics)

	result, err := svc.ListDoctors(context.Background())
	require.NoError(t, err)
	require.Len(t, result, 2)

	statuses := make(map[uuid.UUID]model.DoctorStatus, len(result))
	for _, d := range result {
		statuses[d.ID] = d.Status
	}
	assert.Equal(t, model.DoctorStatusBusy, statuses[busyDoctor.ID])
	assert.Equal(t, model.DoctorStatusAvailable, statuses[freeDoctor.ID])
}

// Statuses must be recomputed on every read even when the identity rows
// come out of the cache.
func TestListDoctorsStatusNeverCached(t *testing.T) {
	doctor := &model.Doctor{ID: uuid.New(), FirstName: "John", LastName: "Smith"}
	bookings := &stubBookingRepo{busy: map[uuid.UUID]struct{}{}}
	doctors := &stubDoctorRepo{doctors: []*model.Doctor{doctor}}
	svc := NewService(bookings, doctors, time.Minute, testMetrics)

	result, err := svc.ListDoctors(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.DoctorStatusAvailable, result[0].Status)

	// The booking set changes between reads.
	bookings.busy[doctor.ID] = struct{}{}

	result, err = svc.ListDoctors(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.DoctorStatusBusy, result[0].Status)

	// Identity rows were served from cache on the second read.
	assert.Equal(t, 1, doctors.calls)
}
