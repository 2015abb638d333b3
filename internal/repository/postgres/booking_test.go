package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/internal/repository"
)

func newMockRepo(t *testing.T) (repository.BookingRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "postgres")
	return NewBookingRepository(NewBaseRepository(sqlxDB)), mock
}

func TestCreateBooking(t *testing.T) {
	repo, mock := newMockRepo(t)

	booking := &model.Booking{
		PatientID:       uuid.New(),
		DoctorID:        uuid.New(),
		AppointmentTime: time.Now().Add(24 * time.Hour),
		Status:          model.BookingStatusPending,
	}

	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(
			sqlmock.AnyArg(),
			booking.PatientID,
			booking.DoctorID,
			booking.AppointmentTime,
			booking.Status,
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), booking)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, booking.ID)
	assert.False(t, booking.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBookingNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.Get(context.Background(), id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusIfPending(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectExec("UPDATE bookings").
		WithArgs(model.BookingStatusAccepted, sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatusIfPending(context.Background(), id, model.BookingStatusAccepted)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A zero-row update means either the booking is gone or another actor
// already transitioned it; the follow-up read tells them apart.
func TestUpdateStatusIfPendingLostRace(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectExec("UPDATE bookings").
		WithArgs(model.BookingStatusRejected, sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "patient_id", "doctor_id", "appointment_time", "status", "created_at", "updated_at"},
		).AddRow(id, uuid.New(), uuid.New(), time.Now(), "accepted", time.Now(), time.Now()))

	err := repo.UpdateStatusIfPending(context.Background(), id, model.BookingStatusRejected)
	assert.ErrorIs(t, err, repository.ErrNotPending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusIfPendingMissing(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectExec("UPDATE bookings").
		WithArgs(model.BookingStatusAccepted, sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	err := repo.UpdateStatusIfPending(context.Background(), id, model.BookingStatusAccepted)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBookingIdempotent(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectExec("DELETE FROM bookings").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	// Zero rows affected is still success.
	err := repo.Delete(context.Background(), id)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListBookingsFilters(t *testing.T) {
	repo, mock := newMockRepo(t)
	patientID := uuid.New()

	rows := sqlmock.NewRows(
		[]string{"id", "patient_id", "doctor_id", "appointment_time", "status", "created_at", "updated_at"},
	).AddRow(uuid.New(), patientID, uuid.New(), time.Now(), "pending", time.Now(), time.Now())

	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WithArgs(patientID, model.BookingStatusPending).
		WillReturnRows(rows)

	bookings, err := repo.List(context.Background(), &model.BookingFilters{
		PatientID: patientID,
		Status:    model.BookingStatusPending,
	})
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, patientID, bookings[0].PatientID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasActiveForDoctor(t *testing.T) {
	repo, mock := newMockRepo(t)
	doctorID := uuid.New()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(doctorID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	busy, err := repo.HasActiveForDoctor(context.Background(), doctorID)
	require.NoError(t, err)
	assert.True(t, busy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActiveDoctorIDs(t *testing.T) {
	repo, mock := newMockRepo(t)
	first := uuid.New()
	second := uuid.New()

	mock.ExpectQuery("SELECT DISTINCT doctor_id FROM bookings").
		WillReturnRows(sqlmock.NewRows([]string{"doctor_id"}).AddRow(first).AddRow(second))

	busy, err := repo.ActiveDoctorIDs(context.Background())
	require.NoError(t, err)
	assert.Len(t, busy, 2)
	assert.Contains(t, busy, first)
	assert.Contains(t, busy, second)
	assert.NoError(t, mock.ExpectationsWereMet())
}
