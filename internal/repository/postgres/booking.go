package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/internal/repository"
)

type bookingRepository struct {
	*BaseRepository
}

func NewBookingRepository(base *BaseRepository) repository.BookingRepository {
	return &bookingRepository{BaseRepository: base}
}

func (r *bookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (
			id, patient_id, doctor_id, appointment_time, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	booking.ID = uuid.New()
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		booking.ID,
		booking.PatientID,
		booking.DoctorID,
		booking.AppointmentTime,
		booking.Status,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *bookingRepository) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	query := `
		SELECT id, patient_id, doctor_id, appointment_time, status,
			   created_at, updated_at
		FROM bookings
		WHERE id = $1
	`
	var booking model.Booking
	err := r.db.GetContext(ctx, &booking, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

// UpdateStatusIfPending is the single-shot transition guard: the update
// only lands when the current status is still pending, so two concurrent
// doctor actions cannot both succeed.
func (r *bookingRepository) UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status model.BookingStatus) error {
	query := `
		UPDATE bookings
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = 'pending'
	`
	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		// Distinguish a missing booking from a lost race.
		if _, err := r.Get(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return repository.ErrNotFound
			}
			return err
		}
		return repository.ErrNotPending
	}
	return nil
}

func (r *bookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM bookings
		WHERE id = $1
	`
	// Deleting an absent booking succeeds: the desired end state already holds.
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	return nil
}

func (r *bookingRepository) List(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error) {
	query := `
		SELECT id, patient_id, doctor_id, appointment_time, status,
			   created_at, updated_at
		FROM bookings
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.PatientID != uuid.Nil {
			query += fmt.Sprintf(" AND patient_id = $%d", argCount)
			args = append(args, filters.PatientID)
			argCount++
		}
		if filters.DoctorID != uuid.Nil {
			query += fmt.Sprintf(" AND doctor_id = $%d", argCount)
			args = append(args, filters.DoctorID)
			argCount++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
	}

	query += " ORDER BY appointment_time ASC"

	var bookings []*model.Booking
	err := r.db.SelectContext(ctx, &bookings, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) HasActiveForDoctor(ctx context.Context, doctorID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE doctor_id = $1
			AND status IN ('pending', 'accepted')
		)
	`
	var busy bool
	err := r.db.GetContext(ctx, &busy, query, doctorID)
	if err != nil {
		return false, fmt.Errorf("failed to check doctor bookings: %w", err)
	}
	return busy, nil
}

func (r *bookingRepository) ActiveDoctorIDs(ctx context.Context) (map[uuid.UUID]struct{}, error) {
	query := `
		SELECT DISTINCT doctor_id FROM bookings
		WHERE status IN ('pending', 'accepted')
	`
	var ids []uuid.UUID
	err := r.db.SelectContext(ctx, &ids, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list busy doctors: %w", err)
	}

	busy := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		busy[id] = struct{}{}
	}
	return busy, nil
}
