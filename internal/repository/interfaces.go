package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/medibook/booking-api/internal/model"
)

// Sentinel errors shared by all store implementations. Services translate
// them into user-facing error kinds.
var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrNotPending is returned by conditional status updates when the
	// booking exists but has already left the pending state.
	ErrNotPending = errors.New("booking is not pending")
)

// All repository interfaces in one file
type (
	BookingRepository interface {
		Create(ctx context.Context, booking *model.Booking) error
		Get(ctx context.Context, id uuid.UUID) (*model.Booking, error)
		// UpdateStatusIfPending performs the atomic conditional transition
		// pending -> status. Returns ErrNotFound when the booking is absent
		// and ErrNotPending when another actor transitioned it first.
		UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status model.BookingStatus) error
		// Delete is idempotent at this boundary: deleting an absent booking
		// succeeds.
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error)
		HasActiveForDoctor(ctx context.Context, doctorID uuid.UUID) (bool, error)
		ActiveDoctorIDs(ctx context.Context) (map[uuid.UUID]struct{}, error)
	}

	NotificationRepository interface {
		Create(ctx context.Context, notification *model.Notification) error
		Get(ctx context.Context, id uuid.UUID) (*model.Notification, error)
		Delete(ctx context.Context, id uuid.UUID) error
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Notification, error)
	}

	// PatientRepository and DoctorRepository are read-only lookups into the
	// identity collections owned by the authentication collaborator.
	PatientRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	}

	DoctorRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		List(ctx context.Context) ([]*model.Doctor, error)
	}
)
