package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/internal/repository"
	"github.com/medibook/booking-api/internal/service/availability"
	"github.com/medibook/booking-api/internal/service/notification"
	"github.com/medibook/booking-api/internal/session"
	apperrors "github.com/medibook/booking-api/pkg/errors"
	"github.com/medibook/booking-api/pkg/logger"
	"github.com/medibook/booking-api/pkg/metrics"
)

// Service owns the booking state machine: pending -> accepted, or
// pending -> rejected -> deleted. Terminal transitions are doctor
// exclusive and single shot, enforced with a conditional update at the
// store boundary so two concurrent doctor actions cannot both land.
type Service struct {
	repo         repository.BookingRepository
	patientRepo  repository.PatientRepository
	doctorRepo   repository.DoctorRepository
	notifSvc     notification.Service
	availability *availability.Service
	seen         *session.SeenTracker
	logger       *logger.Logger
	metrics      *metrics.Metrics
}

func NewService(repo repository.BookingRepository, patientRepo repository.PatientRepository, doctorRepo repository.DoctorRepository, notifSvc notification.Service, availabilitySvc *availability.Service, seen *session.SeenTracker, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		repo:         repo,
		patientRepo:  patientRepo,
		doctorRepo:   doctorRepo,
		notifSvc:     notifSvc,
		availability: availabilitySvc,
		seen:         seen,
		logger:       log,
		metrics:      m,
	}
}

// Create validates identities and the requested instant, rejects busy
// doctors before touching the store, and inserts the booking as pending.
func (s *Service) Create(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, error) {
	if req.AppointmentTime.IsZero() {
		return nil, apperrors.Validation("appointment time is required", nil)
	}
	if req.PatientID == uuid.Nil {
		return nil, apperrors.Validation("patient ID is required", nil)
	}
	if req.DoctorID == uuid.Nil {
		return nil, apperrors.Validation("doctor ID is required", nil)
	}

	if _, err := s.patientRepo.Get(ctx, req.PatientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Validation("patient does not exist", err)
		}
		return nil, apperrors.Store(err)
	}

	doctor, err := s.doctorRepo.Get(ctx, req.DoctorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Validation("doctor does not exist", err)
		}
		return nil, apperrors.Store(err)
	}

	status, err := s.availability.Status(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}
	if status == model.DoctorStatusBusy {
		return nil, apperrors.BusyDoctor(doctor.DisplayName())
	}

	booking := &model.Booking{
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		AppointmentTime: req.AppointmentTime,
		Status:          model.BookingStatusPending,
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, apperrors.Store(err)
	}

	s.metrics.BookingsCreated.Inc()
	s.logger.Info("booking created",
		"booking_id", booking.ID,
		"patient_id", booking.PatientID,
		"doctor_id", booking.DoctorID)

	return booking, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	booking, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("booking", err)
	}
	if err != nil {
		return nil, apperrors.Store(err)
	}
	return booking, nil
}

// Accept transitions pending -> accepted and notifies the patient.
func (s *Service) Accept(ctx context.Context, id, actingDoctorID uuid.UUID) error {
	booking, doctor, err := s.authorizeDoctor(ctx, id, actingDoctorID)
	if err != nil {
		return err
	}

	if err := s.transition(ctx, id, model.BookingStatusAccepted); err != nil {
		return err
	}

	s.dispatch(ctx, booking.PatientID,
		fmt.Sprintf("Your appointment with %s has been accepted.", doctor.DisplayName()))
	return nil
}

// Reject transitions pending -> rejected, eagerly deletes the record,
// and notifies the patient. The eager delete is the authoritative
// removal path; ReconcileRejected covers the cached-view window.
func (s *Service) Reject(ctx context.Context, id, actingDoctorID uuid.UUID) error {
	booking, doctor, err := s.authorizeDoctor(ctx, id, actingDoctorID)
	if err != nil {
		return err
	}

	if err := s.transition(ctx, id, model.BookingStatusRejected); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		// The rejection already landed; a patient-side reconcile will
		// remove the record if this delete did not.
		s.logger.Warn(err, "eager delete of rejected booking failed", "booking_id", id)
	} else {
		s.metrics.BookingsDeleted.WithLabelValues("eager").Inc()
	}

	s.dispatch(ctx, booking.PatientID,
		fmt.Sprintf("Your appointment with %s has been rejected.", doctor.DisplayName()))
	return nil
}

// ReconcileRejected is the deferred-delete safety net. Idempotent: the
// record being already absent is success, and no notification is ever
// produced here.
func (s *Service) ReconcileRejected(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return apperrors.Store(err)
	}
	s.metrics.BookingsDeleted.WithLabelValues("reconcile").Inc()
	return nil
}

// ReconcileSeen runs phase two of the mark-then-reconcile policy: every
// booking the patient's session has already rendered as rejected is
// removed. Phase one happens during ListForPatient.
func (s *Service) ReconcileSeen(ctx context.Context, patientID uuid.UUID) error {
	for _, id := range s.seen.Seen(patientID) {
		if err := s.ReconcileRejected(ctx, id); err != nil {
			return err
		}
		s.seen.Forget(patientID, id)
	}
	return nil
}

// Delete is the patient-initiated withdrawal, valid in any status.
func (s *Service) Delete(ctx context.Context, id, actingPatientID uuid.UUID) error {
	booking, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("booking", err)
	}
	if err != nil {
		return apperrors.Store(err)
	}

	if booking.PatientID != actingPatientID {
		return apperrors.Forbidden("booking belongs to another patient")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.Store(err)
	}
	s.metrics.BookingsDeleted.WithLabelValues("withdraw").Inc()
	return nil
}

// ListForPatient returns the patient's bookings and marks any rendered
// in rejected status as seen (phase one of the reconcile policy).
func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Booking, error) {
	bookings, err := s.repo.List(ctx, &model.BookingFilters{PatientID: patientID})
	if err != nil {
		return nil, apperrors.Store(err)
	}

	for _, b := range bookings {
		if b.Status == model.BookingStatusRejected {
			s.seen.MarkSeen(patientID, b.ID)
		}
	}
	return bookings, nil
}

func (s *Service) ListForDoctor(ctx context.Context, doctorID uuid.UUID, status model.BookingStatus) ([]*model.Booking, error) {
	bookings, err := s.repo.List(ctx, &model.BookingFilters{DoctorID: doctorID, Status: status})
	if err != nil {
		return nil, apperrors.Store(err)
	}
	return bookings, nil
}

func (s *Service) authorizeDoctor(ctx context.Context, id, actingDoctorID uuid.UUID) (*model.Booking, *model.Doctor, error) {
	booking, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, apperrors.NotFound("booking", err)
	}
	if err != nil {
		return nil, nil, apperrors.Store(err)
	}

	if booking.DoctorID != actingDoctorID {
		return nil, nil, apperrors.Forbidden("booking belongs to another doctor")
	}

	doctor, err := s.doctorRepo.Get(ctx, booking.DoctorID)
	if err != nil {
		return nil, nil, apperrors.Store(err)
	}
	return booking, doctor, nil
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, to model.BookingStatus) error {
	err := s.repo.UpdateStatusIfPending(ctx, id, to)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("booking", err)
	}
	if errors.Is(err, repository.ErrNotPending) {
		return apperrors.Conflict("booking is no longer pending")
	}
	if err != nil {
		return apperrors.Store(err)
	}

	s.metrics.BookingTransitions.WithLabelValues(string(to)).Inc()
	return nil
}

// dispatch fires the lifecycle notification. The transition has already
// been acknowledged by the store at this point, so a dispatch failure is
// logged rather than unwinding the operation.
func (s *Service) dispatch(ctx context.Context, patientID uuid.UUID, message string) {
	if _, err := s.notifSvc.Dispatch(ctx, patientID, message); err != nil {
		s.logger.Error(err, "failed to dispatch booking notification",
			"patient_id", patientID)
	}
}
