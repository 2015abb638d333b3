package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/medibook/booking-api/internal/email"
	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/internal/repository"
	apperrors "github.com/medibook/booking-api/pkg/errors"
	"github.com/medibook/booking-api/pkg/logger"
	"github.com/medibook/booking-api/pkg/messaging"
	"github.com/medibook/booking-api/pkg/metrics"
)

const eventChannel = "notifications"

type Service interface {
	Dispatch(ctx context.Context, patientID uuid.UUID, message string) (*model.Notification, error)
	List(ctx context.Context, patientID uuid.UUID) ([]*model.Notification, error)
	Delete(ctx context.Context, id, actingPatientID uuid.UUID) error
}

type service struct {
	repo        repository.NotificationRepository
	patientRepo repository.PatientRepository
	broker      messaging.Broker
	emailSvc    email.Service
	logger      *logger.Logger
	metrics     *metrics.Metrics
}

// NewService builds the dispatcher. broker and emailSvc are optional:
// when nil the corresponding delivery channel is skipped.
func NewService(repo repository.NotificationRepository, patientRepo repository.PatientRepository, broker messaging.Broker, emailSvc email.Service, log *logger.Logger, m *metrics.Metrics) Service {
	return &service{
		repo:        repo,
		patientRepo: patientRepo,
		broker:      broker,
		emailSvc:    emailSvc,
		logger:      log,
		metrics:     m,
	}
}

// Dispatch stores the notification record and then fans it out. The
// stored record is the source of truth; fan-out is best effort and never
// fails the operation.
func (s *service) Dispatch(ctx context.Context, patientID uuid.UUID, message string) (*model.Notification, error) {
	if patientID == uuid.Nil {
		return nil, apperrors.Validation("recipient is required", nil)
	}
	if message == "" {
		return nil, apperrors.Validation("message is required", nil)
	}

	notification := &model.Notification{
		PatientID: patientID,
		Message:   message,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		s.metrics.NotificationsFailed.Inc()
		return nil, apperrors.Store(err)
	}
	s.metrics.NotificationsDispatched.Inc()

	s.publishEvent(ctx, notification)
	s.sendEmail(ctx, notification)

	return notification, nil
}

func (s *service) List(ctx context.Context, patientID uuid.UUID) ([]*model.Notification, error) {
	notifications, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, apperrors.Store(err)
	}
	return notifications, nil
}

func (s *service) Delete(ctx context.Context, id, actingPatientID uuid.UUID) error {
	notification, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		// Already gone, which is the state the patient asked for.
		return nil
	}
	if err != nil {
		return apperrors.Store(err)
	}

	if notification.PatientID != actingPatientID {
		return apperrors.Forbidden("notification belongs to another patient")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.Store(err)
	}
	return nil
}

func (s *service) publishEvent(ctx context.Context, notification *model.Notification) {
	if s.broker == nil {
		return
	}

	event := &model.NotificationEvent{
		ID:             uuid.New(),
		NotificationID: notification.ID,
		PatientID:      notification.PatientID,
		Type:           "in_app_notification",
		Message:        notification.Message,
		CreatedAt:      time.Now(),
	}
	if err := s.broker.Publish(ctx, eventChannel, event); err != nil {
		s.logger.Warn(err, "failed to publish notification event",
			"notification_id", notification.ID)
	}
}

func (s *service) sendEmail(ctx context.Context, notification *model.Notification) {
	if s.emailSvc == nil {
		return
	}

	patient, err := s.patientRepo.Get(ctx, notification.PatientID)
	if err != nil || patient.Email == "" {
		return
	}
	if err := s.emailSvc.SendNotification(ctx, patient.Email, "Appointment update", notification.Message); err != nil {
		s.logger.Warn(err, "failed to email notification",
			"notification_id", notification.ID)
	}
}
