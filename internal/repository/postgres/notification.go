package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/internal/repository"
)

type notificationRepository struct {
	*BaseRepository
}

func NewNotificationRepository(base *BaseRepository) repository.NotificationRepository {
	return &notificationRepository{BaseRepository: base}
}

func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	// created_at is assigned by the database so ordering is total across
	// writers.
	query := `
		INSERT INTO notifications (id, patient_id, message, created_at)
		VALUES ($1, $2, $3, now())
		RETURNING created_at
	`
	notification.ID = uuid.New()

	err := r.db.QueryRowxContext(ctx, query,
		notification.ID,
		notification.PatientID,
		notification.Message,
	).Scan(&notification.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	query := `
		SELECT id, patient_id, message, created_at
		FROM notifications
		WHERE id = $1
	`
	var notification model.Notification
	err := r.db.GetContext(ctx, &notification, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return &notification, nil
}

func (r *notificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM notifications
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Notification, error) {
	query := `
		SELECT id, patient_id, message, created_at
		FROM notifications
		WHERE patient_id = $1
		ORDER BY created_at DESC, id
	`
	var notifications []*model.Notification
	err := r.db.SelectContext(ctx, &notifications, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}
