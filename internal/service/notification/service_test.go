package notification

import (
	"context"
	"errors"
	"io"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/internal/repository"
	apperrors "github.com/medibook/booking-api/pkg/errors"
	"github.com/medibook/booking-api/pkg/logger"
	"github.com/medibook/booking-api/pkg/metrics"
)

var testMetrics = metrics.NewMetrics("test", "notification")

type fakeNotificationRepo struct {
	notifications map[uuid.UUID]*model.Notification
	seq           int
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifications: make(map[uuid.UUID]*model.Notification)}
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	n.ID = uuid.New()
	r.seq++
	// Server-assigned timestamps, strictly increasing like a DB clock.
	n.CreatedAt = time.Unix(int64(1700000000+r.seq), 0)
	copied := *n
	r.notifications[n.ID] = &copied
	return nil
}

func (r *fakeNotificationRepo) Get(_ context.Context, id uuid.UUID) (*model.Notification, error) {
	n, ok := r.notifications[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *n
	return &copied, nil
}

func (r *fakeNotificationRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.notifications, id)
	return nil
}

func (r *fakeNotificationRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*model.Notification, error) {
	var result []*model.Notification
	for _, n := range r.notifications {
		if n.PatientID == patientID {
			copied := *n
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

type stubPatientRepo struct {
	patients map[uuid.UUID]*model.Patient
}

func (r *stubPatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := r.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

type recordingBroker struct {
	published []interface{}
	fail      bool
}

func (b *recordingBroker) Publish(_ context.Context, _ string, message interface{}) error {
	if b.fail {
		return errors.New("broker unavailable")
	}
	b.published = append(b.published, message)
	return nil
}

func (b *recordingBroker) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, nil
}

func (b *recordingBroker) Close() error { return nil }

func newTestService(repo repository.NotificationRepository, broker *recordingBroker) Service {
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	patients := &stubPatientRepo{patients: make(map[uuid.UUID]*model.Patient)}
	if broker == nil {
		return NewService(repo, patients, nil, nil, log, testMetrics)
	}
	return NewService(repo, patients, broker, nil, log, testMetrics)
}

func TestDispatch(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := newTestService(repo, nil)
	patientID := uuid.New()

	n, err := svc.Dispatch(context.Background(), patientID, "Your appointment has been accepted.")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, n.ID)
	assert.Equal(t, patientID, n.PatientID)
	assert.False(t, n.CreatedAt.IsZero())

	stored, err := repo.Get(context.Background(), n.ID)
	require.NoError(t, err)
	assert.Equal(t, n.Message, stored.Message)
}

func TestDispatchValidation(t *testing.T) {
	svc := newTestService(newFakeNotificationRepo(), nil)

	_, err := svc.Dispatch(context.Background(), uuid.Nil, "message")
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Dispatch(context.Background(), uuid.New(), "")
	assert.True(t, apperrors.IsValidation(err))
}

func TestDispatchPublishesEvent(t *testing.T) {
	broker := &recordingBroker{}
	svc := newTestService(newFakeNotificationRepo(), broker)

	n, err := svc.Dispatch(context.Background(), uuid.New(), "hello")
	require.NoError(t, err)

	require.Len(t, broker.published, 1)
	event := broker.published[0].(*model.NotificationEvent)
	assert.Equal(t, n.ID, event.NotificationID)
	assert.Equal(t, n.PatientID, event.PatientID)
	assert.Equal(t, "hello", event.Message)
}

// Fan-out is best effort: a dead broker must not fail the dispatch or
// lose the stored record.
func TestDispatchSurvivesBrokerFailure(t *testing.T) {
	repo := newFakeNotificationRepo()
	broker := &recordingBroker{fail: true}
	svc := newTestService(repo, broker)

	n, err := svc.Dispatch(context.Background(), uuid.New(), "hello")
	require.NoError(t, err)

	_, err = repo.Get(context.Background(), n.ID)
	assert.NoError(t, err)
}

func TestListNewestFirst(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := newTestService(repo, nil)
	patientID := uuid.New()

	first, err := svc.Dispatch(context.Background(), patientID, "first")
	require.NoError(t, err)
	second, err := svc.Dispatch(context.Background(), patientID, "second")
	require.NoError(t, err)

	// Someone else's notification never leaks in.
	_, err = svc.Dispatch(context.Background(), uuid.New(), "other")
	require.NoError(t, err)

	list, err := svc.List(context.Background(), patientID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestDelete(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := newTestService(repo, nil)
	patientID := uuid.New()

	n, err := svc.Dispatch(context.Background(), patientID, "message")
	require.NoError(t, err)

	err = svc.Delete(context.Background(), n.ID, uuid.New())
	assert.True(t, apperrors.IsForbidden(err))

	require.NoError(t, svc.Delete(context.Background(), n.ID, patientID))
	_, err = repo.Get(context.Background(), n.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// Deleting an absent notification is the state the patient asked for.
	assert.NoError(t, svc.Delete(context.Background(), n.ID, patientID))
}
