package availability

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/internal/repository"
	apperrors "github.com/medibook/booking-api/pkg/errors"
	"github.com/medibook/booking-api/pkg/metrics"
)

const doctorListCacheKey = "doctors"

// Service derives doctor availability from the live booking set. A
// doctor is busy iff at least one pending or accepted booking references
// them; rejected and deleted bookings never count. Statuses are
// recomputed on every read so out-of-band store mutations cannot cause
// drift. Only the identity rows (names, specialties) are cached, since
// the identity collection is owned elsewhere and changes rarely.
type Service struct {
	bookingRepo repository.BookingRepository
	doctorRepo  repository.DoctorRepository
	identities  *cache.Cache
	metrics     *metrics.Metrics
}

func NewService(bookingRepo repository.BookingRepository, doctorRepo repository.DoctorRepository, cacheTTL time.Duration, m *metrics.Metrics) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		doctorRepo:  doctorRepo,
		identities:  cache.New(cacheTTL, 2*cacheTTL),
		metrics:     m,
	}
}

// Status recomputes a single doctor's availability.
func (s *Service) Status(ctx context.Context, doctorID uuid.UUID) (model.DoctorStatus, error) {
	start := time.Now()
	defer func() {
		s.metrics.AvailabilityScans.Inc()
		s.metrics.AvailabilityLatency.Observe(time.Since(start).Seconds())
	}()

	busy, err := s.bookingRepo.HasActiveForDoctor(ctx, doctorID)
	if err != nil {
		return "", apperrors.Store(err)
	}
	if busy {
		return model.DoctorStatusBusy, nil
	}
	return model.DoctorStatusAvailable, nil
}

// ListDoctors returns every doctor joined with the derived status, one
// booking-set scan per call.
func (s *Service) ListDoctors(ctx context.Context) ([]*model.DoctorWithStatus, error) {
	start := time.Now()
	defer func() {
		s.metrics.AvailabilityScans.Inc()
		s.metrics.AvailabilityLatency.Observe(time.Since(start).Seconds())
	}()

	doctors, err := s.listDoctorIdentities(ctx)
	if err != nil {
		return nil, err
	}

	busy, err := s.bookingRepo.ActiveDoctorIDs(ctx)
	if err != nil {
		return nil, apperrors.Store(err)
	}

	result := make([]*model.DoctorWithStatus, 0, len(doctors))
	for _, d := range doctors {
		status := model.DoctorStatusAvailable
		if _, ok := busy[d.ID]; ok {
			status = model.DoctorStatusBusy
		}
		result = append(result, &model.DoctorWithStatus{
			Doctor: *d,
			Status: status,
		})
	}
	return result, nil
}

func (s *Service) listDoctorIdentities(ctx context.Context) ([]*model.Doctor, error) {
	if cached, found := s.identities.Get(doctorListCacheKey); found {
		return cached.([]*model.Doctor), nil
	}

	doctors, err := s.doctorRepo.List(ctx)
	if err != nil {
		return nil, apperrors.Store(err)
	}
	s.identities.Set(doctorListCacheKey, doctors, cache.DefaultExpiration)
	return doctors, nil
}
