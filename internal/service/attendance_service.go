package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/eventia-service/internal/cache"
	"github.com/spec-kit/eventia-service/internal/domain"
	"github.com/spec-kit/eventia-service/internal/events"
	"github.com/spec-kit/eventia-service/internal/repository"
	apperrors "github.com/spec-kit/eventia-service/pkg/util"
)

// AttendanceService enforces the registration rules: the event must be
// active and unfinished, the participant registered at most once, and the
// capacity ceiling never exceeded. The decisive checks happen inside the
// registration transaction, so concurrent requests cannot oversell an event.
type AttendanceService struct {
	attendances  repository.AttendanceRepository
	eventRepo    repository.EventRepository
	participants repository.ParticipantRepository
	cache        cache.Store
	dispatcher   events.Dispatcher
	logger       *zap.Logger
	now          func() time.Time
}

// AttendanceDependencies bundles requirements for the attendance service.
type AttendanceDependencies struct {
	AttendanceRepo  repository.AttendanceRepository
	EventRepo       repository.EventRepository
	ParticipantRepo repository.ParticipantRepository
	Cache           cache.Store
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
}

// NewAttendanceService constructs the service.
func NewAttendanceService(deps AttendanceDependencies) *AttendanceService {
	return &AttendanceService{
		attendances:  deps.AttendanceRepo,
		eventRepo:    deps.EventRepo,
		participants: deps.ParticipantRepo,
		cache:        deps.Cache,
		dispatcher:   deps.Dispatcher,
		logger:       deps.Logger,
		now:          time.Now,
	}
}

// Register creates a CONFIRMED attendance for the participant on the event.
// The preconditions are checked up front for readable errors; the insert
// itself re-validates duplicates and capacity atomically.
func (s *AttendanceService) Register(ctx context.Context, eventID, participantID, notes string) (*domain.Attendance, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("event", nil)
		}
		return nil, err
	}
	if _, err := s.participants.GetByID(ctx, participantID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("participant", nil)
		}
		return nil, err
	}

	if !event.IsActive() {
		return nil, apperrors.NewBusinessRule("No se puede registrar en un evento que no está activo")
	}
	if event.HasFinished(s.now()) {
		return nil, apperrors.NewBusinessRule("No se puede registrar en un evento que ya finalizó")
	}
	registered, err := s.attendances.ExistsByEventAndParticipant(ctx, eventID, participantID)
	if err != nil {
		return nil, err
	}
	if registered {
		return nil, apperrors.NewBusinessRule("El participante ya está registrado en este evento")
	}
	if !event.HasCapacity() {
		return nil, apperrors.NewBusinessRule("El evento ha alcanzado su capacidad máxima")
	}

	attendance := &domain.Attendance{
		EventID:       eventID,
		ParticipantID: participantID,
		RegisteredAt:  s.now(),
		Status:        domain.AttendanceStatusConfirmed,
		Notes:         notes,
	}
	if err := s.attendances.Register(ctx, attendance); err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyRegistered):
			return nil, apperrors.NewBusinessRule("El participante ya está registrado en este evento")
		case errors.Is(err, repository.ErrEventFull):
			return nil, apperrors.NewBusinessRule("El evento ha alcanzado su capacidad máxima")
		}
		return nil, err
	}
	s.logger.Info("attendance registered",
		zap.String("attendance_id", attendance.ID),
		zap.String("event_id", eventID),
		zap.String("participant_id", participantID))

	s.evictAttendanceCaches(ctx)
	s.publish(ctx, events.Event{
		Type:    events.EventAttendanceRegistered,
		EventID: eventID,
		Payload: events.AttendanceRegisteredPayload{
			AttendanceID:  attendance.ID,
			ParticipantID: participantID,
		},
	})
	return attendance, nil
}

// Cancel moves a CONFIRMED attendance to CANCELLED and releases its slot.
// Cancelling twice is rejected so the counter is only decremented once.
func (s *AttendanceService) Cancel(ctx context.Context, id string) (*domain.Attendance, error) {
	attendance, err := s.attendances.Cancel(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyCancelled):
			return nil, apperrors.NewBusinessRule("La asistencia ya está cancelada")
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.NewNotFound("attendance", nil)
		}
		return nil, err
	}
	s.logger.Info("attendance cancelled",
		zap.String("attendance_id", id),
		zap.String("event_id", attendance.EventID))

	s.evictAttendanceCaches(ctx)
	s.publish(ctx, events.Event{
		Type:    events.EventAttendanceCancelled,
		EventID: attendance.EventID,
		Payload: events.AttendanceCancelledPayload{
			AttendanceID:  id,
			ParticipantID: attendance.ParticipantID,
		},
	})
	return attendance, nil
}

// MarkAttended records that a confirmed participant showed up.
func (s *AttendanceService) MarkAttended(ctx context.Context, id string) (*domain.Attendance, error) {
	return s.mark(ctx, id, domain.AttendanceStatusAttended)
}

// MarkNoShow records that a confirmed participant did not show up.
func (s *AttendanceService) MarkNoShow(ctx context.Context, id string) (*domain.Attendance, error) {
	return s.mark(ctx, id, domain.AttendanceStatusNoShow)
}

func (s *AttendanceService) mark(ctx context.Context, id string, status domain.AttendanceStatus) (*domain.Attendance, error) {
	attendance, err := s.attendances.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("attendance", nil)
		}
		return nil, err
	}
	if !attendance.IsConfirmed() {
		return nil, apperrors.NewBusinessRule("Solo se puede actualizar una asistencia en estado CONFIRMED")
	}

	updated, err := s.attendances.UpdateStatus(ctx, id, status)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotConfirmed):
			return nil, apperrors.NewBusinessRule("Solo se puede actualizar una asistencia en estado CONFIRMED")
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.NewNotFound("attendance", nil)
		}
		return nil, err
	}
	s.logger.Info("attendance marked",
		zap.String("attendance_id", id),
		zap.String("status", string(status)))

	s.evict(ctx, cache.NamespaceAttendances, cache.NamespaceEventStats)
	s.publish(ctx, events.Event{
		Type:    events.EventAttendanceMarked,
		EventID: updated.EventID,
		Payload: events.AttendanceMarkedPayload{AttendanceID: id, Status: status},
	})
	return updated, nil
}

// Delete removes an attendance record entirely. A CONFIRMED record gives its
// slot back; terminal records do not touch the counter.
func (s *AttendanceService) Delete(ctx context.Context, id string) error {
	attendance, err := s.attendances.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("attendance", nil)
		}
		return err
	}

	if err := s.attendances.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("attendance", nil)
		}
		return err
	}
	s.logger.Info("attendance deleted", zap.String("attendance_id", id))

	s.evictAttendanceCaches(ctx)
	s.publish(ctx, events.Event{
		Type:    events.EventAttendanceDeleted,
		EventID: attendance.EventID,
		Payload: events.AttendanceDeletedPayload{
			AttendanceID: id,
			WasStatus:    attendance.Status,
		},
	})
	return nil
}

// GetByID returns a single attendance record.
func (s *AttendanceService) GetByID(ctx context.Context, id string) (*domain.Attendance, error) {
	attendance, err := s.attendances.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("attendance", nil)
		}
		return nil, err
	}
	return attendance, nil
}

// ListByEvent returns all attendances for an event, cached per event.
func (s *AttendanceService) ListByEvent(ctx context.Context, eventID string) ([]domain.Attendance, error) {
	var cached []domain.Attendance
	if hit, err := s.cache.Get(ctx, cache.NamespaceAttendances, eventID, &cached); err == nil && hit {
		return cached, nil
	}

	if exists, err := s.eventRepo.Exists(ctx, eventID); err != nil {
		return nil, err
	} else if !exists {
		return nil, apperrors.NewNotFound("event", nil)
	}

	list, err := s.attendances.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, cache.NamespaceAttendances, eventID, list); err != nil {
		s.logger.Debug("cache set failed", zap.Error(err))
	}
	return list, nil
}

// ListByParticipant returns all attendances for a participant.
func (s *AttendanceService) ListByParticipant(ctx context.Context, participantID string) ([]domain.Attendance, error) {
	if exists, err := s.participants.Exists(ctx, participantID); err != nil {
		return nil, err
	} else if !exists {
		return nil, apperrors.NewNotFound("participant", nil)
	}
	return s.attendances.ListByParticipant(ctx, participantID)
}

// GetStatistics aggregates per-event attendance figures, cached per event.
func (s *AttendanceService) GetStatistics(ctx context.Context, eventID string) (*domain.EventStatistics, error) {
	var cached domain.EventStatistics
	if hit, err := s.cache.Get(ctx, cache.NamespaceEventStats, eventID, &cached); err == nil && hit {
		return &cached, nil
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("event", nil)
		}
		return nil, err
	}

	total, err := s.attendances.CountByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	stats := &domain.EventStatistics{
		EventID:          event.ID,
		EventName:        event.Name,
		MaxCapacity:      event.MaxCapacity,
		TotalRegistered:  total,
		AvailableSlots:   event.AvailableSlots(),
		OccupancyPercent: event.OccupancyPercent(),
	}
	for status, dest := range map[domain.AttendanceStatus]*int64{
		domain.AttendanceStatusConfirmed: &stats.Confirmed,
		domain.AttendanceStatusCancelled: &stats.Cancelled,
		domain.AttendanceStatusAttended:  &stats.Attended,
		domain.AttendanceStatusNoShow:    &stats.NoShow,
	} {
		count, err := s.attendances.CountByEventAndStatus(ctx, eventID, status)
		if err != nil {
			return nil, err
		}
		*dest = count
	}

	if err := s.cache.Set(ctx, cache.NamespaceEventStats, eventID, stats); err != nil {
		s.logger.Debug("cache set failed", zap.Error(err))
	}
	return stats, nil
}

// Counter-moving mutations invalidate the attendance namespaces plus every
// event read since the denormalized count changed.
func (s *AttendanceService) evictAttendanceCaches(ctx context.Context) {
	namespaces := append([]string{}, cache.AttendanceNamespaces...)
	namespaces = append(namespaces, cache.EventNamespaces...)
	s.evict(ctx, namespaces...)
}

func (s *AttendanceService) evict(ctx context.Context, namespaces ...string) {
	if err := s.cache.Evict(ctx, namespaces...); err != nil {
		s.logger.Warn("cache eviction failed", zap.Error(err))
	}
}

func (s *AttendanceService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
