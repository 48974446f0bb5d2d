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

// EventService owns event CRUD and the registered-count lifecycle. It is the
// only component allowed to move the counter outside the registration
// transaction.
type EventService struct {
	events     repository.EventRepository
	cache      cache.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// EventDependencies bundles requirements for the event service.
type EventDependencies struct {
	EventRepo  repository.EventRepository
	Cache      cache.Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewEventService constructs the service.
func NewEventService(deps EventDependencies) *EventService {
	return &EventService{
		events:     deps.EventRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// Create validates and persists a new event in ACTIVE state.
func (s *EventService) Create(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	if err := validateEventDates(event, time.Now()); err != nil {
		return nil, err
	}

	event.RegisteredCount = 0
	event.Status = domain.EventStatusActive

	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}
	s.logger.Info("event created", zap.String("event_id", event.ID), zap.String("name", event.Name))

	s.evictEventCaches(ctx)
	s.publish(ctx, events.Event{
		Type:    events.EventEventCreated,
		EventID: event.ID,
		Payload: events.EventCreatedPayload{
			Name:        event.Name,
			StartTime:   event.StartTime,
			MaxCapacity: event.MaxCapacity,
		},
	})
	return event, nil
}

// Update validates and persists changes to an existing event. Capacity can
// never shrink below the committed registration count.
func (s *EventService) Update(ctx context.Context, id string, updated *domain.Event) (*domain.Event, error) {
	// The shrink check reads the authoritative row, not the cache, so a
	// stale registered_count cannot let an invalid capacity through.
	existing, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapEventErr(err)
	}

	if err := validateEventDates(updated, time.Now()); err != nil {
		return nil, err
	}
	if updated.MaxCapacity < existing.RegisteredCount {
		return nil, apperrors.NewBusinessRule("La nueva capacidad no puede ser menor al número de participantes ya registrados")
	}

	updated.ID = id
	updated.RegisteredCount = existing.RegisteredCount
	updated.Status = existing.Status
	updated.CreatedAt = existing.CreatedAt

	if err := s.events.Update(ctx, updated); err != nil {
		return nil, s.mapEventErr(err)
	}
	s.logger.Info("event updated", zap.String("event_id", id))

	s.evictEventCaches(ctx)
	return updated, nil
}

// GetByID returns an event, served from cache when possible.
func (s *EventService) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	var cached domain.Event
	if hit, err := s.cache.Get(ctx, cache.NamespaceEvents, id, &cached); err == nil && hit {
		return &cached, nil
	}

	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapEventErr(err)
	}
	if err := s.cache.Set(ctx, cache.NamespaceEvents, id, event); err != nil {
		s.logger.Debug("cache set failed", zap.Error(err))
	}
	return event, nil
}

// List returns all events.
func (s *EventService) List(ctx context.Context) ([]domain.Event, error) {
	return s.cachedList(ctx, cache.NamespaceEvents, "all", func() ([]domain.Event, error) {
		return s.events.List(ctx)
	})
}

// ListAvailable returns active events with free capacity.
func (s *EventService) ListAvailable(ctx context.Context) ([]domain.Event, error) {
	return s.cachedList(ctx, cache.NamespaceEventsAvailable, "all", func() ([]domain.Event, error) {
		return s.events.ListAvailable(ctx)
	})
}

// ListUpcoming returns active events starting after now.
func (s *EventService) ListUpcoming(ctx context.Context) ([]domain.Event, error) {
	return s.cachedList(ctx, cache.NamespaceEventsUpcoming, "all", func() ([]domain.Event, error) {
		return s.events.ListUpcoming(ctx, time.Now())
	})
}

// ListByStatus returns events in the given lifecycle state.
func (s *EventService) ListByStatus(ctx context.Context, status domain.EventStatus) ([]domain.Event, error) {
	return s.events.ListByStatus(ctx, status)
}

// ChangeStatus moves the event to a new lifecycle state.
func (s *EventService) ChangeStatus(ctx context.Context, id string, status domain.EventStatus) (*domain.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapEventErr(err)
	}

	oldStatus := event.Status
	event.Status = status
	if err := s.events.Update(ctx, event); err != nil {
		return nil, s.mapEventErr(err)
	}
	s.logger.Info("event status changed",
		zap.String("event_id", id),
		zap.String("old", string(oldStatus)),
		zap.String("new", string(status)))

	s.evictEventCaches(ctx)
	s.publish(ctx, events.Event{
		Type:    events.EventEventStatusChanged,
		EventID: id,
		Payload: events.EventStatusChangedPayload{OldStatus: oldStatus, NewStatus: status},
	})
	return event, nil
}

// Delete removes the event; attendances cascade at the storage layer.
func (s *EventService) Delete(ctx context.Context, id string) error {
	if err := s.events.Delete(ctx, id); err != nil {
		return s.mapEventErr(err)
	}
	s.logger.Info("event deleted", zap.String("event_id", id))

	s.evictEventCaches(ctx)
	s.evict(ctx, cache.NamespaceAttendances)
	return nil
}

// CheckAvailable reports whether the event is ACTIVE with free capacity.
func (s *EventService) CheckAvailable(ctx context.Context, id string) (bool, error) {
	var cached bool
	if hit, err := s.cache.Get(ctx, cache.NamespaceEventCapacity, id, &cached); err == nil && hit {
		return cached, nil
	}

	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return false, s.mapEventErr(err)
	}
	available := event.HasCapacity() && event.IsActive()
	if err := s.cache.Set(ctx, cache.NamespaceEventCapacity, id, available); err != nil {
		s.logger.Debug("cache set failed", zap.Error(err))
	}
	return available, nil
}

// IncrementRegistered bumps the counter; the storage-level guard rejects the
// move when the event is already full.
func (s *EventService) IncrementRegistered(ctx context.Context, id string) error {
	if err := s.events.IncrementRegistered(ctx, id); err != nil {
		if errors.Is(err, repository.ErrEventFull) {
			return apperrors.NewBusinessRule("El evento ha alcanzado su capacidad máxima")
		}
		return s.mapEventErr(err)
	}
	s.evictEventCaches(ctx)
	return nil
}

// DecrementRegistered lowers the counter, never below zero.
func (s *EventService) DecrementRegistered(ctx context.Context, id string) error {
	if err := s.events.DecrementRegistered(ctx, id); err != nil {
		return err
	}
	s.evictEventCaches(ctx)
	return nil
}

func (s *EventService) cachedList(ctx context.Context, namespace, key string, load func() ([]domain.Event, error)) ([]domain.Event, error) {
	var cached []domain.Event
	if hit, err := s.cache.Get(ctx, namespace, key, &cached); err == nil && hit {
		return cached, nil
	}

	list, err := load()
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, namespace, key, list); err != nil {
		s.logger.Debug("cache set failed", zap.Error(err))
	}
	return list, nil
}

// Statistics ride along on every event eviction since available slots come
// from the counter.
func (s *EventService) evictEventCaches(ctx context.Context) {
	namespaces := append([]string{cache.NamespaceEventStats}, cache.EventNamespaces...)
	s.evict(ctx, namespaces...)
}

func (s *EventService) evict(ctx context.Context, namespaces ...string) {
	if err := s.cache.Evict(ctx, namespaces...); err != nil {
		s.logger.Warn("cache eviction failed", zap.Error(err))
	}
}

func (s *EventService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func (s *EventService) mapEventErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("event", nil)
	}
	return err
}

func validateEventDates(event *domain.Event, now time.Time) error {
	if event.StartTime.Before(now) {
		return apperrors.NewBusinessRule("La fecha de inicio no puede ser en el pasado")
	}
	if !event.EndTime.After(event.StartTime) {
		return apperrors.NewBusinessRule("La fecha de fin debe ser posterior a la fecha de inicio")
	}
	if event.MaxCapacity <= 0 {
		return apperrors.NewBusinessRule("La capacidad máxima debe ser mayor a 0")
	}
	return nil
}
