package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/eventia-service/internal/cache"
	"github.com/spec-kit/eventia-service/internal/domain"
	"github.com/spec-kit/eventia-service/internal/events"
	apperrors "github.com/spec-kit/eventia-service/pkg/util"
)

type eventFixture struct {
	svc        *EventService
	repo       *fakeEventRepo
	store      *memoryStore
	dispatcher *captureDispatcher
}

func newEventFixture() *eventFixture {
	repo := newFakeEventRepo()
	store := newMemoryStore()
	dispatcher := &captureDispatcher{}
	svc := NewEventService(EventDependencies{
		EventRepo:  repo,
		Cache:      store,
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
	})
	return &eventFixture{svc: svc, repo: repo, store: store, dispatcher: dispatcher}
}

func validEvent(capacity int) *domain.Event {
	return &domain.Event{
		Name:        "Taller de Go",
		StartTime:   time.Now().Add(48 * time.Hour),
		EndTime:     time.Now().Add(52 * time.Hour),
		Location:    "Medellín",
		MaxCapacity: capacity,
	}
}

func TestCreateEvent_Defaults(t *testing.T) {
	f := newEventFixture()

	created, err := f.svc.Create(context.Background(), validEvent(50))
	require.NoError(t, err)
	assert.Equal(t, domain.EventStatusActive, created.Status)
	assert.Equal(t, 0, created.RegisteredCount)
	assert.NotEmpty(t, created.ID)
	assert.Len(t, f.dispatcher.byType(events.EventEventCreated), 1)
}

func TestCreateEvent_Validation(t *testing.T) {
	f := newEventFixture()
	ctx := context.Background()

	past := validEvent(50)
	past.StartTime = time.Now().Add(-time.Hour)
	_, err := f.svc.Create(ctx, past)
	requireBusinessRule(t, err, "La fecha de inicio no puede ser en el pasado")

	inverted := validEvent(50)
	inverted.EndTime = inverted.StartTime.Add(-time.Hour)
	_, err = f.svc.Create(ctx, inverted)
	requireBusinessRule(t, err, "La fecha de fin debe ser posterior a la fecha de inicio")

	zeroCapacity := validEvent(0)
	_, err = f.svc.Create(ctx, zeroCapacity)
	requireBusinessRule(t, err, "La capacidad máxima debe ser mayor a 0")
}

func TestUpdateEvent_CapacityCannotShrinkBelowRegistered(t *testing.T) {
	f := newEventFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, validEvent(10))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, f.repo.IncrementRegistered(ctx, created.ID))
	}
	f.store.Evictions = nil

	shrunk := validEvent(3)
	_, err = f.svc.Update(ctx, created.ID, shrunk)
	requireBusinessRule(t, err, "La nueva capacidad no puede ser menor al número de participantes ya registrados")

	grown := validEvent(20)
	updated, err := f.svc.Update(ctx, created.ID, grown)
	require.NoError(t, err)
	assert.Equal(t, 20, updated.MaxCapacity)
	assert.Equal(t, 5, updated.RegisteredCount)
	assert.True(t, f.store.evicted(cache.NamespaceEvents))
}

func TestUpdateEvent_ShrinkCheckIgnoresStaleCache(t *testing.T) {
	f := newEventFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, validEvent(10))
	require.NoError(t, err)

	// Prime the cache while the event is still empty.
	_, err = f.svc.GetByID(ctx, created.ID)
	require.NoError(t, err)

	// Registrations commit without touching the cached copy.
	for i := 0; i < 5; i++ {
		require.NoError(t, f.repo.IncrementRegistered(ctx, created.ID))
	}

	_, err = f.svc.Update(ctx, created.ID, validEvent(3))
	requireBusinessRule(t, err, "La nueva capacidad no puede ser menor al número de participantes ya registrados")
}

func TestUpdateEvent_NotFound(t *testing.T) {
	f := newEventFixture()

	_, err := f.svc.Update(context.Background(), "missing", validEvent(10))
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestGetEvent_ServedFromCache(t *testing.T) {
	f := newEventFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, validEvent(10))
	require.NoError(t, err)

	first, err := f.svc.GetByID(ctx, created.ID)
	require.NoError(t, err)

	// Mutating the store behind the cache must not change the cached read.
	require.NoError(t, f.repo.IncrementRegistered(ctx, created.ID))
	second, err := f.svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, first.RegisteredCount, second.RegisteredCount)
}

func TestCheckAvailable(t *testing.T) {
	f := newEventFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, validEvent(1))
	require.NoError(t, err)

	available, err := f.svc.CheckAvailable(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, available)

	require.NoError(t, f.svc.IncrementRegistered(ctx, created.ID))
	available, err = f.svc.CheckAvailable(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, available)
}

func TestCheckAvailable_SuspendedEvent(t *testing.T) {
	f := newEventFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, validEvent(10))
	require.NoError(t, err)
	_, err = f.svc.ChangeStatus(ctx, created.ID, domain.EventStatusSuspended)
	require.NoError(t, err)

	available, err := f.svc.CheckAvailable(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, available)
}

func TestChangeStatus_PublishesEvent(t *testing.T) {
	f := newEventFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, validEvent(10))
	require.NoError(t, err)

	updated, err := f.svc.ChangeStatus(ctx, created.ID, domain.EventStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.EventStatusCancelled, updated.Status)

	published := f.dispatcher.byType(events.EventEventStatusChanged)
	require.Len(t, published, 1)
	payload, ok := published[0].Payload.(events.EventStatusChangedPayload)
	require.True(t, ok)
	assert.Equal(t, domain.EventStatusActive, payload.OldStatus)
	assert.Equal(t, domain.EventStatusCancelled, payload.NewStatus)
}

func TestIncrementRegistered_FullEvent(t *testing.T) {
	f := newEventFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, validEvent(1))
	require.NoError(t, err)

	require.NoError(t, f.svc.IncrementRegistered(ctx, created.ID))
	err = f.svc.IncrementRegistered(ctx, created.ID)
	requireBusinessRule(t, err, "El evento ha alcanzado su capacidad máxima")
}

func TestDecrementRegistered_FloorsAtZero(t *testing.T) {
	f := newEventFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, validEvent(5))
	require.NoError(t, err)

	require.NoError(t, f.svc.DecrementRegistered(ctx, created.ID))
	stored, err := f.repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.RegisteredCount)
}

func TestListAvailable_ExcludesFullAndInactive(t *testing.T) {
	f := newEventFixture()
	ctx := context.Background()

	open, err := f.svc.Create(ctx, validEvent(5))
	require.NoError(t, err)

	full, err := f.svc.Create(ctx, validEvent(1))
	require.NoError(t, err)
	require.NoError(t, f.svc.IncrementRegistered(ctx, full.ID))

	suspended, err := f.svc.Create(ctx, validEvent(5))
	require.NoError(t, err)
	_, err = f.svc.ChangeStatus(ctx, suspended.ID, domain.EventStatusSuspended)
	require.NoError(t, err)

	available, err := f.svc.ListAvailable(ctx)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, open.ID, available[0].ID)
}

func TestDeleteEvent_EvictsCaches(t *testing.T) {
	f := newEventFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, validEvent(5))
	require.NoError(t, err)
	f.store.Evictions = nil

	require.NoError(t, f.svc.Delete(ctx, created.ID))
	assert.True(t, f.store.evicted(cache.NamespaceEvents))
	assert.True(t, f.store.evicted(cache.NamespaceAttendances))

	_, err = f.svc.GetByID(ctx, created.ID)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}
