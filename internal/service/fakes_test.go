package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/eventia-service/internal/domain"
	"github.com/spec-kit/eventia-service/internal/events"
	"github.com/spec-kit/eventia-service/internal/repository"
)

// fakeEventRepo is an in-memory EventRepository. The mutex serializes the
// guarded counter updates the same way row locks do in Postgres.
type fakeEventRepo struct {
	mu     sync.Mutex
	events map[string]*domain.Event
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: map[string]*domain.Event{}}
}

func (r *fakeEventRepo) Create(_ context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now
	clone := *event
	r.events[event.ID] = &clone
	return nil
}

func (r *fakeEventRepo) Update(_ context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.events[event.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	event.CreatedAt = existing.CreatedAt
	event.RegisteredCount = existing.RegisteredCount
	event.UpdatedAt = time.Now()
	clone := *event
	r.events[event.ID] = &clone
	return nil
}

func (r *fakeEventRepo) GetByID(_ context.Context, id string) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *event
	return &clone, nil
}

func (r *fakeEventRepo) List(_ context.Context) ([]domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]domain.Event, 0, len(r.events))
	for _, event := range r.events {
		result = append(result, *event)
	}
	return result, nil
}

func (r *fakeEventRepo) ListByStatus(_ context.Context, status domain.EventStatus) ([]domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Event
	for _, event := range r.events {
		if event.Status == status {
			result = append(result, *event)
		}
	}
	return result, nil
}

func (r *fakeEventRepo) ListAvailable(_ context.Context) ([]domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Event
	for _, event := range r.events {
		if event.Status == domain.EventStatusActive && event.RegisteredCount < event.MaxCapacity {
			result = append(result, *event)
		}
	}
	return result, nil
}

func (r *fakeEventRepo) ListUpcoming(_ context.Context, from time.Time) ([]domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Event
	for _, event := range r.events {
		if event.Status == domain.EventStatusActive && event.StartTime.After(from) {
			result = append(result, *event)
		}
	}
	return result, nil
}

func (r *fakeEventRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.events, id)
	return nil
}

func (r *fakeEventRepo) Exists(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.events[id]
	return ok, nil
}

func (r *fakeEventRepo) IncrementRegistered(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if event.RegisteredCount >= event.MaxCapacity {
		return repository.ErrEventFull
	}
	event.RegisteredCount++
	event.UpdatedAt = time.Now()
	return nil
}

func (r *fakeEventRepo) DecrementRegistered(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if event.RegisteredCount > 0 {
		event.RegisteredCount--
		event.UpdatedAt = time.Now()
	}
	return nil
}

// fakeParticipantRepo is an in-memory ParticipantRepository.
type fakeParticipantRepo struct {
	mu           sync.Mutex
	participants map[string]*domain.Participant
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{participants: map[string]*domain.Participant{}}
}

func (r *fakeParticipantRepo) Create(_ context.Context, participant *domain.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.participants {
		if strings.EqualFold(existing.Email, participant.Email) {
			return repository.ErrDuplicate
		}
		if existing.DocumentNumber == participant.DocumentNumber && existing.DocumentType == participant.DocumentType {
			return repository.ErrDuplicate
		}
	}
	if participant.ID == "" {
		participant.ID = uuid.NewString()
	}
	now := time.Now()
	participant.CreatedAt = now
	participant.UpdatedAt = now
	clone := *participant
	r.participants[participant.ID] = &clone
	return nil
}

func (r *fakeParticipantRepo) Update(_ context.Context, participant *domain.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.participants[participant.ID]; !ok {
		return pgx.ErrNoRows
	}
	participant.UpdatedAt = time.Now()
	clone := *participant
	r.participants[participant.ID] = &clone
	return nil
}

func (r *fakeParticipantRepo) GetByID(_ context.Context, id string) (*domain.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	participant, ok := r.participants[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *participant
	return &clone, nil
}

func (r *fakeParticipantRepo) GetByEmail(_ context.Context, email string) (*domain.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, participant := range r.participants {
		if strings.EqualFold(participant.Email, email) {
			clone := *participant
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeParticipantRepo) GetByDocument(_ context.Context, number string, docType domain.DocumentType) (*domain.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, participant := range r.participants {
		if participant.DocumentNumber == number && participant.DocumentType == docType {
			clone := *participant
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeParticipantRepo) List(_ context.Context) ([]domain.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]domain.Participant, 0, len(r.participants))
	for _, participant := range r.participants {
		result = append(result, *participant)
	}
	return result, nil
}

func (r *fakeParticipantRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.participants[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.participants, id)
	return nil
}

func (r *fakeParticipantRepo) Exists(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.participants[id]
	return ok, nil
}

func (r *fakeParticipantRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, participant := range r.participants {
		if strings.EqualFold(participant.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeParticipantRepo) ExistsByDocument(_ context.Context, number string, docType domain.DocumentType) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, participant := range r.participants {
		if participant.DocumentNumber == number && participant.DocumentType == docType {
			return true, nil
		}
	}
	return false, nil
}

// fakeAttendanceRepo is an in-memory AttendanceRepository. Register and
// Cancel mirror the transactional semantics of the real implementation:
// the uniqueness check, the insert and the counter move happen atomically.
type fakeAttendanceRepo struct {
	mu          sync.Mutex
	attendances map[string]*domain.Attendance
	events      *fakeEventRepo
}

func newFakeAttendanceRepo(events *fakeEventRepo) *fakeAttendanceRepo {
	return &fakeAttendanceRepo{
		attendances: map[string]*domain.Attendance{},
		events:      events,
	}
}

func (r *fakeAttendanceRepo) Register(ctx context.Context, attendance *domain.Attendance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.attendances {
		if existing.EventID == attendance.EventID && existing.ParticipantID == attendance.ParticipantID {
			return repository.ErrAlreadyRegistered
		}
	}
	if err := r.events.IncrementRegistered(ctx, attendance.EventID); err != nil {
		return err
	}
	if attendance.ID == "" {
		attendance.ID = uuid.NewString()
	}
	attendance.UpdatedAt = time.Now()
	clone := *attendance
	r.attendances[attendance.ID] = &clone
	return nil
}

func (r *fakeAttendanceRepo) Cancel(ctx context.Context, id string) (*domain.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	attendance, ok := r.attendances[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if attendance.Status == domain.AttendanceStatusCancelled {
		return nil, repository.ErrAlreadyCancelled
	}
	attendance.Status = domain.AttendanceStatusCancelled
	attendance.UpdatedAt = time.Now()
	if err := r.events.DecrementRegistered(ctx, attendance.EventID); err != nil {
		return nil, err
	}
	clone := *attendance
	return &clone, nil
}

func (r *fakeAttendanceRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	attendance, ok := r.attendances[id]
	if !ok {
		return pgx.ErrNoRows
	}
	delete(r.attendances, id)
	if attendance.Status == domain.AttendanceStatusConfirmed {
		return r.events.DecrementRegistered(ctx, attendance.EventID)
	}
	return nil
}

func (r *fakeAttendanceRepo) UpdateStatus(_ context.Context, id string, status domain.AttendanceStatus) (*domain.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	attendance, ok := r.attendances[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if attendance.Status != domain.AttendanceStatusConfirmed {
		return nil, repository.ErrNotConfirmed
	}
	attendance.Status = status
	attendance.UpdatedAt = time.Now()
	clone := *attendance
	return &clone, nil
}

func (r *fakeAttendanceRepo) GetByID(_ context.Context, id string) (*domain.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	attendance, ok := r.attendances[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *attendance
	return &clone, nil
}

func (r *fakeAttendanceRepo) ListByEvent(_ context.Context, eventID string) ([]domain.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Attendance
	for _, attendance := range r.attendances {
		if attendance.EventID == eventID {
			result = append(result, *attendance)
		}
	}
	return result, nil
}

func (r *fakeAttendanceRepo) ListByParticipant(_ context.Context, participantID string) ([]domain.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Attendance
	for _, attendance := range r.attendances {
		if attendance.ParticipantID == participantID {
			result = append(result, *attendance)
		}
	}
	return result, nil
}

func (r *fakeAttendanceRepo) ExistsByEventAndParticipant(_ context.Context, eventID, participantID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, attendance := range r.attendances {
		if attendance.EventID == eventID && attendance.ParticipantID == participantID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAttendanceRepo) CountByEvent(_ context.Context, eventID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, attendance := range r.attendances {
		if attendance.EventID == eventID {
			count++
		}
	}
	return count, nil
}

func (r *fakeAttendanceRepo) CountByEventAndStatus(_ context.Context, eventID string, status domain.AttendanceStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, attendance := range r.attendances {
		if attendance.EventID == eventID && attendance.Status == status {
			count++
		}
	}
	return count, nil
}

// memoryStore is a cache.Store backed by a map, recording evictions so tests
// can assert on invalidation behavior.
type memoryStore struct {
	mu        sync.Mutex
	data      map[string][]byte
	Evictions []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string][]byte{}}
}

func (s *memoryStore) Get(_ context.Context, namespace, key string, dest any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.data[namespace+":"+key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (s *memoryStore) Set(_ context.Context, namespace, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.data[namespace+":"+key] = raw
	return nil
}

func (s *memoryStore) Evict(_ context.Context, namespaces ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, namespace := range namespaces {
		s.Evictions = append(s.Evictions, namespace)
		prefix := namespace + ":"
		for key := range s.data {
			if strings.HasPrefix(key, prefix) {
				delete(s.data, key)
			}
		}
	}
	return nil
}

func (s *memoryStore) evicted(namespace string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, evicted := range s.Evictions {
		if evicted == namespace {
			return true
		}
	}
	return false
}

// captureDispatcher records published events.
type captureDispatcher struct {
	mu        sync.Mutex
	published []events.Event
}

func (d *captureDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.published = append(d.published, event)
	return nil
}

func (d *captureDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *captureDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var result []events.Event
	for _, event := range d.published {
		if event.Type == eventType {
			result = append(result, event)
		}
	}
	return result
}
