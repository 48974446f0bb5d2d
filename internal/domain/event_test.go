package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventCapacityHelpers(t *testing.T) {
	event := Event{MaxCapacity: 10, RegisteredCount: 7, Status: EventStatusActive}

	assert.True(t, event.HasCapacity())
	assert.Equal(t, 3, event.AvailableSlots())
	assert.InDelta(t, 70.0, event.OccupancyPercent(), 0.01)

	event.RegisteredCount = 10
	assert.False(t, event.HasCapacity())
	assert.Equal(t, 0, event.AvailableSlots())
	assert.InDelta(t, 100.0, event.OccupancyPercent(), 0.01)
}

func TestEventOccupancyPercent_ZeroCapacity(t *testing.T) {
	event := Event{MaxCapacity: 0, RegisteredCount: 0}
	assert.Zero(t, event.OccupancyPercent())
}

func TestEventIsActive(t *testing.T) {
	for status, want := range map[EventStatus]bool{
		EventStatusActive:    true,
		EventStatusSuspended: false,
		EventStatusCancelled: false,
		EventStatusFinished:  false,
	} {
		event := Event{Status: status}
		assert.Equal(t, want, event.IsActive(), string(status))
	}
}

func TestEventHasFinished(t *testing.T) {
	end := time.Now()
	event := Event{EndTime: end}

	assert.False(t, event.HasFinished(end.Add(-time.Minute)))
	assert.False(t, event.HasFinished(end))
	assert.True(t, event.HasFinished(end.Add(time.Minute)))
}
