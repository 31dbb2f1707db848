package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suchimauz/booking-link-engine/internal/core/domain"
)

func slotAt(hour, minute int) domain.Slot {
	start := time.Date(2024, time.January, 8, hour, minute, 0, 0, time.UTC)
	return domain.Slot{StartTime: start, EndTime: start.Add(30 * time.Minute)}
}

func busyAt(ownerID uuid.UUID, fromHour, fromMinute, toHour, toMinute int) domain.BusyInterval {
	return domain.BusyInterval{
		OwnerID: ownerID,
		Start:   time.Date(2024, time.January, 8, fromHour, fromMinute, 0, 0, time.UTC),
		End:     time.Date(2024, time.January, 8, toHour, toMinute, 0, 0, time.UTC),
		Source:  domain.BusySourceCalendarEvent,
	}
}

func TestFilterConflictingSlots_RemovesOverlapped(t *testing.T) {
	link := testLink()
	slots := []domain.Slot{
		slotAt(9, 0), slotAt(9, 30), slotAt(10, 0), slotAt(10, 30), slotAt(11, 0),
	}
	busy := []domain.BusyInterval{busyAt(link.OwnerID, 10, 0, 11, 0)}

	free := filterConflictingSlots(link, slots, busy)

	require.Len(t, free, 3)
	assert.Equal(t, slotAt(9, 0), free[0])
	assert.Equal(t, slotAt(9, 30), free[1])
	assert.Equal(t, slotAt(11, 0), free[2])
}

func TestFilterConflictingSlots_TouchingIntervalsDoNotConflict(t *testing.T) {
	link := testLink()
	slots := []domain.Slot{slotAt(9, 30), slotAt(10, 0)}
	// Занятость заканчивается ровно в начале слота 10:00
	busy := []domain.BusyInterval{busyAt(link.OwnerID, 9, 0, 10, 0)}

	free := filterConflictingSlots(link, slots, busy)

	require.Len(t, free, 1)
	assert.Equal(t, slotAt(10, 0), free[0])
}

func TestFilterConflictingSlots_BufferBeforeExtendsConflict(t *testing.T) {
	link := testLink()
	link.BufferBeforeMinutes = 15
	slots := []domain.Slot{slotAt(9, 0), slotAt(9, 30), slotAt(10, 30), slotAt(11, 0)}
	busy := []domain.BusyInterval{busyAt(link.OwnerID, 10, 0, 10, 30)}

	free := filterConflictingSlots(link, slots, busy)

	// Буфер "до" требует 15 свободных минут перед слотом 10:30
	// и делает недоступным слот 09:30, прилегающий к началу занятости
	require.Len(t, free, 2)
	assert.Equal(t, slotAt(9, 0), free[0])
	assert.Equal(t, slotAt(11, 0), free[1])
}

func TestFilterConflictingSlots_BufferAfterExtendsConflict(t *testing.T) {
	link := testLink()
	link.BufferAfterMinutes = 30
	slots := []domain.Slot{slotAt(9, 0), slotAt(9, 30), slotAt(11, 0), slotAt(11, 30)}
	busy := []domain.BusyInterval{busyAt(link.OwnerID, 10, 0, 11, 0)}

	free := filterConflictingSlots(link, slots, busy)

	require.Len(t, free, 2)
	assert.Equal(t, slotAt(9, 0), free[0])
	assert.Equal(t, slotAt(11, 30), free[1])
}

func TestIsSlotFree_ChecksOnlyTheCandidate(t *testing.T) {
	link := testLink()
	memberA := uuid.New()
	memberB := uuid.New()
	busy := []domain.BusyInterval{busyAt(memberA, 10, 0, 10, 30)}

	assert.False(t, isSlotFree(link, slotAt(10, 0), busy, memberA))
	assert.True(t, isSlotFree(link, slotAt(10, 0), busy, memberB))
}

func TestIsSlotCommonlyFree_AnyMemberBusyRemovesSlot(t *testing.T) {
	link := testLink()
	busy := []domain.BusyInterval{busyAt(uuid.New(), 10, 0, 10, 30)}

	assert.False(t, isSlotCommonlyFree(link, slotAt(10, 0), busy))
	assert.True(t, isSlotCommonlyFree(link, slotAt(11, 0), busy))
}
