package domain

import (
	"time"

	"github.com/google/uuid"
)

type BusySource string

const (
	BusySourceCalendarEvent BusySource = "calendar_event"
	BusySourceTimeBlock     BusySource = "time_block"
	BusySourceBooking       BusySource = "booking"
)

// BusyInterval - занятый полуинтервал [Start, End) в абсолютном времени (UTC)
// Движок его только читает, создают его внешние подсистемы
type BusyInterval struct {
	OwnerID uuid.UUID  `json:"ownerId"`
	Start   time.Time  `json:"start"`
	End     time.Time  `json:"end"`
	Source  BusySource `json:"source"`
}

// Overlaps проверяет пересечение двух полуинтервалов:
// [a0, a1) и [b0, b1) пересекаются тогда и только тогда, когда a0 < b1 && b0 < a1
func (b BusyInterval) Overlaps(start, end time.Time) bool {
	return b.Start.Before(end) && start.Before(b.End)
}
