package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/booking-link-engine/internal/core/json_types"
)

type AssignmentMethod string

const (
	AssignmentMethodPooled     AssignmentMethod = "pooled"
	AssignmentMethodRoundRobin AssignmentMethod = "round-robin"
	AssignmentMethodSpecific   AssignmentMethod = "specific"
)

const DefaultSlotIncrementMinutes = 30

// DayTemplate - окно доступности для одного дня недели
type DayTemplate struct {
	Enabled bool                  `json:"enabled"`
	Open    json_types.LocalTime  `json:"open"`
	Close   json_types.LocalTime  `json:"close"`
}

// WeeklyTemplate - недельный шаблон доступности, индекс - time.Weekday (0 - воскресенье)
type WeeklyTemplate [7]DayTemplate

type BookingLinkConfig struct {
	ID       uuid.UUID `json:"id"`
	OwnerID  uuid.UUID `json:"ownerId"`
	Title    string    `json:"title"`
	Timezone string    `json:"timezone"`

	DurationMinutes      int `json:"durationMinutes"`
	BufferBeforeMinutes  int `json:"bufferBeforeMinutes"`
	BufferAfterMinutes   int `json:"bufferAfterMinutes"`
	LeadTimeMinutes      int `json:"leadTimeMinutes"`
	SlotIncrementMinutes int `json:"slotIncrementMinutes"`

	Template WeeklyTemplate `json:"availabilityTemplate"`

	// 0 - без ограничений
	MaxBookingsPerDay   int `json:"maxBookingsPerDay"`
	MaxBookingsPerWeek  int `json:"maxBookingsPerWeek"`
	MaxBookingsPerMonth int `json:"maxBookingsPerMonth"`

	IsTeamBooking    bool             `json:"isTeamBooking"`
	TeamMemberIDs    []uuid.UUID      `json:"teamMemberIds"`
	AssignmentMethod AssignmentMethod `json:"assignmentMethod"`
	SpecificMemberID uuid.UUID        `json:"specificMemberId"`

	IsOneOff  bool `json:"isOneOff"`
	IsExpired bool `json:"isExpired"`
}

func (l *BookingLinkConfig) Duration() time.Duration {
	return time.Duration(l.DurationMinutes) * time.Minute
}

func (l *BookingLinkConfig) BufferBefore() time.Duration {
	return time.Duration(l.BufferBeforeMinutes) * time.Minute
}

func (l *BookingLinkConfig) BufferAfter() time.Duration {
	return time.Duration(l.BufferAfterMinutes) * time.Minute
}

func (l *BookingLinkConfig) LeadTime() time.Duration {
	return time.Duration(l.LeadTimeMinutes) * time.Minute
}

// Assignees возвращает список кандидатов на назначение брони
// Для индивидуальной ссылки это всегда только владелец,
// для командной с методом specific - единственный заранее выбранный участник
func (l *BookingLinkConfig) Assignees() []uuid.UUID {
	if !l.IsTeamBooking || len(l.TeamMemberIDs) == 0 {
		return []uuid.UUID{l.OwnerID}
	}
	if l.AssignmentMethod == AssignmentMethodSpecific {
		return []uuid.UUID{l.SpecificMemberID}
	}
	return l.TeamMemberIDs
}

// Validate проверяет конфигурацию ссылки на этапе загрузки из хранилища,
// чтобы не проверять её заново в каждой точке чтения
func (l *BookingLinkConfig) Validate() error {
	if l.DurationMinutes <= 0 {
		return fmt.Errorf("link %s: duration must be positive, got %d", l.ID, l.DurationMinutes)
	}
	if l.BufferBeforeMinutes < 0 || l.BufferAfterMinutes < 0 {
		return fmt.Errorf("link %s: buffers must not be negative", l.ID)
	}
	if l.LeadTimeMinutes < 0 {
		return fmt.Errorf("link %s: lead time must not be negative", l.ID)
	}
	if l.SlotIncrementMinutes == 0 {
		l.SlotIncrementMinutes = DefaultSlotIncrementMinutes
	}
	if l.SlotIncrementMinutes < 0 {
		return fmt.Errorf("link %s: slot increment must be positive, got %d", l.ID, l.SlotIncrementMinutes)
	}

	if _, err := time.LoadLocation(l.Timezone); err != nil {
		return fmt.Errorf("link %s: unknown timezone %q: %v", l.ID, l.Timezone, err)
	}

	for weekday, day := range l.Template {
		if !day.Enabled {
			continue
		}
		if day.Open.Minutes() >= day.Close.Minutes() {
			return fmt.Errorf("link %s: weekday %d: open time must be before close time", l.ID, weekday)
		}
	}

	if l.IsTeamBooking {
		if len(l.TeamMemberIDs) == 0 {
			return fmt.Errorf("link %s: team booking without team members", l.ID)
		}
		switch l.AssignmentMethod {
		case AssignmentMethodPooled, AssignmentMethodRoundRobin:
		case AssignmentMethodSpecific:
			if l.SpecificMemberID == uuid.Nil {
				return fmt.Errorf("link %s: specific assignment without specific member", l.ID)
			}
		default:
			return fmt.Errorf("link %s: unknown assignment method %q", l.ID, l.AssignmentMethod)
		}
	}

	return nil
}
