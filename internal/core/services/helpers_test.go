package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/booking-link-engine/internal/core/domain"
	"github.com/suchimauz/booking-link-engine/internal/core/json_types"
)

// testLink - индивидуальная ссылка пн-пт 09:00-17:00, слоты по 30 минут, UTC
func testLink() *domain.BookingLinkConfig {
	link := &domain.BookingLinkConfig{
		ID:                   uuid.New(),
		OwnerID:              uuid.New(),
		Title:                "Интервью",
		Timezone:             "UTC",
		DurationMinutes:      30,
		SlotIncrementMinutes: 30,
	}

	for weekday := time.Monday; weekday <= time.Friday; weekday++ {
		link.Template[weekday] = domain.DayTemplate{
			Enabled: true,
			Open:    json_types.NewLocalTime(9, 0),
			Close:   json_types.NewLocalTime(17, 0),
		}
	}

	return link
}

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// Понедельник 8 января 2024, UTC
var testMonday = time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC)
