package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/booking-link-engine/internal/core/domain"
	"github.com/suchimauz/booking-link-engine/internal/core/json_types"
)

func parseLocalTime(str string) (json_types.LocalTime, error) {
	parsed, err := time.Parse("15:04", str)
	if err != nil {
		parsed, err = time.Parse("15:04:05", str)
		if err != nil {
			return json_types.LocalTime{}, fmt.Errorf("failed to parse time %q: %v", str, err)
		}
	}
	return json_types.LocalTime{Time: parsed}, nil
}

// parseTimeBlock превращает строку унаследованной таблицы блокировок
// в занятый интервал. Любое битое поле - причина отбросить строку целиком
func parseTimeBlock(ownerID uuid.UUID, blockDate, startTime, endTime, timezone sql.NullString) (domain.BusyInterval, error) {
	if !blockDate.Valid || !startTime.Valid || !endTime.Valid {
		return domain.BusyInterval{}, fmt.Errorf("time block has missing date or time fields")
	}

	loc := time.UTC
	if timezone.Valid && timezone.String != "" {
		parsed, err := time.LoadLocation(timezone.String)
		if err != nil {
			return domain.BusyInterval{}, fmt.Errorf("time block has unknown timezone %q", timezone.String)
		}
		loc = parsed
	}

	day, err := time.ParseInLocation("2006-01-02", blockDate.String, loc)
	if err != nil {
		return domain.BusyInterval{}, fmt.Errorf("time block has invalid date %q", blockDate.String)
	}

	open, err := parseLocalTime(startTime.String)
	if err != nil {
		return domain.BusyInterval{}, fmt.Errorf("time block has invalid start time %q", startTime.String)
	}
	closing, err := parseLocalTime(endTime.String)
	if err != nil {
		return domain.BusyInterval{}, fmt.Errorf("time block has invalid end time %q", endTime.String)
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), open.Time.Hour(), open.Time.Minute(), 0, 0, loc)
	end := time.Date(day.Year(), day.Month(), day.Day(), closing.Time.Hour(), closing.Time.Minute(), 0, 0, loc)
	if !end.After(start) {
		return domain.BusyInterval{}, fmt.Errorf("time block ends before it starts")
	}

	return domain.BusyInterval{
		OwnerID: ownerID,
		Start:   start,
		End:     end,
		Source:  domain.BusySourceTimeBlock,
	}, nil
}
