package json_types

import (
	"encoding/json"
	"fmt"
	"time"
)

// LocalTime - локальное время суток без даты и таймзоны, например "09:00"
type LocalTime struct {
	Time time.Time
}

func NewLocalTime(hour, minute int) LocalTime {
	return LocalTime{Time: time.Date(0, time.January, 1, hour, minute, 0, 0, time.UTC)}
}

func (t *LocalTime) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("time must be a string: %v", err)
	}
	parsedTime, err := time.Parse("15:04", str)
	// Если не удалось, пробуем формат с секундами
	if err != nil {
		parsedTime, err = time.Parse("15:04:05", str)
		if err != nil {
			return fmt.Errorf("failed to parse time: %v", err)
		}
	}
	*t = LocalTime{Time: parsedTime}
	return nil
}

func (t LocalTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format("15:04"))
}

// Minutes возвращает количество минут с начала суток
func (t LocalTime) Minutes() int {
	return t.Time.Hour()*60 + t.Time.Minute()
}

func (t LocalTime) IsZero() bool {
	return t.Time.IsZero()
}
