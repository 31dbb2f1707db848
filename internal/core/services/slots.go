package services

import (
	"time"

	"github.com/suchimauz/booking-link-engine/internal/core/domain"
)

// localInstant строит абсолютный момент времени из локальных составляющих.
// Смещение таймзоны вычисляется для каждого конкретного локального момента,
// а не один раз на весь диапазон, потому что смещение меняется на переходах
// летнего/зимнего времени. Несуществующее локальное время (час, выпавший
// при переводе стрелок вперед) нормализуется пакетом time - такой момент
// отбрасывается по проверке обратного чтения стенных часов
func localInstant(year int, month time.Month, day int, minutes int, loc *time.Location) (time.Time, bool) {
	hour := minutes / 60
	minute := minutes % 60

	t := time.Date(year, month, day, hour, minute, 0, 0, loc)
	if t.Year() != year || t.Month() != month || t.Day() != day || t.Hour() != hour || t.Minute() != minute {
		return time.Time{}, false
	}

	return t, true
}

// generateDaySlots выдает слоты одного календарного дня:
// open, open+increment, open+2*increment, ... пока slot_start + duration <= close
func generateDaySlots(link *domain.BookingLinkConfig, dayStart time.Time, window dayWindow) []domain.Slot {
	var slots []domain.Slot

	year, month, day := dayStart.Date()
	loc := dayStart.Location()

	for startMinutes := window.openMinutes; startMinutes+link.DurationMinutes <= window.closeMinutes; startMinutes += link.SlotIncrementMinutes {
		slotStart, ok := localInstant(year, month, day, startMinutes, loc)
		if !ok {
			continue
		}

		slots = append(slots, domain.Slot{
			StartTime: slotStart,
			EndTime:   slotStart.Add(link.Duration()),
		})
	}

	return slots
}
