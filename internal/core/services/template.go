package services

import (
	"time"

	"github.com/suchimauz/booking-link-engine/internal/core/domain"
)

// dayWindow - разрешенное окно доступности одного календарного дня
// в минутах с начала локальных суток
type dayWindow struct {
	openMinutes  int
	closeMinutes int
}

// resolveDayWindow сводит недельный шаблон и исключение по дате в одно окно дня.
// Исключение по точной дате полностью заменяет шаблон, включая закрытие дня
// независимо от настройки дня недели. Исключение без собственных часов,
// но с isAvailable = true, берет часы из шаблона - это документированный фолбэк
func resolveDayWindow(link *domain.BookingLinkConfig, override *domain.DateOverride, date time.Time) (dayWindow, bool) {
	templateDay := link.Template[date.Weekday()]

	if override != nil {
		if !override.IsAvailable {
			return dayWindow{}, false
		}
		if override.HasHours() {
			return dayWindow{
				openMinutes:  override.Open.Minutes(),
				closeMinutes: override.Close.Minutes(),
			}, true
		}
		// Дата открыта исключением, но часы не заданы - фолбэк на шаблон
		if !templateDay.Enabled {
			return dayWindow{}, false
		}
		return dayWindow{
			openMinutes:  templateDay.Open.Minutes(),
			closeMinutes: templateDay.Close.Minutes(),
		}, true
	}

	if !templateDay.Enabled {
		return dayWindow{}, false
	}

	return dayWindow{
		openMinutes:  templateDay.Open.Minutes(),
		closeMinutes: templateDay.Close.Minutes(),
	}, true
}
