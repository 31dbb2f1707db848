package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/suchimauz/booking-link-engine/internal/core/domain"
	"github.com/suchimauz/booking-link-engine/internal/core/json_types"
)

func TestResolveDayWindow_Template(t *testing.T) {
	link := testLink()

	window, open := resolveDayWindow(link, nil, testMonday)

	assert.True(t, open)
	assert.Equal(t, 9*60, window.openMinutes)
	assert.Equal(t, 17*60, window.closeMinutes)
}

func TestResolveDayWindow_DisabledWeekday(t *testing.T) {
	link := testLink()
	sunday := time.Date(2024, time.January, 7, 0, 0, 0, 0, time.UTC)

	_, open := resolveDayWindow(link, nil, sunday)

	assert.False(t, open)
}

func TestResolveDayWindow_OverrideClosesDay(t *testing.T) {
	link := testLink()
	override := &domain.DateOverride{
		OwnerID:     link.OwnerID,
		IsAvailable: false,
	}

	// Исключение закрывает день независимо от настройки дня недели
	_, open := resolveDayWindow(link, override, testMonday)

	assert.False(t, open)
}

func TestResolveDayWindow_OverrideWithHours(t *testing.T) {
	link := testLink()
	override := &domain.DateOverride{
		OwnerID:     link.OwnerID,
		IsAvailable: true,
		Open:        json_types.NewLocalTime(12, 0),
		Close:       json_types.NewLocalTime(14, 30),
	}

	window, open := resolveDayWindow(link, override, testMonday)

	assert.True(t, open)
	assert.Equal(t, 12*60, window.openMinutes)
	assert.Equal(t, 14*60+30, window.closeMinutes)
}

func TestResolveDayWindow_OverrideWithoutHoursFallsBackToTemplate(t *testing.T) {
	link := testLink()
	override := &domain.DateOverride{
		OwnerID:     link.OwnerID,
		IsAvailable: true,
	}

	window, open := resolveDayWindow(link, override, testMonday)

	assert.True(t, open)
	assert.Equal(t, 9*60, window.openMinutes)
	assert.Equal(t, 17*60, window.closeMinutes)
}

func TestResolveDayWindow_OverrideWithoutHoursOnDisabledWeekday(t *testing.T) {
	link := testLink()
	sunday := time.Date(2024, time.January, 7, 0, 0, 0, 0, time.UTC)
	override := &domain.DateOverride{
		OwnerID:     link.OwnerID,
		IsAvailable: true,
	}

	// Фолбэк на шаблон, но шаблон в воскресенье выключен - день закрыт
	_, open := resolveDayWindow(link, override, sunday)

	assert.False(t, open)
}
