package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartCurrentDay(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)

	moment := time.Date(2024, time.January, 8, 15, 42, 13, 0, loc)
	assert.Equal(t, time.Date(2024, time.January, 8, 0, 0, 0, 0, loc), StartCurrentDay(moment))
}

func TestStartNextDay(t *testing.T) {
	moment := time.Date(2024, time.January, 31, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), StartNextDay(moment))
}

func TestStartOfWeek(t *testing.T) {
	monday := time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC)

	// Неделя начинается с понедельника, воскресенье - её последний день
	assert.Equal(t, monday, StartOfWeek(time.Date(2024, time.January, 8, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, monday, StartOfWeek(time.Date(2024, time.January, 11, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, monday, StartOfWeek(time.Date(2024, time.January, 14, 23, 0, 0, 0, time.UTC)))
}

func TestStartOfMonth(t *testing.T) {
	moment := time.Date(2024, time.February, 29, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), StartOfMonth(moment))
}

func TestParseDateInLocation(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)

	rfc, err := ParseDateInLocation("2024-01-08T10:00:00Z", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.January, 8, 10, 0, 0, 0, time.UTC), rfc.UTC())

	noTz, err := ParseDateInLocation("2024-01-08T10:00:00", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.January, 8, 10, 0, 0, 0, loc), noTz)

	dateOnly, err := ParseDateInLocation("2024-01-08", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.January, 8, 0, 0, 0, 0, loc), dateOnly)

	_, err = ParseDateInLocation("08.01.2024", loc)
	assert.Error(t, err)
}
