package postgres

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suchimauz/booking-link-engine/internal/core/domain"
)

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func TestParseTimeBlock(t *testing.T) {
	ownerID := uuid.New()

	block, err := parseTimeBlock(ownerID,
		nullStr("2024-01-08"), nullStr("12:00"), nullStr("13:30"), nullStr("Europe/Moscow"))

	require.NoError(t, err)
	loc, _ := time.LoadLocation("Europe/Moscow")
	assert.Equal(t, ownerID, block.OwnerID)
	assert.Equal(t, time.Date(2024, time.January, 8, 12, 0, 0, 0, loc), block.Start)
	assert.Equal(t, time.Date(2024, time.January, 8, 13, 30, 0, 0, loc), block.End)
	assert.Equal(t, domain.BusySourceTimeBlock, block.Source)
}

func TestParseTimeBlock_SecondsFormatAndDefaultTimezone(t *testing.T) {
	block, err := parseTimeBlock(uuid.New(),
		nullStr("2024-01-08"), nullStr("09:00:00"), nullStr("10:00:00"), sql.NullString{})

	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC), block.Start)
}

func TestParseTimeBlock_MalformedRowsAreRejected(t *testing.T) {
	ownerID := uuid.New()

	cases := []struct {
		name                       string
		date, start, end, timezone sql.NullString
	}{
		{"missing date", sql.NullString{}, nullStr("09:00"), nullStr("10:00"), nullStr("UTC")},
		{"missing start", nullStr("2024-01-08"), sql.NullString{}, nullStr("10:00"), nullStr("UTC")},
		{"invalid date", nullStr("08.01.2024"), nullStr("09:00"), nullStr("10:00"), nullStr("UTC")},
		{"invalid start", nullStr("2024-01-08"), nullStr("девять утра"), nullStr("10:00"), nullStr("UTC")},
		{"invalid end", nullStr("2024-01-08"), nullStr("09:00"), nullStr("25:99"), nullStr("UTC")},
		{"unknown timezone", nullStr("2024-01-08"), nullStr("09:00"), nullStr("10:00"), nullStr("Mars/Olympus_Mons")},
		{"end before start", nullStr("2024-01-08"), nullStr("10:00"), nullStr("09:00"), nullStr("UTC")},
		{"zero length", nullStr("2024-01-08"), nullStr("10:00"), nullStr("10:00"), nullStr("UTC")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseTimeBlock(ownerID, tc.date, tc.start, tc.end, tc.timezone)
			assert.Error(t, err)
		})
	}
}

func TestParseLocalTime(t *testing.T) {
	lt, err := parseLocalTime("14:45")
	require.NoError(t, err)
	assert.Equal(t, 14*60+45, lt.Minutes())

	lt, err = parseLocalTime("14:45:30")
	require.NoError(t, err)
	assert.Equal(t, 14*60+45, lt.Minutes())

	_, err = parseLocalTime("half past two")
	assert.Error(t, err)
}
