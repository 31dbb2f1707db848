package json_types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalTime_UnmarshalJSON(t *testing.T) {
	var lt LocalTime
	require.NoError(t, json.Unmarshal([]byte(`"09:30"`), &lt))
	assert.Equal(t, 9*60+30, lt.Minutes())

	// Формат с секундами тоже принимается
	require.NoError(t, json.Unmarshal([]byte(`"17:00:00"`), &lt))
	assert.Equal(t, 17*60, lt.Minutes())

	assert.Error(t, json.Unmarshal([]byte(`"половина десятого"`), &lt))
}

func TestLocalTime_NonStringTokenIsError(t *testing.T) {
	// Числа, null и объекты в поле времени - ошибка разбора, не паника
	for _, raw := range []string{`5`, `null`, `{}`, `""`} {
		var lt LocalTime
		assert.Error(t, json.Unmarshal([]byte(raw), &lt), "token %s", raw)
	}
}

func TestLocalTime_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(NewLocalTime(9, 5))
	require.NoError(t, err)
	assert.Equal(t, `"09:05"`, string(data))
}

func TestLocalTime_MidnightIsNotZero(t *testing.T) {
	// Полночь - валидное время открытия, она не должна совпадать
	// с нулевым значением "время не задано"
	assert.False(t, NewLocalTime(0, 0).IsZero())
	assert.True(t, LocalTime{}.IsZero())
}
