package json_types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateTime_UnmarshalJSON(t *testing.T) {
	var dt DateTime
	require.NoError(t, json.Unmarshal([]byte(`"2024-01-08T10:00:00Z"`), &dt))
	assert.Equal(t, time.Date(2024, time.January, 8, 10, 0, 0, 0, time.UTC), dt.Date.UTC())

	// Дата без таймзоны и без времени трактуется как UTC
	require.NoError(t, json.Unmarshal([]byte(`"2024-01-08T10:00:00"`), &dt))
	assert.Equal(t, time.Date(2024, time.January, 8, 10, 0, 0, 0, time.UTC), dt.Date)

	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-01-08"`), &d))
	assert.Equal(t, time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC), d.Date)
}

func TestDateTypes_NonStringTokenIsError(t *testing.T) {
	// Числовые и составные токены в полях дат - ошибка разбора, не паника
	for _, raw := range []string{`5`, `{}`, `[]`, `true`} {
		var dt DateTime
		assert.Error(t, json.Unmarshal([]byte(raw), &dt), "token %s", raw)

		var d Date
		assert.Error(t, json.Unmarshal([]byte(raw), &d), "token %s", raw)
	}
}
