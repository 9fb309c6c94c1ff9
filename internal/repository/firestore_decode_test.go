package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsString_ScalarShapes(t *testing.T) {
	assert.Equal(t, "", asString(nil))
	assert.Equal(t, "42", asString(int64(42)))
	assert.Equal(t, "1234.5", asString(1234.5))
	assert.Equal(t, "true", asString(true))
	assert.Equal(t, "2025-03-01T00:00:00Z", asString(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestAsInt_AcceptsNumericStrings(t *testing.T) {
	assert.Equal(t, 3, asInt("3"))
	assert.Equal(t, 3, asInt(int64(3)))
	assert.Equal(t, 3, asInt(3.9))
	assert.Equal(t, 0, asInt("three"))
}

func TestDecodeBreakdowns(t *testing.T) {
	raw := map[string]any{
		"bd1": map[string]any{
			"periods": []any{
				map[string]any{"id": "p1", "date": "2025-01-01", "order": int64(1), "value": "120.5", "isToggled": true},
				"garbage",
				map[string]any{"id": "p2", "name": "Sprint 1", "total": int64(900)},
			},
		},
		"bad": "not a map",
	}

	out := decodeBreakdowns(raw)
	require.Contains(t, out, "bd1")
	assert.NotContains(t, out, "bad")
	periods := out["bd1"].Periods
	require.Len(t, periods, 2)
	assert.Equal(t, "2025-01-01", periods[0].StoredDate)
	assert.Equal(t, 120.5, periods[0].Value)
	assert.True(t, periods[0].IsToggled)
	assert.Equal(t, "Sprint 1", periods[1].CustomName)
	assert.Equal(t, 900.0, periods[1].Total)
}

func TestDecodeBreakdowns_Missing(t *testing.T) {
	assert.Nil(t, decodeBreakdowns(nil))
	assert.Nil(t, decodeBreakdowns(map[string]any{}))
}
