package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	valid := []string{"00:00", "08:30", "23:59"}
	for _, s := range valid {
		assert.NoError(t, TimeString(s).Validate(), s)
	}

	invalid := []string{"", "24:00", "8:30", "10:60", "10-30", "10:30:00", "abc"}
	for _, s := range invalid {
		assert.Error(t, TimeString(s).Validate(), s)
	}
}

func TestCompare(t *testing.T) {
	assert.True(t, TimeString("09:00").IsBefore(TimeString("10:00")))
	assert.False(t, TimeString("10:00").IsBefore(TimeString("10:00")))
	assert.True(t, TimeString("21:00").IsAfter(TimeString("09:30")))
}

func TestAddMinutes(t *testing.T) {
	got, err := TimeString("10:00").AddMinutes(90)
	require.NoError(t, err)
	assert.Equal(t, "11:30", got.String())

	got, err = TimeString("23:30").AddMinutes(60)
	require.NoError(t, err)
	assert.Equal(t, "00:30", got.String())
}

func TestOn(t *testing.T) {
	date := time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)

	got, err := TimeString("18:45").On(date)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 10, 15, 18, 45, 0, 0, time.UTC), got)
}

func TestScan(t *testing.T) {
	var ts TimeString

	require.NoError(t, ts.Scan("10:00:00"))
	assert.Equal(t, "10:00", ts.String())

	require.NoError(t, ts.Scan([]byte("18:30:00")))
	assert.Equal(t, "18:30", ts.String())

	require.NoError(t, ts.Scan(time.Date(2025, 10, 15, 9, 15, 0, 0, time.UTC)))
	assert.Equal(t, "09:15", ts.String())

	assert.Error(t, ts.Scan(12345))
}

func TestJSONRoundTrip(t *testing.T) {
	payload := struct {
		Start TimeString `json:"start"`
	}{Start: TimeString("10:00")}

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"10:00"}`, string(data))

	var decoded struct {
		Start TimeString `json:"start"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"start":"21:30"}`), &decoded))
	assert.Equal(t, "21:30", decoded.Start.String())

	err = json.Unmarshal([]byte(`{"start":"25:00"}`), &decoded)
	assert.Error(t, err)
}
