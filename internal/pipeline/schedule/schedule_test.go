package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakline/callbridge/internal/models"
)

func TestParse_TwelveHourWithDuration(t *testing.T) {
	s := Parse("2025-03-14", "2:30 PM", 45, "cleaning", time.UTC)

	require.NotNil(t, s)
	assert.Equal(t, time.Date(2025, 3, 14, 14, 30, 0, 0, time.UTC), s.Start)
	require.NotNil(t, s.End)
	assert.Equal(t, time.Date(2025, 3, 14, 15, 15, 0, 0, time.UTC), *s.End)
	assert.Equal(t, "cleaning", s.Service)
}

func TestParse_DefaultDuration(t *testing.T) {
	s := Parse("2025-03-14", "9am", 0, "", time.UTC)

	require.NotNil(t, s)
	assert.Equal(t, time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC), s.Start)
	require.NotNil(t, s.End)
	assert.Equal(t, s.Start.Add(60*time.Minute), *s.End)
}

func TestParse_NoonAndMidnight(t *testing.T) {
	noon := Parse("2025-03-14", "12 PM", 0, "", time.UTC)
	require.NotNil(t, noon)
	assert.Equal(t, 12, noon.Start.Hour())

	midnight := Parse("2025-03-14", "12 AM", 0, "", time.UTC)
	require.NotNil(t, midnight)
	assert.Equal(t, 0, midnight.Start.Hour())
}

func TestParse_TwentyFourHour(t *testing.T) {
	s := Parse("03/14/2025", "14:30", 0, "", time.UTC)
	require.NotNil(t, s)
	assert.Equal(t, 14, s.Start.Hour())
	assert.Equal(t, 30, s.Start.Minute())
	assert.Equal(t, time.March, s.Start.Month())
}

func TestParse_MonthNameDate(t *testing.T) {
	s := Parse("March 14, 2025", "9:15am", 0, "", time.UTC)
	require.NotNil(t, s)
	assert.Equal(t, time.Date(2025, 3, 14, 9, 15, 0, 0, time.UTC), s.Start)
}

func TestParse_AbsentInputs(t *testing.T) {
	assert.Nil(t, Parse("", "2:30 PM", 0, "", time.UTC))
	assert.Nil(t, Parse("2025-03-14", "", 0, "", time.UTC))
	assert.Nil(t, Parse("not a date", "2:30 PM", 0, "", time.UTC))
	assert.Nil(t, Parse("2025-03-14", "half past two", 0, "", time.UTC))
	assert.Nil(t, Parse("2025-03-14", "25:00", 0, "", time.UTC))
}

func TestFromBooking_Confirmed(t *testing.T) {
	s := FromBooking(map[string]any{
		"date":     "2025-03-14",
		"time":     "2:30 PM",
		"duration": float64(45),
		"service":  "checkup",
	}, time.UTC)

	require.NotNil(t, s)
	assert.Equal(t, models.ScheduleConfirmed, s.Source)
	assert.Equal(t, "checkup", s.Service)
	assert.Contains(t, s.Summary, "checkup")
}

func TestFromSlots_InferredOneHour(t *testing.T) {
	s := FromSlots(map[string]any{
		"appointmentDate": "2025-03-14",
		"appointmentTime": "9am",
	}, time.UTC)

	require.NotNil(t, s)
	assert.Equal(t, models.ScheduleInferred, s.Source)
	require.NotNil(t, s.End)
	assert.Equal(t, s.Start.Add(time.Hour), *s.End)
}

func TestFromSlots_MissingSlots(t *testing.T) {
	assert.Nil(t, FromSlots(nil, time.UTC))
	assert.Nil(t, FromSlots(map[string]any{"reason": "toothache"}, time.UTC))
}
