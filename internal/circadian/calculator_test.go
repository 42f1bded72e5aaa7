package circadian

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saaga0h/jeeves-circadian/internal/solar"
)

var kongsberg = solar.Coordinate{Latitude: 59.6689, Longitude: 9.6502}

func loadLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestAt_MidnightIsNightDefault(t *testing.T) {
	calc := NewCalculator(DefaultSettings())

	tests := []struct {
		name  string
		coord solar.Coordinate
		zone  string
	}{
		{"kongsberg", kongsberg, "Europe/Oslo"},
		{"equator", solar.Coordinate{Latitude: 0, Longitude: 0}, "UTC"},
		{"new york", solar.Coordinate{Latitude: 40.7128, Longitude: -74.006}, "America/New_York"},
		{"sydney", solar.Coordinate{Latitude: -33.8688, Longitude: 151.2093}, "Australia/Sydney"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := loadLocation(t, tt.zone)
			for _, month := range []time.Month{time.January, time.April, time.July, time.October} {
				snap := calc.At(tt.coord, loc, time.Date(2025, month, 15, 0, 0, 0, 0, loc))

				assert.False(t, snap.Reading.Daytime)
				assert.Equal(t, 2500.0, snap.Reading.Kelvin)
				assert.Equal(t, 0.10, snap.Reading.DimmingFraction)
			}
		})
	}
}

func TestAt_EquinoxSolarNoon(t *testing.T) {
	calc := NewCalculator(DefaultSettings())
	oslo := loadLocation(t, "Europe/Oslo")

	// Find the instant of peak elevation at one-minute resolution
	day := time.Date(2025, 3, 20, 0, 0, 0, 0, oslo)
	peak := day
	for at := day; at.Before(day.Add(24 * time.Hour)); at = at.Add(time.Minute) {
		if solar.Elevation(at, kongsberg) > solar.Elevation(peak, kongsberg) {
			peak = at
		}
	}

	snap := calc.At(kongsberg, oslo, peak)

	assert.True(t, snap.Reading.Daytime)
	assert.InDelta(t, 1.0, snap.Reading.NormalizedAltitude, 0.01)
	assert.InDelta(t, 5500, snap.Reading.Kelvin, 5)
	assert.InDelta(t, 30, snap.Elevation, 1.5)
}

func TestAt_DaytimeBounds(t *testing.T) {
	calc := NewCalculator(DefaultSettings())
	oslo := loadLocation(t, "Europe/Oslo")

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, oslo)
	for h := 0; h < 365*24; h += 5 {
		snap := calc.At(kongsberg, oslo, start.Add(time.Duration(h)*time.Hour))
		r := snap.Reading

		assert.GreaterOrEqual(t, r.Kelvin, 2500.0)
		assert.LessOrEqual(t, r.Kelvin, 5500.0)
		assert.GreaterOrEqual(t, r.DimmingFraction, 0.0)
		assert.LessOrEqual(t, r.DimmingFraction, 1.0)
	}
}

func TestProject_MatchesSingleReadings(t *testing.T) {
	calc := NewCalculator(DefaultSettings())
	oslo := loadLocation(t, "Europe/Oslo")
	start := time.Date(2025, 6, 20, 17, 0, 0, 0, oslo)

	rows := calc.Project(kongsberg, oslo, start, 72)
	require.Len(t, rows, 72)

	for h, row := range rows {
		single := calc.At(kongsberg, oslo, start.Add(time.Duration(h)*time.Hour))

		assert.True(t, row.Time.Equal(single.Time), "row %d time", h)
		assert.InDelta(t, single.Elevation, row.Elevation, 1e-9, "row %d elevation", h)
		assert.InDelta(t, single.Reading.Kelvin, row.Reading.Kelvin, 1e-9, "row %d kelvin", h)
		assert.InDelta(t, single.Reading.DimmingFraction, row.Reading.DimmingFraction, 1e-9, "row %d dimming", h)
		assert.Equal(t, single.Reading.Daytime, row.Reading.Daytime, "row %d daytime", h)
		assert.True(t, row.Window.SameDate(row.Time), "row %d uses window for %s", h, row.Window.Date)
	}
}

func TestProject_CrossesDaylightSavingChange(t *testing.T) {
	calc := NewCalculator(DefaultSettings())
	oslo := loadLocation(t, "Europe/Oslo")

	// Clocks fall back at 03:00 on 2025-10-26
	start := time.Date(2025, 10, 25, 20, 0, 0, 0, oslo)
	rows := calc.Project(kongsberg, oslo, start, 12)
	require.Len(t, rows, 12)

	seen := make(map[string]bool)
	for i, row := range rows {
		key := row.Time.Format(time.RFC3339)
		assert.False(t, seen[key], "duplicate timestamp %s", key)
		seen[key] = true

		if i > 0 {
			assert.Equal(t, time.Hour, row.Time.Sub(rows[i-1].Time))
		}
	}
}

func TestProject_EmptyHorizon(t *testing.T) {
	calc := NewCalculator(DefaultSettings())
	rows := calc.Project(kongsberg, time.UTC, time.Now(), 0)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}
