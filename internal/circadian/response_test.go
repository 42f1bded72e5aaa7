package circadian

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saaga0h/jeeves-circadian/internal/solar"
)

func TestNewReadingResponse(t *testing.T) {
	oslo := loadLocation(t, "Europe/Oslo")
	sunrise := time.Date(2025, 6, 21, 2, 0, 0, 0, time.UTC)
	sunset := time.Date(2025, 6, 21, 20, 30, 0, 0, time.UTC)

	snap := Snapshot{
		Time:      time.Date(2025, 6, 21, 12, 0, 0, 0, oslo),
		Elevation: 48.123456,
		Window: solar.DayWindow{
			Date:         time.Date(2025, 6, 21, 0, 0, 0, 0, oslo),
			Sunrise:      &sunrise,
			Sunset:       &sunset,
			MaxElevation: 53.8,
			Kind:         solar.DayKindNormal,
		},
		Reading: Reading{
			Kelvin:           5432.16789,
			NormalizedKelvin: 0.97738912345,
			DimmingPercent:   3,
			DimmingFraction:  0.0312345678,
			Daytime:          true,
		},
	}

	resp := NewReadingResponse(snap, DefaultSettings())

	assert.Equal(t, "2025-06-21T12:00:00+02:00", resp.Time)
	require.NotNil(t, resp.Sunrise)
	assert.Equal(t, "2025-06-21T04:00:00+02:00", *resp.Sunrise)
	require.NotNil(t, resp.Sunset)
	assert.Equal(t, "2025-06-21T22:30:00+02:00", *resp.Sunset)
	assert.Equal(t, "normal", resp.DayKind)
	assert.Equal(t, 48.12, resp.SolarElevation)
	assert.Equal(t, 5432.17, resp.Kelvin)
	assert.Equal(t, 0.977389, resp.NormalizedKelvin)
	assert.Equal(t, 3, resp.DimmingPercent)
	assert.Equal(t, 0.031235, resp.DimmingFraction)
}

func TestNewReadingResponse_PolarNight(t *testing.T) {
	settings := DefaultSettings()
	snap := Snapshot{
		Time:      time.Date(2025, 12, 21, 12, 0, 0, 0, time.UTC),
		Elevation: -5.4,
		Window:    solar.DayWindow{Kind: solar.DayKindPolarNight, MaxElevation: -5.1},
		Reading:   settings.night(),
	}

	resp := NewReadingResponse(snap, settings)

	assert.Nil(t, resp.Sunrise)
	assert.Nil(t, resp.Sunset)
	assert.Equal(t, "polar_night", resp.DayKind)
	assert.Equal(t, 2500.0, resp.Kelvin)
	assert.Equal(t, 10, resp.DimmingPercent)
}
