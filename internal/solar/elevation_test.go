package solar

import (
	"math"
	"testing"
	"time"

	"github.com/sixdouglas/suncalc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var kongsberg = Coordinate{Latitude: 59.6689, Longitude: 9.6502}

func TestCoordinateValidate(t *testing.T) {
	tests := []struct {
		name    string
		coord   Coordinate
		wantErr bool
	}{
		{"kongsberg", kongsberg, false},
		{"north pole", Coordinate{90, 0}, false},
		{"date line", Coordinate{0, -180}, false},
		{"latitude too high", Coordinate{90.1, 0}, true},
		{"longitude too low", Coordinate{0, -180.5}, true},
		{"nan latitude", Coordinate{math.NaN(), 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.coord.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHourAngle_Normalized(t *testing.T) {
	oslo, err := time.LoadLocation("Europe/Oslo")
	require.NoError(t, err)

	start := time.Date(2025, 3, 30, 0, 0, 0, 0, oslo)
	for i := 0; i < 48; i++ {
		ha := HourAngle(start.Add(time.Duration(i)*30*time.Minute), Coordinate{Latitude: 0, Longitude: 179.9})
		assert.GreaterOrEqual(t, ha, -180.0)
		assert.LessOrEqual(t, ha, 180.0)
	}
}

func TestHourAngle_ExtremeLongitudes(t *testing.T) {
	at := time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		longitude float64
	}{
		{"huge", 1e17},
		{"huge negative", -1e17},
		{"NaN", math.NaN()},
		{"positive infinity", math.Inf(1)},
		{"negative infinity", math.Inf(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Coordinate{Latitude: 10, Longitude: tt.longitude}

			ha := HourAngle(at, c)
			assert.GreaterOrEqual(t, ha, -180.0)
			assert.LessOrEqual(t, ha, 180.0)

			elevation := Elevation(at, c)
			assert.False(t, math.IsNaN(elevation) || math.IsInf(elevation, 0), "elevation %v", elevation)
		})
	}
}

func TestElevation_NonFiniteLatitude(t *testing.T) {
	at := time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC)

	for _, lat := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		elevation := Elevation(at, Coordinate{Latitude: lat, Longitude: 10})
		assert.Equal(t, -90.0, elevation, "latitude %v", lat)
	}
}

func TestElevation_PreRefractionBound(t *testing.T) {
	utc := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for lat := -90.0; lat <= 90.0; lat += 15 {
		for lon := -180.0; lon <= 180.0; lon += 45 {
			c := Coordinate{Latitude: lat, Longitude: lon}
			for h := 0; h < 365*24; h += 97 {
				at := utc.Add(time.Duration(h) * time.Hour)
				apparent := Elevation(at, c)
				geometric := GeometricElevation(at, c)

				require.False(t, math.IsNaN(apparent), "NaN at %v %v", c, at)
				assert.GreaterOrEqual(t, geometric, -90.0)
				assert.LessOrEqual(t, geometric, 90.0)
				assert.InDelta(t, geometric, apparent, 0.7, "refraction too large at %v %v", c, at)
			}
		}
	}
}

func TestRefractionCorrection(t *testing.T) {
	assert.Equal(t, 0.0, RefractionCorrection(-5))
	assert.Equal(t, 0.0, RefractionCorrection(-0.575))
	assert.Equal(t, 0.0, RefractionCorrection(89))

	// Standard horizon refraction is a little over half a degree
	assert.InDelta(t, 0.48, RefractionCorrection(0), 0.05)
	assert.InDelta(t, 0.16, RefractionCorrection(5.5), 0.03)
	assert.InDelta(t, 0.016, RefractionCorrection(45), 0.005)

	// Grows towards the horizon
	assert.Greater(t, RefractionCorrection(-0.5), RefractionCorrection(1))
	assert.Greater(t, RefractionCorrection(1), RefractionCorrection(10))
}

func TestElevation_MatchesSuncalc(t *testing.T) {
	oslo, err := time.LoadLocation("Europe/Oslo")
	require.NoError(t, err)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, oslo)
	for h := 0; h < 365*24; h += 7 {
		at := start.Add(time.Duration(h) * time.Hour)
		reference := suncalc.GetPosition(at, kongsberg.Latitude, kongsberg.Longitude).Altitude * 180 / math.Pi
		if reference < 5 {
			continue
		}

		assert.InDelta(t, reference, Elevation(at, kongsberg), 1.0, "at %s", at)
	}
}

func TestElevation_IndependentOfPresentationZone(t *testing.T) {
	oslo, err := time.LoadLocation("Europe/Oslo")
	require.NoError(t, err)

	instant := time.Date(2025, 6, 21, 10, 15, 0, 0, time.UTC)
	assert.InDelta(t, Elevation(instant, kongsberg), Elevation(instant.In(oslo), kongsberg), 0.05)
}
