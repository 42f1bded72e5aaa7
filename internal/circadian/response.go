package circadian

import (
	"math"
	"time"
)

// ReadingResponse is the JSON shape of a single circadian reading
type ReadingResponse struct {
	Time              string  `json:"time"`
	Sunrise           *string `json:"sunrise"`
	Sunset            *string `json:"sunset"`
	DayKind           string  `json:"day_kind"`
	SolarElevation    float64 `json:"solar_elevation"`
	Kelvin            float64 `json:"kelvin"`
	NormalizedKelvin  float64 `json:"normalized_kelvin"`
	DimmingPercent    int     `json:"dimming_percent"`
	DimmingFraction   float64 `json:"dimming_fraction"`
	MinKelvin         float64 `json:"min_kelvin"`
	MaxKelvin         float64 `json:"max_kelvin"`
	ThresholdAltitude float64 `json:"threshold_altitude"`
}

// TableResponse is the JSON shape of a projection. Rows are keyed by local
// RFC 3339 timestamp.
type TableResponse struct {
	Latitude  float64                    `json:"latitude"`
	Longitude float64                    `json:"longitude"`
	Timezone  string                     `json:"timezone"`
	Start     string                     `json:"start"`
	Hours     int                        `json:"hours"`
	Rows      map[string]ReadingResponse `json:"rows"`
}

// NewReadingResponse formats a snapshot for the wire
func NewReadingResponse(snap Snapshot, settings Settings) ReadingResponse {
	return ReadingResponse{
		Time:              snap.Time.Format(time.RFC3339),
		Sunrise:           formatOptional(snap.Window.Sunrise, snap.Time.Location()),
		Sunset:            formatOptional(snap.Window.Sunset, snap.Time.Location()),
		DayKind:           snap.Window.Kind.String(),
		SolarElevation:    round(snap.Elevation, 2),
		Kelvin:            round(snap.Reading.Kelvin, 2),
		NormalizedKelvin:  round(snap.Reading.NormalizedKelvin, 6),
		DimmingPercent:    snap.Reading.DimmingPercent,
		DimmingFraction:   round(snap.Reading.DimmingFraction, 6),
		MinKelvin:         settings.MinKelvin,
		MaxKelvin:         settings.MaxKelvin,
		ThresholdAltitude: settings.ThresholdAltitude,
	}
}

// NewTableResponse formats a projection for the wire
func NewTableResponse(q Query, hours int, rows []Snapshot, settings Settings) TableResponse {
	table := TableResponse{
		Latitude:  q.Coordinate.Latitude,
		Longitude: q.Coordinate.Longitude,
		Timezone:  q.Location.String(),
		Start:     q.Time.Format(time.RFC3339),
		Hours:     hours,
		Rows:      make(map[string]ReadingResponse, len(rows)),
	}

	for _, row := range rows {
		resp := NewReadingResponse(row, settings)
		table.Rows[resp.Time] = resp
	}

	return table
}

func formatOptional(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	s := t.In(loc).Format(time.RFC3339)
	return &s
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
