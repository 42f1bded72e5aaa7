package solar

import (
	"math"
	"time"
)

const (
	// DefaultThresholdAltitude is the apparent elevation marking sunrise and
	// sunset, including standard refraction and the solar semi-diameter.
	DefaultThresholdAltitude = -0.833

	// ScanStep is the sampling resolution of the day sweep
	ScanStep = 2 * time.Minute

	interpolationEpsilon = 1e-9
)

// DayKind classifies a scanned day by its threshold crossings
type DayKind int

const (
	// DayKindNormal has a sunrise followed by a sunset
	DayKindNormal DayKind = iota
	// DayKindPolarDay never drops below the threshold
	DayKindPolarDay
	// DayKindPolarNight never rises above the threshold
	DayKindPolarNight
	// DayKindIrregular has a single crossing, or a sunset before the sunrise
	DayKindIrregular
)

func (k DayKind) String() string {
	switch k {
	case DayKindNormal:
		return "normal"
	case DayKindPolarDay:
		return "polar_day"
	case DayKindPolarNight:
		return "polar_night"
	case DayKindIrregular:
		return "irregular"
	default:
		return "unknown"
	}
}

// DayWindow is the sunrise, sunset and peak elevation of one local calendar day
type DayWindow struct {
	Date         time.Time // local midnight that starts the day
	Sunrise      *time.Time
	Sunset       *time.Time
	MaxElevation float64
	Kind         DayKind
}

// Contains reports whether t lies strictly between sunrise and sunset of a
// normal day.
func (w DayWindow) Contains(t time.Time) bool {
	if w.Kind != DayKindNormal || w.Sunrise == nil || w.Sunset == nil {
		return false
	}
	return t.After(*w.Sunrise) && t.Before(*w.Sunset)
}

// SameDate reports whether t falls on the window's calendar date in the
// window's location.
func (w DayWindow) SameDate(t time.Time) bool {
	y1, m1, d1 := w.Date.Date()
	y2, m2, d2 := t.In(w.Date.Location()).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// ScanDay sweeps the local calendar day containing date in loc and returns
// its threshold crossings and peak elevation. The UTC offset is re-read at
// every sample so daylight-saving transitions inside the day are honoured.
func ScanDay(c Coordinate, loc *time.Location, date time.Time, threshold float64) DayWindow {
	y, m, d := date.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	end := time.Date(y, m, d+1, 0, 0, 0, 0, loc)

	window := DayWindow{
		Date:         start,
		MaxElevation: math.Inf(-1),
	}

	var prevTime time.Time
	var prevAlt float64
	first := true

	for t := start; !t.After(end); t = t.Add(ScanStep) {
		alt := Elevation(t, c)
		if alt > window.MaxElevation {
			window.MaxElevation = alt
		}

		if !first {
			switch {
			case window.Sunrise == nil && prevAlt < threshold && alt >= threshold:
				crossing := interpolateCrossing(prevTime, t, prevAlt, alt, threshold)
				window.Sunrise = &crossing
			case window.Sunset == nil && prevAlt >= threshold && alt < threshold:
				crossing := interpolateCrossing(prevTime, t, prevAlt, alt, threshold)
				window.Sunset = &crossing
			}
		}

		prevTime, prevAlt, first = t, alt, false
	}

	window.Kind = classifyDay(window, threshold)
	return window
}

// interpolateCrossing linearly estimates when the elevation passed the
// threshold between two bracketing samples.
func interpolateCrossing(prevTime, curTime time.Time, prevAlt, curAlt, threshold float64) time.Time {
	delta := curAlt - prevAlt
	if math.Abs(delta) < interpolationEpsilon {
		return prevTime
	}

	frac := (threshold - prevAlt) / delta
	frac = math.Max(0, math.Min(1, frac))
	return prevTime.Add(time.Duration(float64(curTime.Sub(prevTime)) * frac))
}

func classifyDay(w DayWindow, threshold float64) DayKind {
	switch {
	case w.Sunrise != nil && w.Sunset != nil && w.Sunrise.Before(*w.Sunset):
		return DayKindNormal
	case w.Sunrise == nil && w.Sunset == nil && w.MaxElevation > threshold:
		return DayKindPolarDay
	case w.Sunrise == nil && w.Sunset == nil:
		return DayKindPolarNight
	default:
		return DayKindIrregular
	}
}
