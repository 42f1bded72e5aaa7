package circadian

import (
	"math"
	"time"

	"github.com/saaga0h/jeeves-circadian/internal/solar"
)

// dimmingExponent shapes the brightness ramp; below 1 it rises faster than
// the altitude ratio.
const dimmingExponent = 0.7

// Reading is the lighting profile for one instant
type Reading struct {
	Kelvin             float64
	NormalizedKelvin   float64 // 1.0 warmest, 0.0 coolest
	DimmingPercent     int     // 0-100
	DimmingFraction    float64 // 0.0-1.0
	NormalizedAltitude float64 // 0.0 at threshold, 1.0 at the day's peak
	Daytime            bool
}

// Map converts the sun's elevation at now into a Reading using the day's
// window. Anything other than a normal day with now between sunrise and
// sunset yields the night profile.
func (s Settings) Map(now time.Time, elevation float64, window solar.DayWindow) Reading {
	daytime := window.Contains(now) && window.MaxElevation > s.ThresholdAltitude
	if !daytime {
		return s.night()
	}

	elevation = clamp(elevation, -90, 90)
	norm := clamp((elevation-s.ThresholdAltitude)/(window.MaxElevation-s.ThresholdAltitude), 0, 1)

	// Cosine ease: slow near the horizon, fast through midday
	ease := 0.5 * (1 - math.Cos(math.Pi*norm))
	kelvin := clamp(s.MinKelvin+ease*(s.MaxKelvin-s.MinKelvin), s.MinKelvin, s.MaxKelvin)

	dimming := clamp(math.Pow(norm, dimmingExponent), 0, 1)

	return Reading{
		Kelvin:             kelvin,
		NormalizedKelvin:   s.normalizeKelvinReverse(kelvin),
		DimmingPercent:     int(math.Round(dimming * 100)),
		DimmingFraction:    dimming,
		NormalizedAltitude: norm,
		Daytime:            true,
	}
}

func (s Settings) night() Reading {
	return Reading{
		Kelvin:           s.MinKelvin,
		NormalizedKelvin: 1.0,
		DimmingPercent:   int(math.Round(s.NightDimming * 100)),
		DimmingFraction:  s.NightDimming,
	}
}

// normalizeKelvinReverse maps kelvin onto 0-1 with the warm end at 1
func (s Settings) normalizeKelvinReverse(kelvin float64) float64 {
	return clamp((s.MaxKelvin-kelvin)/(s.MaxKelvin-s.MinKelvin), 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
