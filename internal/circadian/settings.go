// Package circadian turns solar elevation into colour temperature and
// dimming levels for circadian lighting.
package circadian

import (
	"fmt"
	"math"

	"github.com/saaga0h/jeeves-circadian/internal/solar"
	"github.com/saaga0h/jeeves-circadian/pkg/config"
)

// Settings holds the lighting range and twilight threshold. It is built once
// at startup and passed by value.
type Settings struct {
	MinKelvin         float64 // warmest
	MaxKelvin         float64 // coolest
	ThresholdAltitude float64 // degrees
	NightDimming      float64 // 0.0-1.0
}

// DefaultSettings returns the stock 2500K-5500K range with the standard
// refraction-adjusted horizon.
func DefaultSettings() Settings {
	return Settings{
		MinKelvin:         2500,
		MaxKelvin:         5500,
		ThresholdAltitude: solar.DefaultThresholdAltitude,
		NightDimming:      0.10,
	}
}

// NewSettings validates and returns a Settings value
func NewSettings(minKelvin, maxKelvin, threshold, nightDimming float64) (Settings, error) {
	// Comparisons are written so NaN fails them
	if !(minKelvin > 0) || math.IsInf(minKelvin, 0) {
		return Settings{}, fmt.Errorf("min kelvin must be positive and finite, got %v", minKelvin)
	}
	if !(maxKelvin > minKelvin) || math.IsInf(maxKelvin, 0) {
		return Settings{}, fmt.Errorf("max kelvin (%v) must be finite and greater than min kelvin (%v)", maxKelvin, minKelvin)
	}
	if !(threshold >= -90 && threshold <= 90) {
		return Settings{}, fmt.Errorf("threshold altitude %v out of range [-90, 90]", threshold)
	}
	if !(nightDimming >= 0 && nightDimming <= 1) {
		return Settings{}, fmt.Errorf("night dimming %v out of range [0, 1]", nightDimming)
	}

	return Settings{
		MinKelvin:         minKelvin,
		MaxKelvin:         maxKelvin,
		ThresholdAltitude: threshold,
		NightDimming:      nightDimming,
	}, nil
}

// SettingsFromConfig builds Settings from the agent configuration
func SettingsFromConfig(cfg *config.Config) (Settings, error) {
	return NewSettings(cfg.MinKelvin, cfg.MaxKelvin, cfg.ThresholdAltitude, cfg.NightDimming)
}
