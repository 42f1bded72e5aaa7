package circadian

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// TimeManager is a Clock that can be switched to scaled virtual time so
// scenarios can replay a whole day in minutes.
type TimeManager struct {
	mu           sync.RWMutex
	testMode     bool
	virtualStart time.Time
	realStart    time.Time
	timeScale    int
	now          func() time.Time
	logger       *slog.Logger
}

// NewTimeManager creates a time manager running on wall-clock time
func NewTimeManager(logger *slog.Logger) *TimeManager {
	return &TimeManager{
		realStart: time.Now(),
		timeScale: 1,
		now:       time.Now,
		logger:    logger,
	}
}

// ApplyConfig applies a JSON time configuration payload
func (tm *TimeManager) ApplyConfig(payload []byte) error {
	var cfg struct {
		VirtualStart string `json:"virtual_start"`
		TimeScale    int    `json:"time_scale"`
		TestMode     bool   `json:"test_mode"`
	}

	if err := json.Unmarshal(payload, &cfg); err != nil {
		return fmt.Errorf("failed to parse time config: %w", err)
	}

	if !cfg.TestMode {
		tm.mu.Lock()
		tm.testMode = false
		tm.mu.Unlock()
		tm.logger.Info("Virtual time disabled")
		return nil
	}

	virtualStart, err := time.Parse(time.RFC3339, cfg.VirtualStart)
	if err != nil {
		return fmt.Errorf("invalid virtual_start %q: %w", cfg.VirtualStart, err)
	}

	scale := cfg.TimeScale
	if scale < 1 {
		scale = 1
	}

	tm.mu.Lock()
	tm.testMode = true
	tm.virtualStart = virtualStart
	tm.realStart = tm.now()
	tm.timeScale = scale
	tm.mu.Unlock()

	tm.logger.Info("Virtual time configured",
		"virtual_start", cfg.VirtualStart,
		"time_scale", scale)
	return nil
}

// Now returns the current time (real or virtual)
func (tm *TimeManager) Now() time.Time {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	if !tm.testMode {
		return tm.now()
	}

	realElapsed := tm.now().Sub(tm.realStart)
	return tm.virtualStart.Add(realElapsed * time.Duration(tm.timeScale))
}

// IsTestMode returns whether virtual time is active
func (tm *TimeManager) IsTestMode() bool {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.testMode
}
