package circadian

import (
	"math"
	"sync"
	"time"
)

type publishRecord struct {
	at      time.Time
	kelvin  float64
	daytime bool
}

// PublishThrottle suppresses repeated publishes of an unchanged reading per site
type PublishThrottle struct {
	mu          sync.Mutex
	minInterval time.Duration
	minChange   float64
	last        map[string]publishRecord
}

// NewPublishThrottle creates a throttle that lets a reading through once
// minInterval has passed, or sooner when kelvin moved by at least minChange
// or the day/night state flipped.
func NewPublishThrottle(minInterval time.Duration, minChange float64) *PublishThrottle {
	return &PublishThrottle{
		minInterval: minInterval,
		minChange:   minChange,
		last:        make(map[string]publishRecord),
	}
}

// ShouldPublish reports whether reading should be published for site at now
// and records it if so.
func (pt *PublishThrottle) ShouldPublish(site string, reading Reading, now time.Time) bool {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	prev, exists := pt.last[site]
	if exists &&
		now.Sub(prev.at) < pt.minInterval &&
		prev.daytime == reading.Daytime &&
		math.Abs(prev.kelvin-reading.Kelvin) < pt.minChange {
		return false
	}

	pt.last[site] = publishRecord{at: now, kelvin: reading.Kelvin, daytime: reading.Daytime}
	return true
}

// Record marks reading as published for site, used for forced publishes
func (pt *PublishThrottle) Record(site string, reading Reading, now time.Time) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	pt.last[site] = publishRecord{at: now, kelvin: reading.Kelvin, daytime: reading.Daytime}
}

// LastPublished returns when site was last published
func (pt *PublishThrottle) LastPublished(site string) (time.Time, bool) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	rec, exists := pt.last[site]
	return rec.at, exists
}
