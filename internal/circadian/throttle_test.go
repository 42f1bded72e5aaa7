package circadian

import (
	"testing"
	"time"
)

func TestPublishThrottle(t *testing.T) {
	throttle := NewPublishThrottle(5*time.Minute, 50)
	base := time.Date(2025, 6, 21, 12, 0, 0, 0, time.UTC)
	day := Reading{Kelvin: 5000, Daytime: true}

	if !throttle.ShouldPublish("home", day, base) {
		t.Fatal("expected first publish to pass")
	}

	if throttle.ShouldPublish("home", Reading{Kelvin: 5020, Daytime: true}, base.Add(time.Minute)) {
		t.Error("expected small change within interval to be throttled")
	}

	if !throttle.ShouldPublish("home", Reading{Kelvin: 5060, Daytime: true}, base.Add(2*time.Minute)) {
		t.Error("expected large kelvin change to pass")
	}

	if !throttle.ShouldPublish("home", Reading{Kelvin: 5060, Daytime: false}, base.Add(3*time.Minute)) {
		t.Error("expected day/night flip to pass")
	}

	if !throttle.ShouldPublish("home", Reading{Kelvin: 5060, Daytime: false}, base.Add(9*time.Minute)) {
		t.Error("expected publish after interval elapsed")
	}

	if !throttle.ShouldPublish("cabin", day, base.Add(9*time.Minute)) {
		t.Error("expected sites to be throttled independently")
	}
}

func TestPublishThrottle_RecordResetsInterval(t *testing.T) {
	throttle := NewPublishThrottle(5*time.Minute, 50)
	base := time.Date(2025, 6, 21, 12, 0, 0, 0, time.UTC)
	reading := Reading{Kelvin: 3000}

	throttle.Record("home", reading, base)

	if throttle.ShouldPublish("home", reading, base.Add(time.Minute)) {
		t.Error("expected publish right after a forced one to be throttled")
	}

	at, ok := throttle.LastPublished("home")
	if !ok || !at.Equal(base) {
		t.Errorf("expected last publish %s, got %s (ok=%v)", base, at, ok)
	}
}
