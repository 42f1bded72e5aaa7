package circadian

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestTimeManager_VirtualTime(t *testing.T) {
	wall := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	tm := NewTimeManager(quietLogger())
	tm.now = func() time.Time { return wall }

	assert.False(t, tm.IsTestMode())
	assert.Equal(t, wall, tm.Now())

	err := tm.ApplyConfig([]byte(`{"test_mode": true, "virtual_start": "2025-06-21T03:00:00+02:00", "time_scale": 60}`))
	require.NoError(t, err)
	assert.True(t, tm.IsTestMode())

	wall = wall.Add(time.Minute)
	expected := time.Date(2025, 6, 21, 2, 0, 0, 0, time.UTC)
	assert.True(t, expected.Equal(tm.Now()), "got %s", tm.Now())

	require.NoError(t, tm.ApplyConfig([]byte(`{"test_mode": false}`)))
	assert.False(t, tm.IsTestMode())
	assert.Equal(t, wall, tm.Now())
}

func TestTimeManager_InvalidConfig(t *testing.T) {
	tm := NewTimeManager(quietLogger())

	assert.Error(t, tm.ApplyConfig([]byte(`not json`)))
	assert.Error(t, tm.ApplyConfig([]byte(`{"test_mode": true, "virtual_start": "tomorrow"}`)))
	assert.False(t, tm.IsTestMode())
}
