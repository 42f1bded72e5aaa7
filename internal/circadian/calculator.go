package circadian

import (
	"time"

	"github.com/saaga0h/jeeves-circadian/internal/solar"
)

// Snapshot is a Reading together with the solar state it was derived from
type Snapshot struct {
	Time      time.Time
	Elevation float64
	Window    solar.DayWindow
	Reading   Reading
}

// Calculator computes circadian readings. It holds no state besides its
// Settings and is safe for concurrent use.
type Calculator struct {
	settings Settings
}

// NewCalculator creates a calculator for the given settings
func NewCalculator(settings Settings) *Calculator {
	return &Calculator{settings: settings}
}

// Settings returns the calculator's settings
func (c *Calculator) Settings() Settings {
	return c.settings
}

// DayWindow scans the calendar day containing t in loc
func (c *Calculator) DayWindow(coord solar.Coordinate, loc *time.Location, t time.Time) solar.DayWindow {
	return solar.ScanDay(coord, loc, t, c.settings.ThresholdAltitude)
}

// At returns the reading for a single instant
func (c *Calculator) At(coord solar.Coordinate, loc *time.Location, t time.Time) Snapshot {
	t = t.In(loc)
	return c.snapshot(coord, t, c.DayWindow(coord, loc, t))
}

// Project returns one snapshot per hour for hours hours starting at start.
// Day windows are scanned once per calendar date and reused across rows.
func (c *Calculator) Project(coord solar.Coordinate, loc *time.Location, start time.Time, hours int) []Snapshot {
	if hours <= 0 {
		return []Snapshot{}
	}

	start = start.In(loc)
	windows := make(map[string]solar.DayWindow, 3)
	today := c.DayWindow(coord, loc, start)
	windows[dateKey(today.Date)] = today
	tomorrow := c.DayWindow(coord, loc, today.Date.AddDate(0, 0, 1))
	windows[dateKey(tomorrow.Date)] = tomorrow

	rows := make([]Snapshot, 0, hours)
	for h := 0; h < hours; h++ {
		t := start.Add(time.Duration(h) * time.Hour)

		window, ok := windows[dateKey(t)]
		if !ok {
			window = c.DayWindow(coord, loc, t)
			windows[dateKey(t)] = window
		}

		rows = append(rows, c.snapshot(coord, t, window))
	}

	return rows
}

func (c *Calculator) snapshot(coord solar.Coordinate, t time.Time, window solar.DayWindow) Snapshot {
	elevation := solar.Elevation(t, coord)
	return Snapshot{
		Time:      t,
		Elevation: elevation,
		Window:    window,
		Reading:   c.settings.Map(t, elevation, window),
	}
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
