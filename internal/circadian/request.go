package circadian

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/saaga0h/jeeves-circadian/internal/solar"
)

// ErrInvalidRequest marks caller input that could not be parsed or validated
var ErrInvalidRequest = errors.New("invalid request")

// Wall-clock layouts accepted for timestamps without an offset. They are
// interpreted in the requested timezone.
var wallClockLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Query is a validated request for circadian data
type Query struct {
	Coordinate solar.Coordinate
	Location   *time.Location
	Time       time.Time
}

// ParseCoordinate parses latitude and longitude strings, falling back to def
// for empty values.
func ParseCoordinate(latitude, longitude string, def solar.Coordinate) (solar.Coordinate, error) {
	coord := def

	if latitude != "" {
		lat, err := strconv.ParseFloat(strings.TrimSpace(latitude), 64)
		if err != nil {
			return solar.Coordinate{}, fmt.Errorf("%w: latitude %q is not a number", ErrInvalidRequest, latitude)
		}
		coord.Latitude = lat
	}

	if longitude != "" {
		lon, err := strconv.ParseFloat(strings.TrimSpace(longitude), 64)
		if err != nil {
			return solar.Coordinate{}, fmt.Errorf("%w: longitude %q is not a number", ErrInvalidRequest, longitude)
		}
		coord.Longitude = lon
	}

	if err := coord.Validate(); err != nil {
		return solar.Coordinate{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	return coord, nil
}

// ParseLocation loads an IANA timezone
func ParseLocation(name string) (*time.Location, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: timezone is required", ErrInvalidRequest)
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidRequest, name)
	}
	return loc, nil
}

// ParseTimestamp parses an ISO-8601 timestamp. Values carrying an offset are
// converted into loc; wall-clock values are interpreted in loc.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)

	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.In(loc), nil
	}

	for _, layout := range wallClockLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: unparsable timestamp %q", ErrInvalidRequest, value)
}

// ParseHours parses a projection horizon, returning def for an empty value
func ParseHours(value string, def, max int) (int, error) {
	if value == "" {
		return def, nil
	}

	hours, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: hours %q is not an integer", ErrInvalidRequest, value)
	}
	if hours < 1 || hours > max {
		return 0, fmt.Errorf("%w: hours must be between 1 and %d, got %d", ErrInvalidRequest, max, hours)
	}
	return hours, nil
}

// ParseQuery validates raw request values. An empty timestamp resolves to
// now in the requested timezone.
func ParseQuery(latitude, longitude, timezone, timestamp string, def solar.Coordinate, now time.Time) (Query, error) {
	coord, err := ParseCoordinate(latitude, longitude, def)
	if err != nil {
		return Query{}, err
	}

	loc, err := ParseLocation(timezone)
	if err != nil {
		return Query{}, err
	}

	t := now.In(loc)
	if timestamp != "" {
		t, err = ParseTimestamp(timestamp, loc)
		if err != nil {
			return Query{}, err
		}
	}

	return Query{Coordinate: coord, Location: loc, Time: t}, nil
}
