package checker

import (
	"testing"
)

func TestMatchesExpectation(t *testing.T) {
	testCases := []struct {
		name     string
		actual   interface{}
		expected interface{}
		matches  bool
	}{
		{"equal strings", "polar_night", "polar_night", true},
		{"different strings", "normal", "polar_day", false},
		{"json number vs yaml int", float64(2500), 2500, true},
		{"json number vs yaml float", 4000.5, 4000.5, true},
		{"different numbers", float64(2500), 5500, false},
		{"bool", false, false, true},
		{"bool mismatch", true, false, false},
		{"greater than", 5321.4, ">5000", true},
		{"greater than fails", 4999.0, ">5000", false},
		{"less or equal", float64(10), "<=10", true},
		{"string number comparison", "5321.4", ">=5321.4", true},
		{"regex", "2025-06-21T12:00:00+02:00", "~^2025-06-21T12~", true},
		{"regex mismatch", "2025-06-21T13:00:00+02:00", "~T12:~", false},
		{"null expected", nil, nil, true},
		{"null actual", nil, "2025-06-21T04:00:00+02:00", false},
		{"numeric string", "2500", 2500, true},
		{"bool vs string", true, "true", false},
		{"nested", map[string]interface{}{"kelvin": 2500.0}, map[string]interface{}{"kelvin": 2500}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			matches, reason := MatchesExpectation(tc.actual, tc.expected)
			if matches != tc.matches {
				t.Errorf("MatchesExpectation(%v, %v) = %v (%s), want %v", tc.actual, tc.expected, matches, reason, tc.matches)
			}
		})
	}
}

func TestMatchesPayload_MissingKey(t *testing.T) {
	actual := map[string]interface{}{"kelvin": 2500.0}

	matches, reason := MatchesPayload(actual, map[string]interface{}{"day_kind": "normal"})
	if matches {
		t.Fatal("expected missing key to fail")
	}
	if reason != `missing key "day_kind"` {
		t.Errorf("unexpected reason: %s", reason)
	}
}
