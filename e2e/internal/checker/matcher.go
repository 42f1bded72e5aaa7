package checker

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MatchesExpectation checks if actual value matches expected value.
// Returns (true, "") on match, (false, "reason") on mismatch.
//
// String expectations may use matchers: ~pattern~ for a regular expression
// and >v, <v, >=v, <=v for numeric comparison.
func MatchesExpectation(actual, expected interface{}) (bool, string) {
	if expected == nil {
		if actual == nil {
			return true, ""
		}
		return false, fmt.Sprintf("expected null, got %v", actual)
	}
	if actual == nil {
		return false, fmt.Sprintf("expected %v, got null", expected)
	}

	switch exp := expected.(type) {
	case string:
		if len(exp) > 1 && strings.HasPrefix(exp, "~") && strings.HasSuffix(exp, "~") {
			return matchRegex(actual, strings.Trim(exp, "~"))
		}
		if strings.HasPrefix(exp, ">") || strings.HasPrefix(exp, "<") {
			return matchComparison(actual, exp)
		}
		got, ok := actual.(string)
		if !ok {
			return false, fmt.Sprintf("expected string %q, got %T", exp, actual)
		}
		if got != exp {
			return false, fmt.Sprintf("expected %q, got %q", exp, got)
		}
		return true, ""

	case bool:
		got, ok := actual.(bool)
		if !ok {
			return false, fmt.Sprintf("expected bool, got %T", actual)
		}
		if got != exp {
			return false, fmt.Sprintf("expected %v, got %v", exp, got)
		}
		return true, ""

	case map[string]interface{}:
		return matchMap(actual, exp)
	}

	expFloat, err := toFloat64(expected)
	if err != nil {
		return false, fmt.Sprintf("unsupported expectation type %T", expected)
	}
	got, err := toFloat64(actual)
	if err != nil {
		return false, fmt.Sprintf("expected number, got %T", actual)
	}
	if got != expFloat {
		return false, fmt.Sprintf("expected %v, got %v", expFloat, got)
	}
	return true, ""
}

// MatchesPayload checks every expected key against a decoded JSON object
func MatchesPayload(actual map[string]interface{}, expected map[string]interface{}) (bool, string) {
	return matchMap(actual, expected)
}

func matchMap(actual interface{}, expected map[string]interface{}) (bool, string) {
	actualMap, ok := actual.(map[string]interface{})
	if !ok {
		return false, fmt.Sprintf("expected object, got %T", actual)
	}

	for key, expectedValue := range expected {
		actualValue, exists := actualMap[key]
		if !exists {
			return false, fmt.Sprintf("missing key %q", key)
		}

		if matches, reason := MatchesExpectation(actualValue, expectedValue); !matches {
			return false, fmt.Sprintf("key %q: %s", key, reason)
		}
	}

	return true, ""
}

func matchRegex(actual interface{}, pattern string) (bool, string) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, fmt.Sprintf("invalid regex pattern %q: %v", pattern, err)
	}

	actualStr := fmt.Sprintf("%v", actual)
	if re.MatchString(actualStr) {
		return true, ""
	}
	return false, fmt.Sprintf("value %q does not match pattern ~%s~", actualStr, pattern)
}

func matchComparison(actual interface{}, comparison string) (bool, string) {
	got, err := toFloat64(actual)
	if err != nil {
		return false, fmt.Sprintf("cannot compare non-numeric value: %v", actual)
	}

	var op string
	for _, candidate := range []string{">=", "<=", ">", "<"} {
		if strings.HasPrefix(comparison, candidate) {
			op = candidate
			break
		}
	}

	limit, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(comparison, op)), 64)
	if err != nil {
		return false, fmt.Sprintf("invalid comparison %q", comparison)
	}

	var result bool
	switch op {
	case ">":
		result = got > limit
	case "<":
		result = got < limit
	case ">=":
		result = got >= limit
	case "<=":
		result = got <= limit
	}

	if result {
		return true, ""
	}
	return false, fmt.Sprintf("expected %s %v, got %v", op, limit, got)
}

func toFloat64(val interface{}) (float64, error) {
	switch v := val.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case string:
		// Redis hash fields come back as strings
		return strconv.ParseFloat(v, 64)
	default:
		return 0, fmt.Errorf("not a numeric type: %T", val)
	}
}
