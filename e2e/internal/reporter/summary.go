package reporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/saaga0h/jeeves-circadian/e2e/internal/scenario"
)

// FormatSummary creates a human-readable summary of a scenario run
func FormatSummary(result *scenario.TestResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Scenario: %s (%s)\n", result.Scenario, result.EndTime.Sub(result.StartTime).Round(time.Millisecond))

	for _, step := range result.Steps {
		icon := "✓"
		if !step.Passed {
			icon = "✗"
		}
		fmt.Fprintf(&sb, "  %s [%s] %s\n", icon, step.VirtualStart, step.Description)
		if !step.Passed {
			fmt.Fprintf(&sb, "      %s\n", step.Reason)
		}
	}

	status := "PASSED"
	if !result.Passed {
		status = "FAILED"
	}
	fmt.Fprintf(&sb, "\n%s: %d passed, %d failed\n", status, result.PassedCount, result.FailedCount)

	return sb.String()
}

// SaveSummary saves a JSON summary of test results
func SaveSummary(result *scenario.TestResult, filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}
