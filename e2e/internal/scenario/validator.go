package scenario

import (
	"fmt"
	"time"
)

// ValidateScenario performs validation checks on a loaded scenario
func ValidateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("scenario name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("scenario description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}

	for i, step := range s.Steps {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}

	return nil
}

func validateStep(step Step) error {
	if step.Description == "" {
		return fmt.Errorf("description is required")
	}

	if _, err := time.Parse(time.RFC3339, step.VirtualStart); err != nil {
		return fmt.Errorf("virtual_start must be RFC 3339: %w", err)
	}

	if step.TimeScale < 0 {
		return fmt.Errorf("time_scale cannot be negative")
	}

	if step.TimeoutSec < 0 {
		return fmt.Errorf("timeout_sec cannot be negative")
	}

	if len(step.Payload) == 0 && len(step.Redis) == 0 {
		return fmt.Errorf("payload or redis expectations are required")
	}

	for j, check := range step.Redis {
		if check.Key == "" || check.Field == "" {
			return fmt.Errorf("redis check %d: key and field are required", j)
		}
	}

	return nil
}
