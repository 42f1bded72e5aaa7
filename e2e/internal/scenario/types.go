package scenario

import "time"

// Scenario drives the circadian agent through a sequence of virtual times
// and checks what it publishes at each one.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Site        string `yaml:"site"`
	Steps       []Step `yaml:"steps"`
}

// Step moves the agent's clock and describes the expected reading
type Step struct {
	Description  string       `yaml:"description"`
	VirtualStart string       `yaml:"virtual_start"` // RFC 3339
	TimeScale    int          `yaml:"time_scale,omitempty"`
	TimeoutSec   int          `yaml:"timeout_sec,omitempty"`
	Payload      Payload      `yaml:"payload"`
	Redis        []RedisCheck `yaml:"redis,omitempty"`
}

// Payload maps reading fields to expected values (supports special matchers)
type Payload map[string]interface{}

// RedisCheck expects a hash field to hold a value
type RedisCheck struct {
	Key      string `yaml:"key"`
	Field    string `yaml:"field"`
	Expected string `yaml:"expected"`
}

// Timeout returns how long to wait for the agent to publish after a clock change
func (s Step) Timeout() time.Duration {
	if s.TimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.TimeoutSec) * time.Second
}

// TestResult represents the outcome of running a scenario
type TestResult struct {
	Scenario    string       `json:"scenario"`
	StartTime   time.Time    `json:"start_time"`
	EndTime     time.Time    `json:"end_time"`
	Passed      bool         `json:"passed"`
	PassedCount int          `json:"passed_count"`
	FailedCount int          `json:"failed_count"`
	Steps       []StepResult `json:"steps"`
}

// StepResult represents the result of checking a single step
type StepResult struct {
	Description   string                 `json:"description"`
	VirtualStart  string                 `json:"virtual_start"`
	Passed        bool                   `json:"passed"`
	Reason        string                 `json:"reason,omitempty"`
	ActualPayload map[string]interface{} `json:"actual_payload,omitempty"`
}
