package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/saaga0h/jeeves-circadian/e2e/internal/checker"
	"github.com/saaga0h/jeeves-circadian/e2e/internal/scenario"
	"github.com/saaga0h/jeeves-circadian/pkg/mqtt"
	"github.com/saaga0h/jeeves-circadian/pkg/redis"
)

// Runner orchestrates scenario execution against a running circadian agent
type Runner struct {
	mqtt   mqtt.Client
	redis  redis.Client
	logger *slog.Logger
}

// NewRunner creates a new scenario runner. redisClient may be nil, in which
// case Redis checks fail.
func NewRunner(mqttClient mqtt.Client, redisClient redis.Client, logger *slog.Logger) *Runner {
	return &Runner{
		mqtt:   mqttClient,
		redis:  redisClient,
		logger: logger,
	}
}

// Run executes a scenario. Each step moves the agent's virtual clock and
// checks the reading the agent publishes in response.
func (r *Runner) Run(ctx context.Context, s *scenario.Scenario) (*scenario.TestResult, error) {
	r.logger.Info("Starting scenario", "name", s.Name, "site", s.Site, "steps", len(s.Steps))

	box := newInbox()
	topic := mqtt.CircadianTopic(s.Site)
	if err := r.mqtt.Subscribe(topic, 0, box.handle); err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	// Restore wall-clock time however the scenario ends
	defer func() {
		if err := r.publishTimeConfig(false, "", 0); err != nil {
			r.logger.Warn("Failed to reset virtual time", "error", err)
		}
	}()

	result := &scenario.TestResult{
		Scenario:  s.Name,
		StartTime: time.Now(),
	}

	for i, step := range s.Steps {
		stepResult := r.runStep(ctx, box, step)
		result.Steps = append(result.Steps, stepResult)

		if stepResult.Passed {
			result.PassedCount++
			r.logger.Info("Step passed", "step", i, "description", step.Description)
		} else {
			result.FailedCount++
			r.logger.Warn("Step failed", "step", i, "description", step.Description, "reason", stepResult.Reason)
		}

		if ctx.Err() != nil {
			break
		}
	}

	result.EndTime = time.Now()
	result.Passed = result.FailedCount == 0 && len(result.Steps) == len(s.Steps)

	return result, nil
}

func (r *Runner) runStep(ctx context.Context, box *inbox, step scenario.Step) scenario.StepResult {
	res := scenario.StepResult{
		Description:  step.Description,
		VirtualStart: step.VirtualStart,
	}

	// Discard the retained reading and anything published before the clock moves
	box.drain()

	if err := r.publishTimeConfig(true, step.VirtualStart, step.TimeScale); err != nil {
		res.Reason = err.Error()
		return res
	}

	payload, err := box.next(ctx, step.Timeout(), readingWithin(step))
	if err != nil {
		res.Reason = err.Error()
		return res
	}
	res.ActualPayload = payload

	if matches, reason := checker.MatchesPayload(payload, step.Payload); !matches {
		res.Reason = reason
		return res
	}

	for _, check := range step.Redis {
		if r.redis == nil {
			res.Reason = "redis checks require a Redis connection"
			return res
		}
		if passed, reason, _ := checker.CheckRedisExpectation(ctx, r.redis, check); !passed {
			res.Reason = reason
			return res
		}
	}

	res.Passed = true
	return res
}

// readingWithin accepts readings stamped inside the virtual span the step can
// cover before it times out. Anything else was published for an earlier clock.
func readingWithin(step scenario.Step) func(map[string]interface{}) bool {
	start, _ := time.Parse(time.RFC3339, step.VirtualStart)
	start = start.Truncate(time.Second)

	scale := step.TimeScale
	if scale < 1 {
		scale = 1
	}
	end := start.Add(step.Timeout()*time.Duration(scale) + time.Minute)

	return func(payload map[string]interface{}) bool {
		stamp, ok := payload["timestamp"].(string)
		if !ok {
			return false
		}
		at, err := time.Parse(time.RFC3339, stamp)
		if err != nil {
			return false
		}
		return !at.Before(start) && !at.After(end)
	}
}

func (r *Runner) publishTimeConfig(testMode bool, virtualStart string, timeScale int) error {
	payload := map[string]interface{}{
		"test_mode": testMode,
	}
	if testMode {
		if timeScale < 1 {
			timeScale = 1
		}
		payload["virtual_start"] = virtualStart
		payload["time_scale"] = timeScale
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal time config: %w", err)
	}

	if err := r.mqtt.Publish(mqtt.TopicTestTimeConfig, 1, true, data); err != nil {
		return fmt.Errorf("failed to publish time config: %w", err)
	}

	r.logger.Debug("Published time config", "test_mode", testMode, "virtual_start", virtualStart, "time_scale", timeScale)
	return nil
}
