package circadian

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sixdouglas/suncalc"

	"github.com/saaga0h/jeeves-circadian/internal/solar"
	"github.com/saaga0h/jeeves-circadian/pkg/config"
	"github.com/saaga0h/jeeves-circadian/pkg/mqtt"
	"github.com/saaga0h/jeeves-circadian/pkg/redis"
)

// ContextMessage is published on the circadian context topic and stored as
// the site's latest reading.
type ContextMessage struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Type   string `json:"type"`
	Site   string `json:"site"`
	ReadingResponse
	Daytime            bool    `json:"daytime"`
	ReferenceElevation float64 `json:"reference_elevation"`
	Timestamp          string  `json:"timestamp"`
}

// Agent periodically computes the site's circadian reading and publishes it
type Agent struct {
	mqtt     mqtt.Client
	redis    redis.Client
	cfg      *config.Config
	calc     *Calculator
	clock    *TimeManager
	throttle *PublishThrottle
	logger   *slog.Logger

	coord solar.Coordinate
	loc   *time.Location

	mu            sync.RWMutex
	lastSnapshot  *Snapshot
	lastTableDate string

	ticker   *time.Ticker
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewAgent creates a new circadian agent
func NewAgent(mqttClient mqtt.Client, redisClient redis.Client, calc *Calculator, clock *TimeManager, cfg *config.Config, logger *slog.Logger) (*Agent, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", cfg.Timezone, err)
	}

	coord := solar.Coordinate{Latitude: cfg.Latitude, Longitude: cfg.Longitude}
	if err := coord.Validate(); err != nil {
		return nil, fmt.Errorf("invalid site coordinate: %w", err)
	}

	return &Agent{
		mqtt:     mqttClient,
		redis:    redisClient,
		cfg:      cfg,
		calc:     calc,
		clock:    clock,
		throttle: NewPublishThrottle(time.Duration(cfg.MinPublishIntervalMs)*time.Millisecond, cfg.KelvinChangeThreshold),
		logger:   logger,
		coord:    coord,
		loc:      loc,
		stopChan: make(chan struct{}),
	}, nil
}

// Start connects to MQTT and Redis, publishes an initial reading and then
// evaluates on every publish interval until ctx is cancelled.
func (a *Agent) Start(ctx context.Context) error {
	a.logger.Info("Starting circadian agent",
		"service_name", a.cfg.ServiceName,
		"site", a.cfg.Site,
		"latitude", a.coord.Latitude,
		"longitude", a.coord.Longitude,
		"timezone", a.loc.String(),
		"publish_interval_sec", a.cfg.PublishIntervalSec)

	if err := a.mqtt.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to MQTT: %w", err)
	}

	if err := a.redis.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}

	if err := a.mqtt.Subscribe(mqtt.TopicTestTimeConfig, 1, a.handleTimeConfig(ctx)); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", mqtt.TopicTestTimeConfig, err)
	}

	if err := a.Evaluate(ctx, true); err != nil {
		a.logger.Error("Initial evaluation failed", "error", err)
	}

	a.startPeriodicLoop(ctx)

	a.logger.Info("Circadian agent started and ready")

	<-ctx.Done()
	a.logger.Info("Circadian agent stopping")

	return nil
}

// Stop gracefully stops the agent
func (a *Agent) Stop() error {
	a.logger.Info("Stopping circadian agent")

	a.stopOnce.Do(func() {
		a.mu.Lock()
		if a.ticker != nil {
			a.ticker.Stop()
		}
		close(a.stopChan)
		a.mu.Unlock()
	})

	a.mqtt.Disconnect()

	if err := a.redis.Close(); err != nil {
		a.logger.Error("Error closing Redis connection", "error", err)
		return err
	}

	a.logger.Info("Circadian agent stopped")
	return nil
}

func (a *Agent) startPeriodicLoop(ctx context.Context) {
	interval := time.Duration(a.cfg.PublishIntervalSec) * time.Second

	a.mu.Lock()
	select {
	case <-a.stopChan:
		// Stopped while Start was still connecting
		a.mu.Unlock()
		return
	default:
	}
	ticker := time.NewTicker(interval)
	a.ticker = ticker
	a.mu.Unlock()

	go func() {
		a.logger.Info("Starting periodic evaluation loop", "interval_sec", a.cfg.PublishIntervalSec)
		for {
			select {
			case <-ticker.C:
				if err := a.Evaluate(ctx, false); err != nil {
					a.logger.Error("Periodic evaluation failed", "error", err)
				}
			case <-a.stopChan:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// handleTimeConfig switches the clock to (or from) virtual time and
// republishes immediately.
func (a *Agent) handleTimeConfig(ctx context.Context) mqtt.MessageHandler {
	return func(msg mqtt.Message) {
		if err := a.clock.ApplyConfig(msg.Payload()); err != nil {
			a.logger.Error("Failed to apply time config", "error", err)
			return
		}

		if err := a.Evaluate(ctx, true); err != nil {
			a.logger.Error("Evaluation after time config failed", "error", err)
		}
	}
}

// Evaluate computes the current reading and publishes it unless throttled.
// A forced evaluation always publishes.
func (a *Agent) Evaluate(ctx context.Context, force bool) error {
	now := a.clock.Now().In(a.loc)
	snap := a.calc.At(a.coord, a.loc, now)

	a.mu.Lock()
	a.lastSnapshot = &snap
	tableDue := a.lastTableDate != dateKey(now)
	a.mu.Unlock()

	if tableDue {
		if err := a.publishTable(now); err != nil {
			a.logger.Error("Failed to publish projection table", "site", a.cfg.Site, "error", err)
		} else {
			a.mu.Lock()
			a.lastTableDate = dateKey(now)
			a.mu.Unlock()
		}
	}

	if force {
		a.throttle.Record(a.cfg.Site, snap.Reading, now)
	} else if !a.throttle.ShouldPublish(a.cfg.Site, snap.Reading, now) {
		a.logger.Debug("Reading unchanged, skipping publish",
			"site", a.cfg.Site,
			"kelvin", snap.Reading.Kelvin,
			"daytime", snap.Reading.Daytime)
		return nil
	}

	msg := a.buildContextMessage(snap, now)
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal circadian context: %w", err)
	}

	topic := mqtt.CircadianTopic(a.cfg.Site)
	if err := a.mqtt.Publish(topic, 0, true, payload); err != nil {
		return fmt.Errorf("failed to publish circadian context: %w", err)
	}

	if err := a.storeLatest(ctx, msg, payload); err != nil {
		// The bus already has the reading; a stale cache is not fatal
		a.logger.Warn("Failed to store latest reading", "site", a.cfg.Site, "error", err)
	}

	a.logger.Info("Circadian reading published",
		"site", a.cfg.Site,
		"kelvin", msg.Kelvin,
		"dimming_percent", msg.DimmingPercent,
		"solar_elevation", msg.SolarElevation,
		"day_kind", msg.DayKind,
		"forced", force)

	return nil
}

func (a *Agent) buildContextMessage(snap Snapshot, now time.Time) ContextMessage {
	reference := suncalc.GetPosition(snap.Time, a.coord.Latitude, a.coord.Longitude)

	return ContextMessage{
		ID:                 uuid.New().String(),
		Source:             a.cfg.ServiceName,
		Type:               "circadian",
		Site:               a.cfg.Site,
		ReadingResponse:    NewReadingResponse(snap, a.calc.Settings()),
		Daytime:            snap.Reading.Daytime,
		ReferenceElevation: round(reference.Altitude*180/math.Pi, 2),
		Timestamp:          now.Format(time.RFC3339),
	}
}

func (a *Agent) storeLatest(ctx context.Context, msg ContextMessage, payload []byte) error {
	ttl := a.cfg.LatestTTL()

	if err := a.redis.Set(ctx, redis.LatestReadingKey(a.cfg.Site), payload, ttl); err != nil {
		return err
	}

	stateKey := redis.PublishStateKey(a.cfg.Site)
	if err := a.redis.HSet(ctx, stateKey, map[string]interface{}{
		"last_id":        msg.ID,
		"last_published": msg.Timestamp,
		"kelvin":         msg.Kelvin,
		"daytime":        strconv.FormatBool(msg.Daytime),
	}); err != nil {
		return err
	}

	return a.redis.Expire(ctx, stateKey, ttl)
}

// publishTable publishes the projection for the configured horizon as a
// retained message.
func (a *Agent) publishTable(now time.Time) error {
	start := localHour(now, a.loc)
	rows := a.calc.Project(a.coord, a.loc, start, a.cfg.ProjectionHours)
	table := NewTableResponse(Query{Coordinate: a.coord, Location: a.loc, Time: start},
		a.cfg.ProjectionHours, rows, a.calc.Settings())

	payload, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("failed to marshal projection table: %w", err)
	}

	if err := a.mqtt.Publish(mqtt.CircadianTableTopic(a.cfg.Site), 0, true, payload); err != nil {
		return err
	}

	a.logger.Debug("Published projection table", "site", a.cfg.Site, "hours", len(rows))
	return nil
}

// localHour returns the start of the local wall-clock hour containing t. Zones
// with half-hour offsets make this differ from time.Truncate.
func localHour(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), 0, 0, 0, loc)
}

// LastSnapshot returns the most recently computed snapshot
func (a *Agent) LastSnapshot() (Snapshot, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.lastSnapshot == nil {
		return Snapshot{}, false
	}
	return *a.lastSnapshot, true
}

// LastPublished returns when the site's reading was last published
func (a *Agent) LastPublished() (time.Time, bool) {
	return a.throttle.LastPublished(a.cfg.Site)
}
