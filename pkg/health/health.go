package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/saaga0h/jeeves-circadian/pkg/mqtt"
	"github.com/saaga0h/jeeves-circadian/pkg/redis"
)

// PublishReporter exposes when the agent last published a reading
type PublishReporter interface {
	LastPublished() (time.Time, bool)
}

// Checker provides health check functionality for agents
type Checker struct {
	mqtt      mqtt.Client
	redis     redis.Client
	publisher PublishReporter
	logger    *slog.Logger
}

// NewChecker creates a new health checker. publisher may be nil.
func NewChecker(mqttClient mqtt.Client, redisClient redis.Client, publisher PublishReporter, logger *slog.Logger) *Checker {
	return &Checker{
		mqtt:      mqttClient,
		redis:     redisClient,
		publisher: publisher,
		logger:    logger,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status        string    `json:"status"`
	Timestamp     string    `json:"timestamp"`
	LastPublished string    `json:"last_published,omitempty"`
	Services      *Services `json:"services,omitempty"`
}

// Services represents the status of external dependencies
type Services struct {
	Redis string `json:"redis"`
	MQTT  string `json:"mqtt"`
}

// HandlerFunc returns a liveness handler that does not touch dependencies
func (h *Checker) HandlerFunc() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := HealthResponse{
			Status:        "ok",
			Timestamp:     time.Now().UTC().Format(time.RFC3339Nano),
			LastPublished: h.lastPublished(),
		}

		h.write(w, http.StatusOK, response)
	}
}

// DetailedHandlerFunc returns a handler that checks MQTT and pings Redis
func (h *Checker) DetailedHandlerFunc() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services := &Services{
			Redis: "disconnected",
			MQTT:  "disconnected",
		}

		if h.mqtt != nil && h.mqtt.IsConnected() {
			services.MQTT = "connected"
		}

		if h.redis != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
			if err := h.redis.Ping(ctx); err == nil {
				services.Redis = "connected"
			} else {
				h.logger.Warn("Redis health ping failed", "error", err)
			}
			cancel()
		}

		status := "healthy"
		statusCode := http.StatusOK
		if services.Redis != "connected" || services.MQTT != "connected" {
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		response := HealthResponse{
			Status:        status,
			Timestamp:     time.Now().UTC().Format(time.RFC3339Nano),
			LastPublished: h.lastPublished(),
			Services:      services,
		}

		h.write(w, statusCode, response)
	}
}

func (h *Checker) lastPublished() string {
	if h.publisher == nil {
		return ""
	}
	if at, ok := h.publisher.LastPublished(); ok {
		return at.Format(time.RFC3339)
	}
	return ""
}

func (h *Checker) write(w http.ResponseWriter, status int, response HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode health response", "error", err)
	}
}
