package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config holds the configuration for a J.E.E.V.E.S. circadian agent
type Config struct {
	// MQTT configuration
	MQTTBroker   string `yaml:"mqtt_broker"`
	MQTTPort     int    `yaml:"mqtt_port"`
	MQTTUser     string `yaml:"mqtt_user"`
	MQTTPassword string `yaml:"mqtt_password"`
	MQTTClientID string `yaml:"mqtt_client_id"`

	// Redis configuration
	RedisHost     string `yaml:"redis_host"`
	RedisPort     int    `yaml:"redis_port"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	// Service configuration
	ServiceName string `yaml:"service_name"`
	HealthPort  int    `yaml:"health_port"`
	LogLevel    string `yaml:"log_level"`

	// Site configuration
	Site      string  `yaml:"site"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Timezone  string  `yaml:"timezone"`

	// Lighting range
	MinKelvin         float64 `yaml:"min_kelvin"`
	MaxKelvin         float64 `yaml:"max_kelvin"`
	ThresholdAltitude float64 `yaml:"threshold_altitude"`
	NightDimming      float64 `yaml:"night_dimming"`

	// Publishing
	PublishIntervalSec    int     `yaml:"publish_interval_sec"`
	MinPublishIntervalMs  int     `yaml:"min_publish_interval_ms"`
	KelvinChangeThreshold float64 `yaml:"kelvin_change_threshold"`
	LatestTTLMinutes      int     `yaml:"latest_ttl_minutes"`

	// HTTP API
	APIPort            int     `yaml:"api_port"`
	APIRateLimit       float64 `yaml:"api_rate_limit"`
	APIRateBurst       int     `yaml:"api_rate_burst"`
	ProjectionHours    int     `yaml:"projection_hours"`
	MaxProjectionHours int     `yaml:"max_projection_hours"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		MQTTBroker:  "localhost",
		MQTTPort:    1883,
		RedisHost:   "localhost",
		RedisPort:   6379,
		RedisDB:     0,
		ServiceName: "circadian-agent",
		HealthPort:  8080,
		LogLevel:    "info",
		// Kongsberg, Norway
		Site:      "home",
		Latitude:  59.6689,
		Longitude: 9.6502,
		Timezone:  "Europe/Oslo",
		// Lighting defaults
		MinKelvin:         2500,
		MaxKelvin:         5500,
		ThresholdAltitude: -0.833,
		NightDimming:      0.10,
		// Publishing defaults
		PublishIntervalSec:    60,
		MinPublishIntervalMs:  300000,
		KelvinChangeThreshold: 50,
		LatestTTLMinutes:      10,
		// API defaults
		APIPort:            3003,
		APIRateLimit:       20,
		APIRateBurst:       40,
		ProjectionHours:    48,
		MaxProjectionHours: 720,
	}
}

// LoadFromFile overlays values from a YAML file. Keys missing from the file
// keep their current values.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config YAML: %w", err)
	}

	return nil
}

// LoadFromEnv loads configuration from environment variables with JEEVES_ prefix
func (c *Config) LoadFromEnv() {
	// MQTT configuration
	if v := os.Getenv("JEEVES_MQTT_BROKER"); v != "" {
		c.MQTTBroker = v
	}
	if v := os.Getenv("JEEVES_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.MQTTPort = port
		}
	}
	if v := os.Getenv("JEEVES_MQTT_USER"); v != "" {
		c.MQTTUser = v
	}
	if v := os.Getenv("JEEVES_MQTT_PASSWORD"); v != "" {
		c.MQTTPassword = v
	}
	if v := os.Getenv("JEEVES_MQTT_CLIENT_ID"); v != "" {
		c.MQTTClientID = v
	}

	// Redis configuration
	if v := os.Getenv("JEEVES_REDIS_HOST"); v != "" {
		c.RedisHost = v
	}
	if v := os.Getenv("JEEVES_REDIS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.RedisPort = port
		}
	}
	if v := os.Getenv("JEEVES_REDIS_PASSWORD"); v != "" {
		c.RedisPassword = v
	}
	if v := os.Getenv("JEEVES_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.RedisDB = db
		}
	}

	// Service configuration
	if v := os.Getenv("JEEVES_SERVICE_NAME"); v != "" {
		c.ServiceName = v
	}
	if v := os.Getenv("JEEVES_HEALTH_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.HealthPort = port
		}
	}
	if v := os.Getenv("JEEVES_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}

	// Site configuration
	if v := os.Getenv("JEEVES_SITE"); v != "" {
		c.Site = v
	}
	if v := os.Getenv("JEEVES_LATITUDE"); v != "" {
		if lat, err := strconv.ParseFloat(v, 64); err == nil {
			c.Latitude = lat
		}
	}
	if v := os.Getenv("JEEVES_LONGITUDE"); v != "" {
		if lon, err := strconv.ParseFloat(v, 64); err == nil {
			c.Longitude = lon
		}
	}
	if v := os.Getenv("JEEVES_TIMEZONE"); v != "" {
		c.Timezone = v
	}

	// Lighting range
	if v := os.Getenv("JEEVES_MIN_KELVIN"); v != "" {
		if k, err := strconv.ParseFloat(v, 64); err == nil {
			c.MinKelvin = k
		}
	}
	if v := os.Getenv("JEEVES_MAX_KELVIN"); v != "" {
		if k, err := strconv.ParseFloat(v, 64); err == nil {
			c.MaxKelvin = k
		}
	}
	if v := os.Getenv("JEEVES_THRESHOLD_ALTITUDE"); v != "" {
		if alt, err := strconv.ParseFloat(v, 64); err == nil {
			c.ThresholdAltitude = alt
		}
	}
	if v := os.Getenv("JEEVES_NIGHT_DIMMING"); v != "" {
		if d, err := strconv.ParseFloat(v, 64); err == nil {
			c.NightDimming = d
		}
	}

	// Publishing
	if v := os.Getenv("JEEVES_PUBLISH_INTERVAL_SEC"); v != "" {
		if interval, err := strconv.Atoi(v); err == nil {
			c.PublishIntervalSec = interval
		}
	}
	if v := os.Getenv("JEEVES_MIN_PUBLISH_INTERVAL_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			c.MinPublishIntervalMs = ms
		}
	}
	if v := os.Getenv("JEEVES_KELVIN_CHANGE_THRESHOLD"); v != "" {
		if k, err := strconv.ParseFloat(v, 64); err == nil {
			c.KelvinChangeThreshold = k
		}
	}
	if v := os.Getenv("JEEVES_LATEST_TTL_MINUTES"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil {
			c.LatestTTLMinutes = minutes
		}
	}

	// HTTP API
	if v := os.Getenv("JEEVES_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.APIPort = port
		}
	}
	if v := os.Getenv("JEEVES_API_RATE_LIMIT"); v != "" {
		if limit, err := strconv.ParseFloat(v, 64); err == nil {
			c.APIRateLimit = limit
		}
	}
	if v := os.Getenv("JEEVES_API_RATE_BURST"); v != "" {
		if burst, err := strconv.Atoi(v); err == nil {
			c.APIRateBurst = burst
		}
	}
	if v := os.Getenv("JEEVES_PROJECTION_HOURS"); v != "" {
		if hours, err := strconv.Atoi(v); err == nil {
			c.ProjectionHours = hours
		}
	}
	if v := os.Getenv("JEEVES_MAX_PROJECTION_HOURS"); v != "" {
		if hours, err := strconv.Atoi(v); err == nil {
			c.MaxProjectionHours = hours
		}
	}
}

// LoadFromFlags parses command-line flags and overrides config values
func (c *Config) LoadFromFlags() {
	// pflag.CommandLine exits on parse errors
	_ = c.LoadFromFlagSet(pflag.CommandLine, os.Args[1:])
}

// LoadFromFlagSet registers flags on fs, parses args and overrides config values
func (c *Config) LoadFromFlagSet(fs *pflag.FlagSet, args []string) error {
	// MQTT flags
	fs.StringVar(&c.MQTTBroker, "mqtt-broker", c.MQTTBroker, "MQTT broker hostname")
	fs.IntVar(&c.MQTTPort, "mqtt-port", c.MQTTPort, "MQTT broker port")
	fs.StringVar(&c.MQTTUser, "mqtt-user", c.MQTTUser, "MQTT username")
	fs.StringVar(&c.MQTTPassword, "mqtt-password", c.MQTTPassword, "MQTT password")
	fs.StringVar(&c.MQTTClientID, "mqtt-client-id", c.MQTTClientID, "MQTT client ID")

	// Redis flags
	fs.StringVar(&c.RedisHost, "redis-host", c.RedisHost, "Redis hostname")
	fs.IntVar(&c.RedisPort, "redis-port", c.RedisPort, "Redis port")
	fs.StringVar(&c.RedisPassword, "redis-password", c.RedisPassword, "Redis password")
	fs.IntVar(&c.RedisDB, "redis-db", c.RedisDB, "Redis database number")

	// Service flags
	fs.StringVar(&c.ServiceName, "service-name", c.ServiceName, "Service name")
	fs.IntVar(&c.HealthPort, "health-port", c.HealthPort, "Health check HTTP port")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (debug, info, warn, error)")

	// Site flags
	fs.StringVar(&c.Site, "site", c.Site, "Site name used in topics and keys")
	fs.Float64Var(&c.Latitude, "latitude", c.Latitude, "Geographic latitude of the site")
	fs.Float64Var(&c.Longitude, "longitude", c.Longitude, "Geographic longitude of the site")
	fs.StringVar(&c.Timezone, "timezone", c.Timezone, "IANA timezone of the site")

	// Lighting flags
	fs.Float64Var(&c.MinKelvin, "min-kelvin", c.MinKelvin, "Warmest colour temperature (K)")
	fs.Float64Var(&c.MaxKelvin, "max-kelvin", c.MaxKelvin, "Coolest colour temperature (K)")
	fs.Float64Var(&c.ThresholdAltitude, "threshold-altitude", c.ThresholdAltitude, "Sun elevation marking sunrise/sunset (degrees)")
	fs.Float64Var(&c.NightDimming, "night-dimming", c.NightDimming, "Dimming fraction used at night (0-1)")

	// Publishing flags
	fs.IntVar(&c.PublishIntervalSec, "publish-interval", c.PublishIntervalSec, "Reading evaluation interval in seconds")
	fs.IntVar(&c.MinPublishIntervalMs, "min-publish-interval-ms", c.MinPublishIntervalMs, "Minimum time between unchanged publishes (ms)")
	fs.Float64Var(&c.KelvinChangeThreshold, "kelvin-change-threshold", c.KelvinChangeThreshold, "Kelvin change that forces a publish")
	fs.IntVar(&c.LatestTTLMinutes, "latest-ttl-minutes", c.LatestTTLMinutes, "TTL of the latest reading in Redis (minutes)")

	// API flags
	fs.IntVar(&c.APIPort, "api-port", c.APIPort, "HTTP API port")
	fs.Float64Var(&c.APIRateLimit, "api-rate-limit", c.APIRateLimit, "HTTP API requests per second")
	fs.IntVar(&c.APIRateBurst, "api-rate-burst", c.APIRateBurst, "HTTP API burst size")
	fs.IntVar(&c.ProjectionHours, "projection-hours", c.ProjectionHours, "Default projection horizon in hours")
	fs.IntVar(&c.MaxProjectionHours, "max-projection-hours", c.MaxProjectionHours, "Maximum projection horizon in hours")

	return fs.Parse(args)
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT broker is required")
	}
	if c.MQTTPort <= 0 || c.MQTTPort > 65535 {
		return fmt.Errorf("MQTT port must be between 1 and 65535")
	}
	if c.RedisHost == "" {
		return fmt.Errorf("Redis host is required")
	}
	if c.RedisPort <= 0 || c.RedisPort > 65535 {
		return fmt.Errorf("Redis port must be between 1 and 65535")
	}
	if c.HealthPort <= 0 || c.HealthPort > 65535 {
		return fmt.Errorf("Health port must be between 1 and 65535")
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("API port must be between 1 and 65535")
	}
	if c.ServiceName == "" {
		return fmt.Errorf("Service name is required")
	}
	if c.Site == "" {
		return fmt.Errorf("Site is required")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	// Validate site; comparisons are written so NaN fails them
	if !(c.Latitude >= -90 && c.Latitude <= 90) {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	if !(c.Longitude >= -180 && c.Longitude <= 180) {
		return fmt.Errorf("longitude must be between -180 and 180")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone: %s", c.Timezone)
	}

	// Validate lighting range
	if !(c.MinKelvin > 0 && c.MaxKelvin > c.MinKelvin) || math.IsInf(c.MaxKelvin, 0) {
		return fmt.Errorf("kelvin range must satisfy 0 < min (%v) < max (%v)", c.MinKelvin, c.MaxKelvin)
	}
	if !(c.ThresholdAltitude >= -90 && c.ThresholdAltitude <= 90) {
		return fmt.Errorf("threshold altitude must be between -90 and 90")
	}
	if !(c.NightDimming >= 0 && c.NightDimming <= 1) {
		return fmt.Errorf("night dimming must be between 0 and 1")
	}

	// Validate intervals
	if c.PublishIntervalSec <= 0 {
		return fmt.Errorf("publish interval must be positive")
	}
	if c.MinPublishIntervalMs < 0 {
		return fmt.Errorf("min publish interval must not be negative")
	}
	if c.LatestTTLMinutes <= 0 {
		return fmt.Errorf("latest TTL must be positive")
	}
	if !(c.APIRateLimit > 0) || c.APIRateBurst <= 0 {
		return fmt.Errorf("API rate limit and burst must be positive")
	}
	if c.ProjectionHours <= 0 || c.MaxProjectionHours < c.ProjectionHours {
		return fmt.Errorf("projection hours must satisfy 0 < default (%d) <= max (%d)", c.ProjectionHours, c.MaxProjectionHours)
	}

	return nil
}

// MQTTAddress returns the full MQTT broker address
func (c *Config) MQTTAddress() string {
	return fmt.Sprintf("tcp://%s:%d", c.MQTTBroker, c.MQTTPort)
}

// RedisAddress returns the full Redis address
func (c *Config) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// Location loads the configured timezone
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// LatestTTL returns the Redis TTL for the latest reading
func (c *Config) LatestTTL() time.Duration {
	return time.Duration(c.LatestTTLMinutes) * time.Minute
}
