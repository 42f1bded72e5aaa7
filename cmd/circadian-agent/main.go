package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saaga0h/jeeves-circadian/internal/circadian"
	"github.com/saaga0h/jeeves-circadian/pkg/config"
	"github.com/saaga0h/jeeves-circadian/pkg/health"
	"github.com/saaga0h/jeeves-circadian/pkg/mqtt"
	"github.com/saaga0h/jeeves-circadian/pkg/redis"
)

func main() {
	// Load configuration with hierarchy: defaults → file → env → flags
	cfg := config.NewConfig()
	if path := os.Getenv("JEEVES_CONFIG_FILE"); path != "" {
		if err := cfg.LoadFromFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.LoadFromEnv()
	cfg.LoadFromFlags()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	logger.Info("Starting J.E.E.V.E.S. Circadian Agent",
		"service_name", cfg.ServiceName,
		"site", cfg.Site,
		"timezone", cfg.Timezone,
		"mqtt_broker", cfg.MQTTAddress(),
		"redis_host", cfg.RedisAddress(),
		"log_level", cfg.LogLevel)

	settings, err := circadian.SettingsFromConfig(cfg)
	if err != nil {
		logger.Error("Invalid lighting settings", "error", err)
		os.Exit(1)
	}
	calc := circadian.NewCalculator(settings)
	clock := circadian.NewTimeManager(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	mqttClient := mqtt.NewClient(cfg, logger)
	redisClient := redis.NewClient(cfg, logger)

	agent, err := circadian.NewAgent(mqttClient, redisClient, calc, clock, cfg, logger)
	if err != nil {
		logger.Error("Failed to create agent", "error", err)
		os.Exit(1)
	}

	healthChecker := health.NewChecker(mqttClient, redisClient, agent, logger)
	healthServer := startServer("health", cfg.HealthPort, healthMux(healthChecker), logger)

	api := circadian.NewAPI(calc, redisClient, clock, cfg, logger)
	apiServer := startServer("api", cfg.APIPort, api.Handler(), logger)

	agentErr := make(chan error, 1)
	go func() {
		if err := agent.Start(ctx); err != nil {
			logger.Error("Agent error", "error", err)
			agentErr <- err
		}
	}()

	select {
	case <-sigChan:
		logger.Info("Shutdown signal received (SIGTERM/SIGINT)")
	case err := <-agentErr:
		logger.Error("Agent failed", "error", err)
	}

	logger.Info("Initiating graceful shutdown")
	cancel()

	if err := agent.Stop(); err != nil {
		logger.Error("Error stopping agent", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	for name, server := range map[string]*http.Server{"health": healthServer, "api": apiServer} {
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down server", "server", name, "error", err)
		}
	}

	logger.Info("Circadian agent shutdown complete")
}

func healthMux(checker *health.Checker) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", checker.HandlerFunc())
	mux.HandleFunc("/health/detailed", checker.DetailedHandlerFunc())
	return mux
}

func startServer(name string, port int, handler http.Handler, logger *slog.Logger) *http.Server {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", "server", name, "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "server", name, "error", err)
		}
	}()

	return server
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
