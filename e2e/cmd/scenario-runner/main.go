package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/saaga0h/jeeves-circadian/e2e/internal/executor"
	"github.com/saaga0h/jeeves-circadian/e2e/internal/reporter"
	"github.com/saaga0h/jeeves-circadian/e2e/internal/scenario"
	"github.com/saaga0h/jeeves-circadian/pkg/config"
	"github.com/saaga0h/jeeves-circadian/pkg/mqtt"
	"github.com/saaga0h/jeeves-circadian/pkg/redis"
)

func main() {
	cfg := config.NewConfig()
	cfg.ServiceName = "circadian-scenario-runner"
	cfg.LoadFromEnv()

	fs := pflag.NewFlagSet("scenario-runner", pflag.ExitOnError)
	scenarioPath := fs.String("scenario", "", "Path to YAML scenario file (required)")
	outputDir := fs.String("output-dir", "./test-output", "Output directory for test artifacts")
	skipRedis := fs.Bool("skip-redis", false, "Run without Redis; steps with Redis checks fail")
	_ = cfg.LoadFromFlagSet(fs, os.Args[1:])

	if *scenarioPath == "" {
		fmt.Fprintf(os.Stderr, "Error: --scenario is required\n")
		fs.Usage()
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	logger.Info("Loading scenario", "path", *scenarioPath)
	scen, err := scenario.LoadScenario(*scenarioPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load scenario: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	mqttClient := mqtt.NewClient(cfg, logger)
	if err := mqttClient.Connect(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to MQTT: %v\n", err)
		os.Exit(1)
	}
	defer mqttClient.Disconnect()

	var redisClient redis.Client
	if !*skipRedis {
		redisClient = redis.NewClient(cfg, logger)
		if err := redisClient.Ping(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to connect to Redis: %v\n", err)
			os.Exit(1)
		}
		defer redisClient.Close()
	}

	runner := executor.NewRunner(mqttClient, redisClient, logger)
	result, err := runner.Run(ctx, scen)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Test execution failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Print(reporter.FormatSummary(result))

	scenarioName := strings.TrimSuffix(filepath.Base(*scenarioPath), filepath.Ext(*scenarioPath))
	summaryPath := filepath.Join(*outputDir, "summaries", scenarioName+".json")
	if err := reporter.SaveSummary(result, summaryPath); err != nil {
		logger.Warn("Failed to save summary", "error", err)
	} else {
		logger.Info("Summary saved", "path", summaryPath)
	}

	if !result.Passed {
		os.Exit(1)
	}
}
