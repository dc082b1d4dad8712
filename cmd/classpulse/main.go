// File path: cmd/classpulse/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/classpulse/classpulse/internal/api"
	"github.com/classpulse/classpulse/internal/common"
	"github.com/classpulse/classpulse/internal/history"
	"github.com/classpulse/classpulse/internal/llm"
	"github.com/classpulse/classpulse/internal/memory"
	"github.com/classpulse/classpulse/internal/model"
	"github.com/classpulse/classpulse/internal/pipeline"
)

func main() {
	logger := common.Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil {
		logger.Warn("classpulse: .env file not loaded", "error", err)
	} else {
		logger.Info("classpulse: environment loaded from .env")
	}

	addr := flag.String("addr", ":8082", "listen address")
	rosterPath := flag.String("roster", "", "path to a student roster JSON file (required with -once)")
	prefsPath := flag.String("prefs", "", "path to a teacher preferences YAML file")
	historyPath := flag.String("history", "", "path to the SQLite history database")
	memoryPath := flag.String("memory", "", "directory for rendered insight documents")
	providerTimeout := flag.String("provider-timeout", "", "timeout for a single provider call (e.g. 30s)")
	once := flag.Bool("once", false, "run one batch from -roster and exit instead of serving HTTP")
	flag.Parse()

	cfg, err := pipeline.LoadConfig()
	if err != nil {
		logger.Error("classpulse: config load failed", "error", err)
		fmt.Println("config error:", err)
		os.Exit(1)
	}
	if trimmed := strings.TrimSpace(*historyPath); trimmed != "" {
		cfg.HistoryPath = trimmed
	}
	if trimmed := strings.TrimSpace(*memoryPath); trimmed != "" {
		cfg.MemoryPath = trimmed
	}
	if trimmed := strings.TrimSpace(*providerTimeout); trimmed != "" {
		dur, err := time.ParseDuration(trimmed)
		if err != nil {
			logger.Error("classpulse: invalid provider timeout", "value", trimmed, "error", err)
			fmt.Println("provider timeout error:", err)
			os.Exit(1)
		}
		cfg.ProviderTimeout = dur
	}

	logger.Info("classpulse: startup initiated", "history", cfg.HistoryPath, "memory", cfg.MemoryPath)

	historyStore, err := history.Open(cfg.HistoryPath)
	if err != nil {
		logger.Error("classpulse: history store unavailable", "error", err)
		fmt.Println("history store error:", err)
		os.Exit(1)
	}
	defer historyStore.Close()

	memoryStore, err := memory.NewStore(cfg.MemoryPath)
	if err != nil {
		logger.Error("classpulse: memory store unavailable", "error", err)
		fmt.Println("memory store error:", err)
		os.Exit(1)
	}

	prefs, err := model.LoadPreferences(*prefsPath)
	if err != nil {
		logger.Error("classpulse: preferences load failed", "error", err)
		fmt.Println("preferences error:", err)
		os.Exit(1)
	}

	provider := llm.NewProvider()
	logger.Info("classpulse: provider ready", "provider", provider.Name())

	runner := pipeline.NewRunner(cfg, provider, historyStore, memoryStore)

	if *once {
		if err := runOnce(ctx, runner, *rosterPath, prefs); err != nil {
			logger.Error("classpulse: one-shot run failed", "error", err)
			fmt.Println("run error:", err)
			os.Exit(1)
		}
		return
	}

	server, err := api.NewServer(runner, historyStore, memoryStore, provider.Name())
	if err != nil {
		logger.Error("classpulse: server construction failed", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}

	logger.Info("classpulse: server listening", "addr", *addr, "health", "/healthz")
	fmt.Printf("Serving on %s\n", *addr)
	if err := http.ListenAndServe(*addr, server); err != nil {
		logger.Error("classpulse: server stopped", "error", err)
		fmt.Println("server stopped:", err)
	}
}
