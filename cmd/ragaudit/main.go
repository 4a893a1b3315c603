// Command ragaudit is the terminal control panel for the document
// processing pipeline.
package main

import (
	"fmt"
	"os"

	"github.com/zhouliangjun/rag-project03-audit/internal/adapters/driven/backend"
	configfile "github.com/zhouliangjun/rag-project03-audit/internal/adapters/driven/config/file"
	"github.com/zhouliangjun/rag-project03-audit/internal/adapters/driven/storage/sqlite"
	"github.com/zhouliangjun/rag-project03-audit/internal/adapters/driving/cli"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/domain"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/services"
	"github.com/zhouliangjun/rag-project03-audit/internal/logger"
)

// version is injected at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("failed to open config: %w", err)
	}
	defer configStore.Close()

	settings := configStore.Settings()

	client, err := backend.NewClient(backend.Config{
		BaseURL:           settings.BaseURL,
		ListTimeout:       settings.ListTimeout,
		RequestsPerSecond: settings.RequestsPerSecond,
		Bands:             settings.Bands,
	})
	if err != nil {
		return fmt.Errorf("failed to create backend client: %w", err)
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	defer store.Close()

	registry := services.NewArtifactRegistry(client, client)
	gate := services.NewStageGate(settings.Limits)
	pipeline := services.NewPipelineOrchestrator(client, registry, gate)
	scorer := services.NewEvaluationScorer(client, settings.Bands)
	history := services.NewRunHistory(store)

	// Pick up external config edits while the TUI is running.
	if err := configStore.Watch(func(s domain.Settings) {
		logger.Info("config reloaded: environment=%s base_url=%s", s.Environment, s.BaseURL)
	}); err != nil {
		logger.Warn("config watcher unavailable: %v", err)
	}

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Registry:   registry,
		Pipeline:   pipeline,
		Evaluation: scorer,
		History:    history,
		Backend:    client,
	})

	return cli.Execute()
}
