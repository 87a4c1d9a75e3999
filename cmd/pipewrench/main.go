// Command pipewrench indexes organisational knowledge and answers questions
// about it from the command line, a terminal UI or an MCP client.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/pipewrench/internal/adapters/driven/ai"
	"github.com/custodia-labs/pipewrench/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pipewrench/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pipewrench/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/pipewrench/internal/adapters/driving/cli"
	"github.com/custodia-labs/pipewrench/internal/core/domain"
	"github.com/custodia-labs/pipewrench/internal/core/ports/driven"
	"github.com/custodia-labs/pipewrench/internal/core/services"
	"github.com/custodia-labs/pipewrench/internal/logger"
	"github.com/custodia-labs/pipewrench/internal/postprocessors/chunker"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := file.LoadEnv(); err != nil {
		logger.Warn("loading .env: %v", err)
	}

	configDir, err := configDirectory()
	if err != nil {
		return err
	}

	configStore, err := openConfig(configDir)
	if err != nil {
		return err
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	file.ApplyEnv(settings)

	dataDir := settings.Storage.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(configDir, "data")
	}

	cli.SetVersion(version)

	sourceStore, sessionStore, closeStores, err := openStores(settings.Storage.Backend, dataDir)
	if err != nil {
		return err
	}
	defer closeStores()

	aiResult, err := ai.Initialise(settings)
	if err != nil {
		// Settings commands must keep working so the user can fix the cause.
		cli.Configure(cli.Services{Settings: settingsService, Err: err})
		return cli.Execute(ctx)
	}
	defer aiResult.Close()

	chunkProcessor, err := chunker.FromSettings(settings.Chunker)
	if err != nil {
		return err
	}

	retriever := services.NewRetrieverService(aiResult.EmbeddingService, aiResult.VectorIndex, sourceStore, chunkProcessor)
	retriever.SetEmbedTimeout(settings.Chat.EmbedTimeout)

	sessions := services.NewSessionService(sessionStore)
	chat := services.NewChatService(retriever, sessions, aiResult.LLMService, settings.Chat)

	promptDir := filepath.Join(dataDir, "prompts")
	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		return fmt.Errorf("opening prompts: %w", err)
	}
	chat.SetPromptStore(prompts)
	watchPrompts(ctx, prompts, promptDir)

	svc := cli.Services{
		Retriever: retriever,
		Chat:      chat,
		Sessions:  sessions,
		Settings:  settingsService,
		Warnings:  aiResult.Warnings,
	}
	if settings.VectorIndex.Backend == domain.VectorBackendMemory {
		svc.WarmIndex = func(ctx context.Context) { warmIndex(ctx, retriever) }
	}
	cli.Configure(svc)
	return cli.Execute(ctx)
}

func configDirectory() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".pipewrench"), nil
}

// openConfig falls back to process-lifetime settings when the config
// directory cannot be written, so read-only homes can still run queries.
// A malformed file is still an error.
func openConfig(dir string) (driven.ConfigStore, error) {
	store, err := file.NewConfigStore(dir)
	switch {
	case err == nil:
		return store, nil
	case errors.Is(err, fs.ErrPermission):
		logger.Warn("config directory %s is not writable; settings will not be saved", dir)
		return memory.NewConfigStore(), nil
	default:
		return nil, fmt.Errorf("opening config: %w", err)
	}
}

// openStores returns the source catalogue and session store for the
// configured backend, plus a func releasing them.
func openStores(
	backend domain.StorageBackend, dataDir string,
) (driven.SourceStore, driven.SessionStore, func(), error) {
	switch backend {
	case domain.StorageBackendMemory:
		return memory.NewSourceStore(), memory.NewSessionStore(), func() {}, nil
	case domain.StorageBackendSQLite, "":
		store, err := sqlite.NewStore(dataDir)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("opening database: %w", err)
		}
		return store.SourceStore(), store.SessionStore(), func() { store.Close() }, nil
	default:
		return nil, nil, nil, fmt.Errorf("%w: unknown storage backend %q", domain.ErrConfiguration, backend)
	}
}

// warmIndex rebuilds the in-memory vector index from the source catalogue,
// which is the only persistent copy of indexed content for that backend.
func warmIndex(ctx context.Context, retriever *services.RetrieverService) {
	report, err := retriever.ReindexAll(ctx)
	if err != nil {
		logger.Warn("rebuilding in-memory index: %v", err)
		return
	}
	if len(report.Failed) > 0 {
		logger.Warn("rebuilding in-memory index: %d sources failed", len(report.Failed))
	}
	logger.Debug("in-memory index holds %d chunks from %d sources", report.Chunks, report.Sources)
}

// watchPrompts reloads prompt templates when they are edited on disk.
// A watcher that cannot start only costs hot reload.
func watchPrompts(ctx context.Context, store driven.PromptStore, dir string) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		logger.Debug("prompt directory unavailable: %v", err)
		return
	}

	watcher, err := file.NewPromptWatcher(store, dir)
	if err != nil {
		logger.Debug("prompt watcher disabled: %v", err)
		return
	}
	watcher.OnReload = func(name string) {
		logger.Debug("reloaded prompt %s", name)
	}

	go func() {
		defer watcher.Close()
		watcher.Run(ctx)
	}()
}
