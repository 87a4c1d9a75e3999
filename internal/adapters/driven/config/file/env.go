package file

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
)

// Environment variables overlaid on file configuration.
const (
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvPineconeAPIKey  = "PINECONE_API_KEY"
	EnvPineconeHost    = "PINECONE_HOST"
	EnvDataDir         = "PIPEWRENCH_DATA_DIR"
)

// LoadEnv loads variables from the given .env files into the process
// environment. Variables already set are not overridden. Missing files are
// ignored; with no arguments ./.env is tried.
func LoadEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, name := range filenames {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// ApplyEnv overlays environment variables on settings. Set, non-empty
// variables take precedence over values from the config file. API keys
// are only applied to the roles using the matching provider.
func ApplyEnv(settings *domain.AppSettings) {
	applyEnvWith(settings, os.Getenv)
}

func applyEnvWith(settings *domain.AppSettings, getenv func(string) string) {
	if key := getenv(EnvOpenAIAPIKey); key != "" {
		if settings.Embedding.Provider == domain.AIProviderOpenAI {
			settings.Embedding.APIKey = key
		}
		if settings.LLM.Provider == domain.AIProviderOpenAI {
			settings.LLM.APIKey = key
		}
	}
	if key := getenv(EnvAnthropicAPIKey); key != "" && settings.LLM.Provider == domain.AIProviderAnthropic {
		settings.LLM.APIKey = key
	}
	if key := getenv(EnvPineconeAPIKey); key != "" {
		settings.VectorIndex.APIKey = key
	}
	if host := getenv(EnvPineconeHost); host != "" {
		settings.VectorIndex.Host = host
	}
	if dir := getenv(EnvDataDir); dir != "" {
		settings.Storage.DataDir = dir
	}
}
