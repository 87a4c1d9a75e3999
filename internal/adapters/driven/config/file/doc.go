// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem under ~/.pipewrench.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable system prompts with embedded defaults
//   - PromptWatcher: reloads the PromptStore when prompt files change
//
// LoadEnv and ApplyEnv read API keys and paths from the environment
// (optionally a .env file) and overlay them on loaded settings.
package file
