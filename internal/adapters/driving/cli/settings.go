package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
)

var errNoSettingsService = errors.New("settings service not configured")

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, the vector index and other options.

Each provider subcommand asks interactively, or takes its answers as flags.
API keys can also be supplied through OPENAI_API_KEY, ANTHROPIC_API_KEY and
PINECONE_API_KEY, which take precedence over the config file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Configure embeddings, the LLM and the vector index in turn",
	RunE:  runSettingsWizard,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:     "embedding",
	Short:   "Configure the embedding provider",
	Example: "  pipewrench settings embedding --provider ollama --model nomic-embed-text",
	RunE:    runProviderStep(embeddingStep, &embeddingFlags),
}

var settingsLLMCmd = &cobra.Command{
	Use:     "llm",
	Short:   "Configure the LLM that writes chat answers",
	Example: "  pipewrench settings llm --provider openai --model gpt-4o-mini --api-key $KEY",
	RunE:    runProviderStep(llmStep, &llmFlags),
}

var settingsVectorCmd = &cobra.Command{
	Use:   "vector",
	Short: "Configure the vector index backend",
	Long: `Configure where chunk embeddings are stored.

Available backends:
  memory   - In-process index, rebuilt from the source catalogue at start
  pinecone - Managed Pinecone index (requires index host and API key)`,
	RunE: runSettingsVector,
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore every setting to its default",
	RunE:  runSettingsReset,
}

// providerFlags answer a provider step without prompting.
type providerFlags struct {
	provider string
	model    string
	apiKey   string
}

var (
	embeddingFlags providerFlags
	llmFlags       providerFlags

	vectorBackend string
	vectorHost    string
	vectorAPIKey  string

	resetYes bool
)

func init() {
	for _, c := range []struct {
		cmd   *cobra.Command
		flags *providerFlags
	}{{settingsEmbeddingCmd, &embeddingFlags}, {settingsLLMCmd, &llmFlags}} {
		c.cmd.Flags().StringVar(&c.flags.provider, "provider", "", "provider name; skips the prompts")
		c.cmd.Flags().StringVar(&c.flags.model, "model", "", "model name (default: the provider's default)")
		c.cmd.Flags().StringVar(&c.flags.apiKey, "api-key", "", "API key for hosted providers")
	}
	settingsVectorCmd.Flags().StringVar(&vectorBackend, "backend", "", "memory or pinecone; skips the prompts")
	settingsVectorCmd.Flags().StringVar(&vectorHost, "host", "", "Pinecone index host")
	settingsVectorCmd.Flags().StringVar(&vectorAPIKey, "api-key", "", "Pinecone API key")
	settingsResetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "do not ask for confirmation")

	settingsCmd.AddCommand(settingsShowCmd, settingsWizardCmd, settingsEmbeddingCmd,
		settingsLLMCmd, settingsVectorCmd, settingsResetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettingsService
	}
	s, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	emb := section{title: "Embedding"}
	emb.add("Provider", s.Embedding.Provider.Description())
	emb.add("Model", s.Embedding.Model)
	emb.providerDetails(s.Embedding.Provider, s.Embedding.BaseURL, s.Embedding.APIKey)
	emb.add("Status", configuredStatus(s.Embedding.IsConfigured()))

	llm := section{title: "LLM"}
	llm.add("Provider", s.LLM.Provider.Description())
	llm.add("Model", s.LLM.Model)
	llm.providerDetails(s.LLM.Provider, s.LLM.BaseURL, s.LLM.APIKey)
	llm.add("Status", configuredStatus(s.LLM.IsConfigured()))

	vec := section{title: "Vector Index"}
	vec.add("Backend", s.VectorIndex.Backend.Description())
	if s.VectorIndex.Backend == domain.VectorBackendPinecone {
		vec.add("Host", s.VectorIndex.Host)
		vec.add("API Key", displayAPIKey(s.VectorIndex.APIKey))
		vec.addIf(s.VectorIndex.Namespace != "", "Namespace", s.VectorIndex.Namespace)
	}
	vec.add("Dimensions", strconv.Itoa(s.VectorIndex.Dimensions))

	chat := section{title: "Chat"}
	chat.add("Chunk size", fmt.Sprintf("%d words (overlap %d)", s.Chunker.Size, s.Chunker.Overlap))
	chat.add("Top-k", strconv.Itoa(s.Chat.TopK))
	chat.add("History", fmt.Sprintf("%d messages", s.Chat.HistoryLimit))
	chat.add("Max tokens", strconv.Itoa(s.Chat.MaxTokens))
	chat.add("Strict retrieval", strconv.FormatBool(s.Chat.StrictRetrieval))

	store := section{title: "Storage"}
	store.add("Backend", string(s.Storage.Backend))
	store.addIf(s.Storage.DataDir != "", "Data dir", s.Storage.DataDir)

	for _, sec := range []section{emb, llm, vec, chat, store} {
		sec.print(cmd)
	}

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'pipewrench settings wizard' to fix configuration issues.")
		return nil
	}
	cmd.Println("Configuration is valid.")
	return nil
}

// section is one bracketed block of "Key: value" lines.
type section struct {
	title string
	rows  [][2]string
}

func (s *section) add(key, value string) {
	s.rows = append(s.rows, [2]string{key, value})
}

func (s *section) addIf(ok bool, key, value string) {
	if ok {
		s.add(key, value)
	}
}

func (s *section) providerDetails(p domain.AIProvider, baseURL, apiKey string) {
	s.addIf(p == domain.AIProviderOllama, "Base URL", baseURL)
	s.addIf(p.RequiresAPIKey(), "API Key", displayAPIKey(apiKey))
}

func (s *section) print(cmd *cobra.Command) {
	cmd.Printf("[%s]\n", s.title)
	for _, row := range s.rows {
		cmd.Printf("  %s: %s\n", row[0], row[1])
	}
	cmd.Println()
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettingsService
	}
	cmd.Println("Pipewrench Settings Wizard")
	cmd.Println("==========================")
	cmd.Println()

	p := newPrompter(cmd)
	steps := []struct {
		title string
		run   func() error
	}{
		{"Configure Embedding Provider", func() error { return embeddingStep().run(p, providerFlags{}) }},
		{"Configure LLM Provider", func() error { return llmStep().run(p, providerFlags{}) }},
		{"Configure Vector Index", func() error { return configureVector(p) }},
	}
	for i, step := range steps {
		heading := fmt.Sprintf("Step %d: %s", i+1, step.title)
		cmd.Println(heading)
		cmd.Println(strings.Repeat("-", len(heading)))
		if err := step.run(); err != nil {
			return err
		}
	}

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}
	return nil
}

// providerStep is the shared flow for choosing an embedding or LLM provider.
type providerStep struct {
	label     string
	providers []domain.AIProvider
	defaults  map[domain.AIProvider]string
	set       func(domain.AIProvider, string, string) error
	validate  func() error
}

func embeddingStep() providerStep {
	return providerStep{
		label:     "Embedding",
		providers: domain.AllEmbeddingProviders(),
		defaults:  domain.DefaultEmbeddingModels(),
		set:       settingsService.SetEmbeddingProvider,
		validate:  settingsService.ValidateEmbeddingConfig,
	}
}

func llmStep() providerStep {
	return providerStep{
		label:     "LLM",
		providers: domain.AllLLMProviders(),
		defaults:  domain.DefaultLLMModels(),
		set:       settingsService.SetLLMProvider,
		validate:  settingsService.ValidateLLMConfig,
	}
}

func runProviderStep(step func() providerStep, flags *providerFlags) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		if settingsService == nil {
			return errNoSettingsService
		}
		return step().run(newPrompter(cmd), *flags)
	}
}

// run prompts for whatever flags did not answer, saves, then pings.
func (s providerStep) run(p *prompter, flags providerFlags) error {
	var provider domain.AIProvider
	if flags.provider != "" {
		provider = domain.AIProvider(strings.ToLower(flags.provider))
		if !slices.Contains(s.providers, provider) {
			return fmt.Errorf("unknown %s provider %q (choose from %s)", s.label, flags.provider, joinNames(s.providers))
		}
	} else {
		names := make([]string, len(s.providers))
		for i, prov := range s.providers {
			names[i] = prov.Description()
		}
		provider = s.providers[p.choose("Select "+s.label+" Provider", names)]
	}

	model := flags.model
	if model == "" && flags.provider == "" {
		model = p.ask("Enter model name", s.defaults[provider])
	}
	if model == "" {
		model = s.defaults[provider]
	}

	apiKey := flags.apiKey
	if provider.RequiresAPIKey() {
		if apiKey == "" && flags.provider == "" {
			apiKey = p.secret("Enter API key")
		}
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := s.set(provider, model, apiKey); err != nil {
		return fmt.Errorf("saving %s provider: %w", s.label, err)
	}
	if err := p.validated(s.validate); err != nil {
		return fmt.Errorf("%s configuration validation failed: %w", s.label, err)
	}
	p.cmd.Printf("%s provider configured: %s (%s)\n\n", s.label, provider.Description(), model)
	return nil
}

func runSettingsVector(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettingsService
	}
	return configureVector(newPrompter(cmd))
}

func configureVector(p *prompter) error {
	backends := domain.AllVectorBackends()
	var backend domain.VectorBackend
	interactive := vectorBackend == ""
	if interactive {
		names := make([]string, len(backends))
		for i, b := range backends {
			names[i] = b.Description()
		}
		backend = backends[p.choose("Select Vector Index Backend", names)]
	} else {
		backend = domain.VectorBackend(strings.ToLower(vectorBackend))
		if !slices.Contains(backends, backend) {
			return fmt.Errorf("unknown vector backend %q (choose from %s)", vectorBackend, joinNames(backends))
		}
	}

	host, apiKey := vectorHost, vectorAPIKey
	if backend == domain.VectorBackendPinecone {
		if host == "" && interactive {
			host = p.ask("Enter index host (https://<index>.svc.<env>.pinecone.io)", "")
		}
		if host == "" {
			return errors.New("index host is required for Pinecone")
		}
		if apiKey == "" && interactive {
			apiKey = p.secret("Enter API key")
		}
		if apiKey == "" {
			return errors.New("API key is required for Pinecone")
		}
	}

	if err := settingsService.SetVectorBackend(backend, host, apiKey); err != nil {
		return fmt.Errorf("saving vector index: %w", err)
	}
	if err := p.validated(settingsService.ValidateVectorIndexConfig); err != nil {
		return fmt.Errorf("vector index configuration validation failed: %w", err)
	}
	p.cmd.Printf("Vector index configured: %s\n\n", backend.Description())
	return nil
}

func runSettingsReset(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettingsService
	}
	if !resetYes {
		answer := newPrompter(cmd).ask("Reset all settings to their defaults? [y/N]", "")
		if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
			cmd.Println("Settings unchanged.")
			return nil
		}
	}
	defaults := settingsService.GetDefaults()
	if err := settingsService.Save(&defaults); err != nil {
		return fmt.Errorf("resetting settings: %w", err)
	}
	cmd.Println("Settings reset to defaults.")
	return nil
}

// prompter reads answers from the command's input, one line each.
type prompter struct {
	cmd *cobra.Command
	in  *bufio.Reader
}

func newPrompter(cmd *cobra.Command) *prompter {
	return &prompter{cmd: cmd, in: bufio.NewReader(cmd.InOrStdin())}
}

func (p *prompter) line() string {
	s, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return ""
	}
	return strings.TrimSpace(s)
}

// choose lists options and returns the picked index; the first is the default.
func (p *prompter) choose(title string, options []string) int {
	p.cmd.Println(title)
	for i, opt := range options {
		p.cmd.Printf("  %d. %s\n", i+1, opt)
	}
	p.cmd.Print("\nEnter choice [1]: ")
	return parseChoice(p.line(), len(options), 1) - 1
}

func (p *prompter) ask(label, def string) string {
	if def != "" {
		p.cmd.Printf("%s [%s]: ", label, def)
	} else {
		p.cmd.Printf("%s: ", label)
	}
	if answer := p.line(); answer != "" {
		return answer
	}
	return def
}

// secret reads without echo when input is a terminal.
func (p *prompter) secret(label string) string {
	p.cmd.Printf("%s: ", label)
	defer p.cmd.Println()
	if f, ok := p.cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if b, err := term.ReadPassword(int(f.Fd())); err == nil {
			return strings.TrimSpace(string(b))
		}
	}
	return p.line()
}

func (p *prompter) validated(probe func() error) error {
	p.cmd.Print("Validating configuration... ")
	if err := probe(); err != nil {
		p.cmd.Printf("FAILED: %v\n", err)
		return err
	}
	p.cmd.Println("OK")
	return nil
}

func parseChoice(input string, maxVal, defaultVal int) int {
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

func joinNames[T ~string](values []T) string {
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = string(v)
	}
	return strings.Join(names, ", ")
}

func displayAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
