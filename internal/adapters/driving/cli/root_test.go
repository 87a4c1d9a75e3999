package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
	"github.com/custodia-labs/pipewrench/internal/core/ports/driving"
)

// MockRetrieverService implements driving.RetrieverService for CLI tests.
type MockRetrieverService struct {
	Sources       []domain.Source
	Results       []domain.SearchResult
	Report        *driving.ReindexReport
	Err           error
	Indexed       []domain.Source
	Reindexed     []domain.Source
	Removed       []string
	LastQuery     string
	LastOptions   domain.SearchOptions
	ReindexedAll  bool
	ChunksPerCall int
}

func (m *MockRetrieverService) IndexSource(_ context.Context, source domain.Source) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.Indexed = append(m.Indexed, source)
	return m.ChunksPerCall, nil
}

func (m *MockRetrieverService) ReindexSource(_ context.Context, source domain.Source) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.Reindexed = append(m.Reindexed, source)
	return m.ChunksPerCall, nil
}

func (m *MockRetrieverService) ReindexAll(_ context.Context) (*driving.ReindexReport, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.ReindexedAll = true
	if m.Report != nil {
		return m.Report, nil
	}
	return &driving.ReindexReport{Sources: len(m.Sources)}, nil
}

func (m *MockRetrieverService) IndexFile(_ context.Context, fileID, filename, content string) (int, error) {
	return m.IndexSource(context.Background(), domain.Source{
		Kind:    domain.SourceKindFlatFile,
		ID:      fileID,
		Title:   filename,
		Content: content,
	})
}

func (m *MockRetrieverService) RemoveSource(_ context.Context, kind domain.SourceKind, id string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Removed = append(m.Removed, domain.SourceKey(kind, id))
	return nil
}

func (m *MockRetrieverService) Search(
	_ context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.LastQuery = query
	m.LastOptions = opts
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Results, nil
}

func (m *MockRetrieverService) ListSources(_ context.Context) ([]domain.Source, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Sources, nil
}

// MockChatService implements driving.ChatService for CLI tests.
type MockChatService struct {
	Requests []domain.ChatRequest
	Response *domain.ChatResponse
	Err      error
}

func (m *MockChatService) Chat(_ context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Response != nil {
		resp := *m.Response
		if req.SessionID != "" {
			resp.SessionID = req.SessionID
		}
		return &resp, nil
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = "session-1"
	}
	return &domain.ChatResponse{Answer: "answer to " + req.Message, SessionID: sessionID}, nil
}

// MockSessionService implements driving.SessionService for CLI tests.
type MockSessionService struct {
	Sessions   []domain.ChatSession
	Messages   []domain.ChatMessage
	Err        error
	LastUserID string
}

func (m *MockSessionService) GetOrCreateSession(_ context.Context, sessionID, userID string) (string, error) {
	m.LastUserID = userID
	if m.Err != nil {
		return "", m.Err
	}
	if sessionID == "" {
		return "session-new", nil
	}
	return sessionID, nil
}

func (m *MockSessionService) ListSessions(_ context.Context, userID string) ([]domain.ChatSession, error) {
	m.LastUserID = userID
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Sessions, nil
}

func (m *MockSessionService) Transcript(_ context.Context, _, userID string) ([]domain.ChatMessage, error) {
	m.LastUserID = userID
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Messages, nil
}

// MockSettingsService implements driving.SettingsService for CLI tests.
type MockSettingsService struct {
	Settings    domain.AppSettings
	ValidateErr error
	ProbeErr    error

	EmbeddingSet bool
	LLMSet       bool
	VectorSet    bool
	VectorHost   string
	VectorKey    string
}

func NewMockSettingsService() *MockSettingsService {
	return &MockSettingsService{Settings: domain.DefaultAppSettings()}
}

func (m *MockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.Settings
	return &s, nil
}

func (m *MockSettingsService) Save(settings *domain.AppSettings) error {
	m.Settings = *settings
	return nil
}

func (m *MockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.EmbeddingSet = true
	m.Settings.Embedding.Provider = provider
	m.Settings.Embedding.Model = model
	m.Settings.Embedding.APIKey = apiKey
	return nil
}

func (m *MockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.LLMSet = true
	m.Settings.LLM.Provider = provider
	m.Settings.LLM.Model = model
	m.Settings.LLM.APIKey = apiKey
	return nil
}

func (m *MockSettingsService) SetVectorBackend(backend domain.VectorBackend, host, apiKey string) error {
	m.VectorSet = true
	m.VectorHost = host
	m.VectorKey = apiKey
	m.Settings.VectorIndex.Backend = backend
	m.Settings.VectorIndex.Host = host
	m.Settings.VectorIndex.APIKey = apiKey
	return nil
}

func (m *MockSettingsService) Validate() error { return m.ValidateErr }

func (m *MockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *MockSettingsService) ValidateEmbeddingConfig() error { return m.ProbeErr }

func (m *MockSettingsService) ValidateLLMConfig() error { return m.ProbeErr }

func (m *MockSettingsService) ValidateVectorIndexConfig() error { return m.ProbeErr }

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	Retriever *MockRetrieverService
	Chat      *MockChatService
	Sessions  *MockSessionService
	Settings  *MockSettingsService
}

var mocks testServices

// setupTestServices installs fresh mocks and returns a cleanup func that
// restores the previous services and resets every flag.
func setupTestServices() func() {
	prev := Services{
		Retriever: retrieverService,
		Chat:      chatService,
		Sessions:  sessionService,
		Settings:  settingsService,
		Err:       servicesErr,
		Warnings:  startupWarnings,
		WarmIndex: warmIndex,
	}

	mocks = testServices{
		Retriever: &MockRetrieverService{
			ChunksPerCall: 3,
			Results: []domain.SearchResult{
				{RecordID: "doc_1_chunk_0", Score: 0.91, Content: "Restart the ingest worker first.", Source: "Runbook (Chunk 1)"},
			},
		},
		Chat:     &MockChatService{},
		Sessions: &MockSessionService{},
		Settings: NewMockSettingsService(),
	}
	Configure(Services{
		Retriever: mocks.Retriever,
		Chat:      mocks.Chat,
		Sessions:  mocks.Sessions,
		Settings:  mocks.Settings,
	})

	return func() {
		Configure(prev)
		resetFlags(rootCmd)
	}
}

// resetFlags restores every flag to its default so state does not leak
// between executions of the shared root command.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlags(rootCmd)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "pipewrench", rootCmd.Use)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestRootCmd_HasPersistentFlags(t *testing.T) {
	verboseFlag := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)

	userFlag := rootCmd.PersistentFlags().Lookup("user")
	require.NotNil(t, userFlag)
	assert.Equal(t, "local", userFlag.DefValue)
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{
		"index", "search", "chat", "sessions", "history", "sources",
		"reindex", "settings", "mcp", "tui", "version",
	} {
		assert.True(t, names[want], "missing command %q", want)
	}
}

func TestConfigure(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	assert.Same(t, mocks.Retriever, retrieverService)
	assert.Same(t, mocks.Chat, chatService)
	assert.Same(t, mocks.Sessions, sessionService)
	assert.Same(t, mocks.Settings, settingsService)
	assert.NoError(t, servicesErr)
}

func TestSetVersion(t *testing.T) {
	original := version
	defer func() { version = original }()

	SetVersion("1.2.3")
	assert.Equal(t, "1.2.3", version)

	SetVersion("")
	assert.Equal(t, "1.2.3", version, "empty version keeps the current one")
}

func TestUnavailable(t *testing.T) {
	prev := servicesErr
	defer func() { servicesErr = prev }()

	servicesErr = nil
	assert.EqualError(t, unavailable("retriever"), "retriever not configured")

	cause := errors.New("embedding provider unreachable")
	servicesErr = cause
	assert.ErrorIs(t, unavailable("retriever"), cause)
}

func TestCommands_ReportMissingServices(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	cause := errors.New("ollama is not running")
	Configure(Services{Settings: mocks.Settings, Err: cause})

	tests := [][]string{
		{"search", "query"},
		{"chat", "hello"},
		{"sources"},
		{"reindex"},
		{"index", "--id", "1", "--file", "-"},
	}

	for _, args := range tests {
		t.Run(args[0], func(t *testing.T) {
			_, err := execute(t, "", args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, cause)
		})
	}
}

func TestOutput_Truncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{name: "short", in: "abc", n: 10, want: "abc"},
		{name: "exact", in: "abcdef", n: 6, want: "abcdef"},
		{name: "long", in: "abcdefghij", n: 6, want: "abc..."},
		{name: "multibyte", in: "ééééééé", n: 5, want: "éé..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncate(tt.in, tt.n))
		})
	}
}

func TestOutput_PrintCitations(t *testing.T) {
	buf := new(bytes.Buffer)
	cmd := &cobra.Command{}
	cmd.SetOut(buf)

	printCitations(cmd, nil)
	assert.Empty(t, buf.String())

	printCitations(cmd, []domain.Citation{
		{Source: "Runbook (Chunk 1)", Score: 0.912},
		{Source: "Postmortem (Chunk 3)", Score: 0.5},
	})
	out := buf.String()
	assert.Contains(t, out, "Sources:")
	assert.Contains(t, out, "[1] Runbook (Chunk 1) (0.91)")
	assert.Contains(t, out, "[2] Postmortem (Chunk 3) (0.50)")
}

func TestRoleLabel(t *testing.T) {
	assert.Equal(t, "You", roleLabel(domain.RoleUser))
	assert.Equal(t, "Assistant", roleLabel(domain.RoleAssistant))
	assert.Equal(t, "System", roleLabel(domain.RoleSystem))
	assert.Equal(t, "tool", roleLabel(domain.Role("tool")))
}

// fixedTime is used for deterministic timestamps in output tests.
var fixedTime = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func TestWarmIndex_RunsOnlyForQueryCommands(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	warmed := 0
	Configure(Services{
		Retriever: mocks.Retriever,
		Chat:      mocks.Chat,
		Sessions:  mocks.Sessions,
		Settings:  mocks.Settings,
		WarmIndex: func(context.Context) { warmed++ },
	})

	_, err := execute(t, "", "sessions")
	require.NoError(t, err)
	assert.Equal(t, 0, warmed)

	_, err = execute(t, "", "search", "query")
	require.NoError(t, err)
	assert.Equal(t, 1, warmed)

	_, err = execute(t, "", "chat", "hello")
	require.NoError(t, err)
	assert.Equal(t, 2, warmed)
}
