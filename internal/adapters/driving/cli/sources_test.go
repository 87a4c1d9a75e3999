package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
	"github.com/custodia-labs/pipewrench/internal/core/ports/driving"
)

func testSources() []domain.Source {
	return []domain.Source{
		{Kind: domain.SourceKindDocument, ID: "42", Title: "On-call runbook", ChunkCount: 4, UpdatedAt: fixedTime},
		{Kind: domain.SourceKindReport, ID: "7", ChunkCount: 2, UpdatedAt: fixedTime},
	}
}

func TestSourcesCmd_List(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.Retriever.Sources = testSources()

	out, err := execute(t, "", "sources")

	require.NoError(t, err)
	assert.Contains(t, out, "KEY")
	assert.Contains(t, out, "doc:42")
	assert.Contains(t, out, "On-call runbook")
	assert.Contains(t, out, "Knowledge Report 7", "untitled sources show their display title")
}

func TestSourcesCmd_Empty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "", "sources")

	require.NoError(t, err)
	assert.Contains(t, out, "No sources indexed.")
}

func TestSourcesCmd_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.Retriever.Sources = testSources()

	out, err := execute(t, "", "sources", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, "\"kind\": \"doc\"")
	assert.Contains(t, out, "\"chunks\": 4")
}

func TestSourcesRemoveCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "", "sources", "remove", "report", "7")

	require.NoError(t, err)
	assert.Contains(t, out, "Removed report:7")
	assert.Equal(t, []string{"report:7"}, mocks.Retriever.Removed)
}

func TestSourcesRemoveCmd_UnknownKind(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "", "sources", "remove", "video", "7")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, mocks.Retriever.Removed)
}

func TestReindexCmd_All(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.Retriever.Report = &driving.ReindexReport{Sources: 3, Chunks: 17}

	out, err := execute(t, "", "reindex")

	require.NoError(t, err)
	assert.True(t, mocks.Retriever.ReindexedAll)
	assert.Contains(t, out, "Reindexed 3 sources (17 chunks).")
}

func TestReindexCmd_AllWithFailures(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.Retriever.Report = &driving.ReindexReport{Sources: 1, Chunks: 2, Failed: []string{"doc:9"}}

	out, err := execute(t, "", "reindex")

	require.Error(t, err)
	assert.Contains(t, out, "Failed: doc:9")
	assert.Contains(t, err.Error(), "1 sources failed")
}

func TestReindexCmd_One(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.Retriever.Sources = testSources()

	out, err := execute(t, "", "reindex", "doc", "42")

	require.NoError(t, err)
	assert.Contains(t, out, "Reindexed doc:42 (3 chunks)")
	require.Len(t, mocks.Retriever.Reindexed, 1)
	assert.Equal(t, "On-call runbook", mocks.Retriever.Reindexed[0].Title)
	assert.False(t, mocks.Retriever.ReindexedAll)
}

func TestReindexCmd_OneNotFound(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.Retriever.Sources = testSources()

	_, err := execute(t, "", "reindex", "doc", "404")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReindexCmd_ArgCount(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "", "reindex", "doc")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 0 or 2 arg(s)")
}
