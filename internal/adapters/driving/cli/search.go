package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
)

// snippetLength bounds the chunk preview printed per result.
const snippetLength = 160

var (
	searchTopK   int
	searchFileID string
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed knowledge",
	Long: `Embeds the query and returns the most similar chunks from the vector index,
ranked by cosine similarity. Use --file to search a single uploaded file.`,
	Args:        cobra.ExactArgs(1),
	RunE:        runSearch,
	Annotations: queriesIndex(),
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "n", domain.DefaultTopK, "maximum number of results")
	searchCmd.Flags().StringVar(&searchFileID, "file", "", "restrict the search to one file id")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retrieverService == nil {
		return unavailable("retriever")
	}

	opts := domain.SearchOptions{
		TopK:   searchTopK,
		FileID: searchFileID,
	}

	results, err := retrieverService.Search(cmd.Context(), args[0], opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return printJSON(cmd, results)
	}

	return outputSearchTable(cmd, results)
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		// Format: [N] Citation (Score)
		label := results[i].Source
		if label == "" {
			label = results[i].RecordID
		}
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, label, results[i].Score)

		snippet := strings.Join(strings.Fields(results[i].Content), " ")
		if snippet != "" {
			cmd.Printf("      %s\n", truncate(snippet, snippetLength))
		}
		cmd.Println()
	}

	return nil
}
