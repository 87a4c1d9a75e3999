package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
)

var sourcesJSON bool

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List indexed sources",
	Long:  `Lists every source in the catalogue with its chunk count from the last indexing run.`,
	Args:  cobra.NoArgs,
	RunE:  runSourcesList,
}

var sourcesRemoveCmd = &cobra.Command{
	Use:   "remove [kind] [id]",
	Short: "Remove a source and its chunks",
	Args:  cobra.ExactArgs(2),
	RunE:  runSourcesRemove,
}

func init() {
	sourcesCmd.Flags().BoolVar(&sourcesJSON, "json", false, "output sources as JSON")
	sourcesCmd.AddCommand(sourcesRemoveCmd)
	rootCmd.AddCommand(sourcesCmd)
}

func runSourcesList(cmd *cobra.Command, _ []string) error {
	if retrieverService == nil {
		return unavailable("retriever")
	}

	sources, err := retrieverService.ListSources(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	if sourcesJSON {
		type sourceJSON struct {
			Kind      domain.SourceKind `json:"kind"`
			ID        string            `json:"id"`
			Title     string            `json:"title"`
			Chunks    int               `json:"chunks"`
			UpdatedAt string            `json:"updated_at"`
		}
		out := make([]sourceJSON, 0, len(sources))
		for i := range sources {
			out = append(out, sourceJSON{
				Kind:      sources[i].Kind,
				ID:        sources[i].ID,
				Title:     sources[i].DisplayTitle(),
				Chunks:    sources[i].ChunkCount,
				UpdatedAt: sources[i].UpdatedAt.Format(timeFormat),
			})
		}
		return printJSON(cmd, out)
	}

	if len(sources) == 0 {
		cmd.Println("No sources indexed.")
		return nil
	}

	cmd.Printf("%-28s %-36s %6s  %s\n", "KEY", "TITLE", "CHUNKS", "UPDATED")
	for i := range sources {
		cmd.Printf("%-28s %-36s %6d  %s\n",
			truncate(sources[i].Key(), 28),
			truncate(sources[i].DisplayTitle(), 36),
			sources[i].ChunkCount,
			sources[i].UpdatedAt.Local().Format(timeFormat))
	}
	return nil
}

func runSourcesRemove(cmd *cobra.Command, args []string) error {
	if retrieverService == nil {
		return unavailable("retriever")
	}

	kind, err := domain.ParseSourceKind(args[0])
	if err != nil {
		return err
	}

	if err := retrieverService.RemoveSource(cmd.Context(), kind, args[1]); err != nil {
		return fmt.Errorf("failed to remove source: %w", err)
	}
	cmd.Printf("Removed %s\n", domain.SourceKey(kind, args[1]))
	return nil
}
