package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
	"github.com/custodia-labs/pipewrench/internal/manifest"
	"github.com/custodia-labs/pipewrench/internal/normalisers"
)

var (
	indexKind     string
	indexID       string
	indexTitle    string
	indexFile     string
	indexManifest string
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index a document, report or file",
	Long: `Chunks, embeds and stores a source in the vector index.

Index a single source from a file (use --file - to read stdin):
  pipewrench index --kind doc --id 42 --title "On-call runbook" --file runbook.md

Or index every source listed in a YAML manifest:
  pipewrench index --manifest sources.yaml

Indexing the same kind and id again replaces the source: chunks the new
text no longer produces are deleted, and empty text removes it.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVarP(&indexKind, "kind", "k", string(domain.SourceKindDocument), "source kind: doc, report or flat_file")
	indexCmd.Flags().StringVar(&indexID, "id", "", "source id")
	indexCmd.Flags().StringVarP(&indexTitle, "title", "t", "", "source title used in citations (default: first heading or file name)")
	indexCmd.Flags().StringVarP(&indexFile, "file", "f", "", "file holding the source text, or - for stdin")
	indexCmd.Flags().StringVarP(&indexManifest, "manifest", "m", "", "YAML manifest listing sources to index")
	indexCmd.MarkFlagsMutuallyExclusive("manifest", "file")
	indexCmd.MarkFlagsMutuallyExclusive("manifest", "id")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	if retrieverService == nil {
		return unavailable("retriever")
	}

	var sources []domain.Source
	if indexManifest != "" {
		loaded, err := manifest.Load(indexManifest)
		if err != nil {
			return fmt.Errorf("loading manifest: %w", err)
		}
		sources = loaded
	} else {
		source, err := sourceFromFlags(cmd)
		if err != nil {
			return err
		}
		sources = []domain.Source{source}
	}

	var errs []error
	total := 0
	for i := range sources {
		n, err := retrieverService.IndexSource(cmd.Context(), sources[i])
		if err != nil {
			cmd.PrintErrf("  %s: %v\n", sources[i].Key(), err)
			errs = append(errs, fmt.Errorf("%s: %w", sources[i].Key(), err))
			continue
		}
		total += n
		cmd.Printf("Indexed %s (%d chunks)\n", sources[i].Key(), n)
	}

	if len(sources) > 1 {
		cmd.Printf("\n%d of %d sources indexed, %d chunks total.\n", len(sources)-len(errs), len(sources), total)
	}
	return errors.Join(errs...)
}

func sourceFromFlags(cmd *cobra.Command) (domain.Source, error) {
	kind, err := domain.ParseSourceKind(indexKind)
	if err != nil {
		return domain.Source{}, err
	}
	if indexID == "" {
		return domain.Source{}, fmt.Errorf("%w: --id is required", domain.ErrInvalidInput)
	}
	if indexFile == "" {
		return domain.Source{}, fmt.Errorf("%w: --file or --manifest is required", domain.ErrInvalidInput)
	}

	text, err := readSourceFile(cmd, indexFile)
	if err != nil {
		return domain.Source{}, err
	}

	title := indexTitle
	if title == "" {
		title = text.Title
	}

	return domain.Source{
		Kind:    kind,
		ID:      indexID,
		Title:   title,
		Content: text.Content,
	}, nil
}

// readSourceFile reads and normalises the named file, or stdin for "-".
// Markup is stripped according to the file extension.
func readSourceFile(cmd *cobra.Command, path string) (*domain.NormalisedText, error) {
	name := path
	var data []byte
	var err error
	if path == "-" {
		name = ""
		data, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}
	return normalisers.Default().Normalise(name, data)
}
