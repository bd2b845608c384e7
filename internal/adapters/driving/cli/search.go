package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbdb-labs/kbdb/internal/core/domain"
	"github.com/kbdb-labs/kbdb/internal/core/services"
)

var (
	searchTopK int
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search [modality] [query]",
	Short: "Search the knowledge base under a modality",
	Long: `Runs one nearest-neighbour search: the query is embedded with the
modality's strategy and matched against stored chunk embeddings under the
modality's distance metric. Results come back best-first.

Use "kbdb modalities" to list the available modalities.`,
	Args: cobra.ExactArgs(2),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", domain.DefaultTopK, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	modality, query := args[0], args[1]

	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}

	results, err := searchService.Search(cmd.Context(), modality, query, searchTopK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}

	cmd.Println(services.FormatResults(results))
	return nil
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
