package cli

import (
	"github.com/spf13/cobra"
)

var modalitiesCmd = &cobra.Command{
	Use:   "modalities",
	Short: "List the registered search modalities",
	Long: `Lists every registered modality with its embedding model, query
transform and distance metric. Each modality is exposed to MCP clients as a
search_<name> tool.`,
	RunE: runModalities,
}

func init() {
	rootCmd.AddCommand(modalitiesCmd)
}

func runModalities(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}

	for _, m := range searchService.Modalities() {
		cmd.Printf("%s\t%s\n", m.Name, m.Description)
		cmd.Printf("    model: %s  metric: %s\n", m.Strategy.Model, m.Metric)
		if m.Strategy.Prefix != "" {
			cmd.Printf("    prefix: %q\n", m.Strategy.Prefix)
		}
		if m.Strategy.Suffix != "" {
			cmd.Printf("    suffix: %q\n", m.Strategy.Suffix)
		}
	}
	return nil
}
