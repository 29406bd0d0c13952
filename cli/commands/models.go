package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (a *App) newModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List models for the selected provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.provider == "" {
				return &exitError{ExitValidation, fmt.Errorf("no provider specified: use --provider or set default_provider in config")}
			}

			apiKey, err := a.resolveAPIKey(a.provider)
			if err != nil {
				return &exitError{ExitValidation, err}
			}
			provider, err := a.createProvider(a.provider, apiKey, a.cfg)
			if err != nil {
				return &exitError{ExitValidation, err}
			}

			models := provider.Models()

			if a.jsonOutput {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(models)
			}

			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "MODEL\tNAME")
			for _, m := range models {
				fmt.Fprintf(tw, "%s\t%s\n", m.ID, m.DisplayName)
			}
			return tw.Flush()
		},
	}
}
