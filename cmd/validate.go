package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the assessment definitions for broken references",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		catalog, err := catalogFor(cfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		problems := catalog.Validate()
		if len(problems) == 0 {
			fmt.Fprintf(out, "✅ %s v%s: %d sections, %d questions, %d factors, %d citations\n",
				catalog.FlowID(), catalog.FlowVersion(),
				len(catalog.Sections()), len(catalog.Questions()), len(catalog.Factors()), len(catalog.Citations()))
			return nil
		}

		for _, p := range problems {
			fmt.Fprintln(out, "❌", p)
		}
		return fmt.Errorf("found %d problem(s)", len(problems))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
