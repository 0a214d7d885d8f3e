package cmd

import (
	"fmt"
	"os"

	"github.com/aliirsyaadn/mindful-death/config"
	"github.com/aliirsyaadn/mindful-death/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configDir string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "mindful-death",
	Short: "Life expectancy assessment engine",
	Long: `mindful-death runs a branching health and lifestyle questionnaire,
scores the answers against evidence-based adjustment factors and estimates
the remaining lifetime in years and days.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "directory containing config.yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configDir != "" {
		return config.LoadConfig(configDir)
	}
	return config.LoadConfig()
}

// cliLogger keeps stdout clean for command output; --verbose sends development logs to stderr.
func cliLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// catalogFor loads the definitions named in cfg, falling back to the embedded ones.
func catalogFor(cfg *config.Config) (*services.Catalog, error) {
	return services.LoadCatalog(services.CatalogPaths{
		Flow:       cfg.Assessment.FlowPath,
		Factors:    cfg.Assessment.FactorsPath,
		InputTypes: cfg.Assessment.InputTypesPath,
	})
}
