// Command coderag binds the protocol-agnostic service surface to a cobra
// CLI, mapping the error taxonomy onto the CLI's exit codes. Grounded on
// cmd/crisk/main.go's rootCmd/PersistentPreRun/package-level
// cfg+logger pattern.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/viant/coderag/config"
)

var (
	Version = "dev"

	cfgFile string
	verbose bool
	jsonOut bool

	logger *logrus.Entry
	cfg    *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "coderag",
	Short:   "Parse, index, and semantically query a code repository's program graph",
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := logrus.InfoLevel
		if verbose {
			level = logrus.DebugLevel
		}
		base := logrus.New()
		base.SetLevel(level)
		logger = base.WithField("component", "cli")

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			logger.WithError(err).Warn("failed to load config, using defaults")
			cfg = config.Default()
		}

		if os.Getenv("OPENAI_API_KEY") == "" {
			if key := resolveOpenAIKey(); key != "" {
				os.Setenv("OPENAI_API_KEY", key)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./coderag.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "emit machine-readable JSON instead of formatted text")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(parseAndIndexCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(listJobsCmd)
	rootCmd.AddCommand(deleteJobCmd)
	rootCmd.AddCommand(listCollectionsCmd)
	rootCmd.AddCommand(healthCmd)
}
