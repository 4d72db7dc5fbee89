package main

import (
	"fmt"
	"os"

	"github.com/cynergists/go-viewprefs/cmd/viewprefs/internal/config"
	"github.com/cynergists/go-viewprefs/pkg/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose bool
	envFile string

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "viewprefs",
	Short: "Per-user table view preferences service",
	Long: `viewprefs stores column layout, sort, filters, page size and saved views
for the clients, prospects, partners, staff and sales rep tables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.Build(verbose)
		if err != nil {
			return err
		}
		var files []string
		if envFile != "" {
			files = append(files, envFile)
		}
		cfg, err = config.Load(files...)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default .env)")

	rootCmd.AddCommand(serveCmd, migrateCmd, demoCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
