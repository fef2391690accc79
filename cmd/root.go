// Package cmd holds the portfolio command line.
package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"portfolio-contact/api/pkg/config"
	"portfolio-contact/api/pkg/logging"
)

var (
	configFile string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Portfolio site server and contact form API",
	Long: `Serves the portfolio front-end and its JSON API. The contact endpoint
stores every valid submission and notifies the site owner by email.

Running without a subcommand is the same as "portfolio serve".`,
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute runs the command line.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded into the environment if present")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(hashTokenCmd)
}

// setup loads the configuration and installs the default logger. The
// returned closer flushes the log file, if any.
func setup() (*config.Config, io.Closer, error) {
	cfg, err := config.Load(config.LoadOptions{ConfigFile: configFile, EnvFile: envFile})
	if err != nil {
		return nil, nil, err
	}

	closer, err := logging.Setup(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	for _, w := range cfg.Warnings {
		slog.Warn("configuration warning", "warning", w)
	}
	return cfg, closer, nil
}
