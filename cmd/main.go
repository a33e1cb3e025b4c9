/*
Package main is the entry point for the AlumniLink server.

The root command starts the HTTP server (see serve.go). The seed command writes the
directory fixtures into the configured entity store.
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"alumnilink/internal/configs"
	"alumnilink/internal/pkg/logx"
)

var cfg *configs.AppConfig

var rootCmd = &cobra.Command{
	Use:           "alumnilink",
	Short:         "AlumniLink server",
	Long:          "AlumniLink serves the alumni directory, events, messaging and AI assistance API.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := configs.LoadConfig()
		if err != nil {
			return err
		}
		cfg = loaded

		logx.InitGlobalLogger(cfg.IsDevelopment(), cfg.LogLevel)
		logx.Logger().Info().
			Str("environment", cfg.Environment).
			Int("port", cfg.Port).
			Str("store_driver", cfg.StoreDriver).
			Str("ai_provider", cfg.AIProvider).
			Bool("uploads_enabled", cfg.UploadsEnabled()).
			Msg("Configuration loaded successfully")
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}
}
