package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/timmy/tubevault/internal/app"
	"github.com/timmy/tubevault/internal/config"
	"github.com/timmy/tubevault/internal/logger"
)

var (
	configPath  string
	application *app.App
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tubectl",
	Short: "Operate the YouTube video library",
	Long: `tubectl manages the video library outside the HTTP API.

It shares configuration with the API server: a YAML config file plus
environment variables such as GEMINI_API_KEY, QDRANT_API_KEY and
DOCUMENT_STORE_URI.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		application, err = app.New(cfg)
		return err
	},
}

// Execute runs the root command with a context cancelled on SIGINT/SIGTERM.
func Execute() error {
	logger.SetDefaultLogger(logger.NewDefault())
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.SetComponent(ctx, "tubectl")

	err := rootCmd.ExecuteContext(ctx)
	// PersistentPostRunE is skipped when RunE fails, so close here.
	err = errors.Join(err, closeApp())
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func closeApp() error {
	if application == nil {
		return nil
	}
	err := application.Close()
	application = nil
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("CONFIG_PATH"), "path to config file")
}
