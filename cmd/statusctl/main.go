// Command statusctl inspects project documents and the persisted project
// cache without running the server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rpggio/statusboard/internal/app"
	"github.com/rpggio/statusboard/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "statusctl",
	Short:         "Inspect project status documents and the project cache",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to YAML config (default: $STATUSBOARD_CONFIG_PATH)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log engine activity to stderr")

	rootCmd.AddGroup(
		&cobra.Group{ID: "documents", Title: "Documents:"},
		&cobra.Group{ID: "cache", Title: "Project cache:"},
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// openEngine loads configuration, opens the store and initializes the
// engine from the persisted session or a fresh ingestion.
func openEngine(cmd *cobra.Command) (*app.App, error) {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	a, err := app.Open(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := a.Projects.Initialize(commandContext(cmd)); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
