package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/harun/armory/internal/config"
	"github.com/harun/armory/pkg/history"
	"github.com/harun/armory/pkg/tool"
)

var (
	historyTool   string
	historyFailed bool
	historyLimit  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded tool executions",
	Long:  `Show execution records from the history database, newest first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		q := tool.Query{
			ToolName: historyTool,
			Limit:    historyLimit,
		}
		if historyFailed {
			failed := false
			q.Success = &failed
		}

		records, err := store.Records(context.Background(), q)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyTool, "tool", "", "filter by tool name")
	historyCmd.Flags().BoolVar(&historyFailed, "failed", false, "show only failed executions")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "maximum number of records")

	rootCmd.AddCommand(historyCmd)
}

// openStore opens the history database configured for this installation.
// The configuration is loaded by the root command before any subcommand runs.
func openStore() (*history.Store, error) {
	cfg := appCfg
	if cfg == nil {
		loaded, err := config.NewLoader(cfgFile).Load()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if cfg.History.Driver != "sqlite" {
		return nil, fmt.Errorf("history command requires the sqlite history driver (configured: %s)", cfg.History.Driver)
	}

	storeLogger := zerolog.Nop()
	if appLogger != nil {
		storeLogger = appLogger.GetZerolog()
	}

	return history.Open(history.Config{
		Path:   cfg.History.Path,
		Logger: storeLogger,
	})
}
