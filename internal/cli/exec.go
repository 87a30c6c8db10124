package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/harun/armory/internal/metrics"
	"github.com/harun/armory/internal/tracing"
	"github.com/harun/armory/pkg/builtins"
	"github.com/harun/armory/pkg/history"
	"github.com/harun/armory/pkg/tool"
)

var execWorkspace string

var execCmd = &cobra.Command{
	Use:   "exec <tool> [args-json]",
	Short: "Execute a builtin tool",
	Long: `Execute a builtin tool with a JSON argument object and print the
execution result. The call is recorded in the configured execution history.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runExec,
}

func init() {
	execCmd.Flags().StringVar(&execWorkspace, "workspace", ".", "workspace root for file tools")

	rootCmd.AddCommand(execCmd)
}

func runExec(cmd *cobra.Command, args []string) error {
	cfg := appCfg

	if cfg.Tracing.Enabled {
		if err := tracing.InitOpenTelemetry(cfg.Tracing.ServiceName); err != nil {
			appLogger.Warn().Err(err).Msg("Failed to initialize tracing, continuing without distributed tracing")
		} else {
			defer func() {
				_ = tracing.ShutdownOpenTelemetry(context.Background())
			}()
		}
	}

	registry := tool.NewRegistry()
	if err := builtins.Register(registry, builtins.Options{WorkspaceRoot: execWorkspace}); err != nil {
		return err
	}

	var opts []tool.ExecutorOption

	if cfg.Metrics.Enabled {
		m := metrics.NewMetrics()
		m.ToolsRegistered.Set(float64(registry.Len()))
		opts = append(opts, tool.WithObserver(m))

		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		srv := &http.Server{Addr: cfg.Metrics.Listen, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				appLogger.Error().Err(err).Msg("Metrics server failed")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		appLogger.Info().Str("listen", cfg.Metrics.Listen).Msg("Metrics endpoint started")
	}

	if cfg.History.Driver == "sqlite" {
		store, err := history.Open(history.Config{
			Path:   cfg.History.Path,
			Logger: appLogger.GetZerolog(),
		})
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, tool.WithHistory(store))
	}

	executor := tool.NewExecutor(registry, opts...)

	toolArgs := map[string]any{}
	if len(args) == 2 {
		if err := json.Unmarshal([]byte(args[1]), &toolArgs); err != nil {
			return fmt.Errorf("arguments must be a JSON object: %w", err)
		}
	}

	ctx := context.Background()
	if cfg.Tools.DefaultTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Tools.DefaultTimeout)
		defer cancel()
	}

	res := executor.Execute(ctx, args[0], toolArgs)

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	if !res.Success {
		cmd.SilenceUsage = true
		return fmt.Errorf("tool execution failed: %s", res.Error)
	}
	return nil
}
