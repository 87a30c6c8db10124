package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harun/armory/internal/config"
	"github.com/harun/armory/internal/logger"
)

const version = "0.1.0"

var (
	cfgFile  string
	logLevel string

	appCfg    *config.Config
	appLogger *logger.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "armory",
	Short: "Armory - Tool Registry and Execution Engine",
	Long: `Armory is a tool registry and execution engine for AI agents.
It stores schema-described tools, executes them safely under concurrent
load, and records metrics and an execution history for every call.`,
	Version: version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// setupRun loads the configuration and initializes the global logger
// before any subcommand runs.
func setupRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.NewLoader(cfgFile).Load()
	if err != nil {
		return err
	}

	if rootCmd.PersistentFlags().Changed("log-level") {
		if err := config.NewValidator().ValidateLogLevel(logLevel); err != nil {
			return err
		}
		cfg.Logging.Level = logLevel
	}

	l, err := logger.New(logger.Config{
		Level:   cfg.Logging.Level,
		File:    cfg.Logging.File,
		Console: cfg.Logging.Console,
		Pretty:  cfg.Logging.Pretty,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	appCfg = cfg
	appLogger = l
	return nil
}

// teardownRun closes the logger after the subcommand finishes.
func teardownRun(cmd *cobra.Command, args []string) error {
	if appLogger == nil {
		return nil
	}
	err := appLogger.Close()
	appLogger = nil
	return err
}

func init() {
	// Assigned here rather than in the rootCmd literal to avoid an
	// initialization cycle (setupRun refers back to rootCmd).
	rootCmd.PersistentPreRunE = setupRun
	rootCmd.PersistentPostRunE = teardownRun

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.armory/armory.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	// Version template
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
`)
}

// GetRootCmd returns the root command for testing
func GetRootCmd() *cobra.Command {
	return rootCmd
}

// GetVersion returns the current version
func GetVersion() string {
	return version
}
