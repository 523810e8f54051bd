package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/comitanigiacomo/habitgrid/internal/config"
)

var (
	// Global flags
	verbose   bool
	boardName string
	storeKind string
	envFile   string

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "habits",
	Short: "Weekly habit grid",
	Long: `habits keeps a list of habits, each with a Monday to Sunday check grid.

Habits can be archived once done and purged later. State is stored as a
single JSON document per board in sqlite, postgres, redis or memory.

Run "habits serve" to expose the same board over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(envFile)
		if err != nil {
			return err
		}
		if storeKind != "" {
			cfg.Store = storeKind
		}
		if boardName != "" {
			cfg.Board = boardName
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err = newLogger(cmd.Name() == serveCmd.Name())
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// newLogger is quiet for one-shot commands and informational for the server.
func newLogger(server bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	level := zapcore.WarnLevel
	if server {
		level = zapcore.InfoLevel
	}
	if verbose || cfg.Debug {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&boardName, "board", "b", "", "Board to work on (default from HABITS_BOARD)")
	rootCmd.PersistentFlags().StringVar(&storeKind, "store", "", "Storage backend: memory, sqlite, postgres or redis")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file")

	rootCmd.AddCommand(
		listCmd,
		addCmd,
		toggleCmd,
		completeCmd,
		renameCmd,
		moveCmd,
		purgeCmd,
		statsCmd,
		serveCmd,
		tokenCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
