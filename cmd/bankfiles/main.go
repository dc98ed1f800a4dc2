// Command bankfiles works with CNAB bank files from the shell: detect and
// classify lines, build and store layout configurations, extract records,
// manage slip templates and render slips.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/bankfiles/internal/common"
	"github.com/joseph-ayodele/bankfiles/internal/layout"
	"github.com/joseph-ayodele/bankfiles/internal/repository"
	"github.com/joseph-ayodele/bankfiles/internal/server"
	"github.com/joseph-ayodele/bankfiles/internal/services/layouts"
)

var (
	inmem    bool
	verbose  bool
	jsonLogs bool
)

var rootCmd = &cobra.Command{
	Use:           "bankfiles",
	Short:         "Work with CNAB 240/400 bank files and payment slips",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&inmem, "inmem", false, "use an in-memory SQLite store")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "log as JSON")

	rootCmd.AddCommand(detectCmd, classifyCmd, generateCmd, extractCmd)
	rootCmd.AddCommand(configCmd, placementCmd, templateCmd, recordCmd, renderCmd)
	rootCmd.AddCommand(ingestCmd, watchCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
}

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var logger *slog.Logger
	if jsonLogs {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, opts))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	slog.SetDefault(logger)
	return logger
}

// app wires the store-backed services a command needs.
type app struct {
	cfg       *common.Config
	logger    *slog.Logger
	db        *server.DatabaseResult
	layouts   *layouts.Service
	templates repository.TemplateRepository
	records   repository.RecordRepository
	files     repository.BankFileRepository
}

func openApp(ctx context.Context) (*app, error) {
	logger := newLogger()
	cfg := common.LoadConfig()
	if !inmem && cfg.Database.DSN == "" && cfg.Database.LocalDSN == "" {
		return nil, common.NewAppError("CONFIG_ERROR", "set DB_URL or LOCAL_DB, or pass --inmem", common.ErrInvalidInput)
	}
	db, err := server.InitDatabase(ctx, cfg, inmem, logger)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		layouts:   layouts.NewService(repository.NewConfigurationRepository(db.DB, logger), layout.NewCounter(), logger),
		templates: repository.NewTemplateRepository(db.DB, logger),
		records:   repository.NewRecordRepository(db.DB, logger),
		files:     repository.NewBankFileRepository(db.DB, logger),
	}, nil
}

func (a *app) Close() { a.db.Cleanup() }

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
