package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/bankfiles/internal/async"
	"github.com/joseph-ayodele/bankfiles/internal/common"
	"github.com/joseph-ayodele/bankfiles/internal/entity"
	"github.com/joseph-ayodele/bankfiles/internal/placement"
	"github.com/joseph-ayodele/bankfiles/internal/render"
	repo "github.com/joseph-ayodele/bankfiles/internal/repository"
	"github.com/joseph-ayodele/bankfiles/internal/server"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	// Parse CLI flags
	var (
		inmem      = flag.Bool("inmem", false, "use in-memory SQLite database")
		templateID = flag.String("template", "", "stored template id")
		placeFile  = flag.String("placement", "", "field placement table (CSV or XLSX) for an ad hoc template")
		background = flag.String("background", "", "background page for an ad hoc template")
		checkDigit = flag.Bool("check-digit", false, "synthesize the digitable line from the barcode")
		dataDir    = flag.String("data", "", "directory of record JSON files; stored records are used when empty")
		out        = flag.String("out", "", "output directory (optional, defaults to ./slips)")
	)
	flag.Parse()

	if *templateID == "" && (*placeFile == "" || *background == "") {
		printError("Error: --template or both --placement and --background are required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = "slips"
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := common.LoadConfig()

	dbResult, err := server.InitDatabase(ctx, cfg, *inmem, logger)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer dbResult.Cleanup()
	db := dbResult.DB

	// Wire repositories
	templates := repo.NewTemplateRepository(db, logger)
	records := repo.NewRecordRepository(db, logger)
	jobs := repo.NewRenderJobRepository(db, logger)

	tplID, err := resolveTemplate(ctx, templates, *templateID, *placeFile, *background, *checkDigit)
	if err != nil {
		logger.Error("failed to resolve template", "error", err)
		os.Exit(1)
	}

	recordIDs, err := resolveRecords(ctx, records, *dataDir, logger)
	if err != nil {
		logger.Error("failed to load records", "error", err)
		os.Exit(1)
	}
	if len(recordIDs) == 0 {
		printError("Error: no records to render\n")
		os.Exit(1)
	}

	if err := os.MkdirAll(*out, 0o755); err != nil {
		logger.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}

	wd, _ := os.Getwd()
	renderer := render.NewRenderer(templates, records, render.NewHTTPFetcher(cfg.Render.FetchTimeout, wd, logger), logger)
	queue := async.NewRenderQueue(renderer, *out, logger,
		async.WithWorkers(cfg.Render.Workers),
		async.WithQueueSize(cfg.Render.QueueSize),
		async.WithProcessTimeout(cfg.Render.JobTimeout),
		async.WithJobRepository(jobs),
	)

	logger.Info("starting batch render", "template_id", tplID, "records", len(recordIDs), "workers", cfg.Render.Workers)
	for _, id := range recordIDs {
		if err := queue.Enqueue(ctx, async.Job{TemplateID: tplID, RecordID: id}); err != nil {
			logger.Error("enqueue failed", "record_id", id, "error", err)
		}
	}
	queue.Shutdown(ctx)

	stats := queue.Stats()
	logger.Info("batch render complete",
		"rendered", stats.Rendered,
		"not_found", stats.NotFound,
		"failed", stats.Failed,
		"output_dir", *out)

	fmt.Printf("Batch render complete!\n")
	fmt.Printf("- Records: %d\n", len(recordIDs))
	fmt.Printf("- Rendered: %d\n", stats.Rendered)
	fmt.Printf("- Not found: %d\n", stats.NotFound)
	fmt.Printf("- Failures: %d\n", stats.Failed)
	fmt.Printf("- Output: %s\n", *out)

	if stats.Failed > 0 || stats.NotFound > 0 {
		os.Exit(1)
	}
}

func resolveTemplate(ctx context.Context, templates repo.TemplateRepository, id, placeFile, background string, checkDigit bool) (uuid.UUID, error) {
	if id != "" {
		tplID, err := uuid.Parse(id)
		if err != nil {
			return uuid.Nil, common.InvalidArgumentErrorf("--template %q must be a UUID", id)
		}
		if _, err := templates.GetTemplate(ctx, tplID); err != nil {
			return uuid.Nil, err
		}
		return tplID, nil
	}

	data, err := os.ReadFile(placeFile)
	if err != nil {
		return uuid.Nil, err
	}
	fields, err := placement.Decode(data)
	if err != nil {
		return uuid.Nil, err
	}
	tpl, err := templates.SaveTemplate(ctx, &entity.Template{
		Name:               strings.TrimSuffix(filepath.Base(placeFile), filepath.Ext(placeFile)),
		BackgroundURL:      background,
		RequiresCheckDigit: checkDigit,
	}, fields)
	if err != nil {
		return uuid.Nil, err
	}
	return tpl.ID, nil
}

// resolveRecords stores every *.json object under dir as a record, or lists
// the stored records when dir is empty.
func resolveRecords(ctx context.Context, records repo.RecordRepository, dir string, logger *slog.Logger) ([]uuid.UUID, error) {
	if dir == "" {
		return records.ListRecordIDs(ctx)
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(paths))
	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		var values map[string]any
		if err := json.Unmarshal(raw, &values); err != nil {
			logger.Warn("skipping invalid record file", "path", p, "error", err)
			continue
		}
		rec, err := records.PutRecord(ctx, &entity.DataRecord{Values: values})
		if err != nil {
			return nil, err
		}
		ids = append(ids, rec.ID)
	}
	return ids, nil
}
