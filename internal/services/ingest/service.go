package ingest

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/bankfiles/internal/common"
	"github.com/joseph-ayodele/bankfiles/internal/ingest"
	"github.com/joseph-ayodele/bankfiles/internal/layout"
	"github.com/joseph-ayodele/bankfiles/internal/services/export"
	"github.com/joseph-ayodele/bankfiles/internal/services/layouts"
)

// Service handles ingestion business logic: ingest a bank file, extract its
// records with the bank's default configuration and export them as XLSX.
type Service struct {
	ingestor  ingest.Ingestor
	layouts   *layouts.Service
	exporter  *export.Service
	exportDir string
	logger    *slog.Logger
}

// NewService creates a new ingest service.
func NewService(ing ingest.Ingestor, l *layouts.Service, e *export.Service, exportDir string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		ingestor:  ing,
		layouts:   l,
		exporter:  e,
		exportDir: exportDir,
		logger:    logger,
	}
}

// FileIngestRequest represents file ingestion parameters.
type FileIngestRequest struct {
	BankID         string
	Path           string
	SkipDuplicates bool
}

// DirectoryIngestRequest represents directory ingestion parameters.
type DirectoryIngestRequest struct {
	BankID         string
	RootPath       string
	IncludeHidden  bool
	SkipDuplicates bool
}

// DirectoryIngestResult represents directory ingestion results.
type DirectoryIngestResult struct {
	Statistics ingest.DirStats
	Results    []ingest.IngestionResult
	Exported   []string
}

// IngestFile ingests a single file and exports its records.
func (s *Service) IngestFile(ctx context.Context, req FileIngestRequest) (ingest.IngestionResult, string, error) {
	validator := common.NewValidator()
	validator.Field("bank_id", req.BankID, common.Required)
	validator.Field("path", req.Path, common.Required)
	if err := common.ValidateAndReturnError(validator); err != nil {
		s.logger.Error("invalid ingest request", "bank_id", req.BankID, "path", req.Path, "error", err)
		return ingest.IngestionResult{}, "", err
	}

	path := strings.TrimSpace(req.Path)
	s.logger.Info("starting file ingest", "bank_id", req.BankID, "path", path)
	r, err := s.ingestor.IngestPath(ctx, path)
	if err != nil {
		return ingest.IngestionResult{}, "", err
	}

	out, err := s.ProcessIngestedFile(ctx, req.BankID, &r, req.SkipDuplicates)
	if err != nil {
		return r, "", err
	}
	s.logger.Info("file ingest succeeded", "bank_id", req.BankID, "file_id", r.FileID, "deduplicated", r.Deduplicated, "export", out)
	return r, out, nil
}

// IngestDirectory ingests all bank files in a directory. Per-file export
// failures are logged and counted, not returned.
func (s *Service) IngestDirectory(ctx context.Context, req DirectoryIngestRequest) (*DirectoryIngestResult, error) {
	validator := common.NewValidator()
	validator.Field("bank_id", req.BankID, common.Required)
	validator.Field("root_path", req.RootPath, common.Required)
	if err := common.ValidateAndReturnError(validator); err != nil {
		return nil, err
	}

	root := strings.TrimSpace(req.RootPath)
	s.logger.Info("starting directory ingest", "bank_id", req.BankID, "root", root, "include_hidden", req.IncludeHidden)
	results, stats, err := s.ingestor.IngestDirectory(ctx, root, !req.IncludeHidden)
	if err != nil {
		return nil, common.WrapError(err, "ingest directory")
	}

	out := &DirectoryIngestResult{Statistics: stats, Results: results}
	for i := range results {
		path, err := s.ProcessIngestedFile(ctx, req.BankID, &results[i], req.SkipDuplicates)
		if err != nil {
			results[i].Err = err.Error()
			continue
		}
		if path != "" {
			out.Exported = append(out.Exported, path)
		}
	}

	s.logger.Info("directory ingest completed", "bank_id", req.BankID, "scanned", stats.Scanned, "matched", stats.Matched, "succeeded", stats.Succeeded, "deduplicated", stats.Deduplicated, "failed", stats.Failed, "exported", len(out.Exported))
	return out, nil
}

// ProcessIngestedFile extracts the records of an ingested file with the
// bank's default configuration and writes them to
// <export dir>/<name>-<file id>.xlsx.
// It returns the written path, or "" when the file was skipped.
func (s *Service) ProcessIngestedFile(ctx context.Context, bankID string, result *ingest.IngestionResult, skipDuplicates bool) (string, error) {
	if result.Err != "" || result.FileID == "" {
		return "", nil
	}
	if result.Deduplicated && skipDuplicates {
		s.logger.Info("skipping processing (duplicate)", "file_id", result.FileID, "path", result.SourcePath)
		return "", nil
	}

	content, err := os.ReadFile(result.SourcePath)
	if err != nil {
		s.logger.Error("read ingested file failed", "file_id", result.FileID, "path", result.SourcePath, "error", err)
		return "", err
	}

	res, err := s.layouts.Extract(ctx, layouts.ExtractRequest{BankID: bankID, Content: layout.Decode(content)})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Warn("no default configuration for bank", "bank_id", bankID, "file_id", result.FileID)
		}
		return "", err
	}

	data, err := s.exporter.RecordsXLSX(res.Records)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
		return "", err
	}
	base := strings.TrimSuffix(filepath.Base(result.SourcePath), filepath.Ext(result.SourcePath))
	out := filepath.Join(s.exportDir, base+"-"+result.FileID+".xlsx")
	if err := os.WriteFile(out, data, 0o644); err != nil {
		s.logger.Error("write export failed", "path", out, "error", err)
		return "", err
	}
	s.logger.Info("records exported", "file_id", result.FileID, "records", len(res.Records), "path", out)
	return out, nil
}

// Watch ingests every bank file that appears under root until ctx is done.
func (s *Service) Watch(ctx context.Context, bankID, root string, cfg ingest.WatchConfig) error {
	cfg.Roots = []string{root}
	if cfg.Logger == nil {
		cfg.Logger = s.logger
	}
	events, errs, err := ingest.StartWatcher(ctx, cfg)
	if err != nil {
		return err
	}
	s.logger.Info("watching drop folder", "root", root, "bank_id", bankID)
	for {
		select {
		case <-ctx.Done():
			return nil
		case path, ok := <-events:
			if !ok {
				return nil
			}
			if _, _, err := s.IngestFile(ctx, FileIngestRequest{BankID: bankID, Path: path, SkipDuplicates: true}); err != nil {
				s.logger.Error("watch ingest failed", "path", path, "error", err)
			}
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			s.logger.Warn("watcher reported error", "error", err)
		}
	}
}
