package layouts

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/bankfiles/constants"
	"github.com/joseph-ayodele/bankfiles/internal/common"
	"github.com/joseph-ayodele/bankfiles/internal/entity"
	"github.com/joseph-ayodele/bankfiles/internal/extract"
	"github.com/joseph-ayodele/bankfiles/internal/layout"
	"github.com/joseph-ayodele/bankfiles/internal/layoutconfig"
)

// Service handles layout configuration business logic.
type Service struct {
	store      layoutconfig.Store
	counter    *layout.Counter
	classifier *layout.Classifier
	logger     *slog.Logger
}

// NewService creates a layout service. Successful classifications are fed
// back into counter, which then ranks signatures per bank; nil disables it.
func NewService(store layoutconfig.Store, counter *layout.Counter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	var ranking layout.Ranking
	if counter != nil {
		ranking = counter
	}
	return &Service{
		store:      store,
		counter:    counter,
		classifier: layout.NewClassifier(ranking),
		logger:     logger,
	}
}

// GenerateRequest represents configuration generation parameters.
type GenerateRequest struct {
	BankID      string
	Name        string
	Content     string
	Kind        string // optional override: 240, 400, cnab240, cnab400
	Persist     bool
	MakeDefault bool
}

// Generate builds a configuration from sample content and optionally stores it.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*entity.LayoutConfiguration, error) {
	validator := common.NewValidator()
	validator.Field("bank_id", req.BankID, common.Required)
	validator.Field("name", req.Name, common.Required)
	var kind constants.Kind
	if strings.TrimSpace(req.Kind) != "" {
		k, err := constants.ParseKind(req.Kind)
		if err != nil {
			validator.Add("kind", req.Kind, "must be 240 or 400")
		}
		kind = k
	}
	if err := common.ValidateAndReturnError(validator); err != nil {
		return nil, err
	}

	gen := &layoutconfig.Generator{Classifier: s.classifier}
	cfg := gen.GenerateFromContent(req.Content, req.BankID, req.Name, kind)
	cfg.IsDefault = req.MakeDefault
	s.logger.Info("configuration generated", "bank_id", cfg.BankID, "kind", cfg.Kind, "records", len(cfg.Records), "persist", req.Persist)
	if !req.Persist {
		return cfg, nil
	}
	return s.Save(ctx, cfg)
}

// Save validates and stores a configuration.
func (s *Service) Save(ctx context.Context, cfg *entity.LayoutConfiguration) (*entity.LayoutConfiguration, error) {
	if err := layoutconfig.Validate(cfg); err != nil {
		s.logger.Warn("configuration rejected", "bank_id", cfg.BankID, "error", err)
		return nil, err
	}
	saved, err := s.store.Upsert(ctx, cfg)
	if err != nil {
		return nil, common.WrapError(err, "save configuration")
	}
	return saved, nil
}

// Import decodes a JSON configuration, validates it against the schema and
// stores it.
func (s *Service) Import(ctx context.Context, data []byte) (*entity.LayoutConfiguration, error) {
	cfg, err := layoutconfig.Decode(data)
	if err != nil {
		return nil, err
	}
	return s.Save(ctx, cfg)
}

// Get returns a configuration by id.
func (s *Service) Get(ctx context.Context, id string) (*entity.LayoutConfiguration, error) {
	validator := common.NewValidator()
	validator.Field("configuration_id", strings.TrimSpace(id), common.Required, common.UUID)
	if err := common.ValidateAndReturnError(validator); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, uuid.MustParse(strings.TrimSpace(id)))
}

// GetDefault returns the default configuration of a bank.
func (s *Service) GetDefault(ctx context.Context, bankID string) (*entity.LayoutConfiguration, error) {
	if strings.TrimSpace(bankID) == "" {
		return nil, common.InvalidArgumentError("bank_id is required")
	}
	return s.store.GetDefault(ctx, strings.TrimSpace(bankID))
}

// List returns the stored configurations, optionally of one bank.
func (s *Service) List(ctx context.Context, bankID string) ([]*entity.LayoutConfiguration, error) {
	return s.store.List(ctx, strings.TrimSpace(bankID))
}

// ExtractRequest names the configuration to extract with: an explicit id,
// or the bank's default when the id is empty.
type ExtractRequest struct {
	BankID          string
	ConfigurationID string
	Content         string
}

// ExtractResult carries the extracted records and a per-type line count.
type ExtractResult struct {
	Configuration *entity.LayoutConfiguration
	Records       []entity.ExtractedRecord
	Lines         int
	Types         map[constants.RecordType]int
}

// Extract bulk-extracts content with a stored configuration.
func (s *Service) Extract(ctx context.Context, req ExtractRequest) (*ExtractResult, error) {
	var (
		cfg *entity.LayoutConfiguration
		err error
	)
	if strings.TrimSpace(req.ConfigurationID) != "" {
		cfg, err = s.Get(ctx, req.ConfigurationID)
	} else {
		cfg, err = s.GetDefault(ctx, req.BankID)
	}
	if err != nil {
		return nil, err
	}
	return s.ExtractWith(cfg, req.Content), nil
}

// ExtractWith bulk-extracts content with cfg and records the classified
// types against the configuration's bank.
func (s *Service) ExtractWith(cfg *entity.LayoutConfiguration, content string) *ExtractResult {
	lines := s.classifier.ClassifyAll(cfg.BankID, content, cfg.Kind)
	types := make(map[constants.RecordType]int)
	for _, l := range lines {
		types[l.Type]++
		if s.counter != nil {
			s.counter.Record(cfg.BankID, l.Type)
		}
	}
	records := extract.AllWith(s.classifier, content, cfg)
	s.logger.Info("records extracted", "bank_id", cfg.BankID, "configuration_id", cfg.ID, "lines", len(lines), "records", len(records))
	return &ExtractResult{
		Configuration: cfg,
		Records:       records,
		Lines:         len(lines),
		Types:         types,
	}
}
