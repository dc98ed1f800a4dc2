package server

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/bankfiles/internal/common"
	"github.com/joseph-ayodele/bankfiles/internal/entity"
	"github.com/joseph-ayodele/bankfiles/internal/layout"
	"github.com/joseph-ayodele/bankfiles/internal/services/layouts"
)

// SlipRenderer renders one payment slip.
type SlipRenderer interface {
	Render(ctx context.Context, templateID, recordID uuid.UUID) ([]byte, error)
}

// LayoutServer implements LayoutServiceServer on top of the layout service
// and the slip renderer.
type LayoutServer struct {
	layouts  *layouts.Service
	renderer SlipRenderer
	logger   *slog.Logger
}

func NewLayoutServer(l *layouts.Service, r SlipRenderer, logger *slog.Logger) *LayoutServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LayoutServer{layouts: l, renderer: r, logger: logger}
}

// DetectKind reports the kind of the content and how many lines it holds.
func (s *LayoutServer) DetectKind(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	content := req.GetFields()["content"].GetStringValue()
	kind := layout.Detect(content)
	return structpb.NewStruct(map[string]any{
		"kind":  string(kind),
		"lines": len(layout.Lines(content)),
	})
}

// GenerateConfiguration builds a configuration from sample content.
func (s *LayoutServer) GenerateConfiguration(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	cfg, err := s.layouts.Generate(ctx, layouts.GenerateRequest{
		BankID:      firstNonEmpty(str(req, "bank_id"), common.BankIDFromContext(ctx)),
		Name:        str(req, "name"),
		Content:     req.GetFields()["content"].GetStringValue(),
		Kind:        str(req, "kind"),
		Persist:     boolean(req, "persist"),
		MakeDefault: boolean(req, "make_default"),
	})
	if err != nil {
		return nil, s.fail(ctx, "generate configuration", err)
	}
	return toStruct(cfg)
}

// GetConfiguration returns a configuration by id, or the bank's default
// when no id is given.
func (s *LayoutServer) GetConfiguration(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var (
		cfg *entity.LayoutConfiguration
		err error
	)
	if id := str(req, "id"); id != "" {
		cfg, err = s.layouts.Get(ctx, id)
	} else {
		cfg, err = s.layouts.GetDefault(ctx, firstNonEmpty(str(req, "bank_id"), common.BankIDFromContext(ctx)))
	}
	if err != nil {
		return nil, s.fail(ctx, "get configuration", err)
	}
	return toStruct(cfg)
}

// ExtractRecords bulk-extracts content with a stored configuration.
func (s *LayoutServer) ExtractRecords(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	res, err := s.layouts.Extract(ctx, layouts.ExtractRequest{
		BankID:          firstNonEmpty(str(req, "bank_id"), common.BankIDFromContext(ctx)),
		ConfigurationID: str(req, "configuration_id"),
		Content:         req.GetFields()["content"].GetStringValue(),
	})
	if err != nil {
		return nil, s.fail(ctx, "extract records", err)
	}
	return toStruct(map[string]any{
		"configuration_id": res.Configuration.ID.String(),
		"lines":            res.Lines,
		"types":            res.Types,
		"records":          res.Records,
	})
}

// RenderSlip renders the record onto the template and returns the PDF bytes.
func (s *LayoutServer) RenderSlip(ctx context.Context, req *structpb.Struct) (*wrapperspb.BytesValue, error) {
	validator := common.NewValidator()
	validator.Field("template_id", str(req, "template_id"), common.Required, common.UUID)
	validator.Field("record_id", str(req, "record_id"), common.Required, common.UUID)
	if err := common.ValidateAndReturnError(validator); err != nil {
		return nil, err
	}
	templateID := uuid.MustParse(str(req, "template_id"))
	recordID := uuid.MustParse(str(req, "record_id"))

	pdf, err := s.renderer.Render(ctx, templateID, recordID)
	if err != nil {
		return nil, s.fail(ctx, "render slip", err)
	}
	return wrapperspb.Bytes(pdf), nil
}

func (s *LayoutServer) fail(ctx context.Context, op string, err error) error {
	s.logger.Warn(op+" failed", "request_id", common.RequestIDFromContext(ctx), "error", err)
	return common.ToStatus(err)
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}
