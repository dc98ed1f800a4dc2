// Package render draws payment slips: a background page with template
// fields and an Interleaved 2 of 5 barcode placed over it.
package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/bankfiles/internal/common"
	"github.com/joseph-ayodele/bankfiles/internal/entity"
)

// TemplateStore looks up templates and their ordered fields.
type TemplateStore interface {
	GetTemplate(ctx context.Context, id uuid.UUID) (*entity.Template, error)
	ListTemplateFields(ctx context.Context, templateID uuid.UUID) ([]entity.TemplateField, error)
}

// RecordStore looks up the data records rendered into slips.
type RecordStore interface {
	GetRecord(ctx context.Context, id uuid.UUID) (*entity.DataRecord, error)
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithCompression toggles stream compression of the output document.
func WithCompression(on bool) Option {
	return func(r *Renderer) { r.compress = on }
}

// Renderer produces single-page slip documents.
type Renderer struct {
	templates TemplateStore
	records   RecordStore
	pages     PageFetcher
	compress  bool
	logger    *slog.Logger
}

func NewRenderer(templates TemplateStore, records RecordStore, pages PageFetcher, logger *slog.Logger, opts ...Option) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Renderer{
		templates: templates,
		records:   records,
		pages:     pages,
		compress:  true,
		logger:    logger,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Render draws the record onto the template and returns the document bytes.
// A missing template, background page or record aborts with ErrNotFound.
func (r *Renderer) Render(ctx context.Context, templateID, recordID uuid.UUID) ([]byte, error) {
	start := time.Now()

	tpl, err := r.templates.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}

	var (
		fields     []entity.TemplateField
		background []byte
		record     *entity.DataRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		fields, err = r.templates.ListTemplateFields(gctx, tpl.ID)
		return err
	})
	g.Go(func() error {
		b, err := r.pages.Fetch(gctx, tpl.BackgroundURL)
		if err != nil {
			return common.NewAppError("NOT_FOUND", fmt.Sprintf("background page %q", tpl.BackgroundURL), errors.Join(common.ErrNotFound, err))
		}
		background = b
		return nil
	})
	g.Go(func() error {
		var err error
		record, err = r.records.GetRecord(gctx, recordID)
		return err
	})
	if err := g.Wait(); err != nil {
		r.logger.Warn("render.lookup_failed", "template_id", templateID, "record_id", recordID, "error", err)
		return nil, err
	}

	widthMM, heightMM := tpl.PageWidthMM, tpl.PageHeightMM
	if widthMM <= 0 || heightMM <= 0 {
		widthMM, heightMM = A4WidthMM, A4HeightMM
	}
	p := newPage(widthMM*PointsPerMM, heightMM*PointsPerMM, r.compress)
	if err := p.importBackground(background); err != nil {
		return nil, fmt.Errorf("template %s: %w", tpl.ID, err)
	}

	ops := Plan(tpl, fields, record.Values, p)
	p.draw(ops)
	out, err := p.bytes()
	if err != nil {
		return nil, err
	}

	r.logger.Info("render.done",
		"template_id", tpl.ID,
		"record_id", record.ID,
		"fields", len(fields),
		"drawn", len(ops),
		"bytes", len(out),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}
