package repository

import (
	"context"
	"fmt"
	"log/slog"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/bankfiles/constants"
	"github.com/joseph-ayodele/bankfiles/internal/common"
	"github.com/joseph-ayodele/bankfiles/internal/entity"
)

var templateColumns = []string{"id", "name", "background_url", "page_width_mm", "page_height_mm", "requires_check_digit"}

var templateFieldColumns = []string{
	"template_id", "position", "field_key", "source", "page", "x", "y", "width", "height",
	"font_family", "font_size", "alignment", "format", "is_barcode", "is_digitable",
}

type TemplateRepository interface {
	GetTemplate(ctx context.Context, id uuid.UUID) (*entity.Template, error)
	ListTemplateFields(ctx context.Context, templateID uuid.UUID) ([]entity.TemplateField, error)
	ListTemplates(ctx context.Context) ([]*entity.Template, error)
	SaveTemplate(ctx context.Context, tpl *entity.Template, fields []entity.TemplateField) (*entity.Template, error)
}

type templateRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewTemplateRepository(db *DB, logger *slog.Logger) TemplateRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &templateRepository{db: db, logger: logger}
}

func (r *templateRepository) GetTemplate(ctx context.Context, id uuid.UUID) (*entity.Template, error) {
	q, args := entsql.Dialect(r.db.Dialect()).
		Select(templateColumns...).
		From(entsql.Table("templates")).
		Where(entsql.EQ("id", id.String())).
		Query()
	list, err := r.queryTemplates(ctx, q, args)
	if err != nil {
		r.logger.Error("failed to get template", "id", id, "error", err)
		return nil, err
	}
	if len(list) == 0 {
		return nil, common.NotFoundf("template %s", id)
	}
	return list[0], nil
}

func (r *templateRepository) ListTemplates(ctx context.Context) ([]*entity.Template, error) {
	q, args := entsql.Dialect(r.db.Dialect()).
		Select(templateColumns...).
		From(entsql.Table("templates")).
		OrderBy("name").
		Query()
	return r.queryTemplates(ctx, q, args)
}

func (r *templateRepository) queryTemplates(ctx context.Context, q string, args []any) ([]*entity.Template, error) {
	var rows entsql.Rows
	if err := r.db.Driver.Query(ctx, q, args, &rows); err != nil {
		return nil, queryErr("query templates", err)
	}
	defer rows.Close()

	var out []*entity.Template
	for rows.Next() {
		var (
			id string
			t  entity.Template
		)
		if err := rows.Scan(&id, &t.Name, &t.BackgroundURL, &t.PageWidthMM, &t.PageHeightMM, &t.RequiresCheckDigit); err != nil {
			return nil, queryErr("scan template", err)
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("template id %q: %w", id, err)
		}
		t.ID = parsed
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr("iterate templates", err)
	}
	return out, nil
}

// ListTemplateFields returns the fields of a template in drawing order.
func (r *templateRepository) ListTemplateFields(ctx context.Context, templateID uuid.UUID) ([]entity.TemplateField, error) {
	q, args := entsql.Dialect(r.db.Dialect()).
		Select(templateFieldColumns[1:]...).
		From(entsql.Table("template_fields")).
		Where(entsql.EQ("template_id", templateID.String())).
		OrderBy("position").
		Query()
	var rows entsql.Rows
	if err := r.db.Driver.Query(ctx, q, args, &rows); err != nil {
		r.logger.Error("failed to list template fields", "template_id", templateID, "error", err)
		return nil, queryErr("query template fields", err)
	}
	defer rows.Close()

	var out []entity.TemplateField
	for rows.Next() {
		var (
			position int
			format   string
			f        entity.TemplateField
		)
		if err := rows.Scan(&position, &f.Key, &f.Source, &f.Page, &f.X, &f.Y, &f.Width, &f.Height,
			&f.FontFamily, &f.FontSize, &f.Alignment, &format, &f.IsBarcode, &f.IsDigitable); err != nil {
			return nil, queryErr("scan template field", err)
		}
		f.Format = constants.ValueFormat(format)
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr("iterate template fields", err)
	}
	return out, nil
}

// SaveTemplate upserts a template and replaces its fields.
func (r *templateRepository) SaveTemplate(ctx context.Context, tpl *entity.Template, fields []entity.TemplateField) (*entity.Template, error) {
	out := *tpl
	if out.ID == uuid.Nil {
		out.ID = uuid.New()
	}
	d := r.db.Dialect()

	tx, err := r.db.Driver.Tx(ctx)
	if err != nil {
		return nil, queryErr("begin", err)
	}
	rollback := func(op string, err error) (*entity.Template, error) {
		_ = tx.Rollback()
		r.logger.Error("failed to save template", "id", out.ID, "op", op, "error", err)
		return nil, queryErr(op, err)
	}

	q, args := entsql.Dialect(d).
		Insert("templates").
		Columns(templateColumns...).
		Values(out.ID.String(), out.Name, out.BackgroundURL, out.PageWidthMM, out.PageHeightMM, out.RequiresCheckDigit).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues()).
		Query()
	if err := tx.Exec(ctx, q, args, nil); err != nil {
		return rollback("upsert template", err)
	}

	q, args = entsql.Dialect(d).
		Delete("template_fields").
		Where(entsql.EQ("template_id", out.ID.String())).
		Query()
	if err := tx.Exec(ctx, q, args, nil); err != nil {
		return rollback("clear template fields", err)
	}

	if len(fields) > 0 {
		ins := entsql.Dialect(d).Insert("template_fields").Columns(templateFieldColumns...)
		for i, f := range fields {
			page := f.Page
			if page == 0 {
				page = 1
			}
			ins = ins.Values(out.ID.String(), i, f.Key, f.Source, page, f.X, f.Y, f.Width, f.Height,
				f.FontFamily, f.FontSize, f.Alignment, string(f.Format), f.IsBarcode, f.IsDigitable)
		}
		q, args = ins.Query()
		if err := tx.Exec(ctx, q, args, nil); err != nil {
			return rollback("insert template fields", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, queryErr("commit", err)
	}
	r.logger.Info("template saved", "id", out.ID, "name", out.Name, "fields", len(fields))
	return &out, nil
}
