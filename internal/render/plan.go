package render

import (
	"github.com/joseph-ayodele/bankfiles/internal/barcode"
	"github.com/joseph-ayodele/bankfiles/internal/entity"
)

// Op is one drawing operation on the page.
type Op struct {
	Field   string
	Barcode bool
	Rect    Rect

	// barcode
	Digits string

	// text
	Text     string
	Font     string
	Size     float64
	X        float64
	Baseline float64
}

// Plan resolves every field of a template against a record and returns the
// operations to draw, in field order. Fields that resolve to nothing are
// skipped.
func Plan(tpl *entity.Template, fields []entity.TemplateField, values map[string]any, m Measurer) []Op {
	ops := make([]Op, 0, len(fields))
	for _, f := range fields {
		r := ToPoints(f)
		if f.IsBarcode {
			digits := BarcodeValue(values)
			if digits == "" {
				continue
			}
			ops = append(ops, Op{Field: f.Key, Barcode: true, Rect: r, Digits: digits})
			continue
		}

		raw := ResolveValue(f, values)
		if raw == "" && f.IsDigitable && tpl.RequiresCheckDigit {
			raw = barcode.DigitableLine(BarcodeValue(values))
		}
		text := FormatValue(raw, f.Format)
		if text == "" {
			continue
		}

		font := ResolveFont(f.FontFamily)
		size := f.FontSize
		if size <= 0 {
			size = DefaultFontSize
		}
		size = FitFontSize(m.StringWidth(font, size, text), size, r.W-2*Inset)
		width := m.StringWidth(font, size, text)

		ops = append(ops, Op{
			Field:    f.Key,
			Rect:     r,
			Text:     text,
			Font:     font,
			Size:     size,
			X:        AlignX(r, width, f.Alignment),
			Baseline: r.Bottom() - BaselineOffset,
		})
	}
	return ops
}
