package render

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/gofpdi"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/joseph-ayodele/bankfiles/internal/barcode"
)

// A4 is used when a template declares no page size.
const (
	A4WidthMM  = 210.0
	A4HeightMM = 297.0
)

// documentEpoch is stamped as the creation date so equal inputs produce
// equal bytes.
var documentEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// winAnsi encodes text for the core fonts.
var winAnsi = encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())

func toWinAnsi(s string) string {
	out, err := winAnsi.String(s)
	if err != nil {
		return s
	}
	return out
}

// page wraps a single-page gofpdf document.
type page struct {
	pdf *gofpdf.Fpdf
}

func newPage(widthPt, heightPt float64, compress bool) *page {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: widthPt, Ht: heightPt},
	})
	pdf.SetCreationDate(documentEpoch)
	pdf.SetCatalogSort(true)
	pdf.SetCompression(compress)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	return &page{pdf: pdf}
}

// importBackground copies page 1 of background over the whole page.
func (p *page) importBackground(background []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse background page: %v", r)
		}
	}()
	if !bytes.HasPrefix(bytes.TrimLeft(background, " \t\r\n"), []byte("%PDF-")) {
		return fmt.Errorf("background is not a PDF document")
	}
	w, h := p.pdf.GetPageSize()
	rs := io.ReadSeeker(bytes.NewReader(background))
	imp := gofpdi.NewImporter()
	tpl := imp.ImportPageFromStream(p.pdf, &rs, 1, "/MediaBox")
	if err := p.pdf.Error(); err != nil {
		return fmt.Errorf("import background page: %w", err)
	}
	imp.UseImportedTemplate(p.pdf, tpl, 0, 0, w, h)
	return p.pdf.Error()
}

// StringWidth implements Measurer with the core font metrics.
func (p *page) StringWidth(font string, size float64, s string) float64 {
	p.pdf.SetFont(font, "", size)
	return p.pdf.GetStringWidth(toWinAnsi(s))
}

// Rect implements barcode.Canvas.
func (p *page) Rect(x, y, w, h float64, style string) {
	p.pdf.Rect(x, y, w, h, style)
}

func (p *page) draw(ops []Op) {
	p.pdf.SetFillColor(0, 0, 0)
	p.pdf.SetTextColor(0, 0, 0)
	for _, op := range ops {
		if op.Barcode {
			barcode.Draw(p, op.Digits, op.Rect.X, op.Rect.Y, op.Rect.W, op.Rect.H)
			continue
		}
		p.pdf.SetFont(op.Font, "", op.Size)
		p.pdf.Text(op.X, op.Baseline, toWinAnsi(op.Text))
	}
}

func (p *page) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write document: %w", err)
	}
	out, err := canonicalize(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("canonicalize document: %w", err)
	}
	return out, nil
}
