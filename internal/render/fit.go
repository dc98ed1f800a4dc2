package render

import (
	"strings"

	"github.com/joseph-ayodele/bankfiles/internal/entity"
)

const (
	// PointsPerMM converts millimetres to PDF points.
	PointsPerMM = 72.0 / 25.4

	Inset           = 2.0
	BaselineOffset  = 3.0
	MinFontSize     = 6.0
	DefaultFontSize = 10.0
)

// Rect is a field rectangle in points with a top-left origin.
type Rect struct {
	X, Y, W, H float64
}

// Bottom is the y coordinate of the lower edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// ToPoints converts a field's millimetre rectangle.
func ToPoints(f entity.TemplateField) Rect {
	return Rect{
		X: f.X * PointsPerMM,
		Y: f.Y * PointsPerMM,
		W: f.Width * PointsPerMM,
		H: f.Height * PointsPerMM,
	}
}

// Measurer reports the rendered width of s in points.
type Measurer interface {
	StringWidth(font string, size float64, s string) float64
}

// FitFontSize scales size down so that text of measured width fits maxWidth.
// Width is linear in size. The result never drops below MinFontSize, so text
// may still overflow at the floor.
func FitFontSize(width, size, maxWidth float64) float64 {
	if width <= maxWidth || width <= 0 {
		return size
	}
	scaled := size * maxWidth / width
	if scaled < MinFontSize {
		return MinFontSize
	}
	return scaled
}

// AlignX positions text of the given width inside r.
func AlignX(r Rect, width float64, alignment string) float64 {
	switch strings.ToLower(strings.TrimSpace(alignment)) {
	case "right":
		return r.X + r.W - Inset - width
	case "center", "centre":
		return r.X + (r.W-width)/2
	}
	return r.X + Inset
}
