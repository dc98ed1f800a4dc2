package entity

import (
	"github.com/google/uuid"

	"github.com/joseph-ayodele/bankfiles/constants"
)

// Template describes a payment-slip page: a background and its placed fields.
type Template struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	BackgroundURL      string    `json:"background_url"`
	PageWidthMM        float64   `json:"page_width_mm"`
	PageHeightMM       float64   `json:"page_height_mm"`
	RequiresCheckDigit bool      `json:"requires_check_digit"`
}

// TemplateField places one value on the page. The rectangle is in
// millimetres with a top-left origin.
type TemplateField struct {
	Key         string                `json:"key"`
	Source      string                `json:"source,omitempty"`
	Page        int                   `json:"page"`
	X           float64               `json:"x"`
	Y           float64               `json:"y"`
	Width       float64               `json:"width"`
	Height      float64               `json:"height"`
	FontFamily  string                `json:"font_family,omitempty"`
	FontSize    float64               `json:"font_size"`
	Alignment   string                `json:"alignment,omitempty"`
	Format      constants.ValueFormat `json:"format,omitempty"`
	IsBarcode   bool                  `json:"is_barcode"`
	IsDigitable bool                  `json:"is_digitable"`
}

// DataRecord is one stored record rendered into a slip.
type DataRecord struct {
	ID     uuid.UUID      `json:"id"`
	Values map[string]any `json:"values"`
}
