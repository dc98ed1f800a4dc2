package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/bankfiles/constants"
)

// LegacyField is the flattened, backward-compatible field descriptor.
type LegacyField struct {
	RecordType   string           `json:"record_type"`
	Name         string           `json:"name"`
	Start        int              `json:"start"`
	End          int              `json:"end"`
	Format       constants.Format `json:"format,omitempty"`
	Destination  string           `json:"destination"`
	UsedInOutput bool             `json:"used_in_output"`
	Color        string           `json:"color,omitempty"`
}

// Definition converts the descriptor back to a nested field definition.
func (l LegacyField) Definition() FieldDefinition {
	return FieldDefinition{
		Name:         l.Name,
		Start:        l.Start,
		End:          l.End,
		Format:       l.Format,
		Destination:  l.Destination,
		UsedInOutput: l.UsedInOutput,
		Color:        l.Color,
	}
}

// LayoutConfiguration is a persistable field-layout configuration.
// Records is canonical; LegacyFields is its flattened projection, kept for
// consumers that only understand the older schema.
type LayoutConfiguration struct {
	ID           uuid.UUID      `json:"id"`
	BankID       string         `json:"bank_id"`
	Kind         constants.Kind `json:"kind"`
	Name         string         `json:"name"`
	Description  string         `json:"description,omitempty"`
	IsDefault    bool           `json:"is_default"`
	Records      []RecordLayout `json:"records,omitempty"`
	LegacyFields []LegacyField  `json:"fields,omitempty"`
	UpdatedAt    time.Time      `json:"updated_at,omitempty"`
}

// Layout returns the nested layout for a record type, if any.
func (c *LayoutConfiguration) Layout(t constants.RecordType) (RecordLayout, bool) {
	for _, r := range c.Records {
		if r.Type == t {
			return r, true
		}
	}
	return RecordLayout{}, false
}

// Legacy returns the flattened view. When nested records exist the view is
// projected from them; otherwise the stored descriptors are returned as-is.
func (c *LayoutConfiguration) Legacy() []LegacyField {
	if len(c.Records) == 0 {
		return c.LegacyFields
	}
	return Project(c.Records)
}

// Project flattens nested record layouts into legacy descriptors.
func Project(records []RecordLayout) []LegacyField {
	var out []LegacyField
	for _, r := range records {
		for _, f := range r.Fields {
			dest := f.Destination
			if dest == "" {
				dest = Slug(f.Name)
			}
			out = append(out, LegacyField{
				RecordType:   r.Key(),
				Name:         f.Name,
				Start:        f.Start,
				End:          f.End,
				Format:       f.Format,
				Destination:  dest,
				UsedInOutput: f.UsedInOutput,
				Color:        f.Color,
			})
		}
	}
	return out
}

// ExtractedRecord maps destination keys to formatted values for one line.
type ExtractedRecord map[string]string
