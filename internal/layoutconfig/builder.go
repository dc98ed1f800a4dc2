// Package layoutconfig assembles layout configurations from record layouts
// or from sample file content.
package layoutconfig

import (
	"strings"

	"github.com/joseph-ayodele/bankfiles/constants"
	"github.com/joseph-ayodele/bankfiles/internal/entity"
	"github.com/joseph-ayodele/bankfiles/internal/extract"
	"github.com/joseph-ayodele/bankfiles/internal/layout"
)

// BuildFromRecords assembles a configuration from record layouts. The nested
// view is copied from records and the flattened legacy view is projected from
// it in the same pass; destinations missing on a field are filled with the
// slug of its name in both views.
func BuildFromRecords(records []entity.RecordLayout, bankID string, kind constants.Kind, name, description string) *entity.LayoutConfiguration {
	nested := make([]entity.RecordLayout, len(records))
	for i, r := range records {
		r = r.Clone()
		if r.Code == "" {
			r.Code, r.Segment = r.Type.Code(kind)
		}
		for j := range r.Fields {
			if r.Fields[j].Destination == "" {
				r.Fields[j].Destination = entity.Slug(r.Fields[j].Name)
			}
		}
		nested[i] = r
	}
	return &entity.LayoutConfiguration{
		BankID:       strings.TrimSpace(bankID),
		Kind:         kind,
		Name:         strings.TrimSpace(name),
		Description:  strings.TrimSpace(description),
		Records:      nested,
		LegacyFields: entity.Project(nested),
	}
}

// Generator builds configurations from sample content.
type Generator struct {
	Classifier *layout.Classifier
}

// GenerateFromContent resolves the kind (Detect unless kindOverride is set),
// classifies every line and fills each slot of the default catalog with the
// values of the first line of that type as examples. Every catalog slot is
// present in the result even when the content has no line of its type.
func GenerateFromContent(content, bankID, name string, kindOverride constants.Kind) *entity.LayoutConfiguration {
	return (&Generator{}).GenerateFromContent(content, bankID, name, kindOverride)
}

func (g *Generator) GenerateFromContent(content, bankID, name string, kindOverride constants.Kind) *entity.LayoutConfiguration {
	kind := kindOverride
	if !kind.Valid() {
		kind = layout.Detect(content)
	}

	first := make(map[constants.RecordType]string)
	for _, line := range g.Classifier.ClassifyAll(bankID, content, kind) {
		if _, seen := first[line.Type]; !seen {
			first[line.Type] = line.Text
		}
	}

	slots := layout.DefaultCatalog(kind)
	for i := range slots {
		sample, ok := first[slots[i].Type]
		for j := range slots[i].Fields {
			if ok {
				slots[i].Fields[j].Example = extract.Field(sample, slots[i].Fields[j])
			} else {
				slots[i].Fields[j].Example = ""
			}
		}
	}

	description := "Gerado a partir de arquivo de exemplo (CNAB " + string(kind) + ")"
	return BuildFromRecords(slots, bankID, kind, name, description)
}
