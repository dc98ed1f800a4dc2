package extract

import (
	"github.com/joseph-ayodele/bankfiles/internal/entity"
	"github.com/joseph-ayodele/bankfiles/internal/layout"
)

// All extracts one record per detail line of content using cfg. Lines are
// classified with the static signature tables.
func All(content string, cfg *entity.LayoutConfiguration) []entity.ExtractedRecord {
	return AllWith(nil, content, cfg)
}

// AllWith is All with a bank-ranked classifier (nil means static order).
//
// Only detail, segment P and segment Q lines are extracted. Fields come from
// the nested layout for the line's type, falling back to the flattened legacy
// descriptors when the configuration has no nested layout for it. A record
// whose values are all empty is dropped.
func AllWith(c *layout.Classifier, content string, cfg *entity.LayoutConfiguration) []entity.ExtractedRecord {
	if cfg == nil {
		return nil
	}
	var out []entity.ExtractedRecord
	for _, line := range c.ClassifyAll(cfg.BankID, content, cfg.Kind) {
		if !line.Type.IsExtractable() {
			continue
		}
		fields := fieldsFor(cfg, line)
		rec := make(entity.ExtractedRecord, len(fields))
		populated := false
		for _, f := range fields {
			if !f.UsedInOutput || f.Destination == "" {
				continue
			}
			v := Field(line.Text, f)
			rec[f.Destination] = v
			if v != "" {
				populated = true
			}
		}
		if populated {
			out = append(out, rec)
		}
	}
	return out
}

func fieldsFor(cfg *entity.LayoutConfiguration, line layout.Line) []entity.FieldDefinition {
	if rl, ok := cfg.Layout(line.Type); ok {
		return rl.Fields
	}

	legacy := cfg.Legacy()
	key := line.Type.Key(cfg.Kind)
	keyed := false
	for _, l := range legacy {
		if l.RecordType != "" {
			keyed = true
			break
		}
	}

	var fields []entity.FieldDefinition
	for _, l := range legacy {
		if keyed && l.RecordType != key {
			continue
		}
		f := l.Definition()
		if f.Destination == "" {
			f.Destination = entity.Slug(f.Name)
		}
		fields = append(fields, f)
	}
	return fields
}
