package entity

import (
	"unicode/utf8"

	"github.com/joseph-ayodele/bankfiles/constants"
)

// FieldDefinition declares one fixed-width field of a record layout.
// Positions are 1-based and inclusive.
type FieldDefinition struct {
	Name         string           `json:"name"`
	Start        int              `json:"start"`
	End          int              `json:"end"`
	Format       constants.Format `json:"format,omitempty"`
	Destination  string           `json:"destination,omitempty"`
	UsedInOutput bool             `json:"used_in_output"`
	Color        string           `json:"color,omitempty"`
	Example      string           `json:"example,omitempty"`
}

// Width is the number of characters the field spans.
func (f FieldDefinition) Width() int {
	return f.End - f.Start + 1
}

// PositionCheck expects Value at the 1-based position Pos.
type PositionCheck struct {
	Pos   int    `json:"pos"`
	Value string `json:"value"`
}

// Matches reports whether line carries Value starting at character Pos.
func (c PositionCheck) Matches(line string) bool {
	return c.Pos >= 1 && Slice(line, c.Pos, c.Pos-1+utf8.RuneCountInString(c.Value)) == c.Value
}

// Slice returns the characters at 1-based positions start..end inclusive, or
// "" when the range falls outside line.
func Slice(line string, start, end int) string {
	if start < 1 || start > end {
		return ""
	}
	pos, from := 0, -1
	for i := range line {
		pos++
		if pos == start {
			from = i
		}
		if pos == end+1 {
			return line[from:i]
		}
	}
	if pos == end && from >= 0 {
		return line[from:]
	}
	return ""
}

// RecordLayout is one record type of a file kind with its ordered fields.
type RecordLayout struct {
	Type        constants.RecordType `json:"type"`
	Code        string               `json:"code"`
	Segment     string               `json:"segment,omitempty"`
	Description string               `json:"description,omitempty"`
	Signature   []PositionCheck      `json:"signature,omitempty"`
	Fields      []FieldDefinition    `json:"fields"`
}

// Key is the record-type key of the flattened view (code + segment letter).
func (r RecordLayout) Key() string {
	return r.Code + r.Segment
}

// Clone returns a deep copy so catalog entries are never shared.
func (r RecordLayout) Clone() RecordLayout {
	out := r
	out.Signature = append([]PositionCheck(nil), r.Signature...)
	out.Fields = append([]FieldDefinition(nil), r.Fields...)
	return out
}
