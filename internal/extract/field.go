// Package extract pulls formatted field values out of fixed-width lines.
package extract

import (
	"strings"

	"github.com/joseph-ayodele/bankfiles/constants"
	"github.com/joseph-ayodele/bankfiles/internal/entity"
	"github.com/joseph-ayodele/bankfiles/internal/format"
)

// Field extracts and formats one field from line. Positions count
// characters, not bytes. It never fails: positions beyond the line yield "",
// and values that do not parse under a numeric format pass through trimmed.
func Field(line string, def entity.FieldDefinition) string {
	raw := strings.TrimSpace(entity.Slice(line, def.Start, def.End))

	switch {
	case def.Format == constants.FormatCurrencyCents:
		if v, ok := format.Cents(raw); ok {
			return v
		}
		return raw
	case def.Format.IsDate():
		return format.DayMonthYear(raw)
	}
	return raw
}
