package render

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/joseph-ayodele/bankfiles/constants"
	"github.com/joseph-ayodele/bankfiles/internal/entity"
	"github.com/joseph-ayodele/bankfiles/internal/format"
)

// LiteralPrefix marks a field source that is rendered as-is.
const LiteralPrefix = "literal:"

// BarcodeKeys are the record keys holding the barcode number, in lookup order.
var BarcodeKeys = []string{"codigo_barras", "codigoBarras", "barcode"}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// ResolveValue returns the raw text for a field: the literal after
// LiteralPrefix, or the record value named by the trailing segment of the
// source path. A field with no source reads its own key.
func ResolveValue(field entity.TemplateField, values map[string]any) string {
	src := strings.TrimSpace(field.Source)
	if strings.HasPrefix(src, LiteralPrefix) {
		return strings.TrimPrefix(src, LiteralPrefix)
	}
	key := field.Key
	if src != "" {
		key = trailingSegment(src)
	}
	return Stringify(values[key])
}

func trailingSegment(path string) string {
	if i := strings.LastIndexAny(path, "./"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// BarcodeValue returns the first non-empty barcode key of the record,
// reduced to its digits.
func BarcodeValue(values map[string]any) string {
	for _, k := range BarcodeKeys {
		if d := format.Digits(Stringify(values[k])); d != "" {
			return d
		}
	}
	return ""
}

// Stringify converts a decoded record value to display text.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format("02/01/2006")
	case decimal.Decimal:
		return t.String()
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}

// FormatValue applies a display format. Values a format cannot parse are
// returned unchanged; an unknown format returns the text as is.
func FormatValue(s string, f constants.ValueFormat) string {
	if s == "" {
		return ""
	}
	switch f {
	case constants.ValueCurrency:
		if out, ok := format.Amount(s); ok {
			return out
		}
		return s
	case constants.ValueDate:
		return formatDate(s)
	case constants.ValueCNPJ:
		return format.CNPJ(s)
	case constants.ValueUppercase:
		return cases.Upper(language.BrazilianPortuguese).String(s)
	case constants.ValueDigits:
		return format.Digits(s)
	}
	return s
}

func formatDate(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("02/01/2006")
		}
	}
	if d := format.Digits(s); d == s && (len(d) == 6 || len(d) == 8) {
		return format.DayMonthYear(d)
	}
	return s
}
