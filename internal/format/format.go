// Package format holds the Brazilian value formatting shared by field
// extraction and slip rendering.
package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// BRL formats an amount as Brazilian currency: "R$ 1.234,56".
func BRL(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	fixed := d.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")
	return sign + "R$ " + group(intPart) + "," + frac
}

// group inserts "." every three digits from the right.
func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Cents parses an integer amount in cents and formats it as BRL.
// ok is false when s is not an integer.
func Cents(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || !isInteger(s) {
		return "", false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return "", false
	}
	return BRL(d.Div(hundred)), true
}

// Amount parses a decimal amount ("1234.5", "1234,50", "R$ 1.234,50") and
// formats it as BRL. ok is false when s carries no parseable number.
func Amount(s string) (string, bool) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	if s == "" {
		return "", false
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return "", false
	}
	return BRL(d), true
}

func isInteger(s string) bool {
	if s[0] == '-' || s[0] == '+' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// DayMonthYear rewrites a ddmmyy or ddmmyyyy string as dd/mm/yyyy. Two-digit
// years are prefixed with "20". Strings shorter than six characters are
// returned unchanged.
func DayMonthYear(s string) string {
	if len(s) < 6 {
		return s
	}
	year := s[4:]
	if len(year) == 2 {
		year = "20" + year
	}
	return s[0:2] + "/" + s[2:4] + "/" + year
}

// Digits strips every non-digit character.
func Digits(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// CNPJ masks a 14-digit company id as 00.000.000/0000-00. Other lengths are
// returned as their digits.
func CNPJ(s string) string {
	d := Digits(s)
	if len(d) != 14 {
		return d
	}
	return d[0:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:14]
}
