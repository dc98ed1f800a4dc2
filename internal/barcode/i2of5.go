// Package barcode encodes digit strings as Interleaved 2 of 5 symbols and
// derives the digitable line printed under a payment slip barcode.
package barcode

import (
	"strings"

	"github.com/joseph-ayodele/bankfiles/internal/format"
)

// Module widths in narrow units.
const (
	Narrow = 1
	Wide   = 3

	// QuietZone is the blank lead-in, in narrow units.
	QuietZone = 2 * Narrow
)

// Module is one bar or space of the symbol.
type Module struct {
	Bar   bool
	Width int
}

func (m Module) String() string {
	if m.Bar {
		return "B" + string(rune('0'+m.Width))
	}
	return "S" + string(rune('0'+m.Width))
}

// patterns gives the five element widths (n=narrow, w=wide) per digit.
var patterns = [10]string{
	"nnwwn", // 0
	"wnnnw", // 1
	"nwnnw", // 2
	"wwnnn", // 3
	"nnwnw", // 4
	"wnwnn", // 5
	"nwwnn", // 6
	"nnnww", // 7
	"wnnwn", // 8
	"nwnwn", // 9
}

var (
	startPattern = []Module{{true, Narrow}, {false, Narrow}, {true, Narrow}, {false, Narrow}}
	stopPattern  = []Module{{true, Wide}, {false, Narrow}, {true, Narrow}}
)

func width(c byte) int {
	if c == 'w' {
		return Wide
	}
	return Narrow
}

// Normalize strips non-digits and left-pads odd-length input with a single
// zero so it can be consumed in pairs.
func Normalize(s string) string {
	d := format.Digits(s)
	if len(d)%2 == 1 {
		d = "0" + d
	}
	return d
}

// Encode returns the module sequence for s: start pattern, one interleaved
// bar/space group per digit pair, stop pattern.
func Encode(s string) []Module {
	digits := Normalize(s)
	out := make([]Module, 0, len(startPattern)+len(digits)*5+len(stopPattern))
	out = append(out, startPattern...)
	for i := 0; i+1 < len(digits); i += 2 {
		out = append(out, Pair(digits[i], digits[i+1])...)
	}
	return append(out, stopPattern...)
}

// Pair interleaves the bars of digit a with the spaces of digit b.
func Pair(a, b byte) []Module {
	bars := patterns[a-'0']
	spaces := patterns[b-'0']
	out := make([]Module, 0, 10)
	for k := 0; k < 5; k++ {
		out = append(out, Module{Bar: true, Width: width(bars[k])}, Module{Bar: false, Width: width(spaces[k])})
	}
	return out
}

// TotalUnits is the symbol width in narrow units, quiet zone included.
func TotalUnits(modules []Module) int {
	n := QuietZone
	for _, m := range modules {
		n += m.Width
	}
	return n
}

// Pattern renders modules compactly, e.g. "B1 S1 B3".
func Pattern(modules []Module) string {
	parts := make([]string, len(modules))
	for i, m := range modules {
		parts[i] = m.String()
	}
	return strings.Join(parts, " ")
}
