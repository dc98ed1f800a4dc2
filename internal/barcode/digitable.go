package barcode

import (
	"strings"

	"github.com/joseph-ayodele/bankfiles/internal/format"
)

// digitableBlocks are the block sizes of the digitable line.
var digitableBlocks = [5]int{5, 5, 5, 6, 5}

// DigitableLine groups the digits of a barcode value as
// "AAAAA.BBBBB CCCCC.DDDDDD EEEEE", appending any remaining digits after a
// space. Values with fewer digits than the five blocks need are returned as
// their digits.
func DigitableLine(value string) string {
	d := format.Digits(value)
	need := 0
	for _, n := range digitableBlocks {
		need += n
	}
	if len(d) < need {
		return d
	}

	blocks := make([]string, 0, len(digitableBlocks))
	pos := 0
	for _, n := range digitableBlocks {
		blocks = append(blocks, d[pos:pos+n])
		pos += n
	}
	var b strings.Builder
	b.WriteString(blocks[0] + "." + blocks[1] + " " + blocks[2] + "." + blocks[3] + " " + blocks[4])
	if pos < len(d) {
		b.WriteString(" " + d[pos:])
	}
	return b.String()
}
