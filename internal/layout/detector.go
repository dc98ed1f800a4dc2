// Package layout detects the kind of a bank interchange file, classifies its
// lines into record types and holds the default FEBRABAN record catalogs.
package layout

import (
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/bankfiles/constants"
)

// kind240Threshold is the mean line length at or below which content is
// treated as CNAB 240.
const kind240Threshold = 250

// Lines splits content into its non-blank lines, dropping trailing CR.
func Lines(content string) []string {
	raw := strings.Split(content, "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}

// Detect infers the file kind from the mean line length in characters. Empty content
// defaults to Kind400.
func Detect(content string) constants.Kind {
	lines := Lines(content)
	if len(lines) == 0 {
		return constants.Kind400
	}
	total := 0
	for _, l := range lines {
		total += utf8.RuneCountInString(l)
	}
	if float64(total)/float64(len(lines)) <= kind240Threshold {
		return constants.Kind240
	}
	return constants.Kind400
}
