package layout

import "github.com/joseph-ayodele/bankfiles/constants"

// Line is one non-blank line of file content with its 1-based ordinal.
type Line struct {
	Ordinal int
	Text    string
	Type    constants.RecordType
}

// ClassifyAll splits content and classifies every non-blank line. The
// ordinal counts non-blank lines only.
func ClassifyAll(content string, kind constants.Kind) []Line {
	return (*Classifier)(nil).ClassifyAll("", content, kind)
}

// ClassifyAll is the bank-ranked variant of the package-level ClassifyAll.
func (c *Classifier) ClassifyAll(bankID, content string, kind constants.Kind) []Line {
	raw := Lines(content)
	out := make([]Line, len(raw))
	for i, text := range raw {
		out[i] = Line{Ordinal: i + 1, Text: text, Type: c.ClassifyFor(bankID, text, kind)}
	}
	return out
}
