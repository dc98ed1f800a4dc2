package layout

import (
	"github.com/joseph-ayodele/bankfiles/constants"
	"github.com/joseph-ayodele/bankfiles/internal/entity"
)

// Signature identifies a record type by fixed byte positions.
type Signature struct {
	Type   constants.RecordType
	Checks []entity.PositionCheck
}

// Matches reports whether every check holds on line.
func (s Signature) Matches(line string) bool {
	for _, c := range s.Checks {
		if !c.Matches(line) {
			return false
		}
	}
	return len(s.Checks) > 0
}

func sig(t constants.RecordType, checks ...entity.PositionCheck) Signature {
	return Signature{Type: t, Checks: checks}
}

func at(pos int, value string) entity.PositionCheck {
	return entity.PositionCheck{Pos: pos, Value: value}
}

// Positions of the record code and, for CNAB 240, the segment letter.
const (
	codePos240    = 8
	segmentPos240 = 14
	codePos400    = 1
)

// Signatures returns the static first-match table for a kind. The slice is
// freshly allocated on every call.
func Signatures(kind constants.Kind) []Signature {
	if kind == constants.Kind240 {
		return []Signature{
			sig(constants.DetailSegmentP, at(codePos240, "3"), at(segmentPos240, "P")),
			sig(constants.DetailSegmentQ, at(codePos240, "3"), at(segmentPos240, "Q")),
			sig(constants.DetailSegmentR, at(codePos240, "3"), at(segmentPos240, "R")),
			sig(constants.DetailSegmentA, at(codePos240, "3"), at(segmentPos240, "A")),
			sig(constants.DetailSegmentB, at(codePos240, "3"), at(segmentPos240, "B")),
			sig(constants.Detail, at(codePos240, "3")),
			sig(constants.HeaderFile, at(codePos240, "0")),
			sig(constants.HeaderBatch, at(codePos240, "1")),
			sig(constants.TrailerBatch, at(codePos240, "5")),
			sig(constants.TrailerFile, at(codePos240, "9")),
		}
	}
	return []Signature{
		sig(constants.HeaderFile, at(codePos400, "0")),
		sig(constants.Detail, at(codePos400, "1")),
		sig(constants.Detail, at(codePos400, "7")),
		sig(constants.TrailerFile, at(codePos400, "9")),
	}
}

// Classify maps a line to its record type using the static table for kind.
// Lines matching no signature are constants.Unknown.
func Classify(line string, kind constants.Kind) constants.RecordType {
	return match(Signatures(kind), line)
}

func match(table []Signature, line string) constants.RecordType {
	for _, s := range table {
		if s.Matches(line) {
			return s.Type
		}
	}
	return constants.Unknown
}

// Ranking orders a signature table for one bank. Implementations keep their
// own state; the classifier never mutates it.
type Ranking interface {
	Rank(bankID string, kind constants.Kind, table []Signature) []Signature
}

// Classifier is the per-bank extension point over the static tables.
// The zero value behaves exactly like Classify.
type Classifier struct {
	Ranking Ranking
}

// NewClassifier returns a classifier ordered by r (nil keeps static order).
func NewClassifier(r Ranking) *Classifier {
	return &Classifier{Ranking: r}
}

// ClassifyFor classifies line using the ranked table for bankID.
func (c *Classifier) ClassifyFor(bankID, line string, kind constants.Kind) constants.RecordType {
	table := Signatures(kind)
	if c != nil && c.Ranking != nil {
		table = c.Ranking.Rank(bankID, kind, table)
	}
	return match(table, line)
}
