package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/bankfiles/constants"
)

// line240 builds a CNAB 240 line with the record code at 8 and segment at 14.
func line240(code, segment string) string {
	b := []byte(strings.Repeat(" ", 240))
	copy(b[0:], "0010001")
	copy(b[7:], code)
	copy(b[13:], segment)
	return string(b)
}

func line400(code string) string {
	return code + strings.Repeat(" ", 399)
}

func TestClassify_240(t *testing.T) {
	tests := []struct {
		code, segment string
		want          constants.RecordType
	}{
		{"0", "", constants.HeaderFile},
		{"1", "", constants.HeaderBatch},
		{"3", "P", constants.DetailSegmentP},
		{"3", "Q", constants.DetailSegmentQ},
		{"3", "R", constants.DetailSegmentR},
		{"3", "A", constants.DetailSegmentA},
		{"3", "B", constants.DetailSegmentB},
		{"3", "Y", constants.Detail},
		{"5", "", constants.TrailerBatch},
		{"9", "", constants.TrailerFile},
		{"4", "", constants.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.code+tt.segment, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(line240(tt.code, tt.segment), constants.Kind240))
		})
	}
}

func TestClassify_400(t *testing.T) {
	assert.Equal(t, constants.HeaderFile, Classify(line400("0"), constants.Kind400))
	assert.Equal(t, constants.Detail, Classify(line400("1"), constants.Kind400))
	assert.Equal(t, constants.Detail, Classify(line400("7"), constants.Kind400))
	assert.Equal(t, constants.TrailerFile, Classify(line400("9"), constants.Kind400))
	assert.Equal(t, constants.Unknown, Classify(line400("5"), constants.Kind400))
}

func TestClassify_ShortLine(t *testing.T) {
	assert.Equal(t, constants.Unknown, Classify("0010", constants.Kind240))
	assert.Equal(t, constants.Unknown, Classify("", constants.Kind400))
}

func TestClassifyAll_Ordinals(t *testing.T) {
	content := line240("0", "") + "\n\n" + line240("3", "P") + "\n" + line240("9", "")
	lines := ClassifyAll(content, constants.Kind240)
	require.Len(t, lines, 3)
	assert.Equal(t, 1, lines[0].Ordinal)
	assert.Equal(t, 2, lines[1].Ordinal)
	assert.Equal(t, constants.DetailSegmentP, lines[1].Type)
	assert.Equal(t, constants.TrailerFile, lines[2].Type)
}

func TestCounter_RanksByHitsWithoutShadowingSegments(t *testing.T) {
	c := NewCounter()
	for i := 0; i < 5; i++ {
		c.Record("341", constants.Detail)
		c.Record("341", constants.TrailerFile)
	}
	c.Record("341", constants.Unknown)
	assert.Equal(t, 5, c.Hits("341", constants.Detail))
	assert.Equal(t, 0, c.Hits("341", constants.Unknown))
	assert.Equal(t, 0, c.Hits("001", constants.Detail))

	ranked := c.Rank("341", constants.Kind240, Signatures(constants.Kind240))
	require.Len(t, ranked, len(Signatures(constants.Kind240)))

	idx := func(rt constants.RecordType) int {
		for i, s := range ranked {
			if s.Type == rt {
				return i
			}
		}
		return -1
	}
	assert.Less(t, idx(constants.TrailerFile), idx(constants.HeaderFile))
	assert.Less(t, idx(constants.DetailSegmentP), idx(constants.Detail))
	assert.Less(t, idx(constants.DetailSegmentB), idx(constants.Detail))

	cl := NewClassifier(c)
	assert.Equal(t, constants.DetailSegmentQ, cl.ClassifyFor("341", line240("3", "Q"), constants.Kind240))
	assert.Equal(t, constants.Detail, cl.ClassifyFor("341", line240("3", "Z"), constants.Kind240))
	assert.Equal(t, constants.TrailerFile, cl.ClassifyFor("341", line240("9", ""), constants.Kind240))
}

func TestClassifier_NilBehavesLikeClassify(t *testing.T) {
	var c *Classifier
	assert.Equal(t, constants.HeaderBatch, c.ClassifyFor("", line240("1", ""), constants.Kind240))
}
