package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/bankfiles/constants"
)

func TestDefaultCatalog_Slots(t *testing.T) {
	var got240 []constants.RecordType
	for _, r := range DefaultCatalog(constants.Kind240) {
		got240 = append(got240, r.Type)
	}
	assert.Equal(t, []constants.RecordType{
		constants.HeaderFile, constants.HeaderBatch,
		constants.DetailSegmentP, constants.DetailSegmentQ, constants.DetailSegmentR,
		constants.DetailSegmentA, constants.DetailSegmentB,
		constants.TrailerBatch, constants.TrailerFile,
	}, got240)

	var got400 []constants.RecordType
	for _, r := range DefaultCatalog(constants.Kind400) {
		got400 = append(got400, r.Type)
	}
	assert.Equal(t, []constants.RecordType{constants.HeaderFile, constants.Detail, constants.TrailerFile}, got400)
}

func TestDefaultCatalog_FieldsFitLineLength(t *testing.T) {
	for _, kind := range []constants.Kind{constants.Kind240, constants.Kind400} {
		for _, r := range DefaultCatalog(kind) {
			require.NotEmpty(t, r.Fields, r.Type)
			require.NotEmpty(t, r.Signature, r.Type)
			for _, f := range r.Fields {
				assert.GreaterOrEqual(t, f.Start, 1, "%s %s", r.Type, f.Name)
				assert.LessOrEqual(t, f.Start, f.End, "%s %s", r.Type, f.Name)
				assert.LessOrEqual(t, f.End, kind.LineLength(), "%s %s", r.Type, f.Name)
			}
		}
	}
}

func TestDefaultCatalog_IsACopy(t *testing.T) {
	a := DefaultCatalog(constants.Kind400)
	a[0].Fields[0].Name = "changed"
	b := DefaultCatalog(constants.Kind400)
	assert.NotEqual(t, "changed", b[0].Fields[0].Name)
}

func TestDefaultCatalog_Keys(t *testing.T) {
	r := DefaultCatalog(constants.Kind240)[2]
	assert.Equal(t, "3P", r.Key())
	r = DefaultCatalog(constants.Kind400)[1]
	assert.Equal(t, "1", r.Key())
}
