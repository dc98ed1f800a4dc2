package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/bankfiles/constants"
	"github.com/joseph-ayodele/bankfiles/internal/entity"
	"github.com/joseph-ayodele/bankfiles/internal/layout"
)

type lineBuilder []byte

func blank(n int) lineBuilder {
	return lineBuilder(strings.Repeat(" ", n))
}

// put writes v at the 1-based position start.
func (b lineBuilder) put(start int, v string) lineBuilder {
	copy(b[start-1:], v)
	return b
}

func (b lineBuilder) String() string { return string(b) }

func segment(seg string) lineBuilder {
	return blank(240).put(1, "00100013").put(14, seg)
}

func sample240() string {
	return strings.Join([]string{
		blank(240).put(1, "00100000").String(),
		blank(240).put(1, "00100011").String(),
		segment("P").
			put(38, "00000000000000012345").
			put(78, "15032025").
			put(86, "000000000015050").String(),
		segment("Q").put(34, "FULANO DE TAL").String(),
		segment("R").put(27, "000000000000100").String(),
		blank(240).put(1, "00100015").String(),
		blank(240).put(1, "00199999").String(),
	}, "\n")
}

func TestAll_Nested240(t *testing.T) {
	cfg := &entity.LayoutConfiguration{Kind: constants.Kind240, Records: layout.DefaultCatalog(constants.Kind240)}

	got := All(sample240(), cfg)
	require.Len(t, got, 2)
	assert.Equal(t, "R$ 150,50", got[0]["valor"])
	assert.Equal(t, "15/03/2025", got[0]["vencimento"])
	assert.Equal(t, "00000000000000012345", got[0]["nosso_numero"])
	assert.Equal(t, "FULANO DE TAL", got[1]["pagador_nome"])
	assert.NotContains(t, got[1], "valor")
}

func TestAll_Nested400(t *testing.T) {
	detail := blank(400).put(1, "1").
		put(121, "010224").
		put(127, "0000000001000").
		put(235, "BELTRANO").String()
	content := strings.Join([]string{blank(400).put(1, "0").String(), detail, blank(400).put(1, "9").String()}, "\n")

	cfg := &entity.LayoutConfiguration{Kind: constants.Kind400, Records: layout.DefaultCatalog(constants.Kind400)}
	got := All(content, cfg)
	require.Len(t, got, 1)
	assert.Equal(t, "R$ 10,00", got[0]["valor"])
	assert.Equal(t, "01/02/2024", got[0]["vencimento"])
	assert.Equal(t, "BELTRANO", got[0]["pagador_nome"])
}

func TestAll_LegacyFallback(t *testing.T) {
	cfg := &entity.LayoutConfiguration{
		Kind: constants.Kind240,
		LegacyFields: []entity.LegacyField{
			{RecordType: "3P", Name: "Valor", Start: 86, End: 100, Format: constants.FormatCurrencyCents, Destination: "valor", UsedInOutput: true},
			{RecordType: "3P", Name: "Carteira", Start: 58, End: 58, Destination: "carteira", UsedInOutput: false},
			{RecordType: "3Q", Name: "Nome do Pagador", Start: 34, End: 73, UsedInOutput: true},
		},
	}

	got := All(sample240(), cfg)
	require.Len(t, got, 2)
	assert.Equal(t, entity.ExtractedRecord{"valor": "R$ 150,50"}, got[0])
	assert.Equal(t, entity.ExtractedRecord{"nome_do_pagador": "FULANO DE TAL"}, got[1])
}

func TestAll_UnkeyedLegacyAppliesToEveryDetail(t *testing.T) {
	cfg := &entity.LayoutConfiguration{
		Kind: constants.Kind240,
		LegacyFields: []entity.LegacyField{
			{Name: "Segmento", Start: 14, End: 14, Destination: "segmento", UsedInOutput: true},
		},
	}
	got := All(sample240(), cfg)
	require.Len(t, got, 2)
	assert.Equal(t, "P", got[0]["segmento"])
	assert.Equal(t, "Q", got[1]["segmento"])
}

func TestAll_DropsEmptyRecords(t *testing.T) {
	cfg := &entity.LayoutConfiguration{Kind: constants.Kind240, Records: layout.DefaultCatalog(constants.Kind240)}
	content := segment("P").String() + "\n" + segment("Q").put(34, "X").String()

	got := All(content, cfg)
	require.Len(t, got, 1)
	assert.Equal(t, "X", got[0]["pagador_nome"])
}

func TestAll_NilConfig(t *testing.T) {
	assert.Nil(t, All(sample240(), nil))
}
