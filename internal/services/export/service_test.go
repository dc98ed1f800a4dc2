package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/bankfiles/constants"
	"github.com/joseph-ayodele/bankfiles/internal/entity"
	"github.com/joseph-ayodele/bankfiles/internal/layoutconfig"
)

func TestColumns(t *testing.T) {
	cols := Columns([]entity.ExtractedRecord{
		{"valor": "R$ 1,00", "nosso_numero": "1"},
		{"pagador_nome": "Ana"},
	})
	assert.Equal(t, []string{"nosso_numero", "pagador_nome", "valor"}, cols)
}

func TestRecordsXLSX(t *testing.T) {
	svc := NewService(nil)
	out, err := svc.RecordsXLSX([]entity.ExtractedRecord{
		{"valor": "R$ 150,50", "nosso_numero": "12345"},
		{"pagador_nome": "FULANO DE TAL"},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Registros"}, f.GetSheetList())
	rows, err := f.GetRows("Registros")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"nosso_numero", "pagador_nome", "valor"}, rows[0])
	assert.Equal(t, []string{"12345", "", "R$ 150,50"}, rows[1])
	assert.Equal(t, []string{"", "FULANO DE TAL"}, rows[2])
}

func TestConfigurationXLSX(t *testing.T) {
	svc := NewService(nil)
	cfg := layoutconfig.GenerateFromContent("", "341", "itau", constants.Kind400)

	out, err := svc.ConfigurationXLSX(cfg)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Layout")
	require.NoError(t, err)
	total := 0
	for _, r := range cfg.Records {
		total += len(r.Fields)
	}
	assert.Len(t, rows, total+1)
	assert.Equal(t, "Registro", rows[0][0])
	assert.Equal(t, string(constants.HeaderFile), rows[1][0])
}
