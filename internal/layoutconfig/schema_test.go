package layoutconfig

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/bankfiles/constants"
	"github.com/joseph-ayodele/bankfiles/internal/common"
)

func TestDecode_Nested(t *testing.T) {
	generated := GenerateFromContent("", "104", "caixa", constants.Kind240)
	data, err := json.Marshal(generated)
	require.NoError(t, err)

	cfg, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "104", cfg.BankID)
	assert.Equal(t, len(generated.Records), len(cfg.Records))
	assert.Equal(t, generated.LegacyFields, cfg.LegacyFields)
}

func TestDecode_LegacyOnly(t *testing.T) {
	data := []byte(`{
		"bank_id": "033",
		"kind": "400",
		"name": "santander antigo",
		"fields": [
			{"record_type": "1", "name": "Valor", "start": 127, "end": 139, "format": "currency_cents", "destination": "valor", "used_in_output": true}
		]
	}`)
	cfg, err := Decode(data)
	require.NoError(t, err)
	assert.Empty(t, cfg.Records)
	require.Len(t, cfg.Legacy(), 1)
	assert.Equal(t, "valor", cfg.Legacy()[0].Destination)
}

func TestDecode_Rejects(t *testing.T) {
	tests := map[string]string{
		"no views":       `{"bank_id": "001", "kind": "240", "name": "x"}`,
		"bad kind":       `{"bank_id": "001", "kind": "300", "name": "x", "fields": []}`,
		"bad format":     `{"bank_id": "001", "kind": "240", "name": "x", "fields": [{"name": "a", "start": 1, "end": 2, "format": "money"}]}`,
		"position zero":  `{"bank_id": "001", "kind": "240", "name": "x", "fields": [{"name": "a", "start": 0, "end": 2}]}`,
		"past line 240":  `{"bank_id": "001", "kind": "240", "name": "x", "fields": [{"name": "a", "start": 230, "end": 250}]}`,
		"not json":       `{`,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrValidation) || errors.Is(err, common.ErrInvalidInput), err.Error())
		})
	}
}
