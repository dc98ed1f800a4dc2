package layouts

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/bankfiles/constants"
	"github.com/joseph-ayodele/bankfiles/internal/common"
	"github.com/joseph-ayodele/bankfiles/internal/layout"
	"github.com/joseph-ayodele/bankfiles/internal/repository"
)

func line(n int, puts map[int]string) string {
	b := []byte(strings.Repeat(" ", n))
	for pos, v := range puts {
		copy(b[pos-1:], v)
	}
	return string(b)
}

func sample240() string {
	return strings.Join([]string{
		line(240, map[int]string{1: "00100000"}),
		line(240, map[int]string{1: "00100011"}),
		line(240, map[int]string{1: "00100013", 14: "P", 78: "15032025", 86: "000000000015050"}),
		line(240, map[int]string{1: "00100013", 14: "Q", 34: "FULANO DE TAL"}),
		line(240, map[int]string{1: "00100015"}),
		line(240, map[int]string{1: "00199999"}),
	}, "\n")
}

func newService(t *testing.T) (*Service, *layout.Counter) {
	t.Helper()
	ctx := context.Background()
	db, err := repository.OpenLocal(ctx, ":memory:", slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { repository.Close(db, slog.Default()) })
	require.NoError(t, repository.Migrate(ctx, db))

	counter := layout.NewCounter()
	return NewService(repository.NewConfigurationRepository(db, nil), counter, nil), counter
}

func TestGenerate_PersistAndExtractWithDefault(t *testing.T) {
	ctx := context.Background()
	svc, counter := newService(t)

	cfg, err := svc.Generate(ctx, GenerateRequest{BankID: "001", Name: "bb cobranca", Content: sample240(), Persist: true, MakeDefault: true})
	require.NoError(t, err)
	assert.Equal(t, constants.Kind240, cfg.Kind)

	p, ok := cfg.Layout(constants.DetailSegmentP)
	require.True(t, ok)
	for _, f := range p.Fields {
		if f.Destination == "valor" {
			assert.Equal(t, "R$ 150,50", f.Example)
		}
	}

	res, err := svc.Extract(ctx, ExtractRequest{BankID: "001", Content: sample240()})
	require.NoError(t, err)
	assert.Equal(t, cfg.ID, res.Configuration.ID)
	assert.Equal(t, 6, res.Lines)
	assert.Equal(t, 1, res.Types[constants.DetailSegmentP])
	require.Len(t, res.Records, 2)
	assert.Equal(t, "R$ 150,50", res.Records[0]["valor"])
	assert.Equal(t, "FULANO DE TAL", res.Records[1]["pagador_nome"])

	assert.Equal(t, 1, counter.Hits("001", constants.DetailSegmentQ))

	byID, err := svc.Extract(ctx, ExtractRequest{ConfigurationID: cfg.ID.String(), Content: sample240()})
	require.NoError(t, err)
	assert.Len(t, byID.Records, 2)
}

func TestGenerate_NotPersisted(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	cfg, err := svc.Generate(ctx, GenerateRequest{BankID: "001", Name: "x", Content: "", Kind: "cnab400"})
	require.NoError(t, err)
	assert.Equal(t, constants.Kind400, cfg.Kind)

	list, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGenerate_InvalidArguments(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Generate(context.Background(), GenerateRequest{Name: "x", Kind: "300"})
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Contains(t, err.Error(), "bank_id")
	assert.Contains(t, err.Error(), "kind")
}

func TestGetAndDefaults(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	_, err := svc.Get(ctx, "not-a-uuid")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = svc.GetDefault(ctx, "237")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = svc.Extract(ctx, ExtractRequest{BankID: "237", Content: sample240()})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	data := []byte(`{"bank_id": "033", "kind": "400", "name": "antigo", "is_default": true,
		"fields": [{"record_type": "1", "name": "Valor", "start": 127, "end": 139, "format": "currency_cents", "destination": "valor", "used_in_output": true}]}`)
	cfg, err := svc.Import(ctx, data)
	require.NoError(t, err)

	detail := line(400, map[int]string{1: "1", 127: "0000000001000"})
	res, err := svc.Extract(ctx, ExtractRequest{BankID: "033", Content: detail})
	require.NoError(t, err)
	assert.Equal(t, cfg.ID, res.Configuration.ID)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "R$ 10,00", res.Records[0]["valor"])

	_, err = svc.Import(ctx, []byte(`{"bank_id": "033"}`))
	assert.ErrorIs(t, err, common.ErrValidation)
}
