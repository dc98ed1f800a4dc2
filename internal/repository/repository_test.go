package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/bankfiles/constants"
	"github.com/joseph-ayodele/bankfiles/internal/common"
	"github.com/joseph-ayodele/bankfiles/internal/entity"
	"github.com/joseph-ayodele/bankfiles/internal/layoutconfig"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()
	db, err := OpenLocal(ctx, ":memory:", slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { Close(db, slog.Default()) })
	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, HealthCheck(ctx, db, time.Second, slog.Default()))
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, Migrate(context.Background(), db))
}

func TestConfigurationRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewConfigurationRepository(newTestDB(t), nil)

	cfg := layoutconfig.GenerateFromContent("", "341", "itau padrao", constants.Kind400)
	cfg.IsDefault = true
	saved, err := repo.Upsert(ctx, cfg)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, saved.ID)
	assert.False(t, saved.UpdatedAt.IsZero())

	got, err := repo.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.BankID, got.BankID)
	assert.Equal(t, constants.Kind400, got.Kind)
	assert.Equal(t, saved.Records, got.Records)
	assert.Equal(t, saved.LegacyFields, got.LegacyFields)
	assert.True(t, got.UpdatedAt.Equal(saved.UpdatedAt))

	def, err := repo.GetDefault(ctx, "341")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, def.ID)

	// a new default replaces the old one
	other := layoutconfig.GenerateFromContent("", "341", "itau novo", constants.Kind240)
	other.IsDefault = true
	second, err := repo.Upsert(ctx, other)
	require.NoError(t, err)

	def, err = repo.GetDefault(ctx, "341")
	require.NoError(t, err)
	assert.Equal(t, second.ID, def.ID)
	first, err := repo.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.False(t, first.IsDefault)

	// update in place
	second.Name = "itau renomeado"
	_, err = repo.Upsert(ctx, second)
	require.NoError(t, err)
	list, err := repo.List(ctx, "341")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "itau padrao", list[0].Name)
	assert.Equal(t, "itau renomeado", list[1].Name)

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestConfigurationRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewConfigurationRepository(newTestDB(t), nil)

	_, err := repo.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = repo.GetDefault(ctx, "001")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestConfigurationRepository_LegacyOnly(t *testing.T) {
	ctx := context.Background()
	repo := NewConfigurationRepository(newTestDB(t), nil)

	cfg := &entity.LayoutConfiguration{
		BankID: "033",
		Kind:   constants.Kind400,
		Name:   "antigo",
		LegacyFields: []entity.LegacyField{
			{RecordType: "1", Name: "Valor", Start: 127, End: 139, Format: constants.FormatCurrencyCents, Destination: "valor", UsedInOutput: true},
		},
	}
	saved, err := repo.Upsert(ctx, cfg)
	require.NoError(t, err)

	got, err := repo.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Records)
	assert.Equal(t, cfg.LegacyFields, got.Legacy())
}

func TestTemplateRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewTemplateRepository(newTestDB(t), nil)

	fields := []entity.TemplateField{
		{Key: "banco", Source: "literal:BANCO", X: 10, Y: 10, Width: 60, Height: 8, FontSize: 12},
		{Key: "valor", X: 150, Y: 30, Width: 40, Height: 8, Alignment: "right", Format: constants.ValueCurrency},
		{Key: "barras", IsBarcode: true, X: 10, Y: 80, Width: 103, Height: 13, Page: 1},
	}
	tpl, err := repo.SaveTemplate(ctx, &entity.Template{Name: "boleto", BackgroundURL: "bg.pdf", PageWidthMM: 210, PageHeightMM: 297, RequiresCheckDigit: true}, fields)
	require.NoError(t, err)

	got, err := repo.GetTemplate(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, tpl, got)

	gotFields, err := repo.ListTemplateFields(ctx, tpl.ID)
	require.NoError(t, err)
	require.Len(t, gotFields, 3)
	assert.Equal(t, "banco", gotFields[0].Key)
	assert.Equal(t, 1, gotFields[0].Page)
	assert.Equal(t, constants.ValueCurrency, gotFields[1].Format)
	assert.True(t, gotFields[2].IsBarcode)

	// saving again replaces the field list
	_, err = repo.SaveTemplate(ctx, tpl, fields[:1])
	require.NoError(t, err)
	gotFields, err = repo.ListTemplateFields(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Len(t, gotFields, 1)

	list, err := repo.ListTemplates(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = repo.GetTemplate(ctx, uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRecordRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewRecordRepository(newTestDB(t), nil)

	rec, err := repo.PutRecord(ctx, &entity.DataRecord{Values: map[string]any{
		"nome":          "Maria",
		"valor":         1500.5,
		"codigo_barras": "23790123456789012345678901234567890123456789",
	}})
	require.NoError(t, err)

	got, err := repo.GetRecord(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria", got.Values["nome"])
	assert.Equal(t, json.Number("1500.5"), got.Values["valor"])
	assert.Equal(t, "23790123456789012345678901234567890123456789", got.Values["codigo_barras"])

	ids, err := repo.ListRecordIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{rec.ID}, ids)

	_, err = repo.GetRecord(ctx, uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestBankFileRepository_UpsertByHash(t *testing.T) {
	ctx := context.Background()
	repo := NewBankFileRepository(newTestDB(t), nil)

	f := &entity.BankFile{SourcePath: "/in/a.rem", Filename: "a.rem", FileExt: "rem", FileSize: 10, ContentHash: "abc", Kind: constants.Kind240, LineCount: 4, UploadedAt: time.Now()}
	first, dedup, err := repo.UpsertByHash(ctx, f)
	require.NoError(t, err)
	assert.False(t, dedup)

	copyOf := *f
	copyOf.SourcePath = "/in/b.rem"
	second, dedup, err := repo.UpsertByHash(ctx, &copyOf)
	require.NoError(t, err)
	assert.True(t, dedup)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "/in/a.rem", second.SourcePath)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRenderJobRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewRenderJobRepository(newTestDB(t), nil)

	job, err := repo.Start(ctx, uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusQueued, job.Status)

	require.NoError(t, repo.FinishSuccess(ctx, job.ID, "/out/a.pdf"))
	got, err := repo.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusRendered, got.Status)
	assert.Equal(t, "/out/a.pdf", got.OutputPath)
	assert.False(t, got.FinishedAt.IsZero())

	other, err := repo.Start(ctx, uuid.New(), uuid.New())
	require.NoError(t, err)
	require.NoError(t, repo.FinishFailure(ctx, other.ID, constants.JobStatusNotFound, "record missing"))
	got, err = repo.Get(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusNotFound, got.Status)
	assert.Equal(t, "record missing", got.ErrorMessage)
}
