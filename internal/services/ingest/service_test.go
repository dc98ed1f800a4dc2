package ingest

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/bankfiles/internal/common"
	"github.com/joseph-ayodele/bankfiles/internal/ingest"
	"github.com/joseph-ayodele/bankfiles/internal/layout"
	"github.com/joseph-ayodele/bankfiles/internal/repository"
	"github.com/joseph-ayodele/bankfiles/internal/services/export"
	"github.com/joseph-ayodele/bankfiles/internal/services/layouts"
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

func newService(t *testing.T) (*Service, *layouts.Service, string) {
	t.Helper()
	ctx := context.Background()
	db, err := repository.OpenLocal(ctx, ":memory:", slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { repository.Close(db, slog.Default()) })
	require.NoError(t, repository.Migrate(ctx, db))

	l := layouts.NewService(repository.NewConfigurationRepository(db, nil), layout.NewCounter(), nil)
	ing := ingest.NewFSIngestor(repository.NewBankFileRepository(db, nil), nil)
	exportDir := filepath.Join(t.TempDir(), "out")
	return NewService(ing, l, export.NewService(nil), exportDir, nil), l, exportDir
}

func TestIngestFile_ExportsRecords(t *testing.T) {
	ctx := context.Background()
	svc, l, exportDir := newService(t)
	_, err := l.Generate(ctx, layouts.GenerateRequest{BankID: "001", Name: "bb", Content: sample240(), Persist: true, MakeDefault: true})
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "remessa.rem")
	require.NoError(t, os.WriteFile(src, []byte(sample240()), 0o644))

	res, out, err := svc.IngestFile(ctx, FileIngestRequest{BankID: "001", Path: src, SkipDuplicates: true})
	require.NoError(t, err)
	assert.False(t, res.Deduplicated)
	assert.Equal(t, filepath.Join(exportDir, "remessa-"+res.FileID+".xlsx"), out)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Registros")
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	again, out, err := svc.IngestFile(ctx, FileIngestRequest{BankID: "001", Path: src, SkipDuplicates: true})
	require.NoError(t, err)
	assert.True(t, again.Deduplicated)
	assert.Empty(t, out)
}

func TestIngestFile_SameNameInTwoFolders(t *testing.T) {
	ctx := context.Background()
	svc, l, exportDir := newService(t)
	_, err := l.Generate(ctx, layouts.GenerateRequest{BankID: "001", Name: "bb", Content: sample240(), Persist: true, MakeDefault: true})
	require.NoError(t, err)

	a := filepath.Join(t.TempDir(), "remessa.rem")
	b := filepath.Join(t.TempDir(), "remessa.rem")
	require.NoError(t, os.WriteFile(a, []byte(sample240()), 0o644))
	latin1 := strings.Replace(sample240(), "FULANO DE TAL", "JOS\xc9 DA SILVA", 1)
	require.NoError(t, os.WriteFile(b, []byte(latin1), 0o644))

	resA, outA, err := svc.IngestFile(ctx, FileIngestRequest{BankID: "001", Path: a, SkipDuplicates: true})
	require.NoError(t, err)
	resB, outB, err := svc.IngestFile(ctx, FileIngestRequest{BankID: "001", Path: b, SkipDuplicates: true})
	require.NoError(t, err)

	assert.NotEqual(t, resA.FileID, resB.FileID)
	assert.NotEqual(t, outA, outB)
	assert.Equal(t, exportDir, filepath.Dir(outA))
	assert.Equal(t, exportDir, filepath.Dir(outB))
	for _, out := range []string{outA, outB} {
		_, err := os.Stat(out)
		assert.NoError(t, err)
	}
}

func TestIngestFile_NoDefaultConfiguration(t *testing.T) {
	svc, _, _ := newService(t)
	src := filepath.Join(t.TempDir(), "remessa.rem")
	require.NoError(t, os.WriteFile(src, []byte(sample240()), 0o644))

	_, _, err := svc.IngestFile(context.Background(), FileIngestRequest{BankID: "237", Path: src})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestIngestFile_Validation(t *testing.T) {
	svc, _, _ := newService(t)
	_, _, err := svc.IngestFile(context.Background(), FileIngestRequest{Path: "x.rem"})
	assert.Error(t, err)
}

func TestIngestDirectory_RecordsPerFileFailures(t *testing.T) {
	ctx := context.Background()
	svc, l, _ := newService(t)
	_, err := l.Generate(ctx, layouts.GenerateRequest{BankID: "001", Name: "bb", Content: sample240(), Persist: true, MakeDefault: true})
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.rem"), []byte(sample240()), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.ret"), []byte(sample240()+"\n"), 0o644))

	res, err := svc.IngestDirectory(ctx, DirectoryIngestRequest{BankID: "001", RootPath: dir, SkipDuplicates: true})
	require.NoError(t, err)
	assert.Equal(t, uint32(2), res.Statistics.Succeeded)
	assert.Len(t, res.Exported, 2)
}
