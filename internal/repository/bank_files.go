package repository

import (
	"context"
	"fmt"
	"log/slog"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/bankfiles/constants"
	"github.com/joseph-ayodele/bankfiles/internal/common"
	"github.com/joseph-ayodele/bankfiles/internal/entity"
)

var bankFileColumns = []string{"id", "source_path", "filename", "file_ext", "file_size", "content_hash", "kind", "line_count", "uploaded_at"}

type BankFileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.BankFile, error)
	GetByHash(ctx context.Context, hash string) (*entity.BankFile, error)
	Create(ctx context.Context, f *entity.BankFile) (*entity.BankFile, error)
	UpsertByHash(ctx context.Context, f *entity.BankFile) (*entity.BankFile, bool, error)
}

type bankFileRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewBankFileRepository(db *DB, logger *slog.Logger) BankFileRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &bankFileRepo{db: db, logger: logger}
}

func (r *bankFileRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.BankFile, error) {
	return r.getOne(ctx, entsql.EQ("id", id.String()), fmt.Sprintf("bank file %s", id))
}

func (r *bankFileRepo) GetByHash(ctx context.Context, hash string) (*entity.BankFile, error) {
	return r.getOne(ctx, entsql.EQ("content_hash", hash), fmt.Sprintf("bank file with hash %s", hash))
}

func (r *bankFileRepo) getOne(ctx context.Context, p *entsql.Predicate, what string) (*entity.BankFile, error) {
	q, args := entsql.Dialect(r.db.Dialect()).
		Select(bankFileColumns...).
		From(entsql.Table("bank_files")).
		Where(p).
		Query()
	var rows entsql.Rows
	if err := r.db.Driver.Query(ctx, q, args, &rows); err != nil {
		return nil, queryErr("query bank file", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, queryErr("query bank file", err)
		}
		return nil, common.NotFoundf("%s", what)
	}
	var (
		id, kind string
		uploaded int64
		f        entity.BankFile
	)
	if err := rows.Scan(&id, &f.SourcePath, &f.Filename, &f.FileExt, &f.FileSize, &f.ContentHash, &kind, &f.LineCount, &uploaded); err != nil {
		return nil, queryErr("scan bank file", err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("bank file id %q: %w", id, err)
	}
	f.ID = parsed
	f.Kind = constants.Kind(kind)
	f.UploadedAt = fromMillis(uploaded)
	return &f, nil
}

func (r *bankFileRepo) Create(ctx context.Context, f *entity.BankFile) (*entity.BankFile, error) {
	out := *f
	if out.ID == uuid.Nil {
		out.ID = uuid.New()
	}
	q, args := entsql.Dialect(r.db.Dialect()).
		Insert("bank_files").
		Columns(bankFileColumns...).
		Values(out.ID.String(), out.SourcePath, out.Filename, out.FileExt, out.FileSize, out.ContentHash, string(out.Kind), out.LineCount, millis(out.UploadedAt)).
		Query()
	if err := r.db.Driver.Exec(ctx, q, args, nil); err != nil {
		r.logger.Error("failed to create bank file", "source_path", out.SourcePath, "filename", out.Filename, "error", err)
		return nil, queryErr("insert bank file", err)
	}
	return &out, nil
}

// UpsertByHash returns the stored file with the same content hash, or
// creates it. The bool reports whether an existing row was returned.
func (r *bankFileRepo) UpsertByHash(ctx context.Context, f *entity.BankFile) (*entity.BankFile, bool, error) {
	if existing, err := r.GetByHash(ctx, f.ContentHash); err == nil {
		return existing, true, nil
	}
	row, err := r.Create(ctx, f)
	if err != nil {
		r.logger.Error("failed to upsert bank file by hash", "source_path", f.SourcePath, "error", err)
		return nil, false, err
	}
	return row, false, nil
}
