package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/bankfiles/internal/common"
	"github.com/joseph-ayodele/bankfiles/internal/entity"
)

type RecordRepository interface {
	GetRecord(ctx context.Context, id uuid.UUID) (*entity.DataRecord, error)
	PutRecord(ctx context.Context, rec *entity.DataRecord) (*entity.DataRecord, error)
	ListRecordIDs(ctx context.Context) ([]uuid.UUID, error)
}

type recordRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewRecordRepository(db *DB, logger *slog.Logger) RecordRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &recordRepository{db: db, logger: logger}
}

func (r *recordRepository) GetRecord(ctx context.Context, id uuid.UUID) (*entity.DataRecord, error) {
	q, args := entsql.Dialect(r.db.Dialect()).
		Select("payload").
		From(entsql.Table("data_records")).
		Where(entsql.EQ("id", id.String())).
		Query()
	var rows entsql.Rows
	if err := r.db.Driver.Query(ctx, q, args, &rows); err != nil {
		r.logger.Error("failed to get record", "id", id, "error", err)
		return nil, queryErr("query record", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, queryErr("query record", err)
		}
		return nil, common.NotFoundf("record %s", id)
	}
	var payload string
	if err := rows.Scan(&payload); err != nil {
		return nil, queryErr("scan record", err)
	}

	// Numbers stay json.Number so long digit strings keep every digit.
	dec := json.NewDecoder(bytes.NewReader([]byte(payload)))
	dec.UseNumber()
	values := map[string]any{}
	if err := dec.Decode(&values); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", id, err)
	}
	return &entity.DataRecord{ID: id, Values: values}, nil
}

func (r *recordRepository) PutRecord(ctx context.Context, rec *entity.DataRecord) (*entity.DataRecord, error) {
	out := *rec
	if out.ID == uuid.Nil {
		out.ID = uuid.New()
	}
	if out.Values == nil {
		out.Values = map[string]any{}
	}
	payload, err := json.Marshal(out.Values)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	q, args := entsql.Dialect(r.db.Dialect()).
		Insert("data_records").
		Columns("id", "payload").
		Values(out.ID.String(), string(payload)).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues()).
		Query()
	if err := r.db.Driver.Exec(ctx, q, args, nil); err != nil {
		r.logger.Error("failed to put record", "id", out.ID, "error", err)
		return nil, queryErr("upsert record", err)
	}
	return &out, nil
}

func (r *recordRepository) ListRecordIDs(ctx context.Context) ([]uuid.UUID, error) {
	q, args := entsql.Dialect(r.db.Dialect()).
		Select("id").
		From(entsql.Table("data_records")).
		OrderBy("id").
		Query()
	var rows entsql.Rows
	if err := r.db.Driver.Query(ctx, q, args, &rows); err != nil {
		return nil, queryErr("list records", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, queryErr("scan record id", err)
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("record id %q: %w", id, err)
		}
		ids = append(ids, parsed)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr("iterate records", err)
	}
	return ids, nil
}
