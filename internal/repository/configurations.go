package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/bankfiles/constants"
	"github.com/joseph-ayodele/bankfiles/internal/common"
	"github.com/joseph-ayodele/bankfiles/internal/entity"
)

const configurationsTable = "layout_configurations"

var configurationColumns = []string{"id", "bank_id", "kind", "name", "description", "is_default", "records", "fields", "updated_at"}

type ConfigurationRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*entity.LayoutConfiguration, error)
	GetDefault(ctx context.Context, bankID string) (*entity.LayoutConfiguration, error)
	Upsert(ctx context.Context, cfg *entity.LayoutConfiguration) (*entity.LayoutConfiguration, error)
	List(ctx context.Context, bankID string) ([]*entity.LayoutConfiguration, error)
}

type configurationRepository struct {
	db     *DB
	logger *slog.Logger
	now    func() time.Time
}

func NewConfigurationRepository(db *DB, logger *slog.Logger) ConfigurationRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &configurationRepository{db: db, logger: logger, now: time.Now}
}

func (r *configurationRepository) Get(ctx context.Context, id uuid.UUID) (*entity.LayoutConfiguration, error) {
	q, args := entsql.Dialect(r.db.Dialect()).
		Select(configurationColumns...).
		From(entsql.Table(configurationsTable)).
		Where(entsql.EQ("id", id.String())).
		Query()
	list, err := r.query(ctx, q, args)
	if err != nil {
		r.logger.Error("failed to get configuration", "id", id, "error", err)
		return nil, err
	}
	if len(list) == 0 {
		return nil, common.NotFoundf("configuration %s", id)
	}
	return list[0], nil
}

func (r *configurationRepository) GetDefault(ctx context.Context, bankID string) (*entity.LayoutConfiguration, error) {
	q, args := entsql.Dialect(r.db.Dialect()).
		Select(configurationColumns...).
		From(entsql.Table(configurationsTable)).
		Where(entsql.And(entsql.EQ("bank_id", bankID), entsql.EQ("is_default", true))).
		OrderBy(entsql.Desc("updated_at")).
		Limit(1).
		Query()
	list, err := r.query(ctx, q, args)
	if err != nil {
		r.logger.Error("failed to get default configuration", "bank_id", bankID, "error", err)
		return nil, err
	}
	if len(list) == 0 {
		return nil, common.NotFoundf("default configuration for bank %s", bankID)
	}
	return list[0], nil
}

func (r *configurationRepository) List(ctx context.Context, bankID string) ([]*entity.LayoutConfiguration, error) {
	sel := entsql.Dialect(r.db.Dialect()).
		Select(configurationColumns...).
		From(entsql.Table(configurationsTable))
	if bankID != "" {
		sel = sel.Where(entsql.EQ("bank_id", bankID))
	}
	q, args := sel.OrderBy("bank_id", "name").Query()
	list, err := r.query(ctx, q, args)
	if err != nil {
		r.logger.Error("failed to list configurations", "bank_id", bankID, "error", err)
		return nil, err
	}
	return list, nil
}

// Upsert inserts or replaces a configuration. A zero id gets a fresh one.
// Marking a configuration default clears the flag on the bank's others.
func (r *configurationRepository) Upsert(ctx context.Context, cfg *entity.LayoutConfiguration) (*entity.LayoutConfiguration, error) {
	out := *cfg
	if out.ID == uuid.Nil {
		out.ID = uuid.New()
	}
	out.UpdatedAt = r.now().UTC().Truncate(time.Millisecond)
	legacy := out.Legacy()

	records, err := json.Marshal(nonNil(out.Records))
	if err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}
	fields, err := json.Marshal(nonNil(legacy))
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}

	d := r.db.Dialect()
	tx, err := r.db.Driver.Tx(ctx)
	if err != nil {
		return nil, queryErr("begin", err)
	}
	if out.IsDefault {
		q, args := entsql.Dialect(d).
			Update(configurationsTable).
			Set("is_default", false).
			Where(entsql.And(entsql.EQ("bank_id", out.BankID), entsql.NEQ("id", out.ID.String()))).
			Query()
		if err := tx.Exec(ctx, q, args, nil); err != nil {
			_ = tx.Rollback()
			return nil, queryErr("clear default", err)
		}
	}
	q, args := entsql.Dialect(d).
		Insert(configurationsTable).
		Columns(configurationColumns...).
		Values(out.ID.String(), out.BankID, string(out.Kind), out.Name, out.Description, out.IsDefault, string(records), string(fields), millis(out.UpdatedAt)).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues()).
		Query()
	if err := tx.Exec(ctx, q, args, nil); err != nil {
		_ = tx.Rollback()
		r.logger.Error("failed to upsert configuration", "id", out.ID, "bank_id", out.BankID, "error", err)
		return nil, queryErr("upsert configuration", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, queryErr("commit", err)
	}

	out.LegacyFields = legacy
	r.logger.Info("configuration saved", "id", out.ID, "bank_id", out.BankID, "kind", out.Kind, "default", out.IsDefault)
	return &out, nil
}

func (r *configurationRepository) query(ctx context.Context, q string, args []any) ([]*entity.LayoutConfiguration, error) {
	var rows entsql.Rows
	if err := r.db.Driver.Query(ctx, q, args, &rows); err != nil {
		return nil, queryErr("query configurations", err)
	}
	defer rows.Close()

	var out []*entity.LayoutConfiguration
	for rows.Next() {
		var (
			id, kind, records, fields string
			updated                   int64
			c                         entity.LayoutConfiguration
		)
		if err := rows.Scan(&id, &c.BankID, &kind, &c.Name, &c.Description, &c.IsDefault, &records, &fields, &updated); err != nil {
			return nil, queryErr("scan configuration", err)
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("configuration id %q: %w", id, err)
		}
		c.ID = parsed
		c.Kind = constants.Kind(kind)
		c.UpdatedAt = fromMillis(updated)
		if err := json.Unmarshal([]byte(records), &c.Records); err != nil {
			return nil, fmt.Errorf("decode records of %s: %w", id, err)
		}
		if err := json.Unmarshal([]byte(fields), &c.LegacyFields); err != nil {
			return nil, fmt.Errorf("decode fields of %s: %w", id, err)
		}
		if len(c.Records) == 0 {
			c.Records = nil
		}
		if len(c.LegacyFields) == 0 {
			c.LegacyFields = nil
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr("iterate configurations", err)
	}
	return out, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
