package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/bankfiles/constants"
	"github.com/joseph-ayodele/bankfiles/internal/common"
	"github.com/joseph-ayodele/bankfiles/internal/entity"
)

type RenderJobRepository interface {
	Start(ctx context.Context, templateID, recordID uuid.UUID) (*entity.RenderJob, error)
	FinishSuccess(ctx context.Context, jobID uuid.UUID, outputPath string) error
	FinishFailure(ctx context.Context, jobID uuid.UUID, status constants.JobStatus, message string) error
	Get(ctx context.Context, jobID uuid.UUID) (*entity.RenderJob, error)
}

type renderJobRepo struct {
	db  *DB
	log *slog.Logger
	now func() time.Time
}

func NewRenderJobRepository(db *DB, log *slog.Logger) RenderJobRepository {
	if log == nil {
		log = slog.Default()
	}
	return &renderJobRepo{db: db, log: log, now: time.Now}
}

func (r *renderJobRepo) Start(ctx context.Context, templateID, recordID uuid.UUID) (*entity.RenderJob, error) {
	job := &entity.RenderJob{
		ID:         uuid.New(),
		TemplateID: templateID,
		RecordID:   recordID,
		Status:     constants.JobStatusQueued,
		StartedAt:  r.now().UTC().Truncate(time.Millisecond),
	}
	q, args := entsql.Dialect(r.db.Dialect()).
		Insert("render_jobs").
		Columns("id", "template_id", "record_id", "status", "started_at").
		Values(job.ID.String(), templateID.String(), recordID.String(), string(job.Status), millis(job.StartedAt)).
		Query()
	if err := r.db.Driver.Exec(ctx, q, args, nil); err != nil {
		r.log.Error("render_job start failed", "template_id", templateID, "record_id", recordID, "err", err)
		return nil, queryErr("insert render job", err)
	}
	r.log.Info("render_job started", "job_id", job.ID, "template_id", templateID, "record_id", recordID)
	return job, nil
}

func (r *renderJobRepo) FinishSuccess(ctx context.Context, jobID uuid.UUID, outputPath string) error {
	if err := r.finish(ctx, jobID, constants.JobStatusRendered, outputPath, ""); err != nil {
		r.log.Error("render_job finish(OK) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Info("render_job finished (RENDERED)", "job_id", jobID, "output", outputPath)
	return nil
}

func (r *renderJobRepo) FinishFailure(ctx context.Context, jobID uuid.UUID, status constants.JobStatus, message string) error {
	if err := r.finish(ctx, jobID, status, "", message); err != nil {
		r.log.Error("render_job finish(FAILED) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Warn("render_job finished", "job_id", jobID, "status", status, "error", message)
	return nil
}

func (r *renderJobRepo) finish(ctx context.Context, jobID uuid.UUID, status constants.JobStatus, outputPath, message string) error {
	q, args := entsql.Dialect(r.db.Dialect()).
		Update("render_jobs").
		Set("status", string(status)).
		Set("output_path", outputPath).
		Set("error_message", message).
		Set("finished_at", millis(r.now())).
		Where(entsql.EQ("id", jobID.String())).
		Query()
	if err := r.db.Driver.Exec(ctx, q, args, nil); err != nil {
		return queryErr("update render job", err)
	}
	return nil
}

func (r *renderJobRepo) Get(ctx context.Context, jobID uuid.UUID) (*entity.RenderJob, error) {
	q, args := entsql.Dialect(r.db.Dialect()).
		Select("template_id", "record_id", "status", "output_path", "error_message", "started_at", "finished_at").
		From(entsql.Table("render_jobs")).
		Where(entsql.EQ("id", jobID.String())).
		Query()
	var rows entsql.Rows
	if err := r.db.Driver.Query(ctx, q, args, &rows); err != nil {
		return nil, queryErr("query render job", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, queryErr("query render job", err)
		}
		return nil, common.NotFoundf("render job %s", jobID)
	}

	var (
		tplID, recID, status string
		started, finished    int64
		job                  = entity.RenderJob{ID: jobID}
	)
	if err := rows.Scan(&tplID, &recID, &status, &job.OutputPath, &job.ErrorMessage, &started, &finished); err != nil {
		return nil, queryErr("scan render job", err)
	}
	var err error
	if job.TemplateID, err = uuid.Parse(tplID); err != nil {
		return nil, fmt.Errorf("template id %q: %w", tplID, err)
	}
	if job.RecordID, err = uuid.Parse(recID); err != nil {
		return nil, fmt.Errorf("record id %q: %w", recID, err)
	}
	job.Status = constants.JobStatus(status)
	job.StartedAt = fromMillis(started)
	job.FinishedAt = fromMillis(finished)
	return &job, nil
}
