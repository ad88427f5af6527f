package repository

import (
	"context"
	"database/sql"
	"fmt"

	appErrors "github.com/unclebandit/campaign-admin/internal/errors"
	"github.com/unclebandit/campaign-admin/internal/model"
)

type BatchRunRepositoryInterface interface {
	Save(ctx context.Context, run *model.BatchRun) error
	GetByID(ctx context.Context, id string) (*model.BatchRun, error)
	List(ctx context.Context, offset, limit int) ([]*model.BatchRun, int, error)
	GetRunStats(ctx context.Context, id string) (map[string]int, error)
	Delete(ctx context.Context, id string) error
}

// BatchRunRepository stores batch runs in Postgres.
type BatchRunRepository struct {
	DB *sql.DB
}

// ====================== Runs ======================

// Save inserts the run and its items in one transaction. Saving the same
// run twice is a no-op.
func (r *BatchRunRepository) Save(ctx context.Context, run *model.BatchRun) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
        INSERT INTO batch_runs (id, csv_file_id, batch_size, interval_hours, scheduled_base,
                                success_count, fail_count, cancelled, started_at, finished_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (id) DO NOTHING
    `, run.ID, run.CsvFileID, run.BatchSize, run.IntervalHours, run.ScheduledBase,
		run.SuccessCount, run.FailCount, run.Cancelled, run.StartedAt, run.FinishedAt)
	if err != nil {
		return fmt.Errorf("insert batch run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO batch_run_items (run_id, seq, company_account_id, template_id, plan_index,
                                     scheduled_date, campaign_name, status, last_error)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, it := range run.Items {
		if _, err := stmt.ExecContext(ctx, run.ID, it.Seq, it.CompanyAccountID, it.TemplateID,
			it.PlanIndex, it.ScheduledDate, it.CampaignName, it.Status, it.LastError); err != nil {
			return fmt.Errorf("insert batch item %d: %w", it.Seq, err)
		}
	}
	return tx.Commit()
}

func (r *BatchRunRepository) GetByID(ctx context.Context, id string) (*model.BatchRun, error) {
	query := `
        SELECT id, csv_file_id, batch_size, interval_hours, scheduled_base,
               success_count, fail_count, cancelled, started_at, finished_at
        FROM batch_runs WHERE id=$1
    `
	var run model.BatchRun
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&run.ID, &run.CsvFileID, &run.BatchSize,
		&run.IntervalHours, &run.ScheduledBase, &run.SuccessCount, &run.FailCount,
		&run.Cancelled, &run.StartedAt, &run.FinishedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewBatchRunNotFound(id)
		}
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, `
        SELECT id, run_id, seq, company_account_id, template_id, plan_index,
               scheduled_date, campaign_name, status, last_error
        FROM batch_run_items WHERE run_id=$1 ORDER BY seq
    `, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it model.BatchItem
		if err := rows.Scan(&it.ID, &it.RunID, &it.Seq, &it.CompanyAccountID, &it.TemplateID,
			&it.PlanIndex, &it.ScheduledDate, &it.CampaignName, &it.Status, &it.LastError); err != nil {
			return nil, err
		}
		run.Items = append(run.Items, it)
	}
	return &run, rows.Err()
}

func (r *BatchRunRepository) List(ctx context.Context, offset, limit int) ([]*model.BatchRun, int, error) {
	runs := []*model.BatchRun{}
	rows, err := r.DB.QueryContext(ctx, `
        SELECT id, csv_file_id, batch_size, interval_hours, scheduled_base,
               success_count, fail_count, cancelled, started_at, finished_at
        FROM batch_runs ORDER BY started_at DESC LIMIT $1 OFFSET $2
    `, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		run := &model.BatchRun{}
		if err := rows.Scan(&run.ID, &run.CsvFileID, &run.BatchSize, &run.IntervalHours,
			&run.ScheduledBase, &run.SuccessCount, &run.FailCount, &run.Cancelled,
			&run.StartedAt, &run.FinishedAt); err != nil {
			return nil, 0, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM batch_runs`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}

// Delete removes a run; items go with it through the foreign key.
func (r *BatchRunRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM batch_runs WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewBatchRunNotFound(id)
	}
	return nil
}

// ====================== Stats ======================

func (r *BatchRunRepository) GetRunStats(ctx context.Context, id string) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM batch_run_items WHERE run_id=$1 GROUP BY status`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := map[string]int{"total": 0, model.ItemStatusCreated: 0, model.ItemStatusFailed: 0}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
		stats["total"] += count
	}
	return stats, rows.Err()
}

var _ BatchRunRepositoryInterface = (*BatchRunRepository)(nil)
