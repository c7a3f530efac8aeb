package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Alias1177/numbersff/models"
)

// InsertJobRun records the start of a pipeline job
func (db *DB) InsertJobRun(ctx context.Context, run models.JobRun) error {
	_, err := db.exec(ctx, `
		INSERT INTO job_tracker (job_id, job, status, season, week, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, run.JobID, run.Job, run.Status, run.Season, run.Week, run.StartedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert job run: %w", err)
	}
	return nil
}

// FinishJobRun marks a job as completed with its final status
func (db *DB) FinishJobRun(ctx context.Context, jobID, status, errText string, completedAt time.Time) error {
	res, err := db.exec(ctx, `
		UPDATE job_tracker
		SET status = $1, error = $2, completed_at = $3
		WHERE job_id = $4
	`, status, errText, completedAt.UTC(), jobID)
	if err != nil {
		return fmt.Errorf("update job run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update job run: job %s not found", jobID)
	}
	return nil
}

// ListJobRuns returns the most recent job runs, newest first
func (db *DB) ListJobRuns(ctx context.Context, limit int) ([]models.JobRun, error) {
	rows, err := db.query(ctx, `
		SELECT job_id, job, status, season, week, started_at, completed_at, error
		FROM job_tracker
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query job_tracker: %w", err)
	}
	defer rows.Close()

	var out []models.JobRun
	for rows.Next() {
		var (
			run         models.JobRun
			completedAt sql.NullTime
		)
		if err := rows.Scan(
			&run.JobID, &run.Job, &run.Status, &run.Season, &run.Week,
			&run.StartedAt, &completedAt, &run.Error,
		); err != nil {
			return nil, fmt.Errorf("scan job_tracker: %w", err)
		}
		if completedAt.Valid {
			t := completedAt.Time
			run.CompletedAt = &t
		}
		out = append(out, run)
	}
	return out, rows.Err()
}
