package db

import (
	"context"
	"fmt"
)

// SweepResult counts what SweepOrphans touched
type SweepResult struct {
	PhotosRemoved int64 `json:"photosRemoved"`
	PartsDetached int64 `json:"partsDetached"`
	TasksDetached int64 `json:"tasksDetached"`
}

// SweepOrphans removes photos whose part no longer exists and unassigns parts
// and tasks whose project no longer exists. Removes never do this on their
// own; the sweep only runs when asked for.
func (db *DB) SweepOrphans(ctx context.Context) (SweepResult, error) {
	var res SweepResult

	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("%w: sweep: begin: %w", ErrStorageWrite, err)
	}

	steps := []struct {
		query string
		count *int64
	}{
		{`DELETE FROM photos WHERE part_id NOT IN (SELECT id FROM parts)`, &res.PhotosRemoved},
		{`UPDATE parts SET project_id = '' WHERE project_id <> '' AND project_id NOT IN (SELECT id FROM projects)`, &res.PartsDetached},
		{`UPDATE tasks SET project_id = '' WHERE project_id <> '' AND project_id NOT IN (SELECT id FROM projects)`, &res.TasksDetached},
	}
	for _, step := range steps {
		r, err := tx.ExecContext(ctx, step.query)
		if err != nil {
			_ = tx.Rollback()
			return SweepResult{}, fmt.Errorf("%w: sweep: %w", ErrStorageWrite, err)
		}
		n, err := r.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return SweepResult{}, fmt.Errorf("%w: sweep: %w", ErrStorageWrite, err)
		}
		*step.count = n
	}

	if err := tx.Commit(); err != nil {
		return SweepResult{}, fmt.Errorf("%w: sweep: commit: %w", ErrStorageWrite, err)
	}

	db.log.Info("orphans swept",
		"photos_removed", res.PhotosRemoved,
		"parts_detached", res.PartsDetached,
		"tasks_detached", res.TasksDetached)
	for _, c := range []Collection{Photos, Parts, Tasks} {
		db.notify(Change{Collection: c, Op: OpSweep})
	}
	return res, nil
}
