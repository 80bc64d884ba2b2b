package db

import (
	"context"
	"fmt"

	"github.com/tgienger/refurb/internal/models"
)

const taskColumns = `id, title, project_id, due, priority, status, notes, created`

// CreateTask stores a new task. Priority defaults to med and status to todo.
func (db *DB) CreateTask(ctx context.Context, t *models.Task) error {
	if t == nil {
		return fmt.Errorf("create task: task is nil")
	}
	t.FillDefaults()
	if err := t.Validate(); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return db.insert(ctx, Tasks, t.ID, `
		INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, taskArgs(*t)...)
}

// ReplaceTask writes t verbatim, inserting it if the id is new
func (db *DB) ReplaceTask(ctx context.Context, t models.Task) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("replace task: %w", err)
	}
	return db.upsert(ctx, Tasks, t.ID, `
		INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			project_id = excluded.project_id,
			due = excluded.due,
			priority = excluded.priority,
			status = excluded.status,
			notes = excluded.notes,
			created = excluded.created
	`, taskArgs(t)...)
}

// GetTask retrieves a task by ID
func (db *DB) GetTask(ctx context.Context, id string) (models.Task, error) {
	return get(ctx, db, Tasks, scanTask, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
}

// ListTasks returns every task, oldest first
func (db *DB) ListTasks(ctx context.Context) ([]models.Task, error) {
	return list(ctx, db, Tasks, scanTask, `SELECT `+taskColumns+` FROM tasks ORDER BY created, id`)
}

// ListTasksByProject returns the tasks assigned to projectID
func (db *DB) ListTasksByProject(ctx context.Context, projectID string) ([]models.Task, error) {
	return list(ctx, db, Tasks, scanTask, `
		SELECT `+taskColumns+` FROM tasks
		WHERE project_id = ?
		ORDER BY due, created
	`, projectID)
}

// ListTasksDue returns tasks whose due date is in [from, to). Both bounds are
// YYYY-MM-DD strings, which order the same way as the dates they name.
func (db *DB) ListTasksDue(ctx context.Context, from, to string) ([]models.Task, error) {
	return list(ctx, db, Tasks, scanTask, `
		SELECT `+taskColumns+` FROM tasks
		WHERE due >= ? AND due < ?
		ORDER BY due, created
	`, from, to)
}

func taskArgs(t models.Task) []any {
	return []any{t.ID, t.Title, t.ProjectID, t.Due, string(t.Priority), string(t.Status), t.Notes, fmtTime(t.Created)}
}

func scanTask(row scanner) (models.Task, error) {
	var (
		t       models.Task
		created string
	)
	err := row.Scan(&t.ID, &t.Title, &t.ProjectID, &t.Due, &t.Priority, &t.Status, &t.Notes, &created)
	if err != nil {
		return t, err
	}
	ts, err := parseTime(created)
	if err != nil {
		return t, err
	}
	t.Created = ts
	return t, nil
}
