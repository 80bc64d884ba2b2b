package db

import (
	"context"
	"fmt"

	"github.com/tgienger/refurb/internal/models"
)

const projectColumns = `id, title, reg, status, notes, created`

// CreateProject stores a new project. The caller supplies the id.
func (db *DB) CreateProject(ctx context.Context, p *models.Project) error {
	if p == nil {
		return fmt.Errorf("create project: project is nil")
	}
	p.FillDefaults()
	if err := p.Validate(); err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return db.insert(ctx, Projects, p.ID, `
		INSERT INTO projects (`+projectColumns+`) VALUES (?, ?, ?, ?, ?, ?)
	`, projectArgs(*p)...)
}

// ReplaceProject writes p verbatim, inserting it if the id is new
func (db *DB) ReplaceProject(ctx context.Context, p models.Project) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("replace project: %w", err)
	}
	return db.upsert(ctx, Projects, p.ID, `
		INSERT INTO projects (`+projectColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			reg = excluded.reg,
			status = excluded.status,
			notes = excluded.notes,
			created = excluded.created
	`, projectArgs(p)...)
}

// GetProject retrieves a project by ID
func (db *DB) GetProject(ctx context.Context, id string) (models.Project, error) {
	return get(ctx, db, Projects, scanProject, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
}

// ListProjects returns all projects, oldest first
func (db *DB) ListProjects(ctx context.Context) ([]models.Project, error) {
	return list(ctx, db, Projects, scanProject, `SELECT `+projectColumns+` FROM projects ORDER BY created, id`)
}

func projectArgs(p models.Project) []any {
	return []any{p.ID, p.Title, p.Reg, string(p.Status), p.Notes, fmtTime(p.Created)}
}

func scanProject(row scanner) (models.Project, error) {
	var (
		p       models.Project
		created string
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Reg, &p.Status, &p.Notes, &created); err != nil {
		return p, err
	}
	t, err := parseTime(created)
	if err != nil {
		return p, err
	}
	p.Created = t
	return p, nil
}
