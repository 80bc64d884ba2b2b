package db

import (
	"context"
	"fmt"

	"github.com/tgienger/refurb/internal/models"
)

const partColumns = `id, name, project_id, status, supplier, price, qty, due, notes, created`

// CreatePart stores a new part. Quantity defaults to 1 and status to needed.
func (db *DB) CreatePart(ctx context.Context, p *models.Part) error {
	if p == nil {
		return fmt.Errorf("create part: part is nil")
	}
	p.FillDefaults()
	if err := p.Validate(); err != nil {
		return fmt.Errorf("create part: %w", err)
	}
	return db.insert(ctx, Parts, p.ID, `
		INSERT INTO parts (`+partColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, partArgs(*p)...)
}

// ReplacePart writes p verbatim, inserting it if the id is new
func (db *DB) ReplacePart(ctx context.Context, p models.Part) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("replace part: %w", err)
	}
	return db.upsert(ctx, Parts, p.ID, `
		INSERT INTO parts (`+partColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			project_id = excluded.project_id,
			status = excluded.status,
			supplier = excluded.supplier,
			price = excluded.price,
			qty = excluded.qty,
			due = excluded.due,
			notes = excluded.notes,
			created = excluded.created
	`, partArgs(p)...)
}

// GetPart retrieves a part by ID
func (db *DB) GetPart(ctx context.Context, id string) (models.Part, error) {
	return get(ctx, db, Parts, scanPart, `SELECT `+partColumns+` FROM parts WHERE id = ?`, id)
}

// ListParts returns every part, oldest first
func (db *DB) ListParts(ctx context.Context) ([]models.Part, error) {
	return list(ctx, db, Parts, scanPart, `SELECT `+partColumns+` FROM parts ORDER BY created, id`)
}

// ListPartsByProject returns the parts assigned to projectID. An empty
// projectID returns the unassigned parts.
func (db *DB) ListPartsByProject(ctx context.Context, projectID string) ([]models.Part, error) {
	return list(ctx, db, Parts, scanPart, `
		SELECT `+partColumns+` FROM parts
		WHERE project_id = ?
		ORDER BY created, id
	`, projectID)
}

func partArgs(p models.Part) []any {
	return []any{p.ID, p.Name, p.ProjectID, string(p.Status), p.Supplier, p.Price, p.Qty, p.Due, p.Notes, fmtTime(p.Created)}
}

func scanPart(row scanner) (models.Part, error) {
	var (
		p       models.Part
		created string
	)
	err := row.Scan(&p.ID, &p.Name, &p.ProjectID, &p.Status, &p.Supplier, &p.Price, &p.Qty, &p.Due, &p.Notes, &created)
	if err != nil {
		return p, err
	}
	t, err := parseTime(created)
	if err != nil {
		return p, err
	}
	p.Created = t
	return p, nil
}
