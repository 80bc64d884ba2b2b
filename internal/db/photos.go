package db

import (
	"context"
	"fmt"

	"github.com/tgienger/refurb/internal/models"
)

const photoColumns = `id, part_id, data, name, type, created`

// CreatePhoto stores a photo for a part. The payload is stored as given.
func (db *DB) CreatePhoto(ctx context.Context, p *models.Photo) error {
	if p == nil {
		return fmt.Errorf("create photo: photo is nil")
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("create photo: %w", err)
	}
	return db.insert(ctx, Photos, p.ID, `
		INSERT INTO photos (`+photoColumns+`) VALUES (?, ?, ?, ?, ?, ?)
	`, photoArgs(*p)...)
}

// ReplacePhoto writes p verbatim, inserting it if the id is new
func (db *DB) ReplacePhoto(ctx context.Context, p models.Photo) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("replace photo: %w", err)
	}
	return db.upsert(ctx, Photos, p.ID, `
		INSERT INTO photos (`+photoColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			part_id = excluded.part_id,
			data = excluded.data,
			name = excluded.name,
			type = excluded.type,
			created = excluded.created
	`, photoArgs(p)...)
}

// ListPhotos returns every photo, oldest first
func (db *DB) ListPhotos(ctx context.Context) ([]models.Photo, error) {
	return list(ctx, db, Photos, scanPhoto, `SELECT `+photoColumns+` FROM photos ORDER BY created, id`)
}

// ListPhotosByPart returns the photos attached to partID, oldest first
func (db *DB) ListPhotosByPart(ctx context.Context, partID string) ([]models.Photo, error) {
	return list(ctx, db, Photos, scanPhoto, `
		SELECT `+photoColumns+` FROM photos
		WHERE part_id = ?
		ORDER BY created, id
	`, partID)
}

func photoArgs(p models.Photo) []any {
	return []any{p.ID, p.PartID, p.Data, p.Name, p.MediaType, fmtTime(p.Created)}
}

func scanPhoto(row scanner) (models.Photo, error) {
	var (
		p       models.Photo
		created string
	)
	if err := row.Scan(&p.ID, &p.PartID, &p.Data, &p.Name, &p.MediaType, &created); err != nil {
		return p, err
	}
	t, err := parseTime(created)
	if err != nil {
		return p, err
	}
	p.Created = t
	return p, nil
}
