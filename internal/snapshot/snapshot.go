// Package snapshot exports the whole database to a portable JSON document and
// merges such a document back in.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tgienger/refurb/internal/db"
	"github.com/tgienger/refurb/internal/models"
)

// ErrMalformedSnapshot is returned when an import document is not a JSON
// object of known collections holding valid records
var ErrMalformedSnapshot = errors.New("malformed snapshot")

// DefaultFilename is the suggested name for an exported snapshot
func DefaultFilename() string {
	return "moto-refurb-export.json"
}

// Document is the on-disk snapshot shape. Keys match the collection names.
type Document struct {
	Projects []models.Project `json:"projects"`
	Parts    []models.Part    `json:"parts"`
	Tasks    []models.Task    `json:"tasks"`
	Settings []models.Setting `json:"settings"`
	Photos   []models.Photo   `json:"photos"`
}

// Reader lists every record of every collection
type Reader interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	ListParts(ctx context.Context) ([]models.Part, error)
	ListTasks(ctx context.Context) ([]models.Task, error)
	ListSettings(ctx context.Context) ([]models.Setting, error)
	ListPhotos(ctx context.Context) ([]models.Photo, error)
}

// Writer overwrites records by id
type Writer interface {
	ReplaceProject(ctx context.Context, p models.Project) error
	ReplacePart(ctx context.Context, p models.Part) error
	ReplaceTask(ctx context.Context, t models.Task) error
	ReplaceSetting(ctx context.Context, s models.Setting) error
	ReplacePhoto(ctx context.Context, p models.Photo) error
}

// Result counts the records written by Import
type Result struct {
	Projects int `json:"projects"`
	Parts    int `json:"parts"`
	Tasks    int `json:"tasks"`
	Settings int `json:"settings"`
	Photos   int `json:"photos"`
}

// Total is the number of records written across all collections
func (r Result) Total() int {
	return r.Projects + r.Parts + r.Tasks + r.Settings + r.Photos
}

// Export reads all five collections and renders them as indented JSON.
// Empty collections are written as [].
func Export(ctx context.Context, r Reader) ([]byte, error) {
	var (
		doc Document
		err error
	)
	if doc.Projects, err = r.ListProjects(ctx); err != nil {
		return nil, fmt.Errorf("export projects: %w", err)
	}
	if doc.Parts, err = r.ListParts(ctx); err != nil {
		return nil, fmt.Errorf("export parts: %w", err)
	}
	if doc.Tasks, err = r.ListTasks(ctx); err != nil {
		return nil, fmt.Errorf("export tasks: %w", err)
	}
	if doc.Settings, err = r.ListSettings(ctx); err != nil {
		return nil, fmt.Errorf("export settings: %w", err)
	}
	if doc.Photos, err = r.ListPhotos(ctx); err != nil {
		return nil, fmt.Errorf("export photos: %w", err)
	}
	doc.normalize()

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: encode: %w", err)
	}
	return out, nil
}

func (d *Document) normalize() {
	if d.Projects == nil {
		d.Projects = []models.Project{}
	}
	if d.Parts == nil {
		d.Parts = []models.Part{}
	}
	if d.Tasks == nil {
		d.Tasks = []models.Task{}
	}
	if d.Settings == nil {
		d.Settings = []models.Setting{}
	}
	if d.Photos == nil {
		d.Photos = []models.Photo{}
	}
}

// Parse decodes and validates a snapshot without writing anything. Keys
// other than the five collections are ignored, and a missing or null key is
// an empty collection.
func Parse(data []byte) (*Document, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSnapshot, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: document is null", ErrMalformedSnapshot)
	}

	var doc Document
	if err := decodeKey(raw, db.Projects, &doc.Projects); err != nil {
		return nil, err
	}
	var parts []partRecord
	if err := decodeKey(raw, db.Parts, &parts); err != nil {
		return nil, err
	}
	for i, r := range parts {
		p, err := r.part()
		if err != nil {
			return nil, fmt.Errorf("%w: parts[%d]: %w", ErrMalformedSnapshot, i, err)
		}
		doc.Parts = append(doc.Parts, p)
	}
	if err := decodeKey(raw, db.Tasks, &doc.Tasks); err != nil {
		return nil, err
	}
	if err := decodeKey(raw, db.Settings, &doc.Settings); err != nil {
		return nil, err
	}
	if err := decodeKey(raw, db.Photos, &doc.Photos); err != nil {
		return nil, err
	}

	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func decodeKey[T any](raw map[string]json.RawMessage, c db.Collection, dst *[]T) error {
	msg, ok := raw[string(c)]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(msg, dst); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformedSnapshot, c, err)
	}
	return nil
}

// validate fills create-time defaults and checks every record, so a bad
// record anywhere rejects the whole document before any write
func (d *Document) validate() error {
	for i := range d.Projects {
		d.Projects[i].FillDefaults()
		if err := d.Projects[i].Validate(); err != nil {
			return fmt.Errorf("%w: projects[%d]: %w", ErrMalformedSnapshot, i, err)
		}
	}
	for i := range d.Parts {
		d.Parts[i].FillDefaults()
		if err := d.Parts[i].Validate(); err != nil {
			return fmt.Errorf("%w: parts[%d]: %w", ErrMalformedSnapshot, i, err)
		}
	}
	for i := range d.Tasks {
		d.Tasks[i].FillDefaults()
		if err := d.Tasks[i].Validate(); err != nil {
			return fmt.Errorf("%w: tasks[%d]: %w", ErrMalformedSnapshot, i, err)
		}
	}
	for i, s := range d.Settings {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("%w: settings[%d]: %w", ErrMalformedSnapshot, i, err)
		}
	}
	for i, p := range d.Photos {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%w: photos[%d]: %w", ErrMalformedSnapshot, i, err)
		}
	}
	return nil
}

// Import merges a snapshot into w. Every record is replaced by id, so records
// not named in the document are untouched and importing the same document
// twice gives the same end state. Writes are sequential and unlocked: an
// error part way through leaves the records before it written.
func Import(ctx context.Context, w Writer, data []byte) (Result, error) {
	var res Result
	doc, err := Parse(data)
	if err != nil {
		return res, err
	}

	for _, p := range doc.Projects {
		if err := w.ReplaceProject(ctx, p); err != nil {
			return res, fmt.Errorf("import project %q: %w", p.ID, err)
		}
		res.Projects++
	}
	for _, p := range doc.Parts {
		if err := w.ReplacePart(ctx, p); err != nil {
			return res, fmt.Errorf("import part %q: %w", p.ID, err)
		}
		res.Parts++
	}
	for _, t := range doc.Tasks {
		if err := w.ReplaceTask(ctx, t); err != nil {
			return res, fmt.Errorf("import task %q: %w", t.ID, err)
		}
		res.Tasks++
	}
	for _, s := range doc.Settings {
		if err := w.ReplaceSetting(ctx, s); err != nil {
			return res, fmt.Errorf("import setting %q: %w", s.ID, err)
		}
		res.Settings++
	}
	for _, p := range doc.Photos {
		if err := w.ReplacePhoto(ctx, p); err != nil {
			return res, fmt.Errorf("import photo %q: %w", p.ID, err)
		}
		res.Photos++
	}
	return res, nil
}

// ExportFile writes a snapshot of r to path
func ExportFile(ctx context.Context, r Reader, path string) error {
	out, err := Export(ctx, r)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// ImportFile reads the snapshot at path and imports it into w
func ImportFile(ctx context.Context, w Writer, path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read snapshot: %w", err)
	}
	return Import(ctx, w, data)
}
