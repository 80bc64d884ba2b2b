// Package projection computes the read-only views shown by the UI and CLI:
// filtered part and task lists joined with project titles and photos, the
// monthly calendar, and per-project summaries.
//
// Every view is a pure function of a State, and a State is always a fresh
// read of every collection. Nothing is cached between renders.
package projection

import (
	"context"
	"fmt"

	"github.com/tgienger/refurb/internal/db"
	"github.com/tgienger/refurb/internal/models"
)

// NoProjectTitle is shown for unassigned parts and tasks, and for ones whose
// project has been deleted
const NoProjectTitle = "—"

// MaxPhotosPerPart caps the thumbnails joined onto each part row
const MaxPhotosPerPart = 6

// Reader is the subset of the repository the views read from
type Reader interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	ListParts(ctx context.Context) ([]models.Part, error)
	ListTasks(ctx context.Context) ([]models.Task, error)
	ListPhotos(ctx context.Context) ([]models.Photo, error)
	ListSettings(ctx context.Context) ([]models.Setting, error)
}

// State is a full read of the database
type State struct {
	Projects []models.Project
	Parts    []models.Part
	Tasks    []models.Task
	Photos   []models.Photo
	Settings []models.Setting
}

// Load reads every collection. The reads are sequential and unlocked, so a
// write landing between two of them shows up on the next Load.
func Load(ctx context.Context, r Reader) (*State, error) {
	var (
		s   State
		err error
	)
	if s.Projects, err = r.ListProjects(ctx); err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}
	if s.Parts, err = r.ListParts(ctx); err != nil {
		return nil, fmt.Errorf("load parts: %w", err)
	}
	if s.Tasks, err = r.ListTasks(ctx); err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	if s.Photos, err = r.ListPhotos(ctx); err != nil {
		return nil, fmt.Errorf("load photos: %w", err)
	}
	if s.Settings, err = r.ListSettings(ctx); err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return &s, nil
}

// ProjectTitle resolves a project reference for display
func (s *State) ProjectTitle(id string) string {
	if id == "" {
		return NoProjectTitle
	}
	for _, p := range s.Projects {
		if p.ID == id {
			return p.Title
		}
	}
	return NoProjectTitle
}

// Setting returns the stored preference as a string, or fallback if unset
func (s *State) Setting(key, fallback string) string {
	for _, st := range s.Settings {
		if st.ID == key {
			return db.SettingString(st.Value)
		}
	}
	return fallback
}

// Currency returns the currency symbol preference
func (s *State) Currency() string {
	return s.Setting(db.SettingCurrency, db.DefaultCurrency)
}

// OptionKind selects the sentinel placed in front of a project picker
type OptionKind int

const (
	// Unassigned pickers assign a record to a project or to none
	Unassigned OptionKind = iota
	// All pickers filter lists, where the sentinel means no filter
	All
)

// Option is one entry of a project picker. The sentinel has an empty ID.
type Option struct {
	ID    string
	Label string
}

// ProjectOptions returns the sentinel followed by every project
func ProjectOptions(projects []models.Project, kind OptionKind) []Option {
	label := "No project"
	if kind == All {
		label = "All projects"
	}
	opts := make([]Option, 0, len(projects)+1)
	opts = append(opts, Option{Label: label})
	for _, p := range projects {
		opts = append(opts, Option{ID: p.ID, Label: p.Title})
	}
	return opts
}

// AdvancePart returns p moved to its next status
func AdvancePart(p models.Part) models.Part {
	p.Status = p.Status.Next()
	return p
}

// AdvanceTask returns t moved to its next status
func AdvanceTask(t models.Task) models.Task {
	t.Status = t.Status.Next()
	return t
}

// FormatMoney renders a price with its currency symbol. Zero renders empty.
func FormatMoney(price float64, currency string) string {
	if price == 0 {
		return ""
	}
	return fmt.Sprintf("%s%.2f", currency, price)
}
