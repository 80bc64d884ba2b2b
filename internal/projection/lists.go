package projection

import (
	"sort"
	"strings"

	"github.com/tgienger/refurb/internal/models"
)

// PartFilter narrows the parts view. Empty fields do not filter.
type PartFilter struct {
	ProjectID string
	Status    models.PartStatus
	Query     string
}

// PartRow is a part joined with its project title and first photos
type PartRow struct {
	models.Part
	ProjectTitle string         `json:"projectTitle"`
	Photos       []models.Photo `json:"photos"`
}

// Parts returns the parts matching f in storage order. The query matches
// case-insensitively anywhere in the name, notes or supplier.
func Parts(s *State, f PartFilter) []PartRow {
	photos := make(map[string][]models.Photo)
	for _, ph := range s.Photos {
		if len(photos[ph.PartID]) < MaxPhotosPerPart {
			photos[ph.PartID] = append(photos[ph.PartID], ph)
		}
	}

	q := strings.ToLower(f.Query)
	rows := []PartRow{}
	for _, p := range s.Parts {
		if f.ProjectID != "" && p.ProjectID != f.ProjectID {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		hay := strings.ToLower(p.Name + " " + p.Notes + " " + p.Supplier)
		if !strings.Contains(hay, q) {
			continue
		}
		rows = append(rows, PartRow{
			Part:         p,
			ProjectTitle: s.ProjectTitle(p.ProjectID),
			Photos:       photos[p.ID],
		})
	}
	return rows
}

// TaskFilter narrows the tasks view. Empty fields do not filter.
type TaskFilter struct {
	ProjectID string
	Status    models.TaskStatus
	Query     string
}

// TaskRow is a task joined with its project title
type TaskRow struct {
	models.Task
	ProjectTitle string `json:"projectTitle"`
}

// Tasks returns the tasks matching f sorted by due date. Tasks without a due
// date come first; ties keep storage order.
func Tasks(s *State, f TaskFilter) []TaskRow {
	q := strings.ToLower(f.Query)
	rows := []TaskRow{}
	for _, t := range s.Tasks {
		if f.ProjectID != "" && t.ProjectID != f.ProjectID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if !strings.Contains(strings.ToLower(t.Title+" "+t.Notes), q) {
			continue
		}
		rows = append(rows, TaskRow{Task: t, ProjectTitle: s.ProjectTitle(t.ProjectID)})
	}
	sortByDue(rows)
	return rows
}

func sortByDue(rows []TaskRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Due < rows[j].Due
	})
}

// ProjectSummary totals a project's parts and tasks
type ProjectSummary struct {
	models.Project
	PartsByStatus map[models.PartStatus]int `json:"partsByStatus"`
	OpenTasks     int                       `json:"openTasks"`
	Cost          float64                   `json:"cost"` // sum of price × qty
}

// Summaries returns one summary per project in storage order
func Summaries(s *State) []ProjectSummary {
	index := make(map[string]int, len(s.Projects))
	out := make([]ProjectSummary, len(s.Projects))
	for i, p := range s.Projects {
		index[p.ID] = i
		out[i] = ProjectSummary{Project: p, PartsByStatus: map[models.PartStatus]int{}}
	}
	for _, p := range s.Parts {
		i, ok := index[p.ProjectID]
		if !ok {
			continue
		}
		out[i].PartsByStatus[p.Status]++
		out[i].Cost += p.Price * float64(p.Qty)
	}
	for _, t := range s.Tasks {
		i, ok := index[t.ProjectID]
		if !ok || t.Status == models.TaskDone {
			continue
		}
		out[i].OpenTasks++
	}
	return out
}
