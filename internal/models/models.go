package models

import (
	"time"

	"github.com/google/uuid"
)

// Project is a single vehicle being restored
type Project struct {
	ID      string        `json:"id"`
	Title   string        `json:"title"`
	Reg     string        `json:"reg"` // registration plate or VIN
	Status  ProjectStatus `json:"status"`
	Notes   string        `json:"notes"`
	Created time.Time     `json:"created"`
}

// Part is a component needed for a project. ProjectID is empty when the part
// is not assigned to any project.
type Part struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	ProjectID string     `json:"projectId"`
	Status    PartStatus `json:"status"`
	Supplier  string     `json:"supplier"`
	Price     float64    `json:"price"`
	Qty       int        `json:"qty"`
	Due       string     `json:"due"` // YYYY-MM-DD, empty if unset
	Notes     string     `json:"notes"`
	Created   time.Time  `json:"created"`
}

// Task is a piece of work with an optional due date
type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	ProjectID string     `json:"projectId"`
	Due       string     `json:"due"`
	Priority  Priority   `json:"priority"`
	Status    TaskStatus `json:"status"`
	Notes     string     `json:"notes"`
	Created   time.Time  `json:"created"`
}

// Photo is a reference image attached to a part. Data holds the already
// encoded payload (usually a data URL); it is never decoded here.
type Photo struct {
	ID        string    `json:"id"`
	PartID    string    `json:"partId"`
	Data      string    `json:"data"`
	Name      string    `json:"name"`
	MediaType string    `json:"type"`
	Created   time.Time `json:"created"`
}

// Setting is a single user preference. ID is the preference key.
type Setting struct {
	ID    string `json:"id"`
	Value any    `json:"value"`
}

// NewID returns a fresh random identifier for any entity
func NewID() string {
	return uuid.NewString()
}

// Now returns the creation timestamp used for new records
func Now() time.Time {
	return time.Now().UTC()
}

// NewProject returns a project in the planning stage
func NewProject(title string) Project {
	return Project{
		ID:      NewID(),
		Title:   title,
		Status:  ProjectPlanning,
		Created: Now(),
	}
}

// NewPart returns an unassigned part that is still needed
func NewPart(name string) Part {
	return Part{
		ID:      NewID(),
		Name:    name,
		Status:  PartNeeded,
		Qty:     1,
		Created: Now(),
	}
}

// NewTask returns a medium priority task in the todo state
func NewTask(title string) Task {
	return Task{
		ID:       NewID(),
		Title:    title,
		Priority: PriorityMed,
		Status:   TaskTodo,
		Created:  Now(),
	}
}

// NewPhoto returns a photo attached to the given part
func NewPhoto(partID, name, mediaType, data string) Photo {
	return Photo{
		ID:        NewID(),
		PartID:    partID,
		Data:      data,
		Name:      name,
		MediaType: mediaType,
		Created:   Now(),
	}
}

// FillDefaults sets the form defaults for fields left empty
func (p *Project) FillDefaults() {
	if p.Status == "" {
		p.Status = ProjectPlanning
	}
}

// FillDefaults sets the form defaults for fields left empty
func (p *Part) FillDefaults() {
	if p.Status == "" {
		p.Status = PartNeeded
	}
	if p.Qty == 0 {
		p.Qty = 1
	}
}

// FillDefaults sets the form defaults for fields left empty
func (t *Task) FillDefaults() {
	if t.Status == "" {
		t.Status = TaskTodo
	}
	if t.Priority == "" {
		t.Priority = PriorityMed
	}
}
