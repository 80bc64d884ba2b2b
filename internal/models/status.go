package models

import "slices"

// ProjectStatus is the restoration stage of a project
type ProjectStatus string

const (
	ProjectPlanning   ProjectStatus = "planning"
	ProjectStripping  ProjectStatus = "stripping"
	ProjectPaint      ProjectStatus = "paint"
	ProjectPowder     ProjectStatus = "powder"
	ProjectEngine     ProjectStatus = "engine"
	ProjectReassembly ProjectStatus = "reassembly"
	ProjectTesting    ProjectStatus = "testing"
	ProjectComplete   ProjectStatus = "complete"
)

// ProjectStatuses lists the stages in workshop order
var ProjectStatuses = []ProjectStatus{
	ProjectPlanning, ProjectStripping, ProjectPaint, ProjectPowder,
	ProjectEngine, ProjectReassembly, ProjectTesting, ProjectComplete,
}

// PartStatus tracks a part from shopping list to bike
type PartStatus string

const (
	PartNeeded    PartStatus = "needed"
	PartOrdered   PartStatus = "ordered"
	PartReceived  PartStatus = "received"
	PartInstalled PartStatus = "installed"
)

// PartStatuses is the advance cycle for parts
var PartStatuses = []PartStatus{PartNeeded, PartOrdered, PartReceived, PartInstalled}

// TaskStatus is the progress of a task
type TaskStatus string

const (
	TaskTodo  TaskStatus = "todo"
	TaskDoing TaskStatus = "doing"
	TaskDone  TaskStatus = "done"
)

// TaskStatuses is the advance cycle for tasks
var TaskStatuses = []TaskStatus{TaskTodo, TaskDoing, TaskDone}

// Priority of a task
type Priority string

const (
	PriorityLow  Priority = "low"
	PriorityMed  Priority = "med"
	PriorityHigh Priority = "high"
)

// Priorities lists task priorities from lowest to highest
var Priorities = []Priority{PriorityLow, PriorityMed, PriorityHigh}

// Next returns the following stage, wrapping after complete
func (s ProjectStatus) Next() ProjectStatus { return next(ProjectStatuses, s) }

// Next returns the following part status, wrapping from installed to needed.
// An unknown status advances to needed.
func (s PartStatus) Next() PartStatus { return next(PartStatuses, s) }

// Next returns the following task status, wrapping from done to todo.
// An unknown status advances to todo.
func (s TaskStatus) Next() TaskStatus { return next(TaskStatuses, s) }

// Next returns the following priority, wrapping from high to low
func (p Priority) Next() Priority { return next(Priorities, p) }

func next[T comparable](cycle []T, cur T) T {
	return cycle[(slices.Index(cycle, cur)+1)%len(cycle)]
}
