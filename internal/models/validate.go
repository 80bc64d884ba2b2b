package models

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid record")

// DateLayout is the calendar date format used for due dates
const DateLayout = "2006-01-02"

// Validate checks required fields and enumerations
func (p Project) Validate() error {
	return wrapInvalid("project", validation.ValidateStruct(&p,
		validation.Field(&p.ID, validation.Required),
		validation.Field(&p.Title, validation.Required),
		validation.Field(&p.Status, validation.Required, validation.In(anySlice(ProjectStatuses)...)),
	))
}

// Validate checks required fields and enumerations
func (p Part) Validate() error {
	return wrapInvalid("part", validation.ValidateStruct(&p,
		validation.Field(&p.ID, validation.Required),
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Status, validation.Required, validation.In(anySlice(PartStatuses)...)),
		validation.Field(&p.Price, validation.Min(0.0)),
		validation.Field(&p.Qty, validation.Min(1)),
		validation.Field(&p.Due, validation.Date(DateLayout)),
	))
}

// Validate checks required fields and enumerations
func (t Task) Validate() error {
	return wrapInvalid("task", validation.ValidateStruct(&t,
		validation.Field(&t.ID, validation.Required),
		validation.Field(&t.Title, validation.Required),
		validation.Field(&t.Status, validation.Required, validation.In(anySlice(TaskStatuses)...)),
		validation.Field(&t.Priority, validation.Required, validation.In(anySlice(Priorities)...)),
		validation.Field(&t.Due, validation.Date(DateLayout)),
	))
}

// Validate checks that the photo belongs to a part
func (p Photo) Validate() error {
	return wrapInvalid("photo", validation.ValidateStruct(&p,
		validation.Field(&p.ID, validation.Required),
		validation.Field(&p.PartID, validation.Required),
	))
}

// Validate checks the preference key
func (s Setting) Validate() error {
	return wrapInvalid("setting", validation.ValidateStruct(&s,
		validation.Field(&s.ID, validation.Required),
	))
}

func wrapInvalid(kind string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrInvalid, kind, err)
}

func anySlice[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
