package views

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/refurb/internal/projection"
	"github.com/tgienger/refurb/internal/ui/keys"
	"github.com/tgienger/refurb/internal/ui/styles"
)

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldChoice
)

type field struct {
	name    string
	label   string
	kind    fieldKind
	input   textinput.Model
	options []projection.Option
	choice  int
}

// form edits one record. Choice fields cycle with ←/→, text fields take
// typing; the last focus stop is the save button.
type form struct {
	title  string
	fields []*field
	focus  int
	err    string
	keys   keys.KeyMap
}

// formResult is what a key press did to the form
type formResult int

const (
	formEditing formResult = iota
	formSubmit
	formCancel
)

func newForm(title string, km keys.KeyMap) *form {
	return &form{title: title, keys: km}
}

func (f *form) text(name, label, value, placeholder string) *form {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 500
	in.SetValue(value)
	f.fields = append(f.fields, &field{name: name, label: label, kind: fieldText, input: in})
	return f
}

// choice adds a cycling field. A selected id missing from options, such as
// the project of an orphaned part, is kept as an extra NoProjectTitle option
// so saving the form does not unlink it.
func (f *form) choice(name, label string, options []projection.Option, selected string) *form {
	fl := &field{name: name, label: label, kind: fieldChoice, options: options, choice: -1}
	for i, o := range options {
		if o.ID == selected {
			fl.choice = i
		}
	}
	if fl.choice < 0 {
		fl.choice = 0
		if selected != "" {
			fl.options = append(slices.Clip(options), projection.Option{ID: selected, Label: projection.NoProjectTitle})
			fl.choice = len(fl.options) - 1
		}
	}
	f.fields = append(f.fields, fl)
	return f
}

func (f *form) start() tea.Cmd {
	f.focus = 0
	f.err = ""
	f.refocus()
	return textinput.Blink
}

func (f *form) field(name string) *field {
	for _, fl := range f.fields {
		if fl.name == name {
			return fl
		}
	}
	return nil
}

// value returns a text field's trimmed value or a choice field's option id
func (f *form) value(name string) string {
	fl := f.field(name)
	if fl == nil {
		return ""
	}
	if fl.kind == fieldChoice {
		if len(fl.options) == 0 {
			return ""
		}
		return fl.options[fl.choice].ID
	}
	return strings.TrimSpace(fl.input.Value())
}

func (f *form) refocus() {
	for i, fl := range f.fields {
		if fl.kind != fieldText {
			continue
		}
		if i == f.focus {
			fl.input.Focus()
		} else {
			fl.input.Blur()
		}
	}
}

func (f *form) stops() int {
	return len(f.fields) + 1
}

func (f *form) update(msg tea.KeyMsg) (formResult, tea.Cmd) {
	switch {
	case key.Matches(msg, f.keys.Back):
		return formCancel, nil
	case key.Matches(msg, f.keys.Save):
		return formSubmit, nil
	case msg.Type == tea.KeyTab, msg.Type == tea.KeyDown:
		f.focus = (f.focus + 1) % f.stops()
		f.refocus()
		return formEditing, nil
	case msg.Type == tea.KeyShiftTab, msg.Type == tea.KeyUp:
		f.focus = (f.focus + f.stops() - 1) % f.stops()
		f.refocus()
		return formEditing, nil
	case msg.Type == tea.KeyEnter:
		if f.focus == len(f.fields) {
			return formSubmit, nil
		}
		f.focus++
		f.refocus()
		return formEditing, nil
	}

	if f.focus >= len(f.fields) {
		return formEditing, nil
	}
	fl := f.fields[f.focus]
	if fl.kind == fieldChoice {
		n := len(fl.options)
		if n == 0 {
			return formEditing, nil
		}
		switch msg.Type {
		case tea.KeyRight, tea.KeySpace:
			fl.choice = (fl.choice + 1) % n
		case tea.KeyLeft:
			fl.choice = (fl.choice + n - 1) % n
		}
		return formEditing, nil
	}

	var cmd tea.Cmd
	fl.input, cmd = fl.input.Update(msg)
	return formEditing, cmd
}

func (f *form) view(s *styles.Styles, width, height int) string {
	contentWidth := styles.ContentWidth(width)
	inputWidth := clamp(contentWidth-20, 20, 50)

	rows := []string{s.Title.Render(f.title), ""}
	for i, fl := range f.fields {
		focused := i == f.focus
		var body string
		if fl.kind == fieldChoice {
			label := ""
			if len(fl.options) > 0 {
				label = fl.options[fl.choice].Label
			}
			style := s.Button
			if focused {
				style = s.ButtonFocused
			}
			body = style.Render("‹ " + truncate(label, inputWidth-4) + " ›")
		} else {
			style := s.Input
			if focused {
				style = s.InputFocused
			}
			body = style.Width(inputWidth).Render(fl.input.View())
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Center, s.Label.Render(fl.label), body))
	}

	btn := s.Button
	if f.focus == len(f.fields) {
		btn = s.ButtonFocused
	}
	rows = append(rows, "", btn.Render(" Save "))
	if f.err != "" {
		rows = append(rows, s.ErrorText.Render(f.err))
	}
	rows = append(rows, "", s.TitleMuted.Render("Tab: next • ←/→: choose • Ctrl+S: save • Esc: cancel"))

	return lipgloss.Place(contentWidth, height,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// enumOptions turns a status or priority list into choice options
func enumOptions[T ~string](all []T) []projection.Option {
	out := make([]projection.Option, len(all))
	for i, v := range all {
		out[i] = projection.Option{ID: string(v), Label: string(v)}
	}
	return out
}
