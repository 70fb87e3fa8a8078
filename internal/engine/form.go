package engine

import (
	"strings"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/task-sync/internal/model"
)

// Form is the editable surface shared by create and edit mode. DueDate uses
// the YYYY-MM-DD input format.
type Form struct {
	Title       string
	Description string
	DueDate     string
	Priority    model.Priority

	// IdempotencyKey stays the same across re-submits of one create form.
	IdempotencyKey string
}

// NewForm returns the blank create form.
func NewForm() Form {
	return Form{
		Priority:       model.PriorityMedium,
		IdempotencyKey: uuid.NewString(),
	}
}

// FormFromTask populates the form for editing t. A priority outside the enum
// falls back to Medium.
func FormFromTask(t model.Task) Form {
	f := Form{
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
	}
	if t.DueDate != nil && !t.DueDate.IsZero() {
		f.DueDate = model.DateInput(*t.DueDate)
	}
	if !f.Priority.Valid() {
		f.Priority = model.PriorityMedium
	}
	return f
}

func (f Form) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return invalid("title", "Title is required.")
	}
	if _, err := model.DateInputToISO(f.DueDate); err != nil {
		return invalid("dueDate", "Due date must be YYYY-MM-DD.")
	}
	if !f.Priority.Valid() {
		return invalid("priority", "Priority must be Low, Medium or High.")
	}
	return nil
}

// Input builds the create body.
func (f Form) Input() (model.TaskInput, error) {
	if err := f.Validate(); err != nil {
		return model.TaskInput{}, err
	}
	due, _ := model.DateInputToISO(f.DueDate)
	return model.TaskInput{
		Title:       strings.TrimSpace(f.Title),
		Description: f.Description,
		DueDate:     due,
		Priority:    f.Priority,
	}, nil
}

// Patch builds an update carrying every form field. An empty due date clears
// it on the server.
func (f Form) Patch() (model.TaskPatch, error) {
	if err := f.Validate(); err != nil {
		return model.TaskPatch{}, err
	}
	due, _ := model.DateInputToISO(f.DueDate)
	title := strings.TrimSpace(f.Title)
	desc := f.Description
	prio := f.Priority
	return model.TaskPatch{
		Title:       &title,
		Description: &desc,
		DueDate:     &due,
		Priority:    &prio,
	}, nil
}
