package model

import (
	"encoding/json"
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Priorities lists the known values in display order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Status string

const (
	StatusAll       Status = "all"
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAll, StatusPending, StatusCompleted:
		return true
	}
	return false
}

// Task is the remote store's representation. Priority is kept verbatim even
// when the server sends a value outside the enum.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Priority    Priority   `json:"priority"`
	IsCompleted bool       `json:"isCompleted"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// UnmarshalJSON also accepts "_id" as the identifier. A dueDate that is not a
// parseable date string decodes as no due date instead of failing the task.
func (t *Task) UnmarshalJSON(b []byte) error {
	type plain Task
	var aux struct {
		plain
		MongoID string `json:"_id"`
		DueDate any    `json:"dueDate"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*t = Task(aux.plain)
	if t.ID == "" {
		t.ID = aux.MongoID
	}
	t.DueDate = nil
	if s, ok := aux.DueDate.(string); ok {
		if due, err := ParseISO(strings.TrimSpace(s)); err == nil {
			t.DueDate = &due
		}
	}
	return nil
}

// TaskInput is the body of a create call.
type TaskInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	DueDate     string   `json:"dueDate,omitempty"`
	Priority    Priority `json:"priority,omitempty"`
}

// TaskPatch carries the fields of a partial update. A nil field is left
// untouched; DueDate pointing at "" clears the due date.
type TaskPatch struct {
	Title       *string
	Description *string
	DueDate     *string
	Priority    *Priority
	IsCompleted *bool
}

func (p TaskPatch) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 5)
	if p.Title != nil {
		out["title"] = *p.Title
	}
	if p.Description != nil {
		out["description"] = *p.Description
	}
	if p.DueDate != nil {
		if *p.DueDate == "" {
			out["dueDate"] = nil
		} else {
			out["dueDate"] = *p.DueDate
		}
	}
	if p.Priority != nil {
		out["priority"] = *p.Priority
	}
	if p.IsCompleted != nil {
		out["isCompleted"] = *p.IsCompleted
	}
	return json.Marshal(out)
}

func (p *TaskPatch) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*p = TaskPatch{}
	if v, ok := raw["title"]; ok {
		if err := json.Unmarshal(v, &p.Title); err != nil {
			return err
		}
	}
	if v, ok := raw["description"]; ok {
		if err := json.Unmarshal(v, &p.Description); err != nil {
			return err
		}
	}
	if v, ok := raw["dueDate"]; ok {
		var s *string
		if err := json.Unmarshal(v, &s); err != nil {
			return err
		}
		if s == nil {
			s = new(string)
		}
		p.DueDate = s
	}
	if v, ok := raw["priority"]; ok {
		if err := json.Unmarshal(v, &p.Priority); err != nil {
			return err
		}
	}
	if v, ok := raw["isCompleted"]; ok {
		if err := json.Unmarshal(v, &p.IsCompleted); err != nil {
			return err
		}
	}
	return nil
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.DueDate == nil &&
		p.Priority == nil && p.IsCompleted == nil
}

type TaskFilter struct {
	Status Status
	Query  string
}
