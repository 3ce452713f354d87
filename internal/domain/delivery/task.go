package delivery

import "github.com/agencyos/backend/internal/domain/shared/listing"

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusBlocked    TaskStatus = "blocked"
)

var TaskLifecycle = listing.Lifecycle{
	Order: []string{string(TaskStatusTodo), string(TaskStatusInProgress), string(TaskStatusDone)},
	Other: []string{string(TaskStatusBlocked)},
}

// TaskPriorities in ascending urgency
var TaskPriorities = []string{"low", "medium", "high", "urgent"}

// Task is a unit of work inside a project
type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	ProjectID string     `json:"project_id"`
	Assignee  string     `json:"assignee,omitempty"`
	Priority  string     `json:"priority,omitempty"`
	Status    TaskStatus `json:"status"`
	Due       string     `json:"due,omitempty"`
}

func (t Task) RecordID() string { return t.ID }

func (t Task) WithID(id string) Task {
	t.ID = id
	return t
}

func (t Task) RecordStatus() string { return string(t.Status) }

func (t Task) WithStatus(status string) Task {
	t.Status = TaskStatus(status)
	return t
}

func TaskSchema() *listing.Schema[Task] {
	return &listing.Schema[Task]{
		Name:         "tasks",
		Kind:         "task",
		IDPrefix:     "task",
		Lifecycle:    TaskLifecycle,
		SearchFields: func(t Task) []string { return []string{t.Title, t.Assignee} },
		Facets: map[string]func(Task) []string{
			"project":  func(t Task) []string { return []string{t.ProjectID} },
			"assignee": func(t Task) []string { return []string{t.Assignee} },
			"priority": func(t Task) []string { return []string{t.Priority} },
		},
		Sorts: map[string]listing.Comparator[Task]{
			"title":    listing.Strings(func(t Task) string { return t.Title }),
			"due":      listing.Strings(func(t Task) string { return t.Due }),
			"priority": listing.Ranked(TaskPriorities, func(t Task) string { return t.Priority }),
		},
		Required: func(t Task) []string {
			return listing.RequireText("title", t.Title, "project_id", t.ProjectID)
		},
		Normalize: func(t Task) (Task, error) {
			if t.Priority == "" {
				t.Priority = "medium"
			}
			return t, nil
		},
		Columns: []listing.Column[Task]{
			{Name: "id", Value: func(t Task) string { return t.ID }},
			{Name: "title", Value: func(t Task) string { return t.Title }},
			{Name: "project_id", Value: func(t Task) string { return t.ProjectID }},
			{Name: "assignee", Value: func(t Task) string { return t.Assignee }},
			{Name: "priority", Value: func(t Task) string { return t.Priority }},
			{Name: "status", Value: func(t Task) string { return string(t.Status) }},
			{Name: "due", Value: func(t Task) string { return t.Due }},
		},
	}
}
