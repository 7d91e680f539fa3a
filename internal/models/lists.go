package models

// ListItem is a goal or todo entry owned by the student.
type ListItem struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// ListItemPatch carries the fields of a partial item update; nil means unchanged.
type ListItemPatch struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}

// List kinds as they appear in request paths.
const (
	ListGoals = "goals"
	ListTodos = "todos"
)
