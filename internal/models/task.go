package models

import "time"

// Task is the scheduling-facing projection of an entry: the subset of fields
// needed to list, complete and prioritize work.
type Task struct {
	ID        string     `json:"id"`
	EntryID   string     `json:"entry_id,omitempty"`
	Text      string     `json:"text"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Category  Category   `json:"category"`
	Priority  Priority   `json:"priority"`
	Completed bool       `json:"completed"`
	CreatedAt time.Time  `json:"created_at"`
}

// PriorityWeight orders priorities for schedule suggestions.
func PriorityWeight(p Priority) int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	default:
		return 1
	}
}
