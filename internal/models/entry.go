// Package models defines data structures for the FlowMind task and idea store.
package models

import "time"

// Category is the topical classification of an entry or task.
type Category string

const (
	CategoryStudy         Category = "study"
	CategoryWork          Category = "work"
	CategoryEntertainment Category = "entertainment"
	CategoryHealth        Category = "health"
	CategoryPersonal      Category = "personal"
	CategoryUncategorized Category = "uncategorized"
)

// Priority is the urgency level of an entry or task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// EntityType classifies extracted entities.
type EntityType string

const (
	EntityPeople   EntityType = "people"
	EntityPlaces   EntityType = "places"
	EntitySkills   EntityType = "skills"
	EntityTools    EntityType = "tools"
	EntityConcepts EntityType = "concepts"
)

// EntityTypes lists all entity types in extraction and comparison order.
// The order is load-bearing: connection reasons are emitted in this order.
var EntityTypes = []EntityType{EntityPeople, EntityPlaces, EntitySkills, EntityTools, EntityConcepts}

// Entities maps entity types to the strings extracted for them.
// Lists accumulate in match order and are not deduplicated.
type Entities map[EntityType][]string

// NewEntities returns an Entities map with all types present and empty.
func NewEntities() Entities {
	e := make(Entities, len(EntityTypes))
	for _, t := range EntityTypes {
		e[t] = []string{}
	}
	return e
}

// Detail is a supplementary note attached to an entry after creation.
type Detail struct {
	ID      string    `json:"id"`
	Text    string    `json:"text"`
	AddedAt time.Time `json:"added_at"`
}

// Entry is the fully analyzed form of one free-text input.
// CleanText, DueDate, Category, Priority, Keywords and Entities are fixed at
// analysis time; Details and Completed are mutable afterwards.
type Entry struct {
	ID           string     `json:"id"`
	OriginalText string     `json:"original_text"`
	CleanText    string     `json:"clean_text"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	Category     Category   `json:"category"`
	Priority     Priority   `json:"priority"`
	Keywords     []string   `json:"keywords"`
	Entities     Entities   `json:"entities"`
	Details      []Detail   `json:"details"`
	Completed    bool       `json:"completed"`
	CreatedAt    time.Time  `json:"created_at"`
	LastUpdated  time.Time  `json:"last_updated"`
}

// ShouldPromote reports whether the entry becomes a task directly instead of
// being filed as a draft. Evaluated once, at creation.
func (e *Entry) ShouldPromote() bool {
	return e.DueDate != nil || e.Category != CategoryUncategorized || e.Priority == PriorityHigh
}

// TaskText returns the text a task projection of this entry carries.
func (e *Entry) TaskText() string {
	if e.CleanText != "" {
		return e.CleanText
	}
	return e.OriginalText
}
