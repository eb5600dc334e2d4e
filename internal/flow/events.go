package flow

import (
	"time"

	"github.com/raphaelgruber/flowmind/internal/models"
)

// EventKind identifies what happened in a session.
type EventKind string

const (
	EventTaskCreated      EventKind = "task_created"
	EventDraftFiled       EventKind = "draft_filed"
	EventConnectionsFound EventKind = "connections_found"
)

// Event describes one session mutation, suitable for streaming to clients.
type Event struct {
	Kind        EventKind           `json:"kind"`
	Entry       *models.Entry       `json:"entry,omitempty"`
	Task        *models.Task        `json:"task,omitempty"`
	Connections []models.Connection `json:"connections,omitempty"`
	At          time.Time           `json:"at"`
}
