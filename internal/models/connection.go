package models

// ConnectionType classifies a connection by strength.
type ConnectionType string

const (
	ConnectionStrong ConnectionType = "strong"
	ConnectionWeak   ConnectionType = "weak"
)

// StrongThreshold is the strength at which a connection is classified strong.
// MinStrength is the strength below which no connection is recorded.
const (
	MinStrength     = 2
	StrongThreshold = 5
)

// Connection is a weighted, reasoned relation discovered between two entries.
// From is always the newer entry; connections are computed once, when the
// newer entry is inserted, and never recomputed.
type Connection struct {
	ID       string         `json:"id"`
	From     string         `json:"from"`
	To       string         `json:"to"`
	Strength int            `json:"strength"`
	Reasons  []string       `json:"reasons"`
	Type     ConnectionType `json:"type"`
}
