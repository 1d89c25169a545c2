package storage

import "time"

// Answer sources recorded with each interaction.
const (
	SourceInventory = "inventory"
	SourceModel     = "model"
)

// Event is one user message and the reply it got.
// Medicine is set when the reply came from the inventory.
type Event struct {
	Timestamp         time.Time `json:"timestamp"`
	SessionID         string    `json:"session_id"`
	UserMessage       string    `json:"user_message"`
	AssistantResponse string    `json:"assistant_response"`
	Source            string    `json:"source"`
	Medicine          string    `json:"medicine,omitempty"`
}

// Recorder abstracts persistence of interaction events.
// LoadInteractions returns events in the order they were appended.
// Implementations must be safe for concurrent use.
type Recorder interface {
	AppendInteraction(event Event) error
	LoadInteractions() ([]Event, error)
}
