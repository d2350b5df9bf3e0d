package storage

import "time"

// Event records one exchange with the assistant for diagnostics: the user
// prompt (or routine request) and what came back. Events are appended in
// chronological order.
type Event struct {
	Timestamp         time.Time `json:"timestamp"`
	ChatID            int64     `json:"chat_id"`
	SessionID         string    `json:"session_id,omitempty"`
	Kind              string    `json:"kind"` // "chat" or "routine"
	UserMessage       string    `json:"user_message"`
	AssistantResponse string    `json:"assistant_response"`
	Error             string    `json:"error,omitempty"`
}

// Recorder abstracts persistence of interaction events. Recording is
// best-effort: callers log failures and move on. Implementations must be
// safe for concurrent use.
type Recorder interface {
	AppendInteraction(event Event) error
	LoadInteractions() ([]Event, error)
}
