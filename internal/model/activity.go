package model

import "time"

// Activity is one audit entry written for a successful transition.
type Activity struct {
	ID         int64     `json:"id"`
	EventID    string    `json:"event_id"`
	ItemID     int64     `json:"item_id"`
	AgentID    int64     `json:"agent_id"`
	AgentName  string    `json:"agent_name"`
	Action     string    `json:"action"`
	FromStatus Status    `json:"from_status"`
	ToStatus   Status    `json:"to_status"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`

	// Joined field (not always populated).
	ItemTitle string `json:"item_title,omitempty"`
}

// Transition is the write produced by one lifecycle action: the new status,
// the note block to append and the activity entry to record.
type Transition struct {
	ItemID    int64
	EventID   string
	Action    string
	From      Status
	To        Status
	NoteBlock string
	AgentID   int64
	AgentName string
	Message   string
}
