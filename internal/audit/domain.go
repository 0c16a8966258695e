package audit

import "time"

// Entry is a single audit trail record joined with actor details.
type Entry struct {
	ID        int64          `json:"id"`
	ActorID   int64          `json:"actor_id"`
	ActorName *string        `json:"actor_name,omitempty"`
	Action    string         `json:"action"`
	Entity    string         `json:"entity"`
	EntityID  string         `json:"entity_id"`
	Meta      map[string]any `json:"meta,omitempty"`
	At        time.Time      `json:"at"`
}

// TimelineFilter narrows the audit timeline.
type TimelineFilter struct {
	Action  string
	Entity  string
	From    time.Time
	To      time.Time
	Page    int
	PerPage int
}
