package models

import (
	"time"
)

// Contact identifies the sender of an inbound message. Immutable once
// attached to a payload.
type Contact struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	OrgID string `json:"org_id,omitempty"`
}

// Message is one inbound unit of communication.
type Message struct {
	Subject    string    `json:"subject"`
	BodyText   string    `json:"body_text"`
	BodyHTML   string    `json:"body_html,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
	MessageID  string    `json:"message_id"`
	ThreadID   string    `json:"thread_id"`
}

// ThreadHistory is the chronological sequence of messages in a thread.
// Only the ingestion stage replaces it.
type ThreadHistory struct {
	Messages []Message `json:"messages"`
}

// Len returns the number of messages in the thread.
func (h ThreadHistory) Len() int {
	return len(h.Messages)
}

// Source describes the channel an inbound message arrived on.
type Source struct {
	Channel   string `json:"channel"`
	ThreadID  string `json:"thread_id"`
	MessageID string `json:"message_id"`
}
