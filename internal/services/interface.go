package services

import (
	"context"
	"time"

	"ai-ops-desk/backend/pkg/models"
)

// ThreadConnector talks to the mail-like transport that threads live on.
type ThreadConnector interface {
	// FetchThread returns the full message history for a thread.
	FetchThread(ctx context.Context, threadID, tenantID string) (models.ThreadHistory, error)
	// SendReply sends a reply on a thread and returns the sent message id.
	SendReply(ctx context.Context, threadID, to, subject, body, tenantID string) (string, error)
}

// Slot is one proposed meeting time.
type Slot struct {
	StartTime       time.Time `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Timezone        string    `json:"timezone"`
}

// CalendarConnector looks up availability and books events.
type CalendarConnector interface {
	// FindSlots returns up to numSlots open slots within daysAhead days,
	// constrained to the tenant's working hours and days.
	FindSlots(ctx context.Context, cfg models.TenantConfig, numSlots, durationMinutes, daysAhead int) ([]Slot, error)
	// CreateEvent books an event and returns its id.
	CreateEvent(ctx context.Context, tenantID, title string, start time.Time, durationMinutes int, attendees []string) (string, error)
	// CheckAvailability reports whether the window is free.
	CheckAvailability(ctx context.Context, tenantID string, start, end time.Time) (bool, error)
}

// Classifier assigns an intent, priority and confidence to a message.
type Classifier interface {
	Classify(ctx context.Context, msg models.Message, history models.ThreadHistory, cfg models.TenantConfig) (models.Classification, error)
}

// KBMatch is one knowledge-base hit.
type KBMatch struct {
	Title   string  `json:"title"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

// KnowledgeBase searches tenant documentation for support answers.
type KnowledgeBase interface {
	Search(ctx context.Context, query string, topK int) ([]KBMatch, error)
}
