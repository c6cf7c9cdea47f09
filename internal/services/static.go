package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ai-ops-desk/backend/pkg/models"

	"github.com/google/uuid"
)

// NullThreadConnector stands in until a real mail connector is configured.
// Fetches return the thread as already known (empty history) and sends fail,
// which downstream stages are required to tolerate.
type NullThreadConnector struct{}

// FetchThread returns an empty history.
func (NullThreadConnector) FetchThread(ctx context.Context, threadID, tenantID string) (models.ThreadHistory, error) {
	return models.ThreadHistory{}, nil
}

// SendReply always fails: there is no transport to send on.
func (NullThreadConnector) SendReply(ctx context.Context, threadID, to, subject, body, tenantID string) (string, error) {
	return "", fmt.Errorf("no thread connector configured for tenant %s", tenantID)
}

// StaticCalendar proposes deterministic slots from the tenant's working
// calendar without consulting a real provider. Useful for local runs and as
// the default until a calendar integration is wired up.
type StaticCalendar struct {
	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

func (c StaticCalendar) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now().UTC()
}

// FindSlots walks forward day by day, skipping non-working days, and offers
// one slot per working day at the start of the tenant's working hours.
func (c StaticCalendar) FindSlots(ctx context.Context, cfg models.TenantConfig, numSlots, durationMinutes, daysAhead int) ([]Slot, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.UTC
	}

	slots := make([]Slot, 0, numSlots)
	day := c.now().In(loc)
	for i := 1; i <= daysAhead && len(slots) < numSlots; i++ {
		candidate := day.AddDate(0, 0, i)
		// time.Weekday has Sunday=0; tenant working days use Monday=0.
		weekday := (int(candidate.Weekday()) + 6) % 7
		if !cfg.WorksOn(weekday) {
			continue
		}
		start := time.Date(candidate.Year(), candidate.Month(), candidate.Day(), cfg.WorkingHoursStart, 0, 0, 0, loc)
		slots = append(slots, Slot{
			StartTime:       start,
			DurationMinutes: durationMinutes,
			Timezone:        cfg.Timezone,
		})
	}
	return slots, nil
}

// CreateEvent fabricates an event id.
func (c StaticCalendar) CreateEvent(ctx context.Context, tenantID, title string, start time.Time, durationMinutes int, attendees []string) (string, error) {
	return "evt-" + uuid.New().String(), nil
}

// CheckAvailability treats every window inside working hours as free.
func (c StaticCalendar) CheckAvailability(ctx context.Context, tenantID string, start, end time.Time) (bool, error) {
	return end.After(start), nil
}

// StaticKnowledgeBase answers searches from a fixed set of articles matched
// by case-insensitive substring.
type StaticKnowledgeBase struct {
	Articles []KBMatch
}

// Search returns up to topK articles whose title or snippet contains a word
// of the query.
func (kb StaticKnowledgeBase) Search(ctx context.Context, query string, topK int) ([]KBMatch, error) {
	if topK <= 0 {
		return nil, nil
	}
	q := strings.ToLower(query)
	var matches []KBMatch
	for _, a := range kb.Articles {
		if len(matches) == topK {
			break
		}
		if strings.Contains(q, strings.ToLower(a.Title)) ||
			strings.Contains(strings.ToLower(a.Snippet), q) ||
			strings.Contains(strings.ToLower(a.Title), q) {
			matches = append(matches, a)
		}
	}
	return matches, nil
}
