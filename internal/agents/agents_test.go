package agents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-ops-desk/backend/internal/services"
	"ai-ops-desk/backend/pkg/models"
)

type stubThreads struct {
	history models.ThreadHistory
	err     error
}

func (s stubThreads) FetchThread(ctx context.Context, threadID, tenantID string) (models.ThreadHistory, error) {
	return s.history, s.err
}

func (s stubThreads) SendReply(ctx context.Context, threadID, to, subject, body, tenantID string) (string, error) {
	return "", errors.New("not implemented")
}

type stubClassifier struct {
	classification models.Classification
	err            error
}

func (s stubClassifier) Classify(ctx context.Context, msg models.Message, history models.ThreadHistory, cfg models.TenantConfig) (models.Classification, error) {
	return s.classification, s.err
}

type stubCalendar struct {
	slots []services.Slot
	err   error
}

func (s stubCalendar) FindSlots(ctx context.Context, cfg models.TenantConfig, numSlots, durationMinutes, daysAhead int) ([]services.Slot, error) {
	return s.slots, s.err
}

func (s stubCalendar) CreateEvent(ctx context.Context, tenantID, title string, start time.Time, durationMinutes int, attendees []string) (string, error) {
	return "evt-1", nil
}

func (s stubCalendar) CheckAvailability(ctx context.Context, tenantID string, start, end time.Time) (bool, error) {
	return true, nil
}

type stubKB struct {
	matches []services.KBMatch
	err     error
}

func (s stubKB) Search(ctx context.Context, query string, topK int) ([]services.KBMatch, error) {
	return s.matches, s.err
}

func testPayload(t *testing.T, intent models.Intent) *models.Payload {
	t.Helper()
	p, err := models.NewPayload("wf-1", "t1",
		models.Source{Channel: "email", ThreadID: "th-1", MessageID: "m-1"},
		models.Contact{Email: "alice@example.com", Name: "Alice"},
		models.Message{
			Subject:    "hello",
			BodyText:   "body",
			ReceivedAt: time.Now().UTC(),
			MessageID:  "m-1",
			ThreadID:   "th-1",
		},
		models.DefaultTenantConfig("t1"),
	)
	require.NoError(t, err)
	if intent != "" {
		p.Classification = &models.Classification{Intent: intent, Priority: models.PriorityNormal, Confidence: 0.9}
	}
	return p
}

func TestIngestion(t *testing.T) {
	t.Run("replaces thread history", func(t *testing.T) {
		p := testPayload(t, "")
		history := models.ThreadHistory{Messages: []models.Message{{MessageID: "m-0", ThreadID: "th-1"}}}

		a := &Ingestion{Threads: stubThreads{history: history}}
		log := a.Execute(context.Background(), p)

		assert.Equal(t, models.AgentCompleted, log.Status)
		assert.Equal(t, 1, p.ThreadHistory.Len())
		assert.Equal(t, 1, log.Detail["messages_fetched"])
	})

	t.Run("connector failure is contained", func(t *testing.T) {
		p := testPayload(t, "")
		a := &Ingestion{Threads: stubThreads{err: errors.New("connector down")}}
		log := a.Execute(context.Background(), p)

		assert.Equal(t, models.AgentFailed, log.Status)
		assert.Contains(t, log.Error, "connector down")
		assert.Equal(t, 0, p.ThreadHistory.Len())
	})

	t.Run("bumps updated_at on failure", func(t *testing.T) {
		p := testPayload(t, "")
		before := p.UpdatedAt
		time.Sleep(time.Millisecond)

		a := &Ingestion{Threads: stubThreads{err: errors.New("down")}}
		a.Execute(context.Background(), p)

		assert.True(t, p.UpdatedAt.After(before))
	})
}

func TestTriage(t *testing.T) {
	t.Run("sets classification", func(t *testing.T) {
		p := testPayload(t, "")
		a := &Triage{Classifier: stubClassifier{classification: models.Classification{
			Intent:     models.IntentSupport,
			Priority:   models.PriorityHigh,
			Confidence: 0.85,
		}}}
		log := a.Execute(context.Background(), p)

		assert.Equal(t, models.AgentCompleted, log.Status)
		require.NotNil(t, p.Classification)
		assert.Equal(t, models.IntentSupport, p.Classification.Intent)
		assert.Equal(t, "support", log.Detail["intent"])
		assert.Equal(t, 0.85, log.Detail["confidence"])
	})

	t.Run("clamps confidence into range", func(t *testing.T) {
		p := testPayload(t, "")
		a := &Triage{Classifier: stubClassifier{classification: models.Classification{
			Intent:     models.IntentOther,
			Confidence: 1.7,
		}}}
		a.Execute(context.Background(), p)

		require.NotNil(t, p.Classification)
		assert.Equal(t, 1.0, p.Classification.Confidence)
		assert.Equal(t, models.PriorityNormal, p.Classification.Priority)
	})

	t.Run("failure leaves classification absent", func(t *testing.T) {
		p := testPayload(t, "")
		a := &Triage{Classifier: stubClassifier{err: errors.New("llm timeout")}}
		log := a.Execute(context.Background(), p)

		assert.Equal(t, models.AgentFailed, log.Status)
		assert.Nil(t, p.Classification)
	})
}

func TestAdminScheduling(t *testing.T) {
	slots := []services.Slot{
		{StartTime: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC), DurationMinutes: 30, Timezone: "Europe/London"},
		{StartTime: time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC), DurationMinutes: 30, Timezone: "Europe/London"},
	}

	t.Run("appends one reply action", func(t *testing.T) {
		p := testPayload(t, models.IntentScheduling)
		a := &AdminScheduling{Calendar: stubCalendar{slots: slots}}
		log := a.Execute(context.Background(), p)

		assert.Equal(t, models.AgentCompleted, log.Status)
		assert.Equal(t, 2, log.Detail["slots_proposed"])
		require.Len(t, p.ActionPlan, 1)
		action := p.ActionPlan[0]
		assert.Equal(t, "reply", action.ActionType)
		assert.Equal(t, "email", action.ToolName)
		assert.Contains(t, action.ToolArgs["body"].(string), "Alice")
		assert.Equal(t, models.ActionPending, action.Status)
	})

	t.Run("skips non-matching intent", func(t *testing.T) {
		p := testPayload(t, models.IntentSupport)
		a := &AdminScheduling{Calendar: stubCalendar{slots: slots}}
		log := a.Execute(context.Background(), p)

		assert.Equal(t, models.AgentSkipped, log.Status)
		assert.True(t, log.Skipped)
		assert.Empty(t, p.ActionPlan)
	})

	t.Run("skips absent classification", func(t *testing.T) {
		p := testPayload(t, "")
		a := &AdminScheduling{Calendar: stubCalendar{slots: slots}}
		log := a.Execute(context.Background(), p)

		assert.True(t, log.Skipped)
		assert.Empty(t, p.ActionPlan)
	})

	t.Run("calendar failure is contained", func(t *testing.T) {
		p := testPayload(t, models.IntentScheduling)
		a := &AdminScheduling{Calendar: stubCalendar{err: errors.New("calendar offline")}}
		log := a.Execute(context.Background(), p)

		assert.Equal(t, models.AgentFailed, log.Status)
		assert.Empty(t, p.ActionPlan)
	})
}

func TestSupportFAQ(t *testing.T) {
	matches := []services.KBMatch{{Title: "password reset", Snippet: "use the link", Score: 0.9}}

	t.Run("appends one reply action", func(t *testing.T) {
		p := testPayload(t, models.IntentSupport)
		a := &SupportFAQ{KB: stubKB{matches: matches}}
		log := a.Execute(context.Background(), p)

		assert.Equal(t, models.AgentCompleted, log.Status)
		assert.Equal(t, 1, log.Detail["kb_matches"])
		require.Len(t, p.ActionPlan, 1)
		assert.Equal(t, "reply", p.ActionPlan[0].ActionType)
		assert.Contains(t, p.ActionPlan[0].ToolArgs["body"].(string), "password reset")
	})

	t.Run("skips non-matching intent", func(t *testing.T) {
		p := testPayload(t, models.IntentScheduling)
		a := &SupportFAQ{KB: stubKB{matches: matches}}
		log := a.Execute(context.Background(), p)

		assert.True(t, log.Skipped)
		assert.Empty(t, p.ActionPlan)
	})

	t.Run("no matches still drafts a reply", func(t *testing.T) {
		p := testPayload(t, models.IntentSupport)
		a := &SupportFAQ{KB: stubKB{}}
		log := a.Execute(context.Background(), p)

		assert.Equal(t, models.AgentCompleted, log.Status)
		assert.Equal(t, 0, log.Detail["kb_matches"])
		require.Len(t, p.ActionPlan, 1)
	})
}

func TestRoutingExclusivity(t *testing.T) {
	// For every intent, at most one of the two workers may append an action.
	intents := []models.Intent{
		models.IntentScheduling, models.IntentSupport, models.IntentBilling,
		models.IntentLead, models.IntentOther, models.IntentSpam,
	}

	for _, intent := range intents {
		t.Run(string(intent), func(t *testing.T) {
			p := testPayload(t, intent)
			scheduling := &AdminScheduling{Calendar: stubCalendar{slots: []services.Slot{{DurationMinutes: 30}}}}
			support := &SupportFAQ{KB: stubKB{}}

			schedLog := scheduling.Execute(context.Background(), p)
			supportLog := support.Execute(context.Background(), p)

			fired := 0
			if !schedLog.Skipped {
				fired++
			}
			if !supportLog.Skipped {
				fired++
			}
			assert.LessOrEqual(t, fired, 1)
			assert.LessOrEqual(t, len(p.ActionPlan), 1)
		})
	}
}
