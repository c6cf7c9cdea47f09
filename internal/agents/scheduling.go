package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ai-ops-desk/backend/internal/services"
	"ai-ops-desk/backend/pkg/models"
)

// AdminScheduling handles scheduling intents: it proposes meeting times from
// the tenant's calendar and drafts a reply offering them.
type AdminScheduling struct {
	Calendar services.CalendarConnector
	Timeout  time.Duration

	// Slot search parameters.
	NumSlots        int
	DurationMinutes int
	DaysAhead       int
}

func (a *AdminScheduling) Name() string { return "admin_scheduling" }

func (a *AdminScheduling) Execute(ctx context.Context, p *models.Payload) models.AgentLog {
	log := pendingLog(a.Name())
	defer p.Touch()

	if p.Classification == nil || p.Classification.Intent != models.IntentScheduling {
		log.Status = models.AgentSkipped
		log.Skipped = true
		return log
	}

	numSlots, duration, daysAhead := a.NumSlots, a.DurationMinutes, a.DaysAhead
	if numSlots <= 0 {
		numSlots = 3
	}
	if duration <= 0 {
		duration = 30
	}
	if daysAhead <= 0 {
		daysAhead = 7
	}

	cctx, cancel := withTimeout(ctx, a.Timeout)
	defer cancel()

	slots, err := a.Calendar.FindSlots(cctx, p.TenantConfig, numSlots, duration, daysAhead)
	if err != nil {
		return failLog(log, err)
	}

	body := draftSchedulingReply(p.Contact.Name, slots, p.TenantConfig.Tone)
	p.ActionPlan = append(p.ActionPlan, models.Action{
		ActionType: "reply",
		ToolName:   replyChannel(p),
		ToolArgs:   map[string]any{"body": body},
		Status:     models.ActionPending,
	})

	log.Status = models.AgentCompleted
	log.Detail = map[string]any{"slots_proposed": len(slots)}
	return log
}

func draftSchedulingReply(name string, slots []services.Slot, tone string) string {
	var b strings.Builder
	b.WriteString(greeting(name, tone))
	if len(slots) == 0 {
		b.WriteString("Thank you for reaching out. I could not find an open slot this week; could you share a few times that suit you?")
		return b.String()
	}
	b.WriteString("Thank you for reaching out. Here are some times that work:\n")
	for _, s := range slots {
		fmt.Fprintf(&b, "- %s (%d min, %s)\n", s.StartTime.Format("Mon 2 Jan 15:04"), s.DurationMinutes, s.Timezone)
	}
	b.WriteString("Let me know which suits you best.")
	return b.String()
}

func greeting(name, tone string) string {
	who := ""
	if name != "" {
		who = " " + name
	}
	if tone == "casual" {
		return fmt.Sprintf("Hi%s,\n\n", who)
	}
	return fmt.Sprintf("Hello%s,\n\n", who)
}

// replyChannel picks the tool the reply action should execute on. Falls back
// to "email" when the source channel is unset.
func replyChannel(p *models.Payload) string {
	if p.Source.Channel != "" {
		return p.Source.Channel
	}
	return "email"
}
