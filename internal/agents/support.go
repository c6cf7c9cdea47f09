package agents

import (
	"context"
	"strings"
	"time"

	"ai-ops-desk/backend/internal/services"
	"ai-ops-desk/backend/pkg/models"
)

// SupportFAQ handles support intents: it searches the knowledge base and
// drafts an answer from the matches.
type SupportFAQ struct {
	KB      services.KnowledgeBase
	Timeout time.Duration

	// TopK bounds the knowledge-base search; defaults to 2.
	TopK int
}

func (a *SupportFAQ) Name() string { return "support_faq" }

func (a *SupportFAQ) Execute(ctx context.Context, p *models.Payload) models.AgentLog {
	log := pendingLog(a.Name())
	defer p.Touch()

	if p.Classification == nil || p.Classification.Intent != models.IntentSupport {
		log.Status = models.AgentSkipped
		log.Skipped = true
		return log
	}

	topK := a.TopK
	if topK <= 0 {
		topK = 2
	}

	cctx, cancel := withTimeout(ctx, a.Timeout)
	defer cancel()

	matches, err := a.KB.Search(cctx, p.Message.BodyText, topK)
	if err != nil {
		return failLog(log, err)
	}

	body := draftSupportAnswer(p.Contact.Name, matches, p.TenantConfig.Tone)
	p.ActionPlan = append(p.ActionPlan, models.Action{
		ActionType: "reply",
		ToolName:   replyChannel(p),
		ToolArgs:   map[string]any{"body": body},
		Status:     models.ActionPending,
	})

	log.Status = models.AgentCompleted
	log.Detail = map[string]any{"kb_matches": len(matches)}
	return log
}

func draftSupportAnswer(name string, matches []services.KBMatch, tone string) string {
	var b strings.Builder
	b.WriteString(greeting(name, tone))
	if len(matches) == 0 {
		b.WriteString("Thanks for your question. I could not find a matching article, so a member of the team will follow up shortly.")
		return b.String()
	}
	b.WriteString("Based on your question, here is the information:\n")
	for _, m := range matches {
		b.WriteString("- ")
		b.WriteString(m.Title)
		b.WriteString(": ")
		b.WriteString(m.Snippet)
		b.WriteString("\n")
	}
	b.WriteString("If this does not resolve it, just reply and we will take a closer look.")
	return b.String()
}
