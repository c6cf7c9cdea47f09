package services

import (
	"context"
	"strings"

	"ai-ops-desk/backend/pkg/models"
)

// RuleClassifier is a deterministic keyword classifier used when no
// classification sidecar is configured. Confidence reflects how many
// keywords for the winning intent were found.
type RuleClassifier struct{}

var intentKeywords = []struct {
	intent   models.Intent
	keywords []string
}{
	{models.IntentScheduling, []string{"schedule", "meeting", "call", "calendar", "availability", "reschedule"}},
	{models.IntentSupport, []string{"help", "error", "issue", "broken", "how do i", "not working", "problem"}},
	{models.IntentBilling, []string{"invoice", "payment", "refund", "charge", "billing", "subscription"}},
	{models.IntentLead, []string{"pricing", "demo", "quote", "interested in", "trial"}},
	{models.IntentSpam, []string{"unsubscribe", "winner", "lottery", "crypto opportunity"}},
}

// Classify scores each intent by keyword hits in subject and body.
func (RuleClassifier) Classify(ctx context.Context, msg models.Message, history models.ThreadHistory, cfg models.TenantConfig) (models.Classification, error) {
	text := strings.ToLower(msg.Subject + " " + msg.BodyText)

	best := models.Classification{Intent: models.IntentOther, Priority: models.PriorityNormal, Confidence: 0.3}
	bestHits := 0
	for _, ik := range intentKeywords {
		hits := 0
		for _, kw := range ik.keywords {
			if strings.Contains(text, kw) {
				hits++
			}
		}
		if hits > bestHits {
			bestHits = hits
			best.Intent = ik.intent
			best.Confidence = confidenceFor(hits)
		}
	}

	if strings.Contains(text, "urgent") || strings.Contains(text, "asap") {
		best.Priority = models.PriorityHigh
	}
	if best.Intent == models.IntentSpam {
		best.Priority = models.PriorityLow
	}

	return best, nil
}

func confidenceFor(hits int) float64 {
	// One hit is a weak signal; three or more is as sure as keywords get.
	switch {
	case hits >= 3:
		return 0.9
	case hits == 2:
		return 0.75
	default:
		return 0.6
	}
}
