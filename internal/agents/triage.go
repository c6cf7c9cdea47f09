package agents

import (
	"context"
	"time"

	"ai-ops-desk/backend/internal/services"
	"ai-ops-desk/backend/pkg/models"
)

// Triage classifies the message's intent and priority. On classifier failure
// the payload is left without a classification; downstream routing skips the
// worker step and the guardrail treats the message as maximally risky.
type Triage struct {
	Classifier services.Classifier
	Timeout    time.Duration
}

func (a *Triage) Name() string { return "triage" }

func (a *Triage) Execute(ctx context.Context, p *models.Payload) models.AgentLog {
	log := pendingLog(a.Name())
	defer p.Touch()

	cctx, cancel := withTimeout(ctx, a.Timeout)
	defer cancel()

	classification, err := a.Classifier.Classify(cctx, p.Message, p.ThreadHistory, p.TenantConfig)
	if err != nil {
		return failLog(log, err)
	}

	classification.Confidence = clamp01(classification.Confidence)
	if !classification.Priority.Valid() {
		classification.Priority = models.PriorityNormal
	}

	p.Classification = &classification
	log.Status = models.AgentCompleted
	log.Detail = map[string]any{
		"intent":     string(classification.Intent),
		"confidence": classification.Confidence,
	}
	return log
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
