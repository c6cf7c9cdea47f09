package agents

import (
	"ai-ops-desk/backend/pkg/models"
)

// RiskScorer estimates how unsafe it is to auto-act on the current payload.
// Implementations must be deterministic for identical inputs and monotonic
// in riskier signals (lower confidence, riskier intents, missing context).
type RiskScorer interface {
	Score(p *models.Payload, cfg models.TenantConfig) float64
}

// HeuristicRiskScorer is the built-in scorer. Production deployments can
// swap in a model-backed implementation; the guardrail contract only needs
// the determinism and monotonicity above.
type HeuristicRiskScorer struct{}

func (HeuristicRiskScorer) Score(p *models.Payload, cfg models.TenantConfig) float64 {
	score := 0.1

	if p.Classification == nil {
		// Nothing is known about the message; near-maximal risk.
		return 0.9
	}

	// Lower confidence reads as higher risk.
	score += (1 - p.Classification.Confidence) * 0.3

	switch p.Classification.Intent {
	case models.IntentSpam:
		score += 0.4
	case models.IntentBilling:
		// Money conversations are never auto-sent lightly.
		score += 0.2
	}

	if p.Classification.Priority == models.PriorityCritical {
		score += 0.15
	}

	if p.ThreadHistory.Len() == 0 {
		// First contact, no established context.
		score += 0.05
	}

	return clamp01(score)
}
