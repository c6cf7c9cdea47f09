package agents

import (
	"context"
	"errors"

	"ai-ops-desk/backend/pkg/models"
)

// QAGuardrail is the terminal decision stage. It always runs, regardless of
// upstream stage outcomes, and sets the payload's risk score and decision
// exactly once.
type QAGuardrail struct {
	Scorer RiskScorer
}

func (a *QAGuardrail) Name() string { return "qa_guardrail" }

func (a *QAGuardrail) Execute(ctx context.Context, p *models.Payload) models.AgentLog {
	log := pendingLog(a.Name())
	defer p.Touch()

	if p.QADecision != "" {
		// Terminal assignment: a decision, once made, is never overwritten.
		// Re-running a workflow means a new workflow id, not a new decision.
		return failLog(log, errors.New("qa_decision already set"))
	}

	scorer := a.Scorer
	if scorer == nil {
		scorer = HeuristicRiskScorer{}
	}

	risk := clamp01(scorer.Score(p, p.TenantConfig))
	p.QARiskScore = &risk

	var decision models.QADecision
	if p.Classification == nil {
		// Triage produced nothing usable. An unclassified message never
		// passes silently: treat confidence as 0.0 and escalate outright,
		// even for a tenant whose escalation threshold is 0.
		decision = models.DecisionEscalate
		log.Reason = "classification absent"
	} else {
		decision = Decide(p.Classification.Confidence, risk, p.TenantConfig)
	}
	p.QADecision = decision

	log.Status = models.AgentCompleted
	log.Detail = map[string]any{
		"risk_score": risk,
		"decision":   string(decision),
	}
	return log
}

// Decide maps (confidence, risk) onto a decision under the tenant's policy.
// The rule order is a hard requirement, first match wins:
//
//  1. confidence < escalation_threshold OR risk > 0.7  -> escalate
//  2. auto-send enabled AND risk < 0.3 AND confidence > 0.85 -> auto_send
//  3. otherwise -> draft_only
//
// All four comparisons are strict.
func Decide(confidence, risk float64, cfg models.TenantConfig) models.QADecision {
	switch {
	case confidence < cfg.EscalationThreshold || risk > 0.7:
		return models.DecisionEscalate
	case cfg.AutoSendEnabled && risk < 0.3 && confidence > 0.85:
		return models.DecisionAutoSend
	default:
		return models.DecisionDraftOnly
	}
}
