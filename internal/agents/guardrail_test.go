package agents

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-ops-desk/backend/pkg/models"
)

// fixedScorer returns the same risk score for every payload.
type fixedScorer struct{ risk float64 }

func (s fixedScorer) Score(p *models.Payload, cfg models.TenantConfig) float64 { return s.risk }

func guardrailPayload(classification *models.Classification, cfg models.TenantConfig) *models.Payload {
	return &models.Payload{
		WorkflowID:     "wf-1",
		TenantID:       cfg.TenantID,
		TenantConfig:   cfg,
		Classification: classification,
	}
}

func TestDecide(t *testing.T) {
	tenant := func(autoSend bool, threshold float64) models.TenantConfig {
		cfg := models.DefaultTenantConfig("t1")
		cfg.AutoSendEnabled = autoSend
		cfg.EscalationThreshold = threshold
		return cfg
	}

	tests := []struct {
		name       string
		confidence float64
		risk       float64
		cfg        models.TenantConfig
		want       models.QADecision
	}{
		{"low confidence escalates", 0.5, 0.2, tenant(true, 0.7), models.DecisionEscalate},
		{"high risk escalates", 0.9, 0.8, tenant(true, 0.7), models.DecisionEscalate},
		{"clean auto send", 0.9, 0.2, tenant(true, 0.7), models.DecisionAutoSend},
		{"auto send disabled drafts", 0.95, 0.1, tenant(false, 0.7), models.DecisionDraftOnly},
		{"middling risk drafts", 0.9, 0.5, tenant(true, 0.7), models.DecisionDraftOnly},
		{"confidence at threshold does not escalate", 0.7, 0.2, tenant(true, 0.7), models.DecisionDraftOnly},
		{"risk exactly 0.7 does not escalate", 0.9, 0.7, tenant(true, 0.7), models.DecisionDraftOnly},
		{"risk exactly 0.3 blocks auto send", 0.9, 0.3, tenant(true, 0.7), models.DecisionDraftOnly},
		{"confidence exactly 0.85 blocks auto send", 0.85, 0.1, tenant(true, 0.8), models.DecisionDraftOnly},
		{"confidence just above 0.85 auto sends", 0.851, 0.1, tenant(true, 0.8), models.DecisionAutoSend},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Decide(tc.confidence, tc.risk, tc.cfg))
		})
	}
}

// referenceDecision is an independent rendering of the policy table used to
// property-test Decide over randomized inputs.
func referenceDecision(confidence, risk float64, autoSend bool, threshold float64) models.QADecision {
	if confidence < threshold || risk > 0.7 {
		return models.DecisionEscalate
	}
	if autoSend && risk < 0.3 && confidence > 0.85 {
		return models.DecisionAutoSend
	}
	return models.DecisionDraftOnly
}

func TestDecideProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 5000; i++ {
		confidence := rng.Float64()
		risk := rng.Float64()
		autoSend := rng.Intn(2) == 0
		threshold := rng.Float64()

		cfg := models.DefaultTenantConfig("t1")
		cfg.AutoSendEnabled = autoSend
		cfg.EscalationThreshold = threshold

		got := Decide(confidence, risk, cfg)
		want := referenceDecision(confidence, risk, autoSend, threshold)
		require.Equal(t, want, got,
			"confidence=%v risk=%v autoSend=%v threshold=%v", confidence, risk, autoSend, threshold)

		// Escalation dominance: either trigger forces escalate.
		if confidence < threshold || risk > 0.7 {
			require.Equal(t, models.DecisionEscalate, got)
		}
		// Auto-send gating: never auto-send with the flag off.
		if !autoSend {
			require.NotEqual(t, models.DecisionAutoSend, got)
		}
	}
}

func TestQAGuardrailExecute(t *testing.T) {
	t.Run("sets decision and risk score", func(t *testing.T) {
		cfg := models.DefaultTenantConfig("t1")
		cfg.AutoSendEnabled = true
		p := guardrailPayload(&models.Classification{
			Intent:     models.IntentScheduling,
			Priority:   models.PriorityNormal,
			Confidence: 0.9,
		}, cfg)

		g := &QAGuardrail{Scorer: fixedScorer{risk: 0.2}}
		log := g.Execute(context.Background(), p)

		assert.Equal(t, models.AgentCompleted, log.Status)
		assert.Equal(t, models.DecisionAutoSend, p.QADecision)
		require.NotNil(t, p.QARiskScore)
		assert.Equal(t, 0.2, *p.QARiskScore)
		assert.Equal(t, "auto_send", log.Detail["decision"])
	})

	t.Run("absent classification escalates", func(t *testing.T) {
		cfg := models.DefaultTenantConfig("t1")
		cfg.AutoSendEnabled = true
		// Threshold 0 would let confidence 0.0 pass the strict comparison;
		// the guardrail must still escalate.
		cfg.EscalationThreshold = 0
		p := guardrailPayload(nil, cfg)

		g := &QAGuardrail{Scorer: fixedScorer{risk: 0.0}}
		log := g.Execute(context.Background(), p)

		assert.Equal(t, models.AgentCompleted, log.Status)
		assert.Equal(t, models.DecisionEscalate, p.QADecision)
		assert.Equal(t, "classification absent", log.Reason)
	})

	t.Run("never overwrites an existing decision", func(t *testing.T) {
		cfg := models.DefaultTenantConfig("t1")
		p := guardrailPayload(&models.Classification{Intent: models.IntentSupport, Confidence: 0.9}, cfg)
		p.QADecision = models.DecisionDraftOnly

		g := &QAGuardrail{Scorer: fixedScorer{risk: 0.9}}
		log := g.Execute(context.Background(), p)

		assert.Equal(t, models.AgentFailed, log.Status)
		assert.Equal(t, models.DecisionDraftOnly, p.QADecision)
	})

	t.Run("clamps out-of-range risk", func(t *testing.T) {
		cfg := models.DefaultTenantConfig("t1")
		p := guardrailPayload(&models.Classification{Intent: models.IntentSupport, Confidence: 0.9}, cfg)

		g := &QAGuardrail{Scorer: fixedScorer{risk: 3.5}}
		g.Execute(context.Background(), p)

		require.NotNil(t, p.QARiskScore)
		assert.Equal(t, 1.0, *p.QARiskScore)
		assert.Equal(t, models.DecisionEscalate, p.QADecision)
	})
}

func TestHeuristicRiskScorer(t *testing.T) {
	cfg := models.DefaultTenantConfig("t1")
	scorer := HeuristicRiskScorer{}

	t.Run("absent classification is near maximal", func(t *testing.T) {
		assert.Equal(t, 0.9, scorer.Score(guardrailPayload(nil, cfg), cfg))
	})

	t.Run("monotonic in confidence", func(t *testing.T) {
		low := guardrailPayload(&models.Classification{Intent: models.IntentSupport, Priority: models.PriorityNormal, Confidence: 0.2}, cfg)
		high := guardrailPayload(&models.Classification{Intent: models.IntentSupport, Priority: models.PriorityNormal, Confidence: 0.9}, cfg)
		assert.Greater(t, scorer.Score(low, cfg), scorer.Score(high, cfg))
	})

	t.Run("spam is riskier than support", func(t *testing.T) {
		spam := guardrailPayload(&models.Classification{Intent: models.IntentSpam, Priority: models.PriorityNormal, Confidence: 0.8}, cfg)
		support := guardrailPayload(&models.Classification{Intent: models.IntentSupport, Priority: models.PriorityNormal, Confidence: 0.8}, cfg)
		assert.Greater(t, scorer.Score(spam, cfg), scorer.Score(support, cfg))
	})

	t.Run("always within bounds", func(t *testing.T) {
		rng := rand.New(rand.NewSource(7))
		intents := []models.Intent{models.IntentScheduling, models.IntentSupport, models.IntentBilling, models.IntentLead, models.IntentOther, models.IntentSpam}
		for i := 0; i < 1000; i++ {
			p := guardrailPayload(&models.Classification{
				Intent:     intents[rng.Intn(len(intents))],
				Priority:   models.PriorityCritical,
				Confidence: rng.Float64(),
			}, cfg)
			score := scorer.Score(p, cfg)
			require.GreaterOrEqual(t, score, 0.0)
			require.LessOrEqual(t, score, 1.0)
		}
	})
}
