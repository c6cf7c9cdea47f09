package models

import (
	"fmt"
	"time"
)

// Classification is the triage verdict for an inbound message. Set once by
// the triage stage and read-only afterward.
type Classification struct {
	Intent     Intent   `json:"intent"`
	SubIntent  string   `json:"sub_intent,omitempty"`
	Priority   Priority `json:"priority"`
	Confidence float64  `json:"confidence"` // 0.0 to 1.0
}

// Action is one planned (or executed) step in the workflow's action plan.
type Action struct {
	ActionType string         `json:"action_type"` // "reply", "create_event", "create_task", "enrich_lead"
	ToolName   string         `json:"tool_name,omitempty"`
	ToolArgs   map[string]any `json:"tool_args"`
	ResultID   string         `json:"result_id,omitempty"`
	Status     ActionStatus   `json:"status"`
}

// AgentLog is the audit record one stage produces per execution.
type AgentLog struct {
	Agent   string         `json:"agent"`
	Status  AgentStatus    `json:"status"`
	Skipped bool           `json:"skipped,omitempty"`
	Reason  string         `json:"reason,omitempty"`
	Detail  map[string]any `json:"detail,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Payload is the aggregate threaded through the agent pipeline for one
// workflow run. The orchestrator owns it exclusively during the run; no
// stage retains a reference after returning.
type Payload struct {
	WorkflowID    string `json:"workflow_id"`
	TenantID      string `json:"tenant_id"`
	CorrelationID string `json:"correlation_id"`

	// Input
	Source        Source        `json:"source"`
	Contact       Contact       `json:"contact"`
	Message       Message       `json:"message"`
	ThreadHistory ThreadHistory `json:"thread_history"`
	TenantConfig  TenantConfig  `json:"tenant_config"`

	// Enrichment by agents
	Classification *Classification `json:"classification,omitempty"`
	QADecision     QADecision      `json:"qa_decision,omitempty"`
	QARiskScore    *float64        `json:"qa_risk_score,omitempty"` // 0.0 to 1.0

	// Actions planned and executed
	ActionPlan []Action `json:"action_plan"`

	// Metadata
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch bumps UpdatedAt. Every stage calls it exactly once, success or not.
// UpdatedAt never moves backwards, even under clock skew.
func (p *Payload) Touch() {
	if now := time.Now().UTC(); now.After(p.UpdatedAt) {
		p.UpdatedAt = now
	}
}

// ConstructionError reports a malformed incoming request that could not be
// turned into a payload. It is fatal for the workflow: no stage runs.
type ConstructionError struct {
	Field  string
	Reason string
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("invalid workflow input: %s %s", e.Field, e.Reason)
}

// NewPayload validates the incoming request pieces and assembles the initial
// payload. The correlation id defaults to the workflow id.
func NewPayload(workflowID, tenantID string, source Source, contact Contact, msg Message, cfg TenantConfig) (*Payload, error) {
	switch {
	case tenantID == "":
		return nil, &ConstructionError{Field: "tenant_id", Reason: "is required"}
	case msg.MessageID == "":
		return nil, &ConstructionError{Field: "message.message_id", Reason: "is required"}
	case msg.ThreadID == "":
		return nil, &ConstructionError{Field: "message.thread_id", Reason: "is required"}
	case msg.Subject == "" && msg.BodyText == "":
		return nil, &ConstructionError{Field: "message", Reason: "needs a subject or body"}
	case contact.Email == "":
		return nil, &ConstructionError{Field: "contact.email", Reason: "is required"}
	}

	now := time.Now().UTC()
	return &Payload{
		WorkflowID:    workflowID,
		TenantID:      tenantID,
		CorrelationID: workflowID,
		Source:        source,
		Contact:       contact,
		Message:       msg,
		ThreadHistory: ThreadHistory{},
		TenantConfig:  cfg,
		ActionPlan:    []Action{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// WorkflowRecord is the durable envelope persisted for each run.
type WorkflowRecord struct {
	WorkflowID string         `json:"workflow_id"`
	TenantID   string         `json:"tenant_id"`
	Payload    *Payload       `json:"payload"`
	AgentLogs  []AgentLog     `json:"agent_logs"`
	Status     WorkflowStatus `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
