package models

// Intent is the classified purpose of an inbound message.
type Intent string

const (
	IntentScheduling Intent = "scheduling"
	IntentSupport    Intent = "support"
	IntentBilling    Intent = "billing"
	IntentLead       Intent = "lead"
	IntentOther      Intent = "other"
	IntentSpam       Intent = "spam"
)

// Valid reports whether i is a known intent.
func (i Intent) Valid() bool {
	switch i {
	case IntentScheduling, IntentSupport, IntentBilling, IntentLead, IntentOther, IntentSpam:
		return true
	}
	return false
}

// Priority ranks how urgently a message should be handled.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityNormal   Priority = "normal"
	PriorityLow      Priority = "low"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityNormal, PriorityLow:
		return true
	}
	return false
}

// QADecision is the terminal outcome of the guardrail stage.
type QADecision string

const (
	DecisionAutoSend  QADecision = "auto_send"
	DecisionDraftOnly QADecision = "draft_only"
	DecisionEscalate  QADecision = "escalate"
)

// Valid reports whether d is a known decision.
func (d QADecision) Valid() bool {
	switch d {
	case DecisionAutoSend, DecisionDraftOnly, DecisionEscalate:
		return true
	}
	return false
}

// ActionStatus tracks execution state of a planned action.
type ActionStatus string

const (
	ActionPending   ActionStatus = "pending"
	ActionCompleted ActionStatus = "completed"
	ActionFailed    ActionStatus = "failed"
)

// AgentStatus is the outcome of one stage execution.
type AgentStatus string

const (
	AgentPending   AgentStatus = "pending"
	AgentCompleted AgentStatus = "completed"
	AgentFailed    AgentStatus = "failed"
	AgentSkipped   AgentStatus = "skipped"
)

// WorkflowStatus is the lifecycle state of a workflow record.
type WorkflowStatus string

const (
	StatusProcessing WorkflowStatus = "processing"
	StatusCompleted  WorkflowStatus = "completed"
	StatusFailed     WorkflowStatus = "failed"
)

// Valid reports whether s is a known workflow status.
func (s WorkflowStatus) Valid() bool {
	switch s {
	case StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}
