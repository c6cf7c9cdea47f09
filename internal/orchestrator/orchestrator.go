// Package orchestrator drives an incoming message through the fixed agent
// pipeline (ingestion -> triage -> worker -> guardrail) and owns the durable
// workflow record around the run.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"ai-ops-desk/backend/internal/agents"
	"ai-ops-desk/backend/internal/logging"
	"ai-ops-desk/backend/internal/repository"
	"ai-ops-desk/backend/internal/services"
	"ai-ops-desk/backend/pkg/models"
)

// Services bundles the external collaborators the stages depend on.
type Services struct {
	Threads    services.ThreadConnector
	Calendar   services.CalendarConnector
	Classifier services.Classifier
	KB         services.KnowledgeBase
}

// IncomingMessage is the validated transport request handed to the pipeline.
type IncomingMessage struct {
	TenantID     string
	Source       models.Source
	Contact      models.Contact
	Message      models.Message
	TenantConfig *models.TenantConfig
}

// Result is what the caller gets back once the pipeline finishes.
type Result struct {
	WorkflowID string
	Decision   models.QADecision
	Status     models.WorkflowStatus
	Message    string
}

// Orchestrator sequences the agent pipeline and is the sole writer of the
// workflow record's status.
type Orchestrator struct {
	store     repository.WorkflowStore
	ingestion agents.Agent
	triage    agents.Agent
	workers   map[models.Intent]agents.Agent
	guardrail agents.Agent
	logger    *logging.Logger
	processed metric.Int64Counter
}

// New wires the standard pipeline. connectorTimeout bounds every external
// call a stage makes; zero selects the default.
func New(store repository.WorkflowStore, svc Services, connectorTimeout time.Duration, logger *logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewLogger()
	}

	meter := otel.Meter("ai-ops-desk/backend/internal/orchestrator")
	processed, _ := meter.Int64Counter("opsdesk.workflows.processed",
		metric.WithDescription("Workflows run through the agent pipeline, by outcome"))

	return &Orchestrator{
		store:     store,
		ingestion: &agents.Ingestion{Threads: svc.Threads, Timeout: connectorTimeout},
		triage:    &agents.Triage{Classifier: svc.Classifier, Timeout: connectorTimeout},
		workers: map[models.Intent]agents.Agent{
			models.IntentScheduling: &agents.AdminScheduling{Calendar: svc.Calendar, Timeout: connectorTimeout},
			models.IntentSupport:    &agents.SupportFAQ{KB: svc.KB, Timeout: connectorTimeout},
		},
		guardrail: &agents.QAGuardrail{Scorer: agents.HeuristicRiskScorer{}},
		logger:    logger,
		processed: processed,
	}
}

// ProcessIncoming runs one workflow end to end. Stage failures are contained
// in agent logs and still produce a completed workflow; only payload
// construction and store conflicts surface as errors.
func (o *Orchestrator) ProcessIncoming(ctx context.Context, req IncomingMessage) (Result, error) {
	workflowID := uuid.New().String()

	cfg := models.DefaultTenantConfig(req.TenantID)
	if req.TenantConfig != nil {
		cfg = *req.TenantConfig
		cfg.TenantID = req.TenantID
	}

	payload, err := models.NewPayload(workflowID, req.TenantID, req.Source, req.Contact, req.Message, cfg)
	if err != nil {
		// Malformed input is still recorded for the audit trail, with no
		// agent logs since no stage ran.
		now := time.Now().UTC()
		if createErr := o.store.Create(ctx, &models.WorkflowRecord{
			WorkflowID: workflowID,
			TenantID:   req.TenantID,
			Status:     models.StatusFailed,
			CreatedAt:  now,
			UpdatedAt:  now,
		}); createErr != nil {
			o.logger.Error("failed to record rejected workflow", "workflow_id", workflowID, "error", createErr)
		}
		o.count(ctx, models.StatusFailed, "")
		return Result{WorkflowID: workflowID, Status: models.StatusFailed, Message: err.Error()}, err
	}

	record := &models.WorkflowRecord{
		WorkflowID: workflowID,
		TenantID:   req.TenantID,
		Payload:    payload,
		Status:     models.StatusProcessing,
		CreatedAt:  payload.CreatedAt,
		UpdatedAt:  payload.UpdatedAt,
	}
	if err := o.store.Create(ctx, record); err != nil {
		return Result{WorkflowID: workflowID, Status: models.StatusFailed, Message: err.Error()},
			fmt.Errorf("failed to create workflow record: %w", err)
	}

	agentLogs := o.runPipeline(ctx, payload)

	if err := o.store.Update(ctx, workflowID, payload, agentLogs, models.StatusCompleted); err != nil {
		return Result{WorkflowID: workflowID, Status: models.StatusFailed, Message: err.Error()},
			fmt.Errorf("failed to update workflow record: %w", err)
	}

	o.logAutomationEvent(payload, agentLogs)
	o.count(ctx, models.StatusCompleted, payload.QADecision)

	return Result{
		WorkflowID: workflowID,
		Decision:   payload.QADecision,
		Status:     models.StatusCompleted,
		Message:    "workflow processed successfully",
	}, nil
}

// runPipeline executes the fixed stage sequence and returns the agent logs
// in execution order. It always yields four entries: ingestion, triage, one
// worker-or-skip entry, and the guardrail.
func (o *Orchestrator) runPipeline(ctx context.Context, payload *models.Payload) []models.AgentLog {
	agentLogs := make([]models.AgentLog, 0, 4)

	agentLogs = append(agentLogs, o.ingestion.Execute(ctx, payload))
	agentLogs = append(agentLogs, o.triage.Execute(ctx, payload))
	agentLogs = append(agentLogs, o.routeWorker(ctx, payload))
	agentLogs = append(agentLogs, o.guardrail.Execute(ctx, payload))

	return agentLogs
}

// routeWorker dispatches to the worker matching the classified intent.
// Routing is mutually exclusive: at most one worker runs per workflow.
func (o *Orchestrator) routeWorker(ctx context.Context, payload *models.Payload) models.AgentLog {
	if payload.Classification == nil {
		return models.AgentLog{
			Agent:   "worker",
			Status:  models.AgentSkipped,
			Skipped: true,
			Reason:  "classification absent",
		}
	}

	intent := payload.Classification.Intent
	worker, ok := o.workers[intent]
	if !ok {
		return models.AgentLog{
			Agent:   "worker",
			Status:  models.AgentSkipped,
			Skipped: true,
			Reason:  fmt.Sprintf("no handler for intent: %s", intent),
		}
	}
	return worker.Execute(ctx, payload)
}

func (o *Orchestrator) logAutomationEvent(payload *models.Payload, agentLogs []models.AgentLog) {
	intent := ""
	if payload.Classification != nil {
		intent = string(payload.Classification.Intent)
	}
	o.logger.Info("automation event",
		"workflow_id", payload.WorkflowID,
		"correlation_id", payload.CorrelationID,
		"tenant_id", payload.TenantID,
		"decision", string(payload.QADecision),
		"classification", intent,
		"agent_logs", agentLogs,
	)
}

func (o *Orchestrator) count(ctx context.Context, status models.WorkflowStatus, decision models.QADecision) {
	o.processed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", string(status)),
		attribute.String("decision", string(decision)),
	))
}
