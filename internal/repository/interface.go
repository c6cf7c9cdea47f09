package repository

import (
	"context"
	"errors"

	"ai-ops-desk/backend/pkg/models"
)

// Sentinel errors for store conflicts. Callers match with errors.Is.
var (
	// ErrDuplicateWorkflow is returned by Create when the workflow id
	// already exists.
	ErrDuplicateWorkflow = errors.New("workflow already exists")
	// ErrWorkflowNotFound is returned by Get and Update when no record has
	// the given workflow id.
	ErrWorkflowNotFound = errors.New("workflow not found")
)

// Filter narrows a List call. Zero values mean "any".
type Filter struct {
	TenantID string
	Status   models.WorkflowStatus
}

// WorkflowStore persists workflow records for audit and resumability.
// Implementations must allow concurrent creation of distinct workflow ids;
// writes for one id within a run are issued by a single writer.
type WorkflowStore interface {
	// Create inserts a new record. Fails with ErrDuplicateWorkflow if the
	// workflow id already exists.
	Create(ctx context.Context, record *models.WorkflowRecord) error
	// Update replaces the payload snapshot, agent logs, and status of an
	// existing record. Fails with ErrWorkflowNotFound for unknown ids.
	Update(ctx context.Context, workflowID string, payload *models.Payload, agentLogs []models.AgentLog, status models.WorkflowStatus) error
	// Get returns the record for a workflow id.
	Get(ctx context.Context, workflowID string) (*models.WorkflowRecord, error)
	// List returns records matching the filter, most recent first, bounded
	// by limit.
	List(ctx context.Context, filter Filter, limit int) ([]*models.WorkflowRecord, error)
}
