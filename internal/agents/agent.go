// Package agents implements the pipeline stages for the ops desk. Each
// agent takes the workflow payload, enriches it, and returns an audit log
// entry. Failures never escape a stage boundary; they are converted into a
// failed log entry and the payload is left untouched apart from its
// updated_at timestamp.
package agents

import (
	"context"
	"time"

	"ai-ops-desk/backend/pkg/models"
)

// Agent is one pipeline stage.
type Agent interface {
	// Name identifies the stage in agent logs.
	Name() string
	// Execute runs the stage against the payload and returns its log entry.
	// Implementations must not panic and must bump the payload's updated_at
	// regardless of outcome.
	Execute(ctx context.Context, p *models.Payload) models.AgentLog
}

// DefaultConnectorTimeout bounds each external call made by a stage when no
// timeout is configured.
const DefaultConnectorTimeout = 10 * time.Second

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultConnectorTimeout
	}
	return context.WithTimeout(ctx, d)
}

func pendingLog(name string) models.AgentLog {
	return models.AgentLog{Agent: name, Status: models.AgentPending}
}

func failLog(log models.AgentLog, err error) models.AgentLog {
	log.Status = models.AgentFailed
	log.Error = err.Error()
	return log
}
