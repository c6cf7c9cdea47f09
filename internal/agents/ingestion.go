package agents

import (
	"context"
	"time"

	"ai-ops-desk/backend/internal/services"
	"ai-ops-desk/backend/pkg/models"
)

// Ingestion normalizes the inbound message by materializing the full thread
// history from the mail connector. A connector failure is logged and the
// pipeline continues with whatever history the payload already carried.
type Ingestion struct {
	Threads services.ThreadConnector
	Timeout time.Duration
}

func (a *Ingestion) Name() string { return "ingestion" }

func (a *Ingestion) Execute(ctx context.Context, p *models.Payload) models.AgentLog {
	log := pendingLog(a.Name())
	defer p.Touch()

	cctx, cancel := withTimeout(ctx, a.Timeout)
	defer cancel()

	history, err := a.Threads.FetchThread(cctx, p.Source.ThreadID, p.TenantID)
	if err != nil {
		return failLog(log, err)
	}

	p.ThreadHistory = history
	log.Status = models.AgentCompleted
	log.Detail = map[string]any{"messages_fetched": history.Len()}
	return log
}
