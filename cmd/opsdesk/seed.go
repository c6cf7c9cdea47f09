package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"ai-ops-desk/backend/internal/config"
	"ai-ops-desk/backend/internal/logging"
	"ai-ops-desk/backend/internal/orchestrator"
	"ai-ops-desk/backend/internal/repository"
	"ai-ops-desk/backend/pkg/models"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the schema and run demo messages through the pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context())
		},
	}
}

func runSeed(ctx context.Context) error {
	logger := logging.NewLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := initDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	store := repository.NewPostgresWorkflowStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	logger.Info("Schema ready")

	orch := orchestrator.New(store, buildServices(cfg), cfg.Pipeline.ConnectorTimeout, logger)

	tenantCfg := models.DefaultTenantConfig("demo-tenant")
	tenantCfg.AutoSendEnabled = true

	seeds := []struct {
		subject string
		body    string
	}{
		{"Can we schedule a call?", "Hi, I'd like to schedule a meeting next week to discuss the rollout."},
		{"Help with login error", "I keep getting an error when I try to reset my password. How do I fix this?"},
		{"Invoice question", "Our last invoice looks wrong, can you check the payment?"},
	}

	for _, s := range seeds {
		threadID := "thread-" + uuid.New().String()[:8]
		result, err := orch.ProcessIncoming(ctx, orchestrator.IncomingMessage{
			TenantID: tenantCfg.TenantID,
			Source:   models.Source{Channel: "email", ThreadID: threadID, MessageID: uuid.New().String()},
			Contact:  models.Contact{Email: "demo@example.com", Name: "Demo Sender"},
			Message: models.Message{
				Subject:    s.subject,
				BodyText:   s.body,
				ReceivedAt: time.Now().UTC(),
				MessageID:  uuid.New().String(),
				ThreadID:   threadID,
			},
			TenantConfig: &tenantCfg,
		})
		if err != nil {
			logger.Error("Failed to seed workflow", "subject", s.subject, "error", err)
			continue
		}
		logger.Info("Seeded workflow", "workflow_id", result.WorkflowID, "decision", string(result.Decision))
	}

	logger.Info("Seeding complete")
	return nil
}
