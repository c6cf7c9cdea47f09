package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"ai-ops-desk/backend/pkg/models"
)

// PostgresWorkflowStore is a PostgreSQL implementation of the WorkflowStore
// interface. Payload snapshots and agent logs are stored as JSONB.
type PostgresWorkflowStore struct {
	db *pgxpool.Pool
}

// NewPostgresWorkflowStore creates a new PostgresWorkflowStore.
func NewPostgresWorkflowStore(db *pgxpool.Pool) *PostgresWorkflowStore {
	return &PostgresWorkflowStore{db: db}
}

// EnsureSchema creates the workflows table if it does not exist.
func (s *PostgresWorkflowStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `CREATE TABLE IF NOT EXISTS workflows (
		workflow_id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		payload JSONB,
		agent_logs JSONB,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS workflows_tenant_idx ON workflows (tenant_id);
	CREATE INDEX IF NOT EXISTS workflows_created_idx ON workflows (created_at DESC);`)
	return err
}

// Create inserts a new workflow record.
func (s *PostgresWorkflowStore) Create(ctx context.Context, record *models.WorkflowRecord) error {
	payload, logs, err := marshalSnapshot(record.Payload, record.AgentLogs)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO workflows (workflow_id, tenant_id, payload, agent_logs, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		record.WorkflowID, record.TenantID, payload, logs, string(record.Status), record.CreatedAt, record.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("workflow %s: %w", record.WorkflowID, ErrDuplicateWorkflow)
		}
		return err
	}
	return nil
}

// Update replaces the snapshot and status of an existing record.
func (s *PostgresWorkflowStore) Update(ctx context.Context, workflowID string, p *models.Payload, agentLogs []models.AgentLog, status models.WorkflowStatus) error {
	payload, logs, err := marshalSnapshot(p, agentLogs)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE workflows SET payload = $2, agent_logs = $3, status = $4, updated_at = $5 WHERE workflow_id = $1`,
		workflowID, payload, logs, string(status), time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("workflow %s: %w", workflowID, ErrWorkflowNotFound)
	}
	return nil
}

// Get retrieves a workflow record by its id.
func (s *PostgresWorkflowStore) Get(ctx context.Context, workflowID string) (*models.WorkflowRecord, error) {
	row := s.db.QueryRow(ctx,
		`SELECT workflow_id, tenant_id, payload, agent_logs, status, created_at, updated_at
		 FROM workflows WHERE workflow_id = $1`, workflowID)

	record, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("workflow %s: %w", workflowID, ErrWorkflowNotFound)
	}
	return record, err
}

// List returns records matching the filter, newest first.
func (s *PostgresWorkflowStore) List(ctx context.Context, filter Filter, limit int) ([]*models.WorkflowRecord, error) {
	query := `SELECT workflow_id, tenant_id, payload, agent_logs, status, created_at, updated_at FROM workflows`
	var (
		where []string
		args  []any
	)
	if filter.TenantID != "" {
		args = append(args, filter.TenantID)
		where = append(where, fmt.Sprintf("tenant_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	for i, clause := range where {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.WorkflowRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func marshalSnapshot(p *models.Payload, agentLogs []models.AgentLog) ([]byte, []byte, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	logs, err := json.Marshal(agentLogs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal agent logs: %w", err)
	}
	return payload, logs, nil
}

func scanRecord(row pgx.Row) (*models.WorkflowRecord, error) {
	var (
		record  models.WorkflowRecord
		status  string
		payload []byte
		logs    []byte
	)
	if err := row.Scan(&record.WorkflowID, &record.TenantID, &payload, &logs, &status, &record.CreatedAt, &record.UpdatedAt); err != nil {
		return nil, err
	}
	record.Status = models.WorkflowStatus(status)
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &record.Payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
		}
	}
	if len(logs) > 0 {
		if err := json.Unmarshal(logs, &record.AgentLogs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal agent logs: %w", err)
		}
	}
	return &record, nil
}
