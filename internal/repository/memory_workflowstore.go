package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"ai-ops-desk/backend/pkg/models"
)

// MemoryWorkflowStore is an in-memory WorkflowStore used for tests and for
// running the service without a database. Records are deep-copied on the way
// in and out so callers never share state with the store.
type MemoryWorkflowStore struct {
	mu      sync.RWMutex
	records map[string]*models.WorkflowRecord
}

// NewMemoryWorkflowStore creates an empty MemoryWorkflowStore.
func NewMemoryWorkflowStore() *MemoryWorkflowStore {
	return &MemoryWorkflowStore{records: make(map[string]*models.WorkflowRecord)}
}

// Create inserts a new workflow record.
func (s *MemoryWorkflowStore) Create(ctx context.Context, record *models.WorkflowRecord) error {
	copied, err := copyRecord(record)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[record.WorkflowID]; ok {
		return fmt.Errorf("workflow %s: %w", record.WorkflowID, ErrDuplicateWorkflow)
	}
	s.records[record.WorkflowID] = copied
	return nil
}

// Update replaces the snapshot and status of an existing record.
func (s *MemoryWorkflowStore) Update(ctx context.Context, workflowID string, p *models.Payload, agentLogs []models.AgentLog, status models.WorkflowStatus) error {
	snapshot, err := copyRecord(&models.WorkflowRecord{Payload: p, AgentLogs: agentLogs})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[workflowID]
	if !ok {
		return fmt.Errorf("workflow %s: %w", workflowID, ErrWorkflowNotFound)
	}
	record.Payload = snapshot.Payload
	record.AgentLogs = snapshot.AgentLogs
	record.Status = status
	record.UpdatedAt = time.Now().UTC()
	return nil
}

// Get retrieves a workflow record by its id.
func (s *MemoryWorkflowStore) Get(ctx context.Context, workflowID string) (*models.WorkflowRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[workflowID]
	if !ok {
		return nil, fmt.Errorf("workflow %s: %w", workflowID, ErrWorkflowNotFound)
	}
	return copyRecord(record)
}

// List returns records matching the filter, newest first.
func (s *MemoryWorkflowStore) List(ctx context.Context, filter Filter, limit int) ([]*models.WorkflowRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []*models.WorkflowRecord
	for _, record := range s.records {
		if filter.TenantID != "" && record.TenantID != filter.TenantID {
			continue
		}
		if filter.Status != "" && record.Status != filter.Status {
			continue
		}
		copied, err := copyRecord(record)
		if err != nil {
			return nil, err
		}
		records = append(records, copied)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// copyRecord deep-copies via JSON, the same shape the durable store uses.
func copyRecord(record *models.WorkflowRecord) (*models.WorkflowRecord, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to copy record: %w", err)
	}
	var copied models.WorkflowRecord
	if err := json.Unmarshal(raw, &copied); err != nil {
		return nil, fmt.Errorf("failed to copy record: %w", err)
	}
	return &copied, nil
}
