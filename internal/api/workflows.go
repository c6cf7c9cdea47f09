// Package api contains the HTTP handlers for the ops desk orchestrator.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"ai-ops-desk/backend/internal/orchestrator"
	"ai-ops-desk/backend/internal/repository"
	"ai-ops-desk/backend/pkg/models"
)

const defaultListLimit = 50

// Server holds the dependencies for the API server.
type Server struct {
	Orch  *orchestrator.Orchestrator
	Store repository.WorkflowStore
}

// NewServer creates a new Server.
func NewServer(orch *orchestrator.Orchestrator, store repository.WorkflowStore) *Server {
	return &Server{Orch: orch, Store: store}
}

// Register mounts the API routes on the echo instance.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/", s.HandleHealth)
	e.GET("/healthz", s.HandleHealth)
	e.POST("/workflows/incoming-message", s.HandleIncomingMessage)
	e.GET("/workflows/:id", s.GetWorkflow)
	e.GET("/workflows", s.ListWorkflows)
}

// IncomingMessageRequest is the transport request for processing a message.
type IncomingMessageRequest struct {
	TenantID     string               `json:"tenant_id"`
	Source       models.Source        `json:"source"`
	Contact      models.Contact       `json:"contact"`
	Message      models.Message       `json:"message"`
	TenantConfig *models.TenantConfig `json:"tenant_config,omitempty"`
}

// WorkflowResponse is the transport response for a processed workflow.
type WorkflowResponse struct {
	WorkflowID string `json:"workflow_id"`
	Decision   string `json:"decision,omitempty"`
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
}

// HandleIncomingMessage runs an inbound message through the agent pipeline
// (POST /workflows/incoming-message)
func (s *Server) HandleIncomingMessage(c echo.Context) error {
	ctx := c.Request().Context()

	var req IncomingMessageRequest
	if err := c.Bind(&req); err != nil {
		return problem(c, http.StatusBadRequest, "Invalid request body", err.Error())
	}

	result, err := s.Orch.ProcessIncoming(ctx, orchestrator.IncomingMessage{
		TenantID:     req.TenantID,
		Source:       req.Source,
		Contact:      req.Contact,
		Message:      req.Message,
		TenantConfig: req.TenantConfig,
	})
	if err != nil {
		var construction *models.ConstructionError
		switch {
		case errors.As(err, &construction):
			return problem(c, http.StatusBadRequest, "Invalid workflow input", construction.Error())
		case errors.Is(err, repository.ErrDuplicateWorkflow):
			return problem(c, http.StatusConflict, "Workflow already exists", err.Error())
		default:
			return problem(c, http.StatusInternalServerError, "Workflow processing failed", err.Error())
		}
	}

	return c.JSON(http.StatusOK, WorkflowResponse{
		WorkflowID: result.WorkflowID,
		Decision:   string(result.Decision),
		Status:     string(result.Status),
		Message:    result.Message,
	})
}

// GetWorkflow retrieves workflow state for debugging and audit
// (GET /workflows/:id)
func (s *Server) GetWorkflow(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	record, err := s.Store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrWorkflowNotFound) {
			return problem(c, http.StatusNotFound, "Workflow not found", err.Error())
		}
		return problem(c, http.StatusInternalServerError, "Failed to load workflow", err.Error())
	}

	return c.JSON(http.StatusOK, record)
}

// WorkflowSummary is one row of the list response.
type WorkflowSummary struct {
	WorkflowID string    `json:"workflow_id"`
	TenantID   string    `json:"tenant_id"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ListWorkflowsResponse wraps the list results.
type ListWorkflowsResponse struct {
	Workflows []WorkflowSummary `json:"workflows"`
	Count     int               `json:"count"`
}

// ListWorkflows returns workflow summaries, newest first
// (GET /workflows?tenant_id=&status=&limit=)
func (s *Server) ListWorkflows(c echo.Context) error {
	ctx := c.Request().Context()

	filter := repository.Filter{TenantID: c.QueryParam("tenant_id")}
	if raw := c.QueryParam("status"); raw != "" {
		status := models.WorkflowStatus(raw)
		if !status.Valid() {
			return problem(c, http.StatusBadRequest, "Invalid status filter", "unknown status: "+raw)
		}
		filter.Status = status
	}

	limit := defaultListLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return problem(c, http.StatusBadRequest, "Invalid limit", "limit must be a positive integer")
		}
		limit = parsed
	}

	records, err := s.Store.List(ctx, filter, limit)
	if err != nil {
		return problem(c, http.StatusInternalServerError, "Failed to list workflows", err.Error())
	}

	summaries := make([]WorkflowSummary, 0, len(records))
	for _, r := range records {
		summaries = append(summaries, WorkflowSummary{
			WorkflowID: r.WorkflowID,
			TenantID:   r.TenantID,
			Status:     string(r.Status),
			CreatedAt:  r.CreatedAt,
			UpdatedAt:  r.UpdatedAt,
		})
	}

	return c.JSON(http.StatusOK, ListWorkflowsResponse{Workflows: summaries, Count: len(summaries)})
}
