package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"ai-ops-desk/backend/internal/orchestrator"
	"ai-ops-desk/backend/internal/repository"
	"ai-ops-desk/backend/pkg/models"
)

type Server struct {
	mcpServer *server.MCPServer
	orch      *orchestrator.Orchestrator
	store     repository.WorkflowStore
}

func NewServer(orch *orchestrator.Orchestrator, store repository.WorkflowStore) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"AI Ops Desk",
			"1.0.0",
			server.WithToolCapabilities(true),
		),
		orch:  orch,
		store: store,
	}

	s.registerTools()
	return s
}

func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"process_message",
			mcp.WithDescription("Run an inbound message through the agent pipeline"),
			mcp.WithString("tenant_id", mcp.Required(), mcp.Description("Tenant the message belongs to")),
			mcp.WithString("contact_email", mcp.Required(), mcp.Description("Sender email address")),
			mcp.WithString("subject", mcp.Description("Message subject")),
			mcp.WithString("body", mcp.Required(), mcp.Description("Message body text")),
			mcp.WithString("thread_id", mcp.Required(), mcp.Description("Thread the message arrived on")),
			mcp.WithString("message_id", mcp.Required(), mcp.Description("Unique message id")),
			mcp.WithString("channel", mcp.Description("Source channel, defaults to email")),
		),
		s.handleProcessMessage,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_workflow",
			mcp.WithDescription("Retrieve a workflow record by id"),
			mcp.WithString("workflow_id", mcp.Required(), mcp.Description("The workflow id")),
		),
		s.handleGetWorkflow,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_workflows",
			mcp.WithDescription("List workflows, newest first"),
			mcp.WithString("tenant_id", mcp.Description("Filter by tenant")),
			mcp.WithString("status", mcp.Description("Filter by status: processing, completed, failed")),
			mcp.WithNumber("limit", mcp.Description("Maximum records to return, default 50")),
		),
		s.handleListWorkflows,
	)
}

func (s *Server) handleProcessMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	tenantID, _ := args["tenant_id"].(string)
	email, _ := args["contact_email"].(string)
	body, _ := args["body"].(string)
	threadID, _ := args["thread_id"].(string)
	messageID, _ := args["message_id"].(string)
	if tenantID == "" || email == "" || body == "" || threadID == "" || messageID == "" {
		return mcp.NewToolResultError("Missing required parameters"), nil
	}
	subject, _ := args["subject"].(string)
	channel, _ := args["channel"].(string)
	if channel == "" {
		channel = "email"
	}

	result, err := s.orch.ProcessIncoming(ctx, orchestrator.IncomingMessage{
		TenantID: tenantID,
		Source:   models.Source{Channel: channel, ThreadID: threadID, MessageID: messageID},
		Contact:  models.Contact{Email: email},
		Message: models.Message{
			Subject:    subject,
			BodyText:   body,
			ReceivedAt: time.Now().UTC(),
			MessageID:  messageID,
			ThreadID:   threadID,
		},
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to process message: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(result)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleGetWorkflow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	id, ok := args["workflow_id"].(string)
	if !ok || id == "" {
		return mcp.NewToolResultError("Missing required parameter: workflow_id"), nil
	}

	record, err := s.store.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get workflow: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(record)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleListWorkflows(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	filter := repository.Filter{}
	if tenantID, ok := args["tenant_id"].(string); ok {
		filter.TenantID = tenantID
	}
	if status, ok := args["status"].(string); ok && status != "" {
		ws := models.WorkflowStatus(status)
		if !ws.Valid() {
			return mcp.NewToolResultError(fmt.Sprintf("Unknown status: %s", status)), nil
		}
		filter.Status = ws
	}
	limit := 50
	if raw, ok := args["limit"].(float64); ok && raw > 0 {
		limit = int(raw)
	}

	records, err := s.store.List(ctx, filter, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list workflows: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(records)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func MountHTTPHandlers(mux *http.ServeMux, mcpServer *server.MCPServer) {
	// Use SSE server for /mcp/sse and /mcp/message endpoints
	sseServer := server.NewSSEServer(mcpServer, server.WithStaticBasePath("/mcp"))

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		// Direct POST for tool calls
		if r.Method == http.MethodPost {
			sseServer.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	// SSE endpoints
	mux.HandleFunc("/mcp/sse", sseServer.ServeHTTP)
	mux.HandleFunc("/mcp/message", sseServer.ServeHTTP)
}
