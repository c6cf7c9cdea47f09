package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"ai-ops-desk/backend/pkg/models"
)

// HTTPClassifier is an HTTP implementation of the Classifier interface,
// backed by a classification sidecar (LLM or rule engine).
type HTTPClassifier struct {
	url    string
	client *http.Client
}

// NewHTTPClassifier creates a new HTTPClassifier.
func NewHTTPClassifier(url string) *HTTPClassifier {
	return &HTTPClassifier{url: url, client: http.DefaultClient}
}

type classifyRequest struct {
	Message       models.Message       `json:"message"`
	ThreadHistory models.ThreadHistory `json:"thread_history"`
	TenantConfig  models.TenantConfig  `json:"tenant_config"`
}

// Classify posts the message and its context to the sidecar.
func (c *HTTPClassifier) Classify(ctx context.Context, msg models.Message, history models.ThreadHistory, cfg models.TenantConfig) (models.Classification, error) {
	requestBody, err := json.Marshal(classifyRequest{Message: msg, ThreadHistory: history, TenantConfig: cfg})
	if err != nil {
		return models.Classification{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url+"/classify", bytes.NewBuffer(requestBody))
	if err != nil {
		return models.Classification{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return models.Classification{}, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Classification{}, fmt.Errorf("failed to classify: status code %d", resp.StatusCode)
	}

	var classification models.Classification
	if err := json.NewDecoder(resp.Body).Decode(&classification); err != nil {
		return models.Classification{}, fmt.Errorf("failed to decode response body: %w", err)
	}

	if !classification.Intent.Valid() {
		return models.Classification{}, fmt.Errorf("classifier returned unknown intent %q", classification.Intent)
	}
	if !classification.Priority.Valid() {
		classification.Priority = models.PriorityNormal
	}

	return classification, nil
}
