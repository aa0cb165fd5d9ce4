// Package schemasync is the client side of the internal schema-mutation
// endpoint. The privileged ALTER capability lives behind that endpoint;
// callers here only describe the change they want.
package schemasync

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// AlterRequest is the wire body of the internal endpoint.
type AlterRequest struct {
	Action    string `json:"action"` // "add" or "remove"
	FieldName string `json:"fieldName"`
	FieldType string `json:"fieldType,omitempty"`
}

// AlterResponse is the endpoint's reply. Hint carries diagnostics when the
// privileged mutation capability itself is unavailable.
type AlterResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	Hint      string `json:"hint,omitempty"`
	FieldName string `json:"fieldName,omitempty"`
}

// Synchronizer posts structural changes to the internal endpoint. Results
// are fire-and-forget from the caller's point of view: the field service
// logs failures and moves on.
type Synchronizer struct {
	endpoint string
	client   *http.Client
	logger   *zap.SugaredLogger
}

func NewSynchronizer(endpoint string, logger *zap.SugaredLogger) *Synchronizer {
	return &Synchronizer{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

// AddColumn asks the endpoint to add a column for the field. Idempotent:
// the endpoint no-ops when the column already exists.
func (s *Synchronizer) AddColumn(fieldName, fieldKind string) error {
	return s.post(AlterRequest{
		Action:    "add",
		FieldName: fieldName,
		FieldType: fieldKind,
	})
}

// RemoveColumn asks the endpoint to drop the field's column. Idempotent:
// the endpoint no-ops when the column is already gone.
func (s *Synchronizer) RemoveColumn(fieldName string) error {
	return s.post(AlterRequest{
		Action:    "remove",
		FieldName: fieldName,
	})
}

func (s *Synchronizer) post(req AlterRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("error encoding alter request: %w", err)
	}

	resp, err := s.client.Post(s.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("error calling schema endpoint for %q: %w", req.FieldName, err)
	}
	defer resp.Body.Close()

	var result AlterResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("error decoding schema endpoint response: %w", err)
	}

	if !result.Success {
		msg := result.Error
		if msg == "" {
			msg = fmt.Sprintf("schema endpoint returned status %d", resp.StatusCode)
		}
		if result.Hint != "" {
			msg += " - Hint: " + result.Hint
		}
		return fmt.Errorf("%s %q failed: %s", req.Action, req.FieldName, msg)
	}

	s.logger.Infow("Schema change applied",
		"action", req.Action,
		"field", req.FieldName)
	return nil
}
