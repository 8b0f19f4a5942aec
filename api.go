package vapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

const webCallPath = "/call/web"

// CallRequest selects the assistant for a call. Exactly one of AssistantID
// and Assistant must be set.
type CallRequest struct {
	AssistantID        string         `json:"assistantId,omitempty"`
	Assistant          map[string]any `json:"assistant,omitempty"`
	Metadata           map[string]any `json:"metadata,omitempty"`
	AssistantOverrides map[string]any `json:"assistantOverrides,omitempty"`
}

func (r CallRequest) validate() error {
	switch {
	case r.AssistantID == "" && r.Assistant == nil:
		return fmt.Errorf("%w: assistant id or assistant required", ErrInvalidRequest)
	case r.AssistantID != "" && r.Assistant != nil:
		return fmt.Errorf("%w: assistant id and assistant are exclusive", ErrInvalidRequest)
	}
	return nil
}

type WebCallResponse struct {
	ID           string        `json:"id,omitempty"`
	WebCallURL   string        `json:"webCallUrl"`
	ArtifactPlan *ArtifactPlan `json:"artifactPlan,omitempty"`
}

type ArtifactPlan struct {
	VideoRecordingEnabled *bool `json:"videoRecordingEnabled,omitempty"`
}

func (r *WebCallResponse) videoRecordingEnabled() bool {
	return r.ArtifactPlan != nil && r.ArtifactPlan.VideoRecordingEnabled != nil && *r.ArtifactPlan.VideoRecordingEnabled
}

type apiClient struct {
	baseURL    string
	publicKey  string
	httpClient *http.Client
	logger     *slog.Logger
}

func (a *apiClient) createWebCall(ctx context.Context, body CallRequest) (*WebCallResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("create web call: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+webCallPath, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create web call: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", a.publicKey))

	a.logger.Debug("creating web call", slog.String("url", req.URL.String()))

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create web call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("create web call: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("create web call: %w", &APIError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(respBody))})
	}

	var out WebCallResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("create web call: decode response: %w", err)
	}
	if out.WebCallURL == "" {
		return nil, fmt.Errorf("create web call: response has no webCallUrl")
	}

	return &out, nil
}
