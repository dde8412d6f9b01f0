package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"admissions-be/internal/entity"
)

// Targets maps agent type to the execution unit's endpoint. Injected from
// configuration at construction, never read from ambient state.
type Targets map[string]string

// HTTPDispatcher posts the session envelope to the agent-type endpoint and
// decodes the terminal result. Transport failures and non-2xx responses are
// returned as errors and become failed sessions.
type HTTPDispatcher struct {
	targets Targets
	client  *http.Client
}

func NewHTTPDispatcher(targets Targets, timeout time.Duration) *HTTPDispatcher {
	return &HTTPDispatcher{
		targets: targets,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type executeEnvelope struct {
	SessionId     string                 `json:"session_id"`
	InstitutionId string                 `json:"institution_id"`
	AgentType     string                 `json:"agent_type"`
	InputContext  map[string]interface{} `json:"input_context"`
	TargetType    *string                `json:"target_type,omitempty"`
	TargetIds     []string               `json:"target_ids,omitempty"`
}

func (d *HTTPDispatcher) Execute(ctx context.Context, session *entity.AgentSession) (*Result, error) {
	target, ok := d.targets[session.AgentType]
	if !ok || target == "" {
		return nil, fmt.Errorf("no execution target configured for agent type %s", session.AgentType)
	}

	envelope := executeEnvelope{
		SessionId:     session.Id.String(),
		InstitutionId: session.InstitutionId.String(),
		AgentType:     session.AgentType,
		InputContext:  session.InputContext,
		TargetType:    session.TargetType,
		TargetIds:     session.TargetIds,
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build dispatch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dispatch transport failure: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("execution unit returned %d: %s", resp.StatusCode, string(raw))
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode execution result: %w", err)
	}

	return &result, nil
}
