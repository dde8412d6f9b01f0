package dispatch

import (
	"context"
	"fmt"
	"strings"

	"admissions-be/internal/entity"
)

// AnswerStore caches recent answers keyed by institution + normalized query.
type AnswerStore interface {
	Save(key string, answer string)
	Get(key string) (string, bool)
}

// LocalSearch is a best-effort keyword lookup over previously recorded
// answers for an institution. It trades fidelity for availability.
type LocalSearch func(ctx context.Context, institutionId string, query string) (string, bool)

// AssistantFallbackExecutor wraps the reviewer-assistant dispatch with a
// degraded local path: when the execution unit is unreachable, it answers
// from cache or local search and completes the session with fallback:true
// instead of failing it. Other agent types pass straight through.
type AssistantFallbackExecutor struct {
	inner  Executor
	cache  AnswerStore
	search LocalSearch
}

func NewAssistantFallbackExecutor(inner Executor, cache AnswerStore, search LocalSearch) *AssistantFallbackExecutor {
	return &AssistantFallbackExecutor{
		inner:  inner,
		cache:  cache,
		search: search,
	}
}

func (e *AssistantFallbackExecutor) Execute(ctx context.Context, session *entity.AgentSession) (*Result, error) {
	result, err := e.inner.Execute(ctx, session)
	if err == nil {
		e.remember(session, result)
		return result, nil
	}

	if session.AgentType != "reviewer_assistant" {
		return nil, err
	}

	question := freeText(session.InputContext)
	if question == "" {
		return nil, err
	}

	answer, found := e.lookup(ctx, session.InstitutionId.String(), question)
	if !found {
		answer = "I couldn't reach the assistant service. Based on local records I have no confident answer yet - please try again shortly."
	}

	// Deliberate asymmetry: the degraded path records a completed session
	// with a fallback marker, never a failed one.
	return &Result{
		Output: map[string]interface{}{
			"answer":   answer,
			"fallback": true,
		},
		Decisions: []DecisionDraft{
			{
				DecisionType: "question_answer",
				DecisionValue: map[string]interface{}{
					"answer":   answer,
					"fallback": true,
				},
				Reasoning: strPtr(fmt.Sprintf("Degraded local answer (assistant unreachable: %v)", err)),
			},
		},
		Processed: 1,
		Fallback:  true,
	}, nil
}

func (e *AssistantFallbackExecutor) lookup(ctx context.Context, institutionId, question string) (string, bool) {
	key := cacheKey(institutionId, question)
	if e.cache != nil {
		if answer, ok := e.cache.Get(key); ok {
			return answer, true
		}
	}
	if e.search != nil {
		if answer, ok := e.search(ctx, institutionId, question); ok {
			if e.cache != nil {
				e.cache.Save(key, answer)
			}
			return answer, true
		}
	}
	return "", false
}

func (e *AssistantFallbackExecutor) remember(session *entity.AgentSession, result *Result) {
	if e.cache == nil || session.AgentType != "reviewer_assistant" {
		return
	}
	question := freeText(session.InputContext)
	answer, _ := result.Output["answer"].(string)
	if question != "" && answer != "" {
		e.cache.Save(cacheKey(session.InstitutionId.String(), question), answer)
	}
}

func cacheKey(institutionId, question string) string {
	return institutionId + "|" + strings.ToLower(strings.TrimSpace(question))
}

func freeText(inputContext map[string]interface{}) string {
	for _, key := range []string{"message", "question", "query", "instructions"} {
		if v, ok := inputContext[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func strPtr(s string) *string {
	return &s
}
