package dispatch

import (
	"context"
	"errors"
	"testing"

	"admissions-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExecutor struct {
	result *Result
	err    error
	calls  int
}

func (s *stubExecutor) Execute(ctx context.Context, session *entity.AgentSession) (*Result, error) {
	s.calls++
	return s.result, s.err
}

type mapStore map[string]string

func (m mapStore) Save(key, answer string) { m[key] = answer }

func (m mapStore) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func TestFallbackPassThroughOnSuccess(t *testing.T) {
	inner := &stubExecutor{result: &Result{
		Output:    map[string]interface{}{"answer": "32 points"},
		Processed: 1,
	}}
	store := mapStore{}
	e := NewAssistantFallbackExecutor(inner, store, nil)

	session := testSession("reviewer_assistant")
	session.InputContext = map[string]interface{}{"question": "Minimum APS?"}

	result, err := e.Execute(context.Background(), session)
	require.NoError(t, err)
	assert.False(t, result.Fallback)

	// Successful answers are remembered for later degraded lookups.
	key := cacheKey(session.InstitutionId.String(), "Minimum APS?")
	cached, ok := store.Get(key)
	assert.True(t, ok)
	assert.Equal(t, "32 points", cached)
}

func TestFallbackAnswersFromCache(t *testing.T) {
	inner := &stubExecutor{err: errors.New("connection refused")}
	store := mapStore{}
	e := NewAssistantFallbackExecutor(inner, store, nil)

	session := testSession("reviewer_assistant")
	session.InputContext = map[string]interface{}{"question": "Minimum APS?"}
	store.Save(cacheKey(session.InstitutionId.String(), "minimum aps?"), "32 points")

	result, err := e.Execute(context.Background(), session)
	require.NoError(t, err)

	assert.True(t, result.Fallback)
	assert.Equal(t, "32 points", result.Output["answer"])
	assert.Equal(t, true, result.Output["fallback"])
	require.Len(t, result.Decisions, 1)
	assert.Equal(t, "question_answer", result.Decisions[0].DecisionType)
}

func TestFallbackNormalizesCacheKey(t *testing.T) {
	inner := &stubExecutor{err: errors.New("unreachable")}
	store := mapStore{}
	e := NewAssistantFallbackExecutor(inner, store, nil)

	session := testSession("reviewer_assistant")
	session.InputContext = map[string]interface{}{"question": "  MINIMUM aps?  "}
	store.Save(cacheKey(session.InstitutionId.String(), "minimum aps?"), "32 points")

	result, err := e.Execute(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, "32 points", result.Output["answer"])
}

func TestFallbackUsesLocalSearch(t *testing.T) {
	inner := &stubExecutor{err: errors.New("unreachable")}
	store := mapStore{}
	search := func(ctx context.Context, institutionId, query string) (string, bool) {
		return "Found in past sessions: 32 points", true
	}
	e := NewAssistantFallbackExecutor(inner, store, search)

	session := testSession("reviewer_assistant")
	session.InputContext = map[string]interface{}{"question": "Minimum APS?"}

	result, err := e.Execute(context.Background(), session)
	require.NoError(t, err)
	assert.True(t, result.Fallback)
	assert.Equal(t, "Found in past sessions: 32 points", result.Output["answer"])

	// Search hits are cached for the next outage.
	_, ok := store.Get(cacheKey(session.InstitutionId.String(), "Minimum APS?"))
	assert.True(t, ok)
}

func TestFallbackWithNoLocalAnswerStillCompletes(t *testing.T) {
	inner := &stubExecutor{err: errors.New("unreachable")}
	e := NewAssistantFallbackExecutor(inner, mapStore{}, nil)

	session := testSession("reviewer_assistant")
	session.InputContext = map[string]interface{}{"question": "Something never asked before?"}

	result, err := e.Execute(context.Background(), session)
	require.NoError(t, err)
	assert.True(t, result.Fallback)
	assert.Contains(t, result.Output["answer"], "couldn't reach the assistant")
}

func TestFallbackOnlyForReviewerAssistant(t *testing.T) {
	inner := &stubExecutor{err: errors.New("unreachable")}
	e := NewAssistantFallbackExecutor(inner, mapStore{}, nil)

	_, err := e.Execute(context.Background(), testSession("document_reviewer"))
	assert.Error(t, err)
}

func TestFallbackRequiresQuestion(t *testing.T) {
	inner := &stubExecutor{err: errors.New("unreachable")}
	e := NewAssistantFallbackExecutor(inner, mapStore{}, nil)

	session := testSession("reviewer_assistant")
	session.InputContext = map[string]interface{}{}

	_, err := e.Execute(context.Background(), session)
	assert.Error(t, err)
}
