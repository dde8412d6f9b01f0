package service

import (
	"context"
	"testing"
	"time"

	"admissions-be/internal/apperror"
	"admissions-be/internal/constant"
	"admissions-be/internal/dto"
	"admissions-be/pkg/agent/access"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionService(f *fakeFactory) ISessionService {
	return NewSessionService(f, access.NewVerifier(), noopLogger{})
}

func TestCreateSessionNew(t *testing.T) {
	f := newFakeFactory()
	institutionId := uuid.New()
	userId := f.addMember(institutionId, constant.RoleReviewer)
	svc := newSessionService(f)

	res, err := svc.CreateSession(context.Background(), userId, institutionId, constant.AgentTypeDocumentReviewer, &dto.CreateSessionRequest{
		Message:    "Review the June intake batch",
		TargetType: strPtr("document"),
		TargetIds:  []string{"a", "b", "a", "c", "b"},
	})
	require.NoError(t, err)

	assert.True(t, res.IsNewSession)
	assert.Equal(t, constant.SessionStatusPending, res.Status)

	stored := f.uow.sessions.get(res.SessionId)
	require.NotNil(t, stored)
	assert.Equal(t, []string{"a", "b", "c"}, stored.TargetIds, "target ids deduplicated preserving first-seen order")
	assert.Equal(t, 3, stored.TotalItems)
	assert.False(t, stored.IsChatSession)
	assert.Equal(t, userId, stored.InitiatedBy)
	assert.Equal(t, "Review the June intake batch", stored.InputContext["message"])
}

func TestCreateSessionChatFlag(t *testing.T) {
	f := newFakeFactory()
	institutionId := uuid.New()
	userId := f.addMember(institutionId, constant.RoleMember)
	svc := newSessionService(f)

	res, err := svc.CreateSession(context.Background(), userId, institutionId, constant.AgentTypeReviewerAssistant, &dto.CreateSessionRequest{
		Message: "What documents are still missing for applicant 42?",
	})
	require.NoError(t, err)

	stored := f.uow.sessions.get(res.SessionId)
	assert.True(t, stored.IsChatSession)
	assert.Equal(t, 0, stored.TotalItems)
}

func TestCreateSessionValidation(t *testing.T) {
	f := newFakeFactory()
	institutionId := uuid.New()
	userId := f.addMember(institutionId, constant.RoleAdmin)
	svc := newSessionService(f)

	t.Run("unknown agent type", func(t *testing.T) {
		_, err := svc.CreateSession(context.Background(), userId, institutionId, "mystery_agent", &dto.CreateSessionRequest{Message: "x"})
		var validationErr *apperror.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("empty request", func(t *testing.T) {
		_, err := svc.CreateSession(context.Background(), userId, institutionId, constant.AgentTypeAnalytics, &dto.CreateSessionRequest{})
		var validationErr *apperror.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})
}

func TestCreateSessionTargetsOnly(t *testing.T) {
	f := newFakeFactory()
	institutionId := uuid.New()
	userId := f.addMember(institutionId, constant.RoleReviewer)
	svc := newSessionService(f)

	// A batch review over target ids needs no free text.
	res, err := svc.CreateSession(context.Background(), userId, institutionId, constant.AgentTypeDocumentReviewer, &dto.CreateSessionRequest{
		TargetType: strPtr("document"),
		TargetIds:  []string{"doc-1", "doc-2"},
	})
	require.NoError(t, err)

	stored := f.uow.sessions.get(res.SessionId)
	require.NotNil(t, stored)
	assert.Equal(t, 2, stored.TotalItems)
	assert.Empty(t, stored.InputContext)
}

func TestCreateSessionAuthorization(t *testing.T) {
	f := newFakeFactory()
	institutionId := uuid.New()
	memberId := f.addMember(institutionId, constant.RoleMember)
	outsiderId := uuid.New()
	svc := newSessionService(f)

	t.Run("role outside allow-list", func(t *testing.T) {
		_, err := svc.CreateSession(context.Background(), memberId, institutionId, constant.AgentTypeAnalytics, &dto.CreateSessionRequest{Query: "pass rate"})
		var authErr *apperror.AuthorizationError
		assert.ErrorAs(t, err, &authErr)
	})

	t.Run("not a member", func(t *testing.T) {
		_, err := svc.CreateSession(context.Background(), outsiderId, institutionId, constant.AgentTypeReviewerAssistant, &dto.CreateSessionRequest{Message: "hi"})
		var authErr *apperror.AuthorizationError
		assert.ErrorAs(t, err, &authErr)
	})
}

func TestContinueChatSession(t *testing.T) {
	f := newFakeFactory()
	institutionId := uuid.New()
	userId := f.addMember(institutionId, constant.RoleReviewer)
	svc := newSessionService(f)

	created, err := svc.CreateSession(context.Background(), userId, institutionId, constant.AgentTypeReviewerAssistant, &dto.CreateSessionRequest{
		Message: "First question",
	})
	require.NoError(t, err)

	// Complete the session so it is continuable.
	now := time.Now()
	_, err = f.uow.sessions.ClaimPending(context.Background(), created.SessionId, now, now.Add(time.Minute))
	require.NoError(t, err)
	_, err = f.uow.sessions.CompleteRunning(context.Background(), created.SessionId, map[string]interface{}{"answer": "A1"}, nil, 1, now)
	require.NoError(t, err)

	res, err := svc.CreateSession(context.Background(), userId, institutionId, constant.AgentTypeReviewerAssistant, &dto.CreateSessionRequest{
		SessionId: &created.SessionId,
		Message:   "Follow-up question",
	})
	require.NoError(t, err)

	assert.False(t, res.IsNewSession)
	assert.Equal(t, created.SessionId, res.SessionId)
	assert.Equal(t, constant.SessionStatusPending, res.Status)

	stored := f.uow.sessions.get(created.SessionId)
	assert.Equal(t, constant.SessionStatusPending, stored.Status)
	assert.Equal(t, map[string]interface{}{"message": "Follow-up question"}, stored.InputContext, "context replaced wholesale")
	assert.Nil(t, stored.OutputResult)
	assert.Nil(t, stored.CompletedAt)
	assert.Equal(t, 1, stored.Version, "version bumped by the guarded write")
}

func TestContinueOverwritesPendingSession(t *testing.T) {
	f := newFakeFactory()
	institutionId := uuid.New()
	userId := f.addMember(institutionId, constant.RoleReviewer)
	svc := newSessionService(f)

	created, err := svc.CreateSession(context.Background(), userId, institutionId, constant.AgentTypeReviewerAssistant, &dto.CreateSessionRequest{
		Message: "First question",
	})
	require.NoError(t, err)

	// Two successive continuations before the runner picks the session up.
	// Both succeed; the row keeps the most recent context and stays pending.
	for _, msg := range []string{"Second thoughts", "Final phrasing"} {
		res, err := svc.CreateSession(context.Background(), userId, institutionId, constant.AgentTypeReviewerAssistant, &dto.CreateSessionRequest{
			SessionId: &created.SessionId,
			Message:   msg,
		})
		require.NoError(t, err)
		assert.False(t, res.IsNewSession)
		assert.Equal(t, created.SessionId, res.SessionId)
	}

	sessions, err := f.uow.sessions.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1, "continuation never forks the session")

	stored := f.uow.sessions.get(created.SessionId)
	assert.Equal(t, constant.SessionStatusPending, stored.Status)
	assert.Equal(t, map[string]interface{}{"message": "Final phrasing"}, stored.InputContext)
	assert.Equal(t, 2, stored.Version, "each overwrite bumps the version")
}

func TestContinueUnknownSessionCreatesNew(t *testing.T) {
	f := newFakeFactory()
	institutionId := uuid.New()
	userId := f.addMember(institutionId, constant.RoleReviewer)
	svc := newSessionService(f)

	unknown := uuid.New()
	res, err := svc.CreateSession(context.Background(), userId, institutionId, constant.AgentTypeReviewerAssistant, &dto.CreateSessionRequest{
		SessionId: &unknown,
		Message:   "Fresh start",
	})
	require.NoError(t, err)

	assert.True(t, res.IsNewSession)
	assert.Equal(t, constant.SessionStatusPending, res.Status)

	stored := f.uow.sessions.get(res.SessionId)
	require.NotNil(t, stored)
	assert.Equal(t, "Fresh start", stored.InputContext["message"])
}

func TestContinueRejectsNonChatSession(t *testing.T) {
	f := newFakeFactory()
	institutionId := uuid.New()
	userId := f.addMember(institutionId, constant.RoleAdmin)
	svc := newSessionService(f)

	created, err := svc.CreateSession(context.Background(), userId, institutionId, constant.AgentTypeDocumentReviewer, &dto.CreateSessionRequest{
		Message:   "Review",
		TargetIds: []string{"doc-1"},
	})
	require.NoError(t, err)

	now := time.Now()
	f.uow.sessions.ClaimPending(context.Background(), created.SessionId, now, now.Add(time.Minute))
	f.uow.sessions.CompleteRunning(context.Background(), created.SessionId, nil, nil, 1, now)

	_, err = svc.CreateSession(context.Background(), userId, institutionId, constant.AgentTypeDocumentReviewer, &dto.CreateSessionRequest{
		SessionId: &created.SessionId,
		Message:   "Again",
	})
	var validationErr *apperror.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestContinueStaleVersionConflicts(t *testing.T) {
	f := newFakeFactory()
	institutionId := uuid.New()
	userId := f.addMember(institutionId, constant.RoleReviewer)
	svc := newSessionService(f)

	created, err := svc.CreateSession(context.Background(), userId, institutionId, constant.AgentTypeReviewerAssistant, &dto.CreateSessionRequest{
		Message: "First question",
	})
	require.NoError(t, err)

	now := time.Now()
	f.uow.sessions.ClaimPending(context.Background(), created.SessionId, now, now.Add(time.Minute))
	f.uow.sessions.CompleteRunning(context.Background(), created.SessionId, map[string]interface{}{"answer": "A"}, nil, 1, now)

	// Simulate a racing continuation that already bumped the version.
	f.uow.sessions.mu.Lock()
	f.uow.sessions.sessions[created.SessionId].Version = 3
	f.uow.sessions.mu.Unlock()

	stored := f.uow.sessions.get(created.SessionId)
	stored.Version = 0 // stale snapshot

	updated, err := f.uow.sessions.UpdateWithVersion(context.Background(), stored, 0)
	require.NoError(t, err)
	assert.False(t, updated, "stale write must lose")
}

func TestGetSessionProjectsTranscript(t *testing.T) {
	f := newFakeFactory()
	institutionId := uuid.New()
	userId := f.addMember(institutionId, constant.RoleReviewer)
	svc := newSessionService(f)

	created, err := svc.CreateSession(context.Background(), userId, institutionId, constant.AgentTypeReviewerAssistant, &dto.CreateSessionRequest{
		Message: "Minimum APS?",
	})
	require.NoError(t, err)

	now := time.Now()
	f.uow.sessions.ClaimPending(context.Background(), created.SessionId, now, now.Add(time.Minute))
	f.uow.decisions.Create(context.Background(), decisionFor(created.SessionId, "question_answer", map[string]interface{}{"answer": "32 points"}, now))
	f.uow.sessions.CompleteRunning(context.Background(), created.SessionId, map[string]interface{}{"answer": "32 points"}, nil, 1, now.Add(time.Second))

	res, err := svc.GetSession(context.Background(), userId, institutionId, created.SessionId)
	require.NoError(t, err)

	assert.Equal(t, constant.SessionStatusCompleted, res.Session.Status)
	require.Len(t, res.Decisions, 1)
	assert.Equal(t, "question_answer", res.Decisions[0].DecisionType)

	require.NotEmpty(t, res.Messages)
	assert.Equal(t, "user", res.Messages[0].Role)
	assert.Equal(t, "Minimum APS?", res.Messages[0].Content)
}

func TestGetSessionTenantIsolation(t *testing.T) {
	f := newFakeFactory()
	institutionA := uuid.New()
	institutionB := uuid.New()
	userA := f.addMember(institutionA, constant.RoleReviewer)
	userB := f.addMember(institutionB, constant.RoleReviewer)
	svc := newSessionService(f)

	created, err := svc.CreateSession(context.Background(), userA, institutionA, constant.AgentTypeReviewerAssistant, &dto.CreateSessionRequest{
		Message: "private question",
	})
	require.NoError(t, err)

	_, err = svc.GetSession(context.Background(), userB, institutionB, created.SessionId)
	var notFoundErr *apperror.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestGetMessagesRunningSession(t *testing.T) {
	f := newFakeFactory()
	institutionId := uuid.New()
	userId := f.addMember(institutionId, constant.RoleAdmin)
	svc := newSessionService(f)

	created, err := svc.CreateSession(context.Background(), userId, institutionId, constant.AgentTypeAnalytics, &dto.CreateSessionRequest{
		Query: "pass rate by school",
	})
	require.NoError(t, err)

	now := time.Now()
	f.uow.sessions.ClaimPending(context.Background(), created.SessionId, now, now.Add(time.Minute))

	res, err := svc.GetMessages(context.Background(), userId, institutionId, created.SessionId)
	require.NoError(t, err)

	assert.Equal(t, constant.SessionStatusRunning, res.SessionStatus)
	assert.False(t, res.HasMore)

	last := res.Messages[len(res.Messages)-1]
	assert.True(t, last.Ephemeral, "running sessions end with the ephemeral progress line")
}

func TestGetAllSessionsOrdering(t *testing.T) {
	f := newFakeFactory()
	institutionId := uuid.New()
	userId := f.addMember(institutionId, constant.RoleAdmin)
	svc := newSessionService(f)

	first, err := svc.CreateSession(context.Background(), userId, institutionId, constant.AgentTypeAnalytics, &dto.CreateSessionRequest{Query: "q1"})
	require.NoError(t, err)

	// Force a distinct, newer created_at on the second session.
	second, err := svc.CreateSession(context.Background(), userId, institutionId, constant.AgentTypeAnalytics, &dto.CreateSessionRequest{Query: "q2"})
	require.NoError(t, err)
	f.uow.sessions.mu.Lock()
	f.uow.sessions.sessions[second.SessionId].CreatedAt = f.uow.sessions.sessions[first.SessionId].CreatedAt.Add(time.Second)
	f.uow.sessions.mu.Unlock()

	res, err := svc.GetAllSessions(context.Background(), userId, institutionId, constant.AgentTypeAnalytics)
	require.NoError(t, err)

	require.Len(t, res.Sessions, 2)
	assert.Equal(t, second.SessionId, res.Sessions[0].SessionId, "newest first")
}
