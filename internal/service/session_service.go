package service

import (
	"context"
	"time"

	"admissions-be/internal/apperror"
	"admissions-be/internal/constant"
	"admissions-be/internal/dto"
	"admissions-be/internal/entity"
	"admissions-be/internal/pkg/logger"
	"admissions-be/internal/repository/specification"
	"admissions-be/internal/repository/unitofwork"
	"admissions-be/pkg/agent/access"
	"admissions-be/pkg/transcript"

	"github.com/google/uuid"
)

// ISessionService defines the agent session orchestration interface
type ISessionService interface {
	CreateSession(ctx context.Context, userId, institutionId uuid.UUID, agentType string, request *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	GetSession(ctx context.Context, userId, institutionId, sessionId uuid.UUID) (*dto.GetSessionResponse, error)
	GetMessages(ctx context.Context, userId, institutionId, sessionId uuid.UUID) (*dto.GetMessagesResponse, error)
	GetAllSessions(ctx context.Context, userId, institutionId uuid.UUID, agentType string) (*dto.ListSessionsResponse, error)
}

type sessionService struct {
	uowFactory     unitofwork.RepositoryFactory
	accessVerifier *access.Verifier
	logger         logger.ILogger
}

func NewSessionService(
	uowFactory unitofwork.RepositoryFactory,
	accessVerifier *access.Verifier,
	logger logger.ILogger,
) ISessionService {
	return &sessionService{
		uowFactory:     uowFactory,
		accessVerifier: accessVerifier,
		logger:         logger,
	}
}

func (s *sessionService) CreateSession(ctx context.Context, userId, institutionId uuid.UUID, agentType string, request *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	if !constant.IsValidAgentType(agentType) {
		return nil, apperror.NewValidation("agent_type", "unknown agent type "+agentType)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.NewPersistence("begin transaction", err)
	}
	defer uow.Rollback()

	if err := s.accessVerifier.VerifyAgentAccess(ctx, uow, userId, institutionId, agentType); err != nil {
		return nil, err
	}

	// Batch agents can run from target ids alone; free text is optional then.
	inputContext := buildInputContext(request)
	if len(inputContext) == 0 && len(request.TargetIds) == 0 {
		return nil, apperror.NewValidation("message", "request carries no message, query, context or targets")
	}

	// Continuation of an existing chat session re-enters the queue with a
	// fresh request context. An unmatched id falls through to a new session.
	if request.SessionId != nil {
		response, err := s.continueSession(ctx, uow, institutionId, agentType, *request.SessionId, inputContext)
		if err != nil {
			return nil, err
		}
		if response != nil {
			if err := uow.Commit(); err != nil {
				return nil, apperror.NewPersistence("commit session continuation", err)
			}
			return response, nil
		}
	}

	targetIds := dedupePreservingOrder(request.TargetIds)

	session := &entity.AgentSession{
		Id:            uuid.New(),
		InstitutionId: institutionId,
		AgentType:     agentType,
		Status:        constant.SessionStatusPending,
		IsChatSession: agentType == constant.AgentTypeReviewerAssistant,
		InputContext:  inputContext,
		TargetType:    request.TargetType,
		TargetIds:     targetIds,
		TotalItems:    len(targetIds),
		InitiatedBy:   userId,
		CreatedAt:     time.Now(),
	}

	if err := uow.AgentSessionRepository().Create(ctx, session); err != nil {
		return nil, apperror.NewPersistence("create agent session", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, apperror.NewPersistence("commit agent session", err)
	}

	s.logger.Info("session", "agent session created", map[string]interface{}{
		"session_id": session.Id.String(),
		"agent_type": agentType,
	})

	return &dto.CreateSessionResponse{
		SessionId:    session.Id,
		Status:       session.Status,
		IsNewSession: true,
	}, nil
}

// continueSession requeues a chat session regardless of its current status.
// The stored request context is replaced wholesale, never merged, and the
// write is guarded by the session version so two racing continuations cannot
// both win. Returns (nil, nil) when no session matches the supplied id so
// the caller creates a fresh one.
func (s *sessionService) continueSession(ctx context.Context, uow unitofwork.UnitOfWork, institutionId uuid.UUID, agentType string, sessionId uuid.UUID, inputContext map[string]interface{}) (*dto.CreateSessionResponse, error) {
	session, err := uow.AgentSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.ByInstitutionID{InstitutionID: institutionId},
		specification.ByAgentType{AgentType: agentType},
	)
	if err != nil {
		return nil, apperror.NewPersistence("load session", err)
	}
	if session == nil {
		return nil, nil
	}
	if !session.IsChatSession {
		return nil, apperror.NewValidation("session_id", "only chat sessions can be continued")
	}

	expectedVersion := session.Version
	session.Status = constant.SessionStatusPending
	session.InputContext = inputContext
	session.OutputResult = nil
	session.OutputSummary = nil
	session.ErrorMessage = nil
	session.StartedAt = nil
	session.CompletedAt = nil
	session.DeadlineAt = nil

	updated, err := uow.AgentSessionRepository().UpdateWithVersion(ctx, session, expectedVersion)
	if err != nil {
		return nil, apperror.NewPersistence("requeue chat session", err)
	}
	if !updated {
		return nil, apperror.NewConflict("agent session")
	}

	return &dto.CreateSessionResponse{
		SessionId:    session.Id,
		Status:       constant.SessionStatusPending,
		IsNewSession: false,
	}, nil
}

func (s *sessionService) GetSession(ctx context.Context, userId, institutionId, sessionId uuid.UUID) (*dto.GetSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, decisions, err := s.loadSessionWithDecisions(ctx, uow, userId, institutionId, sessionId)
	if err != nil {
		return nil, err
	}

	messages := transcript.Project(session, decisions, time.Now())

	response := &dto.GetSessionResponse{
		Session:   toSessionSummary(session),
		Messages:  toMessageDTOs(messages),
		Decisions: make([]dto.DecisionDTO, 0, len(decisions)),
		Output:    session.OutputResult,
		Summary:   session.OutputSummary,
	}
	for _, d := range decisions {
		response.Decisions = append(response.Decisions, dto.DecisionDTO{
			Id:              d.Id,
			DecisionType:    d.DecisionType,
			TargetId:        d.TargetId,
			DecisionValue:   d.DecisionValue,
			Reasoning:       d.Reasoning,
			ConfidenceScore: d.ConfidenceScore,
			CreatedAt:       d.CreatedAt,
		})
	}
	return response, nil
}

func (s *sessionService) GetMessages(ctx context.Context, userId, institutionId, sessionId uuid.UUID) (*dto.GetMessagesResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, decisions, err := s.loadSessionWithDecisions(ctx, uow, userId, institutionId, sessionId)
	if err != nil {
		return nil, err
	}

	messages := transcript.Project(session, decisions, time.Now())

	return &dto.GetMessagesResponse{
		Messages:      toMessageDTOs(messages),
		SessionStatus: session.Status,
		HasMore:       false,
	}, nil
}

func (s *sessionService) GetAllSessions(ctx context.Context, userId, institutionId uuid.UUID, agentType string) (*dto.ListSessionsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := s.accessVerifier.VerifyAgentAccess(ctx, uow, userId, institutionId, agentType); err != nil {
		return nil, err
	}

	sessions, err := uow.AgentSessionRepository().FindAll(ctx,
		specification.ByInstitutionID{InstitutionID: institutionId},
		specification.ByAgentType{AgentType: agentType},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, apperror.NewPersistence("list sessions", err)
	}

	response := &dto.ListSessionsResponse{Sessions: make([]dto.SessionSummaryResponse, 0, len(sessions))}
	for _, session := range sessions {
		response.Sessions = append(response.Sessions, toSessionSummary(session))
	}
	return response, nil
}

func (s *sessionService) loadSessionWithDecisions(ctx context.Context, uow unitofwork.UnitOfWork, userId, institutionId, sessionId uuid.UUID) (*entity.AgentSession, []*entity.AgentDecision, error) {
	session, err := uow.AgentSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.ByInstitutionID{InstitutionID: institutionId},
	)
	if err != nil {
		return nil, nil, apperror.NewPersistence("load session", err)
	}
	if session == nil {
		return nil, nil, apperror.NewNotFound("agent session")
	}

	if err := s.accessVerifier.VerifyAgentAccess(ctx, uow, userId, institutionId, session.AgentType); err != nil {
		return nil, nil, err
	}

	// created_at is the ledger's only ordering key.
	decisions, err := uow.AgentDecisionRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, nil, apperror.NewPersistence("load decisions", err)
	}
	return session, decisions, nil
}

// buildInputContext assembles the stored request context. Free text is kept
// under the key the caller used so the transcript shows the original turn.
func buildInputContext(request *dto.CreateSessionRequest) map[string]interface{} {
	inputContext := make(map[string]interface{}, len(request.Context)+2)
	for k, v := range request.Context {
		inputContext[k] = v
	}
	if request.Message != "" {
		inputContext["message"] = request.Message
	}
	if request.Query != "" {
		inputContext["query"] = request.Query
	}
	return inputContext
}

func dedupePreservingOrder(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func toSessionSummary(session *entity.AgentSession) dto.SessionSummaryResponse {
	return dto.SessionSummaryResponse{
		SessionId:      session.Id,
		AgentType:      session.AgentType,
		Status:         session.Status,
		IsChatSession:  session.IsChatSession,
		TotalItems:     session.TotalItems,
		ProcessedItems: session.ProcessedItems,
		ErrorMessage:   session.ErrorMessage,
		CreatedAt:      session.CreatedAt,
		StartedAt:      session.StartedAt,
		CompletedAt:    session.CompletedAt,
	}
}

func toMessageDTOs(messages []transcript.Message) []dto.TranscriptMessageDTO {
	out := make([]dto.TranscriptMessageDTO, 0, len(messages))
	for _, m := range messages {
		out = append(out, dto.TranscriptMessageDTO{
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
			Ephemeral: m.Ephemeral,
		})
	}
	return out
}
