package service

import (
	"context"
	"time"

	"admissions-be/internal/apperror"
	"admissions-be/internal/config"
	"admissions-be/internal/constant"
	"admissions-be/internal/entity"
	"admissions-be/internal/pkg/logger"
	"admissions-be/internal/repository/specification"
	"admissions-be/internal/repository/unitofwork"
	"admissions-be/pkg/dispatch"

	"github.com/google/uuid"
)

// IRunnerService is the background loop that drains the pending queue.
// One loop per process; horizontal scale is safe because every claim is a
// conditional update.
type IRunnerService interface {
	Run(ctx context.Context)
}

type runnerService struct {
	uowFactory unitofwork.RepositoryFactory
	executor   dispatch.Executor
	publisher  IPublisherService
	logger     logger.ILogger

	batchSize      int
	pollInterval   time.Duration
	sessionTimeout time.Duration
}

func NewRunnerService(
	uowFactory unitofwork.RepositoryFactory,
	executor dispatch.Executor,
	publisher IPublisherService,
	cfg config.AgentConfig,
	logger logger.ILogger,
) IRunnerService {
	return &runnerService{
		uowFactory:     uowFactory,
		executor:       executor,
		publisher:      publisher,
		logger:         logger,
		batchSize:      cfg.BatchSize,
		pollInterval:   cfg.PollInterval,
		sessionTimeout: cfg.SessionTimeout,
	}
}

func (r *runnerService) Run(ctx context.Context) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	r.logger.Info("runner", "session runner started", map[string]interface{}{
		"batch_size":    r.batchSize,
		"poll_interval": r.pollInterval.String(),
	})

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("runner", "session runner stopped", nil)
			return
		case <-ticker.C:
			r.sweepExpired(ctx)
			r.drainBatch(ctx)
		}
	}
}

// sweepExpired fails running sessions past their deadline. The sweep runs
// before claiming so a wedged execution unit cannot hold capacity forever.
func (r *runnerService) sweepExpired(ctx context.Context) {
	uow := r.uowFactory.NewUnitOfWork(ctx)

	expired, err := uow.AgentSessionRepository().FailExpired(ctx, time.Now(), apperror.NewTimeout("agent session").Error())
	if err != nil {
		r.logger.Error("runner", "deadline sweep failed", map[string]interface{}{"error": err.Error()})
		return
	}
	for _, id := range expired {
		r.logger.Warn("runner", "session timed out", map[string]interface{}{"session_id": id.String()})
		r.publishTerminal(ctx, uow, id)
	}
}

func (r *runnerService) drainBatch(ctx context.Context) {
	uow := r.uowFactory.NewUnitOfWork(ctx)

	// Oldest first. Execution is serial within the batch so one slow agent
	// never starves the sweep, only this tick.
	pending, err := uow.AgentSessionRepository().FindAll(ctx,
		specification.ByStatus{Status: constant.SessionStatusPending},
		specification.OrderBy{Field: "created_at", Desc: false},
		specification.Pagination{Limit: r.batchSize, Offset: 0},
	)
	if err != nil {
		r.logger.Error("runner", "pending poll failed", map[string]interface{}{"error": err.Error()})
		return
	}

	for _, session := range pending {
		if ctx.Err() != nil {
			return
		}
		r.process(ctx, session)
	}
}

func (r *runnerService) process(ctx context.Context, session *entity.AgentSession) {
	uow := r.uowFactory.NewUnitOfWork(ctx)

	startedAt := time.Now()
	deadlineAt := startedAt.Add(r.sessionTimeout)

	claimed, err := uow.AgentSessionRepository().ClaimPending(ctx, session.Id, startedAt, deadlineAt)
	if err != nil {
		r.logger.Error("runner", "claim failed", map[string]interface{}{
			"session_id": session.Id.String(),
			"error":      err.Error(),
		})
		return
	}
	if !claimed {
		// Another runner got there first. Not an error.
		return
	}

	session.Status = constant.SessionStatusRunning
	session.StartedAt = &startedAt
	session.DeadlineAt = &deadlineAt

	execCtx, cancel := context.WithDeadline(ctx, deadlineAt)
	result, execErr := r.executor.Execute(execCtx, session)
	cancel()

	if execErr != nil {
		r.fail(ctx, session, apperror.NewExecutionFailure(session.AgentType, execErr))
		return
	}

	r.complete(ctx, session, result)
}

func (r *runnerService) complete(ctx context.Context, session *entity.AgentSession, result *dispatch.Result) {
	uow := r.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		r.logger.Error("runner", "begin completion failed", map[string]interface{}{"error": err.Error()})
		return
	}
	defer uow.Rollback()

	now := time.Now()

	if len(result.Decisions) > 0 {
		decisions := make([]*entity.AgentDecision, 0, len(result.Decisions))
		for _, draft := range result.Decisions {
			decisions = append(decisions, &entity.AgentDecision{
				Id:              uuid.New(),
				SessionId:       session.Id,
				DecisionType:    draft.DecisionType,
				TargetId:        draft.TargetId,
				DecisionValue:   draft.DecisionValue,
				Reasoning:       draft.Reasoning,
				ConfidenceScore: draft.ConfidenceScore,
				CreatedAt:       now,
			})
		}
		if err := uow.AgentDecisionRepository().CreateBulk(ctx, decisions); err != nil {
			uow.Rollback()
			r.fail(ctx, session, apperror.NewPersistence("write decisions", err))
			return
		}
	}

	output := result.Output
	if result.Fallback {
		if output == nil {
			output = map[string]interface{}{}
		}
		output["fallback"] = true
	}

	processed := result.Processed
	if processed == 0 && session.TotalItems > 0 {
		processed = session.TotalItems
	}

	completed, err := uow.AgentSessionRepository().CompleteRunning(ctx, session.Id, output, result.Summary, processed, now)
	if err != nil {
		uow.Rollback()
		r.fail(ctx, session, apperror.NewPersistence("complete session", err))
		return
	}
	if !completed {
		// Lost to the deadline sweep. The ledger keeps the late decisions;
		// the transcript hides them.
		r.logger.Warn("runner", "completion lost to timeout sweep", map[string]interface{}{
			"session_id": session.Id.String(),
		})
		uow.Rollback()
		return
	}

	if err := uow.Commit(); err != nil {
		r.logger.Error("runner", "commit completion failed", map[string]interface{}{"error": err.Error()})
		return
	}

	session.Status = constant.SessionStatusCompleted
	session.OutputResult = output
	session.OutputSummary = result.Summary
	session.ProcessedItems = processed
	session.CompletedAt = &now

	r.logger.Info("runner", "session completed", map[string]interface{}{
		"session_id": session.Id.String(),
		"agent_type": session.AgentType,
		"fallback":   result.Fallback,
	})

	if err := r.publisher.PublishSessionFinished(session); err != nil {
		r.logger.Error("runner", "publish completion event failed", map[string]interface{}{"error": err.Error()})
	}
}

// fail records the terminal failure. Every dispatch failure is terminal;
// retry means the caller starts a new session.
func (r *runnerService) fail(ctx context.Context, session *entity.AgentSession, cause error) {
	uow := r.uowFactory.NewUnitOfWork(ctx)

	now := time.Now()
	errorMessage := cause.Error()

	failed, err := uow.AgentSessionRepository().FailRunning(ctx, session.Id, errorMessage, now)
	if err != nil {
		r.logger.Error("runner", "fail transition failed", map[string]interface{}{
			"session_id": session.Id.String(),
			"error":      err.Error(),
		})
		return
	}
	if !failed {
		return
	}

	session.Status = constant.SessionStatusFailed
	session.ErrorMessage = &errorMessage
	session.CompletedAt = &now

	r.logger.Warn("runner", "session failed", map[string]interface{}{
		"session_id": session.Id.String(),
		"agent_type": session.AgentType,
		"error":      errorMessage,
	})

	if err := r.publisher.PublishSessionFinished(session); err != nil {
		r.logger.Error("runner", "publish failure event failed", map[string]interface{}{"error": err.Error()})
	}
}

// publishTerminal reloads a session by id and emits its terminal event.
// Used by the sweep, which only has ids.
func (r *runnerService) publishTerminal(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID) {
	session, err := uow.AgentSessionRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil || session == nil {
		return
	}
	if err := r.publisher.PublishSessionFinished(session); err != nil {
		r.logger.Error("runner", "publish timeout event failed", map[string]interface{}{"error": err.Error()})
	}
}
