package service

import (
	"context"
	"sync"
	"time"

	"admissions-be/internal/apperror"
	"admissions-be/internal/config"
	"admissions-be/internal/constant"
	"admissions-be/internal/dto"
	"admissions-be/internal/entity"
	"admissions-be/internal/pkg/logger"
	"admissions-be/internal/repository/specification"
	"admissions-be/internal/repository/unitofwork"
	"admissions-be/pkg/agent/access"
	"admissions-be/pkg/ranking"

	"github.com/google/uuid"
)

// IRankingService runs the admission ranking flow: refresh the snapshot,
// derive cutoffs, and optionally write tier recommendations to the ledger.
type IRankingService interface {
	Apply(ctx context.Context, userId, institutionId uuid.UUID, request *dto.RankingApplyRequest) (*dto.RankingApplyResponse, error)
}

type rankingService struct {
	uowFactory     unitofwork.RepositoryFactory
	accessVerifier *access.Verifier
	defaults       ranking.Thresholds
	logger         logger.ILogger

	// One refresh per course at a time. The snapshot rebuild is
	// delete-then-insert, so overlapping runs would interleave rows.
	mu          sync.Mutex
	courseLocks map[uuid.UUID]*sync.Mutex
}

func NewRankingService(
	uowFactory unitofwork.RepositoryFactory,
	accessVerifier *access.Verifier,
	cfg config.RankingConfig,
	logger logger.ILogger,
) IRankingService {
	return &rankingService{
		uowFactory:     uowFactory,
		accessVerifier: accessVerifier,
		defaults: ranking.Thresholds{
			AutoAccept:  cfg.AutoAccept,
			Conditional: cfg.Conditional,
			Waitlist:    cfg.Waitlist,
		},
		logger:      logger,
		courseLocks: make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *rankingService) Apply(ctx context.Context, userId, institutionId uuid.UUID, request *dto.RankingApplyRequest) (*dto.RankingApplyResponse, error) {
	lock := s.lockFor(request.CourseId)
	lock.Lock()
	defer lock.Unlock()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.NewPersistence("begin transaction", err)
	}
	defer uow.Rollback()

	if err := s.accessVerifier.VerifyAgentAccess(ctx, uow, userId, institutionId, constant.AgentTypeApsRanking); err != nil {
		return nil, err
	}

	if err := s.verifyCourseOwnership(ctx, uow, institutionId, request.CourseId); err != nil {
		return nil, err
	}

	// A bare refresh rebuilds the snapshot and stops. No configuration is
	// needed, no tiers are assigned and no session is recorded.
	if request.Action == "refresh" {
		if err := uow.RankingRepository().Refresh(ctx, request.CourseId); err != nil {
			return nil, apperror.NewPersistence("refresh ranking snapshot", err)
		}
		if err := uow.Commit(); err != nil {
			return nil, apperror.NewPersistence("commit snapshot refresh", err)
		}
		s.logger.Info("ranking", "ranking snapshot refreshed", map[string]interface{}{
			"course_id": request.CourseId.String(),
		})
		return &dto.RankingApplyResponse{CourseId: request.CourseId}, nil
	}

	intakeLimit, thresholds, err := s.resolveConfiguration(ctx, uow, request)
	if err != nil {
		return nil, err
	}

	if err := uow.RankingRepository().Refresh(ctx, request.CourseId); err != nil {
		return nil, apperror.NewPersistence("refresh ranking snapshot", err)
	}

	// An empty snapshot is a valid run: zero counts, nothing flagged.
	rows, err := uow.RankingRepository().FindByCourse(ctx, request.CourseId)
	if err != nil {
		return nil, apperror.NewPersistence("load ranking snapshot", err)
	}

	placements, summary := ranking.AssignTiers(rows, intakeLimit, thresholds)

	session, err := s.resolveSession(ctx, uow, userId, institutionId, request)
	if err != nil {
		return nil, err
	}

	decisions := make([]*entity.AgentDecision, 0, len(placements))
	now := time.Now()
	for _, p := range placements {
		targetId := p.Row.ChoiceId.String()
		reasoning := p.Reasoning
		confidence := p.Confidence
		decisions = append(decisions, &entity.AgentDecision{
			Id:           uuid.New(),
			SessionId:    session.Id,
			DecisionType: constant.DecisionRankingAssigned,
			TargetId:     &targetId,
			DecisionValue: map[string]interface{}{
				"application_id": p.Row.ApplicationId.String(),
				"course_id":      p.Row.CourseId.String(),
				"rank_position":  p.Row.RankPosition,
				"aps_score":      p.Row.ApsScore,
				"recommendation": p.Recommendation,
			},
			Reasoning:       &reasoning,
			ConfidenceScore: &confidence,
			CreatedAt:       now,
		})
	}
	if err := uow.AgentDecisionRepository().CreateBulk(ctx, decisions); err != nil {
		return nil, apperror.NewPersistence("write ranking decisions", err)
	}

	cutoffs := ranking.ComputeCutoffs(intakeLimit, thresholds)
	output := map[string]interface{}{
		"action":       request.Action,
		"course_id":    request.CourseId.String(),
		"intake_limit": intakeLimit,
		"cutoffs": map[string]interface{}{
			"auto_accept": cutoffs.AutoAccept,
			"conditional": cutoffs.Conditional,
			"waitlist":    cutoffs.Waitlist,
		},
	}
	summaryMap := map[string]interface{}{
		"auto_accept":       summary.AutoAccept,
		"conditional":       summary.Conditional,
		"waitlist":          summary.Waitlist,
		"rejection_flagged": summary.RejectionFlagged,
		"total":             summary.Total,
	}

	completed, err := uow.AgentSessionRepository().CompleteRunning(ctx, session.Id, output, summaryMap, summary.Total, time.Now())
	if err != nil {
		return nil, apperror.NewPersistence("complete ranking session", err)
	}
	if !completed {
		return nil, apperror.NewConflict("ranking session")
	}

	if err := uow.Commit(); err != nil {
		return nil, apperror.NewPersistence("commit ranking run", err)
	}

	s.logger.Info("ranking", "ranking run completed", map[string]interface{}{
		"course_id": request.CourseId.String(),
		"action":    request.Action,
		"total":     summary.Total,
	})

	return &dto.RankingApplyResponse{
		SessionId:        &session.Id,
		CourseId:         request.CourseId,
		AutoAccept:       summary.AutoAccept,
		Conditional:      summary.Conditional,
		Waitlist:         summary.Waitlist,
		RejectionFlagged: summary.RejectionFlagged,
		Total:            summary.Total,
	}, nil
}

// verifyCourseOwnership rejects courses configured under another tenant.
func (s *rankingService) verifyCourseOwnership(ctx context.Context, uow unitofwork.UnitOfWork, institutionId, courseId uuid.UUID) error {
	setting, err := uow.RankingRepository().FindIntakeSetting(ctx, courseId)
	if err != nil {
		return apperror.NewPersistence("load intake setting", err)
	}
	if setting != nil && setting.InstitutionId != institutionId {
		return apperror.NewAuthorization("course belongs to another institution")
	}
	return nil
}

// resolveConfiguration resolves intake limit and thresholds in precedence
// order: request override, then course setting, then global defaults. The
// intake limit has no global default, so a course without one is a
// configuration error.
func (s *rankingService) resolveConfiguration(ctx context.Context, uow unitofwork.UnitOfWork, request *dto.RankingApplyRequest) (int, ranking.Thresholds, error) {
	thresholds := s.defaults

	setting, err := uow.RankingRepository().FindIntakeSetting(ctx, request.CourseId)
	if err != nil {
		return 0, thresholds, apperror.NewPersistence("load intake setting", err)
	}

	if setting != nil {
		if setting.AutoAccept != nil {
			thresholds.AutoAccept = *setting.AutoAccept
		}
		if setting.Conditional != nil {
			thresholds.Conditional = *setting.Conditional
		}
		if setting.Waitlist != nil {
			thresholds.Waitlist = *setting.Waitlist
		}
	}
	if request.Thresholds != nil {
		thresholds = ranking.Thresholds{
			AutoAccept:  request.Thresholds.AutoAccept,
			Conditional: request.Thresholds.Conditional,
			Waitlist:    request.Thresholds.Waitlist,
		}
	}
	if thresholds.AutoAccept > thresholds.Conditional || thresholds.Conditional > thresholds.Waitlist {
		return 0, thresholds, apperror.NewValidation("thresholds", "thresholds must satisfy auto_accept <= conditional <= waitlist")
	}

	if request.IntakeLimit != nil {
		return *request.IntakeLimit, thresholds, nil
	}
	if setting != nil && setting.IntakeLimit != nil && *setting.IntakeLimit > 0 {
		return *setting.IntakeLimit, thresholds, nil
	}
	return 0, thresholds, apperror.NewMissingConfiguration("intake_limit for course " + request.CourseId.String())
}

// resolveSession attaches the run to a caller-supplied aps_ranking session
// or creates one. Ranking executes within the request, so the session is
// born running and completed before the response returns.
func (s *rankingService) resolveSession(ctx context.Context, uow unitofwork.UnitOfWork, userId, institutionId uuid.UUID, request *dto.RankingApplyRequest) (*entity.AgentSession, error) {
	if request.SessionId != nil {
		session, err := uow.AgentSessionRepository().FindOne(ctx,
			specification.ByID{ID: *request.SessionId},
			specification.ByInstitutionID{InstitutionID: institutionId},
			specification.ByAgentType{AgentType: constant.AgentTypeApsRanking},
		)
		if err != nil {
			return nil, apperror.NewPersistence("load ranking session", err)
		}
		if session == nil {
			return nil, apperror.NewNotFound("ranking session")
		}
		if session.Status != constant.SessionStatusPending {
			return nil, apperror.NewConflict("ranking session")
		}
		now := time.Now()
		claimed, err := uow.AgentSessionRepository().ClaimPending(ctx, session.Id, now, now.Add(5*time.Minute))
		if err != nil {
			return nil, apperror.NewPersistence("claim ranking session", err)
		}
		if !claimed {
			return nil, apperror.NewConflict("ranking session")
		}
		return session, nil
	}

	now := time.Now()
	courseId := request.CourseId.String()
	session := &entity.AgentSession{
		Id:            uuid.New(),
		InstitutionId: institutionId,
		AgentType:     constant.AgentTypeApsRanking,
		Status:        constant.SessionStatusRunning,
		InputContext: map[string]interface{}{
			"action":    request.Action,
			"course_id": courseId,
		},
		TargetType:  strPtr("course"),
		TargetIds:   []string{courseId},
		TotalItems:  1,
		InitiatedBy: userId,
		CreatedAt:   now,
		StartedAt:   &now,
	}
	if err := uow.AgentSessionRepository().Create(ctx, session); err != nil {
		return nil, apperror.NewPersistence("create ranking session", err)
	}
	return session, nil
}

func (s *rankingService) lockFor(courseId uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.courseLocks[courseId]
	if !ok {
		lock = &sync.Mutex{}
		s.courseLocks[courseId] = lock
	}
	return lock
}

func strPtr(s string) *string { return &s }
