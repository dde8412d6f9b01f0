package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"admissions-be/internal/constant"
	"admissions-be/internal/entity"
	"admissions-be/internal/repository/contract"
	"admissions-be/internal/repository/specification"
	"admissions-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// In-memory repository doubles. Spec filtering type-switches on the known
// specification structs instead of building gorm queries.

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entity.AgentSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*entity.AgentSession)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.AgentSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *session
	r.sessions[session.Id] = &copied
	return nil
}

func (r *fakeSessionRepo) UpdateWithVersion(ctx context.Context, session *entity.AgentSession, expectedVersion int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.sessions[session.Id]
	if !ok || stored.Version != expectedVersion {
		return false, nil
	}
	copied := *session
	copied.Version = expectedVersion + 1
	r.sessions[session.Id] = &copied
	session.Version = copied.Version
	return true, nil
}

func (r *fakeSessionRepo) ClaimPending(ctx context.Context, id uuid.UUID, startedAt, deadlineAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.sessions[id]
	if !ok || stored.Status != constant.SessionStatusPending {
		return false, nil
	}
	stored.Status = constant.SessionStatusRunning
	stored.StartedAt = &startedAt
	stored.DeadlineAt = &deadlineAt
	return true, nil
}

func (r *fakeSessionRepo) CompleteRunning(ctx context.Context, id uuid.UUID, output, summary map[string]interface{}, processedItems int, completedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.sessions[id]
	if !ok || stored.Status != constant.SessionStatusRunning {
		return false, nil
	}
	stored.Status = constant.SessionStatusCompleted
	stored.OutputResult = output
	stored.OutputSummary = summary
	stored.ProcessedItems = processedItems
	stored.CompletedAt = &completedAt
	return true, nil
}

func (r *fakeSessionRepo) FailRunning(ctx context.Context, id uuid.UUID, errorMessage string, completedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.sessions[id]
	if !ok || stored.Status != constant.SessionStatusRunning {
		return false, nil
	}
	stored.Status = constant.SessionStatusFailed
	stored.ErrorMessage = &errorMessage
	stored.CompletedAt = &completedAt
	return true, nil
}

func (r *fakeSessionRepo) FailExpired(ctx context.Context, now time.Time, errorMessage string) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var expired []uuid.UUID
	for id, s := range r.sessions {
		if s.Status == constant.SessionStatusRunning && s.DeadlineAt != nil && s.DeadlineAt.Before(now) {
			s.Status = constant.SessionStatusFailed
			msg := errorMessage
			s.ErrorMessage = &msg
			completedAt := now
			s.CompletedAt = &completedAt
			expired = append(expired, id)
		}
	}
	return expired, nil
}

func (r *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.AgentSession, error) {
	matches, err := r.FindAll(ctx, specs...)
	if err != nil || len(matches) == 0 {
		return nil, err
	}
	return matches[0], nil
}

func (r *fakeSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AgentSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.AgentSession
	for _, s := range r.sessions {
		if matchesSession(s, specs) {
			copied := *s
			out = append(out, &copied)
		}
	}
	applySessionOrdering(out, specs)
	return applySessionPagination(out, specs), nil
}

func (r *fakeSessionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	matches, err := r.FindAll(ctx, specs...)
	return int64(len(matches)), err
}

func (r *fakeSessionRepo) get(id uuid.UUID) *entity.AgentSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.sessions[id]
	if s == nil {
		return nil
	}
	copied := *s
	return &copied
}

func matchesSession(s *entity.AgentSession, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch v := spec.(type) {
		case specification.ByID:
			if s.Id != v.ID {
				return false
			}
		case specification.ByInstitutionID:
			if s.InstitutionId != v.InstitutionID {
				return false
			}
		case specification.ByStatus:
			if s.Status != v.Status {
				return false
			}
		case specification.ByAgentType:
			if s.AgentType != v.AgentType {
				return false
			}
		}
	}
	return true
}

func applySessionOrdering(sessions []*entity.AgentSession, specs []specification.Specification) {
	for _, spec := range specs {
		if order, ok := spec.(specification.OrderBy); ok && order.Field == "created_at" {
			sort.Slice(sessions, func(i, j int) bool {
				if order.Desc {
					return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
				}
				return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
			})
		}
	}
}

func applySessionPagination(sessions []*entity.AgentSession, specs []specification.Specification) []*entity.AgentSession {
	for _, spec := range specs {
		if p, ok := spec.(specification.Pagination); ok {
			if p.Offset >= len(sessions) {
				return nil
			}
			sessions = sessions[p.Offset:]
			if p.Limit > 0 && p.Limit < len(sessions) {
				sessions = sessions[:p.Limit]
			}
		}
	}
	return sessions
}

type fakeDecisionRepo struct {
	mu   sync.Mutex
	rows []*entity.AgentDecision
}

func (r *fakeDecisionRepo) Create(ctx context.Context, decision *entity.AgentDecision) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *decision
	r.rows = append(r.rows, &copied)
	return nil
}

func (r *fakeDecisionRepo) CreateBulk(ctx context.Context, decisions []*entity.AgentDecision) error {
	for _, d := range decisions {
		if err := r.Create(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeDecisionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AgentDecision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.AgentDecision
	for _, d := range r.rows {
		match := true
		for _, spec := range specs {
			if bySession, ok := spec.(specification.BySessionID); ok && d.SessionId != bySession.SessionID {
				match = false
			}
		}
		if match {
			copied := *d
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeDecisionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	rows, err := r.FindAll(ctx, specs...)
	return int64(len(rows)), err
}

type fakeRankingRepo struct {
	rows       []*entity.RankedChoice
	setting    *entity.CourseIntakeSetting
	refreshed  int
	refreshErr error
}

func (r *fakeRankingRepo) Refresh(ctx context.Context, courseId uuid.UUID) error {
	r.refreshed++
	return r.refreshErr
}

func (r *fakeRankingRepo) FindByCourse(ctx context.Context, courseId uuid.UUID) ([]*entity.RankedChoice, error) {
	return r.rows, nil
}

func (r *fakeRankingRepo) FindIntakeSetting(ctx context.Context, courseId uuid.UUID) (*entity.CourseIntakeSetting, error) {
	return r.setting, nil
}

type fakeMembershipRepo struct {
	members map[uuid.UUID]*entity.InstitutionMember // keyed by user id
}

func (r *fakeMembershipRepo) FindMember(ctx context.Context, userId, institutionId uuid.UUID) (*entity.InstitutionMember, error) {
	m, ok := r.members[userId]
	if !ok || m.InstitutionId != institutionId {
		return nil, nil
	}
	return m, nil
}

func (r *fakeMembershipRepo) FindAdmins(ctx context.Context, institutionId uuid.UUID) ([]*entity.InstitutionMember, error) {
	var admins []*entity.InstitutionMember
	for _, m := range r.members {
		if m.InstitutionId == institutionId && m.Role == constant.RoleAdmin {
			admins = append(admins, m)
		}
	}
	return admins, nil
}

type fakeUow struct {
	sessions    *fakeSessionRepo
	decisions   *fakeDecisionRepo
	rankings    *fakeRankingRepo
	memberships *fakeMembershipRepo
}

func (u *fakeUow) Begin(ctx context.Context) error { return nil }
func (u *fakeUow) Commit() error                   { return nil }
func (u *fakeUow) Rollback() error                 { return nil }

func (u *fakeUow) AgentSessionRepository() contract.AgentSessionRepository {
	return u.sessions
}

func (u *fakeUow) AgentDecisionRepository() contract.AgentDecisionRepository {
	return u.decisions
}

func (u *fakeUow) RankingRepository() contract.RankingRepository {
	return u.rankings
}

func (u *fakeUow) MembershipRepository() contract.MembershipRepository {
	return u.memberships
}

type fakeFactory struct {
	uow *fakeUow
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{uow: &fakeUow{
		sessions:    newFakeSessionRepo(),
		decisions:   &fakeDecisionRepo{},
		rankings:    &fakeRankingRepo{},
		memberships: &fakeMembershipRepo{members: make(map[uuid.UUID]*entity.InstitutionMember)},
	}}
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

func (f *fakeFactory) addMember(institutionId uuid.UUID, role string) uuid.UUID {
	userId := uuid.New()
	f.uow.memberships.members[userId] = &entity.InstitutionMember{
		Id:            uuid.New(),
		UserId:        userId,
		InstitutionId: institutionId,
		Role:          role,
	}
	return userId
}

func decisionFor(sessionId uuid.UUID, decisionType string, value map[string]interface{}, at time.Time) *entity.AgentDecision {
	return &entity.AgentDecision{
		Id:            uuid.New(),
		SessionId:     sessionId,
		DecisionType:  decisionType,
		DecisionValue: value,
		CreatedAt:     at,
	}
}

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

type recordingPublisher struct {
	mu       sync.Mutex
	finished []*entity.AgentSession
}

func (p *recordingPublisher) PublishSessionFinished(session *entity.AgentSession) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	copied := *session
	p.finished = append(p.finished, &copied)
	return nil
}

func (p *recordingPublisher) published() []*entity.AgentSession {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*entity.AgentSession(nil), p.finished...)
}
