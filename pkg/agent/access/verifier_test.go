package access

import (
	"context"
	"errors"
	"testing"

	"admissions-be/internal/apperror"
	"admissions-be/internal/entity"
	"admissions-be/internal/repository/contract"
	"admissions-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type stubMembershipRepo struct {
	member *entity.InstitutionMember
}

func (r *stubMembershipRepo) FindMember(ctx context.Context, userId, institutionId uuid.UUID) (*entity.InstitutionMember, error) {
	return r.member, nil
}

func (r *stubMembershipRepo) FindAdmins(ctx context.Context, institutionId uuid.UUID) ([]*entity.InstitutionMember, error) {
	return nil, nil
}

type stubUow struct {
	memberships *stubMembershipRepo
}

func (u *stubUow) Begin(ctx context.Context) error { return nil }
func (u *stubUow) Commit() error                   { return nil }
func (u *stubUow) Rollback() error                 { return nil }

func (u *stubUow) AgentSessionRepository() contract.AgentSessionRepository   { return nil }
func (u *stubUow) AgentDecisionRepository() contract.AgentDecisionRepository { return nil }
func (u *stubUow) RankingRepository() contract.RankingRepository             { return nil }
func (u *stubUow) MembershipRepository() contract.MembershipRepository       { return u.memberships }

var _ unitofwork.UnitOfWork = (*stubUow)(nil)

func uowWithRole(role string) *stubUow {
	return &stubUow{memberships: &stubMembershipRepo{member: &entity.InstitutionMember{
		Id:   uuid.New(),
		Role: role,
	}}}
}

func TestVerifyAgentAccessRoleMatrix(t *testing.T) {
	tests := []struct {
		role      string
		agentType string
		allowed   bool
	}{
		{"admin", "document_reviewer", true},
		{"reviewer", "document_reviewer", true},
		{"member", "document_reviewer", false},
		{"admin", "aps_ranking", true},
		{"reviewer", "aps_ranking", true},
		{"member", "aps_ranking", false},
		{"admin", "reviewer_assistant", true},
		{"reviewer", "reviewer_assistant", true},
		{"member", "reviewer_assistant", true},
		{"admin", "analytics", true},
		{"reviewer", "analytics", false},
		{"admin", "notification_sender", true},
		{"reviewer", "notification_sender", false},
	}

	v := NewVerifier()
	for _, tt := range tests {
		t.Run(tt.role+"/"+tt.agentType, func(t *testing.T) {
			err := v.VerifyAgentAccess(context.Background(), uowWithRole(tt.role), uuid.New(), uuid.New(), tt.agentType)
			if tt.allowed && err != nil {
				t.Errorf("expected access, got %v", err)
			}
			if !tt.allowed {
				var authErr *apperror.AuthorizationError
				if !errors.As(err, &authErr) {
					t.Errorf("expected AuthorizationError, got %v", err)
				}
			}
		})
	}
}

func TestVerifyAgentAccessNonMember(t *testing.T) {
	v := NewVerifier()
	uow := &stubUow{memberships: &stubMembershipRepo{}}

	err := v.VerifyAgentAccess(context.Background(), uow, uuid.New(), uuid.New(), "reviewer_assistant")
	var authErr *apperror.AuthorizationError
	if !errors.As(err, &authErr) {
		t.Errorf("expected AuthorizationError for non-member, got %v", err)
	}
}

func TestVerifyAgentAccessUnknownAgent(t *testing.T) {
	v := NewVerifier()

	err := v.VerifyAgentAccess(context.Background(), uowWithRole("admin"), uuid.New(), uuid.New(), "mystery_agent")
	var validationErr *apperror.ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("expected ValidationError for unknown agent type, got %v", err)
	}
}
