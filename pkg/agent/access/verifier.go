package access

import (
	"context"

	"admissions-be/internal/apperror"
	"admissions-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// Verifier handles the agent-type permission gate. It is a precondition
// check at the request boundary, never part of the session state machine.
type Verifier struct{}

// NewVerifier creates a new access verifier
func NewVerifier() *Verifier {
	return &Verifier{}
}

// roleAllowList maps agent type to the institution roles allowed to start
// or continue sessions of that type.
var roleAllowList = map[string][]string{
	"document_reviewer":   {"admin", "reviewer"},
	"aps_ranking":         {"admin", "reviewer"},
	"reviewer_assistant":  {"admin", "reviewer", "member"},
	"analytics":           {"admin"},
	"notification_sender": {"admin"},
}

// VerifyAgentAccess checks that the user belongs to the institution with a
// role in the agent-type allow-list.
func (v *Verifier) VerifyAgentAccess(ctx context.Context, uow unitofwork.UnitOfWork, userId, institutionId uuid.UUID, agentType string) error {
	member, err := uow.MembershipRepository().FindMember(ctx, userId, institutionId)
	if err != nil {
		return err
	}
	if member == nil {
		return apperror.NewAuthorization("not a member of this institution")
	}

	allowed, ok := roleAllowList[agentType]
	if !ok {
		return apperror.NewValidation("agent_type", "unknown agent type "+agentType)
	}

	for _, role := range allowed {
		if member.Role == role {
			return nil
		}
	}
	return apperror.NewAuthorization("role " + member.Role + " may not use agent " + agentType)
}
