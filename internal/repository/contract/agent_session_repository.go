package contract

import (
	"context"
	"time"

	"admissions-be/internal/entity"
	"admissions-be/internal/repository/specification"

	"github.com/google/uuid"
)

type AgentSessionRepository interface {
	Create(ctx context.Context, session *entity.AgentSession) error

	// UpdateWithVersion persists the session only if the stored version still
	// equals expectedVersion, bumping it by one. Returns false when the write
	// lost the race.
	UpdateWithVersion(ctx context.Context, session *entity.AgentSession, expectedVersion int) (bool, error)

	// ClaimPending is the atomic pending→running transition. Returns false
	// when another runner claimed the session first.
	ClaimPending(ctx context.Context, id uuid.UUID, startedAt time.Time, deadlineAt time.Time) (bool, error)

	// CompleteRunning and FailRunning apply terminal transitions guarded by
	// status='running', so a double-apply is a no-op (returns false).
	CompleteRunning(ctx context.Context, id uuid.UUID, output, summary map[string]interface{}, processedItems int, completedAt time.Time) (bool, error)
	FailRunning(ctx context.Context, id uuid.UUID, errorMessage string, completedAt time.Time) (bool, error)

	// FailExpired sweeps running sessions past their deadline into failed.
	// Returns the ids it transitioned.
	FailExpired(ctx context.Context, now time.Time, errorMessage string) ([]uuid.UUID, error)

	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.AgentSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AgentSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
