package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"admissions-be/internal/constant"
	"admissions-be/internal/entity"
	"admissions-be/internal/repository/specification"
	"admissions-be/internal/repository/unitofwork"
	"admissions-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.AgentSessionRepository())
	assert.NotNil(t, uow.AgentDecisionRepository())
	assert.NotNil(t, uow.RankingRepository())
	assert.NotNil(t, uow.MembershipRepository())
}

func TestSessionClaimRoundTrip(t *testing.T) {
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err)

	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(gormDB).NewUnitOfWork(ctx)
	repo := uow.AgentSessionRepository()

	session := &entity.AgentSession{
		Id:            uuid.New(),
		InstitutionId: uuid.New(),
		AgentType:     constant.AgentTypeAnalytics,
		Status:        constant.SessionStatusPending,
		InputContext:  map[string]interface{}{"query": "integration check"},
		InitiatedBy:   uuid.New(),
		CreatedAt:     time.Now(),
	}
	require.NoError(t, repo.Create(ctx, session))

	now := time.Now()
	claimed, err := repo.ClaimPending(ctx, session.Id, now, now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, claimed)

	// A second claim must lose.
	claimed, err = repo.ClaimPending(ctx, session.Id, now, now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, claimed)

	stored, err := repo.FindOne(ctx, specification.ByID{ID: session.Id})
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, constant.SessionStatusRunning, stored.Status)

	completed, err := repo.CompleteRunning(ctx, session.Id, map[string]interface{}{"rows": 0}, nil, 0, time.Now())
	require.NoError(t, err)
	assert.True(t, completed)
}
