package bootstrap

import (
	"context"
	"log"
	"strings"

	"admissions-be/internal/config"
	"admissions-be/internal/constant"
	"admissions-be/internal/controller"
	"admissions-be/internal/pkg/logger"
	"admissions-be/internal/pkg/mailer"
	"admissions-be/internal/repository/memory"
	"admissions-be/internal/repository/specification"
	"admissions-be/internal/repository/unitofwork"
	"admissions-be/internal/service"
	"admissions-be/internal/websocket"
	"admissions-be/pkg/agent/access"
	"admissions-be/pkg/dispatch"

	pktNats "admissions-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AgentController   controller.IAgentController
	RankingController controller.IRankingController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	RunnerService   service.IRunnerService

	// WebSockets
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/sessions.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Dispatch chain: HTTP transport wrapped by the assistant fallback.
	answerCache := memory.NewAnswerCache()
	httpDispatcher := dispatch.NewHTTPDispatcher(dispatch.Targets(cfg.Agents.Targets), cfg.Agents.DispatchTimeout)
	executor := dispatch.NewAssistantFallbackExecutor(httpDispatcher, answerCache, newLocalAnswerSearch(uowFactory))

	accessVerifier := access.NewVerifier()

	// 4. Services
	publisherService := service.NewPublisherService(pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		uowFactory,
		wsHub,
		natsPub,
		emailService,
		cfg.SMTP.AlertEmail,
		sysLogger,
	)

	sessionService := service.NewSessionService(uowFactory, accessVerifier, sysLogger)
	rankingService := service.NewRankingService(uowFactory, accessVerifier, cfg.Ranking, sysLogger)
	runnerService := service.NewRunnerService(uowFactory, executor, publisherService, cfg.Agents, sysLogger)

	// 5. Controllers
	return &Container{
		AgentController:   controller.NewAgentController(sessionService, wsHub),
		RankingController: controller.NewRankingController(rankingService),
		ConsumerService:   consumerService,
		RunnerService:     runnerService,
		WebSocketHub:      wsHub,
	}
}

// newLocalAnswerSearch builds the degraded lookup used when the assistant
// execution unit is down: scan the institution's recent completed assistant
// sessions for a question sharing enough keywords with the incoming one.
func newLocalAnswerSearch(uowFactory unitofwork.RepositoryFactory) dispatch.LocalSearch {
	return func(ctx context.Context, institutionId string, query string) (string, bool) {
		instId, err := uuid.Parse(institutionId)
		if err != nil {
			return "", false
		}

		uow := uowFactory.NewUnitOfWork(ctx)
		sessions, err := uow.AgentSessionRepository().FindAll(ctx,
			specification.ByInstitutionID{InstitutionID: instId},
			specification.ByAgentType{AgentType: constant.AgentTypeReviewerAssistant},
			specification.ByStatus{Status: constant.SessionStatusCompleted},
			specification.OrderBy{Field: "created_at", Desc: true},
			specification.Pagination{Limit: 50, Offset: 0},
		)
		if err != nil {
			return "", false
		}

		queryWords := keywords(query)
		if len(queryWords) == 0 {
			return "", false
		}

		for _, session := range sessions {
			question, _ := session.InputContext["question"].(string)
			if question == "" {
				question, _ = session.InputContext["message"].(string)
			}
			if question == "" {
				continue
			}

			matched := 0
			stored := keywords(question)
			for w := range queryWords {
				if _, ok := stored[w]; ok {
					matched++
				}
			}
			// Require most of the incoming question to overlap.
			if matched*2 < len(queryWords) {
				continue
			}

			if answer, ok := session.OutputResult["answer"].(string); ok && answer != "" {
				return answer, true
			}
		}
		return "", false
	}
}

func keywords(s string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.Trim(w, ".,!?\"'")
		if len(w) > 3 { // skip stopword-sized tokens
			set[w] = struct{}{}
		}
	}
	return set
}
