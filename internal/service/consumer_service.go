package service

import (
	"context"
	"encoding/json"
	"time"

	"admissions-be/internal/constant"
	"admissions-be/internal/dto"
	"admissions-be/internal/pkg/logger"
	"admissions-be/internal/pkg/mailer"
	"admissions-be/internal/repository/unitofwork"
	"admissions-be/internal/websocket"
	"admissions-be/pkg/events"
	pktNats "admissions-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IConsumerService drains the session-finished topic and fans each event out
// to its delivery channels: websocket push, outbound NATS event, and a
// failure alert email.
type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub     *gochannel.GoChannel
	uowFactory unitofwork.RepositoryFactory
	hub        *websocket.Hub
	natsPub    *pktNats.Publisher
	mailer     mailer.IEmailService
	alertEmail string
	logger     logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	uowFactory unitofwork.RepositoryFactory,
	hub *websocket.Hub,
	natsPub *pktNats.Publisher,
	emailService mailer.IEmailService,
	alertEmail string,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		uowFactory: uowFactory,
		hub:        hub,
		natsPub:    natsPub,
		mailer:     emailService,
		alertEmail: alertEmail,
		logger:     logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, TopicSessionFinished)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.SessionFinishedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("consumer", "malformed session event", map[string]interface{}{"error": err.Error()})
		msg.Ack() // malformed messages never become valid, drop them
		return
	}

	update := dto.SessionUpdatePayload{
		SessionId:    payload.SessionId,
		AgentType:    payload.AgentType,
		Status:       payload.Status,
		ErrorMessage: payload.ErrorMessage,
	}

	// 1. Push to the initiator's open connections.
	if cs.hub != nil {
		cs.hub.SendSessionUpdate(payload.InitiatedBy, update)
	}

	// 2. Failed sessions additionally notify the institution's admins.
	if payload.Status == constant.SessionStatusFailed {
		cs.notifyAdmins(ctx, payload, update)
		cs.sendAlertEmail(payload)
	}

	// 3. Hand the event to the external notification pipeline.
	if cs.natsPub != nil {
		event := events.BaseEvent{
			Type: "agent_session_" + payload.Status,
			Data: map[string]interface{}{
				"session_id":     payload.SessionId.String(),
				"institution_id": payload.InstitutionId.String(),
				"agent_type":     payload.AgentType,
				"status":         payload.Status,
			},
			OccurredAt: time.Now(),
		}
		if err := cs.natsPub.Publish(ctx, event); err != nil {
			cs.logger.Error("consumer", "nats publish failed", map[string]interface{}{"error": err.Error()})
			msg.Nack()
			return
		}
	}

	msg.Ack()
}

func (cs *consumerService) notifyAdmins(ctx context.Context, payload dto.SessionFinishedMessage, update dto.SessionUpdatePayload) {
	if cs.hub == nil {
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	admins, err := uow.MembershipRepository().FindAdmins(ctx, payload.InstitutionId)
	if err != nil {
		cs.logger.Error("consumer", "admin lookup failed", map[string]interface{}{"error": err.Error()})
		return
	}
	for _, admin := range admins {
		if admin.UserId == payload.InitiatedBy {
			continue // already notified as initiator
		}
		cs.hub.SendSessionUpdate(admin.UserId, update)
	}
}

func (cs *consumerService) sendAlertEmail(payload dto.SessionFinishedMessage) {
	if cs.mailer == nil || cs.alertEmail == "" {
		return
	}

	errorMessage := ""
	if payload.ErrorMessage != nil {
		errorMessage = *payload.ErrorMessage
	}

	if err := cs.mailer.SendSessionFailureAlert(cs.alertEmail, payload.AgentType, payload.SessionId.String(), errorMessage); err != nil {
		cs.logger.Error("consumer", "failure alert email failed", map[string]interface{}{
			"session_id": payload.SessionId.String(),
			"error":      err.Error(),
		})
	}
}
