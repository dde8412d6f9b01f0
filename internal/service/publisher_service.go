package service

import (
	"encoding/json"

	"admissions-be/internal/dto"
	"admissions-be/internal/entity"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// TopicSessionFinished carries one message per terminal session transition.
const TopicSessionFinished = "AGENT_SESSION_FINISHED"

type IPublisherService interface {
	PublishSessionFinished(session *entity.AgentSession) error
}

type publisherService struct {
	pubSub *gochannel.GoChannel
}

func NewPublisherService(pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{pubSub: pubSub}
}

func (p *publisherService) PublishSessionFinished(session *entity.AgentSession) error {
	payload, err := json.Marshal(dto.SessionFinishedMessage{
		SessionId:     session.Id,
		InstitutionId: session.InstitutionId,
		AgentType:     session.AgentType,
		Status:        session.Status,
		InitiatedBy:   session.InitiatedBy,
		ErrorMessage:  session.ErrorMessage,
	})
	if err != nil {
		return err
	}
	return p.pubSub.Publish(TopicSessionFinished, message.NewMessage(watermill.NewUUID(), payload))
}
