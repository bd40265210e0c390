package notification

import (
	"fmt"

	"github.com/live627/elkarte.net/internal/request"
	"github.com/live627/elkarte.net/internal/utils"
	"go.uber.org/zap"
)

type Publisher interface {
	Publish(event string, data interface{}, recipients ...uint64) bool
}

type Service interface {
	SendNotifications(rc *request.Context, topicID uint64, notifyType string) (int, error)
}

type service struct {
	repo      Repository
	publisher Publisher
	logger    *zap.SugaredLogger
}

func NewService(repo Repository, publisher Publisher, logger *zap.Logger) Service {
	return &service{
		repo:      repo,
		publisher: publisher,
		logger:    logger.Sugar(),
	}
}

// SendNotifications pushes notifyType to every subscriber of the topic who has
// not been notified yet, except the actor. It returns the number notified.
func (s *service) SendNotifications(rc *request.Context, topicID uint64, notifyType string) (int, error) {
	members, err := s.repo.PendingSubscribers(topicID, rc.Member.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to load subscribers: %w", err)
	}
	if len(members) == 0 {
		return 0, nil
	}

	payload := Payload{
		Type:    notifyType,
		TopicID: topicID,
		ActorID: rc.Member.ID,
		Actor:   rc.Member.Name,
	}
	if !s.publisher.Publish(utils.EventNotification, payload, members...) {
		s.logger.Warnw("Notification dropped, event bus full", "topic_id", topicID, "type", notifyType)
		return 0, nil
	}

	if err := s.repo.MarkSent(topicID, members); err != nil {
		return 0, fmt.Errorf("failed to mark notifications sent: %w", err)
	}
	return len(members), nil
}
