package services

import (
	"context"
	"log/slog"

	"songnote/domain"
	"songnote/feed"
	"songnote/repositories"
)

type IMessageService interface {
	Submit(ctx context.Context, draft domain.Draft) (domain.Message, error)
}

// MessageService ties an acknowledged append to the feed: subscribers
// only ever see snapshots that include every completed submit.
type MessageService struct {
	store repositories.IMessageStore
	hub   *feed.Hub
	log   *slog.Logger
}

func NewMessageService(store repositories.IMessageStore, hub *feed.Hub, log *slog.Logger) *MessageService {
	return &MessageService{store: store, hub: hub, log: log}
}

func (s *MessageService) Submit(ctx context.Context, draft domain.Draft) (domain.Message, error) {
	message, err := s.store.Append(ctx, draft)
	if err != nil {
		return domain.Message{}, err
	}
	s.hub.Broadcast()
	s.log.Debug("Message submitted", "id", message.ID, "recipient", message.Recipient)
	return message, nil
}
