package services

import (
	"songnote/domain"
	"songnote/feed"
)

type IFeedService interface {
	OpenFeed(onUpdate func([]domain.Message)) (*feed.Subscription, error)
}

// FeedService is pass-through plus lifecycle: every open is a fresh
// subscription, every Close stops delivery for good.
type FeedService struct {
	hub *feed.Hub
}

func NewFeedService(hub *feed.Hub) *FeedService {
	return &FeedService{hub: hub}
}

func (s *FeedService) OpenFeed(onUpdate func([]domain.Message)) (*feed.Subscription, error) {
	return s.hub.Subscribe(onUpdate)
}
