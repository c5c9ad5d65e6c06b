package services

import (
	"context"

	"songnote/domain"
	"songnote/spotify"
)

type ITrackService interface {
	SearchTracks(ctx context.Context, query string) ([]domain.Track, error)
	ResolveTrack(ctx context.Context, trackID string) (domain.Track, error)
}

// TrackService is the UI-facing surface over the external metadata
// client. No retry here: a failed fetch is reported so the user can
// retry.
type TrackService struct {
	client *spotify.Client
}

func NewTrackService(client *spotify.Client) *TrackService {
	return &TrackService{client: client}
}

func (s *TrackService) SearchTracks(ctx context.Context, query string) ([]domain.Track, error) {
	return s.client.SearchTracks(ctx, query)
}

func (s *TrackService) ResolveTrack(ctx context.Context, trackID string) (domain.Track, error) {
	return s.client.GetTrack(ctx, trackID)
}
