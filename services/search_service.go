package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"songnote/domain"
	"songnote/domain/search"
	"songnote/errors"
	"songnote/repositories"
)

type ISearchService interface {
	Search(ctx context.Context, rawInput string) ([]domain.Message, error)
}

// SearchService orchestrates message search as a three-step pipeline:
// parallel prefix-range scans over recipient and description, merge and
// dedup by id, then an exact recipient match only when the scans came
// back empty. A failed scan aborts the whole search: an incomplete
// result must never be presented as complete.
type SearchService struct {
	store repositories.IMessageStore
	log   *slog.Logger
}

func NewSearchService(store repositories.IMessageStore, log *slog.Logger) *SearchService {
	return &SearchService{store: store, log: log}
}

func (s *SearchService) Search(ctx context.Context, rawInput string) ([]domain.Message, error) {
	query, err := search.NewQuery(rawInput)
	if err != nil {
		return nil, err
	}
	if query.IsEmpty() {
		return []domain.Message{}, nil
	}

	type scan struct {
		messages []domain.Message
		err      error
	}

	fields := []string{repositories.FieldRecipient, repositories.FieldDescription}
	results := make(chan scan, len(fields))
	for _, field := range fields {
		go func(field string) {
			messages, err := s.store.RangeQuery(ctx, field, query.LowerBound(), query.UpperBound())
			results <- scan{messages: messages, err: err}
		}(field)
	}

	// Merge order is irrelevant: a duplicate id carries identical data,
	// so the later writer overwrites with the same message. Both scans are
	// drained before deciding, so no goroutine outlives the call.
	merged := make(map[uuid.UUID]domain.Message)
	var scanErr error
	for range fields {
		result := <-results
		if result.err != nil {
			scanErr = result.err
			continue
		}
		for _, message := range result.messages {
			merged[message.ID] = message
		}
	}
	if scanErr != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrSearchFailed, scanErr)
	}

	if len(merged) == 0 {
		exact, err := s.store.ExactQuery(ctx, repositories.FieldRecipient, query.Terms)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrSearchFailed, err)
		}
		for _, message := range exact {
			merged[message.ID] = message
		}
	}

	s.log.Debug("Search completed", "terms", query.Terms, "results", len(merged))
	return lo.Values(merged), nil
}
