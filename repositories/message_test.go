package repositories

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"songnote/domain"
	"songnote/domain/search"
	"songnote/errors"
)

func newTestRepository(t *testing.T) *MessageRepository {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").
		WithInMemory(true).
		WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)

	index, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = index.Close()
		_ = db.Close()
	})
	return NewMessageRepository(db, index, slog.Default())
}

// withTickingClock makes every append one minute apart, oldest first.
func withTickingClock(repo *MessageRepository, start time.Time) {
	tick := 0
	repo.nowUTC = func() time.Time {
		at := start.Add(time.Duration(tick) * time.Minute)
		tick++
		return at
	}
}

func draftFor(recipient, description string) domain.Draft {
	return domain.Draft{
		Recipient:   recipient,
		Description: description,
		TrackID:     "t1",
		TrackName:   "Song",
		ArtistName:  "Artist",
	}
}

func TestAppend_Assigns_ID_And_Unrounded_CreatedAt(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)
	at := time.Date(2026, 2, 14, 20, 4, 5, 123456789, time.UTC)
	repo.nowUTC = func() time.Time { return at }

	message, err := repo.Append(context.Background(), draftFor("Ani", "hello"))
	req.NoError(err)
	req.NotEqual(uuid.Nil, message.ID)
	req.Equal(at, message.CreatedAt)

	// The stored copy keeps the nanosecond instant
	snapshot, err := repo.Snapshot()
	req.NoError(err)
	req.Len(snapshot, 1)
	req.Equal(message, snapshot[0])
}

func TestAppend_Rejects_Invalid_Draft(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)

	_, err := repo.Append(context.Background(), domain.Draft{Recipient: "Ani"})
	req.Error(err)

	_, err = repo.Append(context.Background(), draftFor("   ", "hello"))
	req.ErrorIs(err, errors.ErrInvalidMessage)

	snapshot, err := repo.Snapshot()
	req.NoError(err)
	req.Empty(snapshot)
}

func TestSnapshot_Is_Newest_First(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)
	withTickingClock(repo, time.Now().UTC())

	for _, recipient := range []string{"Ani", "Bram", "Clara"} {
		_, err := repo.Append(context.Background(), draftFor(recipient, "hello"))
		req.NoError(err)
	}

	snapshot, err := repo.Snapshot()
	req.NoError(err)
	req.Len(snapshot, 3)
	req.Equal("Clara", snapshot[0].Recipient)
	req.Equal("Bram", snapshot[1].Recipient)
	req.Equal("Ani", snapshot[2].Recipient)
}

func TestRangeQuery_Matches_Prefix_Case_Insensitively(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)
	withTickingClock(repo, time.Now().UTC())

	ctx := context.Background()
	for _, recipient := range []string{"Ani", "Anita", "Bram"} {
		_, err := repo.Append(ctx, draftFor(recipient, "hello"))
		req.NoError(err)
	}

	// Index values are lower-cased at write time, so the normalized
	// query text matches messages sent with any casing.
	messages, err := repo.RangeQuery(ctx, FieldRecipient, "ani", "ani"+search.PrefixSentinel)
	req.NoError(err)
	req.Len(messages, 2)
	for _, message := range messages {
		req.Contains([]string{"Ani", "Anita"}, message.Recipient)
	}
}

func TestRangeQuery_On_Description(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)
	withTickingClock(repo, time.Now().UTC())

	ctx := context.Background()
	_, err := repo.Append(ctx, draftFor("Ani", "Miss you already"))
	req.NoError(err)
	_, err = repo.Append(ctx, draftFor("Bram", "see you tomorrow"))
	req.NoError(err)

	messages, err := repo.RangeQuery(ctx, FieldDescription, "miss", "miss"+search.PrefixSentinel)
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal("Ani", messages[0].Recipient)
}

func TestExactQuery_Does_Not_Match_Prefixes(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)
	withTickingClock(repo, time.Now().UTC())

	ctx := context.Background()
	for _, recipient := range []string{"Ani", "Anita"} {
		_, err := repo.Append(ctx, draftFor(recipient, "hello"))
		req.NoError(err)
	}

	messages, err := repo.ExactQuery(ctx, FieldRecipient, "ani")
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal("Ani", messages[0].Recipient)
}

func TestRoundTrip_Preserves_All_Fields(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)

	ctx := context.Background()
	draft := domain.Draft{
		Recipient:   "Ani",
		Description: "hello",
		TrackID:     "t1",
		TrackName:   "Song",
		ArtistName:  "Artist",
	}
	appended, err := repo.Append(ctx, draft)
	req.NoError(err)

	messages, err := repo.ExactQuery(ctx, FieldRecipient, "ani")
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal(appended, messages[0])
	req.Equal("t1", messages[0].TrackID)
	req.Equal("Song", messages[0].TrackName)
	req.Equal("Artist", messages[0].ArtistName)
}
