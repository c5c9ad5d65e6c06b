//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_store.go -package=mocks
package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"songnote/domain"
	"songnote/errors"
)

// Queryable message fields. Index values are lower-cased at write time so
// that range and exact scans over normalized query text match regardless
// of the casing the sender used.
const (
	FieldRecipient   = "recipient"
	FieldDescription = "description"
)

type IMessageStore interface {
	Append(ctx context.Context, draft domain.Draft) (domain.Message, error)
	RangeQuery(ctx context.Context, field, lower, upper string) ([]domain.Message, error)
	ExactQuery(ctx context.Context, field, value string) ([]domain.Message, error)
	Snapshot() ([]domain.Message, error)
}

// MessageRepository persists messages in BadgerDB and indexes their
// queryable fields in a Bluge index.
//
// Badger keys come in two families:
//  1. "msg:{timestamp_padded}:{uuid}" — 19-digit zero padding makes
//     lexicographical order chronological, so a reverse prefix scan yields
//     the newest-first feed snapshot.
//  2. "id:{uuid}" — direct lookup used to hydrate index search hits.
//
// The UUID inside the feed key disambiguates two messages appended at the
// same nanosecond.
type MessageRepository struct {
	db     *badger.DB
	index  *bluge.Writer
	log    *slog.Logger
	nowUTC func() time.Time
}

func NewMessageRepository(db *badger.DB, index *bluge.Writer, log *slog.Logger) *MessageRepository {
	return &MessageRepository{
		db:     db,
		index:  index,
		log:    log,
		nowUTC: func() time.Time { return time.Now().UTC() },
	}
}

// messageRecord is the flat field map stored as the Badger value.
type messageRecord struct {
	ID          string `json:"id"`
	Recipient   string `json:"recipient"`
	Description string `json:"description"`
	TrackID     string `json:"trackId"`
	TrackName   string `json:"trackName"`
	ArtistName  string `json:"artistName"`
	CreatedAt   int64  `json:"createdAt"` // UnixNano, keeps the instant unrounded
}

// Append stores a new message with an assigned id and creation instant,
// then indexes its queryable fields. A message that fails either write is
// reported as failed, never as silently persisted.
func (m *MessageRepository) Append(ctx context.Context, draft domain.Draft) (domain.Message, error) {
	if err := draft.Validate(); err != nil {
		return domain.Message{}, err
	}

	message := domain.Message{
		ID:          uuid.New(),
		Recipient:   draft.Recipient,
		Description: draft.Description,
		TrackID:     draft.TrackID,
		TrackName:   draft.TrackName,
		ArtistName:  draft.ArtistName,
		CreatedAt:   m.nowUTC(),
	}

	bytes, err := json.Marshal(fromMessage(message))
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrWrite, err)
	}

	feedKey := fmt.Sprintf("msg:%019d:%s", message.CreatedAt.UnixNano(), message.ID)
	idKey := "id:" + message.ID.String()

	err = m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(feedKey), bytes); err != nil {
			return err
		}
		return txn.Set([]byte(idKey), bytes)
	})
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrWrite, err)
	}

	if err := m.indexMessage(message); err != nil {
		return domain.Message{}, fmt.Errorf("%w: index: %v", errors.ErrWrite, err)
	}
	return message, nil
}

func (m *MessageRepository) indexMessage(message domain.Message) error {
	doc := bluge.NewDocument(message.ID.String())
	doc.AddField(bluge.NewKeywordField(FieldRecipient, strings.ToLower(message.Recipient)))
	doc.AddField(bluge.NewKeywordField(FieldDescription, strings.ToLower(message.Description)))
	return m.index.Update(doc.ID(), doc)
}

// RangeQuery returns every message whose field value falls lexicographically
// within [lower, upper], both inclusive. With upper = lower + "" this
// is a "starts with lower" scan.
func (m *MessageRepository) RangeQuery(ctx context.Context, field, lower, upper string) ([]domain.Message, error) {
	query := bluge.NewTermRangeInclusiveQuery(lower, upper, true, true).SetField(field)
	ids, err := m.matchIDs(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("range query on %s: %w", field, err)
	}
	return m.hydrate(ids)
}

// ExactQuery returns every message whose field value equals the given value.
func (m *MessageRepository) ExactQuery(ctx context.Context, field, value string) ([]domain.Message, error) {
	query := bluge.NewTermQuery(value).SetField(field)
	ids, err := m.matchIDs(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("exact query on %s: %w", field, err)
	}
	return m.hydrate(ids)
}

func (m *MessageRepository) matchIDs(ctx context.Context, query bluge.Query) ([]string, error) {
	reader, err := m.index.Reader()
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	iterator, err := reader.Search(ctx, bluge.NewAllMatches(query))
	if err != nil {
		return nil, err
	}

	var ids []string
	match, err := iterator.Next()
	for err == nil && match != nil {
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				ids = append(ids, string(value))
			}
			return true
		})
		if visitErr != nil {
			return nil, visitErr
		}
		match, err = iterator.Next()
	}
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (m *MessageRepository) hydrate(ids []string) ([]domain.Message, error) {
	var messages []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			item, err := txn.Get([]byte("id:" + id))
			if err != nil {
				return fmt.Errorf("hydrate %s: %w", id, err)
			}
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			var record messageRecord
			if err := json.Unmarshal(value, &record); err != nil {
				return err
			}
			message, err := toMessage(record)
			if err != nil {
				return err
			}
			messages = append(messages, message)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// Snapshot returns the full message set ordered newest-first by creation
// time. Thanks to the padded timestamp in the feed key, a reverse prefix
// scan delivers the order for free.
func (m *MessageRepository) Snapshot() ([]domain.Message, error) {
	var messages []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte("msg:")
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the newest possible key, then walk back in time.
		seekKey := append([]byte{}, prefix...)
		seekKey = append(seekKey, []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			var record messageRecord
			err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &record)
			})
			if err != nil {
				return err
			}
			message, err := toMessage(record)
			if err != nil {
				return err
			}
			messages = append(messages, message)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func fromMessage(message domain.Message) messageRecord {
	return messageRecord{
		ID:          message.ID.String(),
		Recipient:   message.Recipient,
		Description: message.Description,
		TrackID:     message.TrackID,
		TrackName:   message.TrackName,
		ArtistName:  message.ArtistName,
		CreatedAt:   message.CreatedAt.UnixNano(),
	}
}

func toMessage(record messageRecord) (domain.Message, error) {
	parsedID, err := uuid.Parse(record.ID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:          parsedID,
		Recipient:   record.Recipient,
		Description: record.Description,
		TrackID:     record.TrackID,
		TrackName:   record.TrackName,
		ArtistName:  record.ArtistName,
		CreatedAt:   time.Unix(0, record.CreatedAt).UTC(),
	}, nil
}
