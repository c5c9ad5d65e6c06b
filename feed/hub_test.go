package feed

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"songnote/domain"
)

type fakeSource struct {
	messages []domain.Message
	err      error
}

func (f *fakeSource) Snapshot() ([]domain.Message, error) {
	return f.messages, f.err
}

func newMessage(recipient string) domain.Message {
	return domain.Message{
		ID:        uuid.New(),
		Recipient: recipient,
		CreatedAt: time.Now().UTC(),
	}
}

func TestHub_Subscribe_Delivers_Initial_Snapshot_Once(t *testing.T) {
	req := require.New(t)
	source := &fakeSource{}
	hub := NewHub(source, slog.Default())

	var deliveries [][]domain.Message
	sub, err := hub.Subscribe(func(messages []domain.Message) {
		deliveries = append(deliveries, messages)
	})
	req.NoError(err)
	defer sub.Close()

	// Exactly one delivery, an empty list for an empty store
	req.Len(deliveries, 1)
	req.NotNil(deliveries[0])
	req.Empty(deliveries[0])
}

func TestHub_Broadcast_Redelivers_Full_Snapshot(t *testing.T) {
	req := require.New(t)
	source := &fakeSource{messages: []domain.Message{newMessage("Ani")}}
	hub := NewHub(source, slog.Default())

	var deliveries [][]domain.Message
	sub, err := hub.Subscribe(func(messages []domain.Message) {
		deliveries = append(deliveries, messages)
	})
	req.NoError(err)
	defer sub.Close()

	source.messages = append([]domain.Message{newMessage("Bram")}, source.messages...)
	hub.Broadcast()

	req.Len(deliveries, 2)
	req.Len(deliveries[0], 1)
	req.Len(deliveries[1], 2)
	req.Equal("Bram", deliveries[1][0].Recipient)
}

func TestHub_No_Delivery_After_Close(t *testing.T) {
	req := require.New(t)
	source := &fakeSource{}
	hub := NewHub(source, slog.Default())

	delivered := 0
	sub, err := hub.Subscribe(func([]domain.Message) { delivered++ })
	req.NoError(err)
	req.Equal(1, delivered)

	sub.Close()
	hub.Broadcast()
	req.Equal(1, delivered)

	// Close is idempotent
	sub.Close()
	hub.Broadcast()
	req.Equal(1, delivered)
}

func TestHub_Close_Only_Affects_Its_Own_Subscription(t *testing.T) {
	req := require.New(t)
	source := &fakeSource{}
	hub := NewHub(source, slog.Default())

	first, second := 0, 0
	sub1, err := hub.Subscribe(func([]domain.Message) { first++ })
	req.NoError(err)
	sub2, err := hub.Subscribe(func([]domain.Message) { second++ })
	req.NoError(err)
	defer sub2.Close()

	sub1.Close()
	hub.Broadcast()

	req.Equal(1, first)
	req.Equal(2, second)
}

func TestHub_Subscribe_Propagates_Snapshot_Failure(t *testing.T) {
	req := require.New(t)
	source := &fakeSource{err: fmt.Errorf("disk on fire")}
	hub := NewHub(source, slog.Default())

	_, err := hub.Subscribe(func([]domain.Message) {
		t.Fatal("no delivery expected on snapshot failure")
	})
	req.Error(err)
}
