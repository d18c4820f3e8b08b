// Package messaging publishes committed changesets to a message bus. The
// backend is chosen once at startup; every backend is safe for concurrent use.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/pdc-service/internal/domain"
)

// Publisher delivers messages to one bus backend.
type Publisher interface {
	Publish(ctx context.Context, topic string, msg Message) error
	Name() string
	Close() error
}

// Message is one outbound notification.
type Message struct {
	ID          string
	ChangesetID int64
	Topic       string
	Payload     []byte
}

// Headers are attached by backends that support message metadata.
func (m Message) Headers() map[string]string {
	return map[string]string{
		"message_id":   m.ID,
		"changeset_id": strconv.FormatInt(m.ChangesetID, 10),
		"content_type": "application/json",
	}
}

// ChangePayload is the wire form of one change.
type ChangePayload struct {
	ModelName string          `json:"model_name"`
	ObjectID  int64           `json:"object_id"`
	OldValue  json.RawMessage `json:"old_value"`
	NewValue  json.RawMessage `json:"new_value"`
}

// ChangesetPayload is the transport independent body of every message.
type ChangesetPayload struct {
	ID          int64           `json:"id"`
	Author      string          `json:"author"`
	CommittedAt time.Time       `json:"committed_at"`
	Comment     string          `json:"comment,omitempty"`
	RequestID   string          `json:"request_id,omitempty"`
	Changes     []ChangePayload `json:"changes"`
}

// NewChangesetMessage serializes cs for topic.
func NewChangesetMessage(topic string, cs *domain.Changeset) (Message, error) {
	payload := ChangesetPayload{
		ID:          cs.ID,
		Author:      cs.Author,
		CommittedAt: cs.CommittedAt.UTC(),
		Comment:     cs.Comment,
		RequestID:   cs.RequestID,
		Changes:     make([]ChangePayload, 0, len(cs.Changes)),
	}
	for _, ch := range cs.Changes {
		payload.Changes = append(payload.Changes, ChangePayload{
			ModelName: ch.ModelName,
			ObjectID:  ch.ObjectID,
			OldValue:  orNull(ch.OldValue),
			NewValue:  orNull(ch.NewValue),
		})
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("encode changeset %d: %w", cs.ID, err)
	}
	return Message{
		ID:          uuid.NewString(),
		ChangesetID: cs.ID,
		Topic:       topic,
		Payload:     body,
	}, nil
}

// DecodeChangeset parses a message body.
func DecodeChangeset(body []byte) (ChangesetPayload, error) {
	var payload ChangesetPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return ChangesetPayload{}, fmt.Errorf("decode changeset payload: %w", err)
	}
	return payload, nil
}

func orNull(v json.RawMessage) json.RawMessage {
	if len(v) == 0 {
		return domain.NoneValue
	}
	return v
}
