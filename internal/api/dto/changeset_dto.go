package dto

import (
	"encoding/json"
	"time"

	"github.com/spec-kit/pdc-service/internal/domain"
)

// ChangeResponse renders one change.
type ChangeResponse struct {
	ModelName string          `json:"resource"`
	ObjectID  int64           `json:"object_id"`
	OldValue  json.RawMessage `json:"old_value"`
	NewValue  json.RawMessage `json:"new_value"`
}

// ChangesetResponse renders a changeset.
type ChangesetResponse struct {
	ID          int64            `json:"id"`
	Author      string           `json:"author"`
	Comment     string           `json:"comment"`
	RequestID   string           `json:"request_id,omitempty"`
	CommittedAt time.Time        `json:"committed_on"`
	Changes     []ChangeResponse `json:"changes"`
}

func NewChangesetResponse(cs domain.Changeset) ChangesetResponse {
	out := ChangesetResponse{
		ID:          cs.ID,
		Author:      cs.Author,
		Comment:     cs.Comment,
		RequestID:   cs.RequestID,
		CommittedAt: cs.CommittedAt,
		Changes:     make([]ChangeResponse, 0, len(cs.Changes)),
	}
	for _, ch := range cs.Changes {
		out.Changes = append(out.Changes, newChangeResponse(ch))
	}
	return out
}

func newChangeResponse(ch domain.Change) ChangeResponse {
	return ChangeResponse{ModelName: ch.ModelName, ObjectID: ch.ObjectID, OldValue: nullIfEmpty(ch.OldValue), NewValue: nullIfEmpty(ch.NewValue)}
}

// HistoryEntry renders one change of an object history.
type HistoryEntry struct {
	ChangesetID int64     `json:"changeset_id"`
	Author      string    `json:"author"`
	Comment     string    `json:"comment"`
	CommittedAt time.Time `json:"committed_on"`
	ChangeResponse
}

func NewHistoryEntry(oc domain.ObjectChange) HistoryEntry {
	return HistoryEntry{
		ChangesetID:    oc.ChangesetID,
		Author:         oc.Author,
		Comment:        oc.Comment,
		CommittedAt:    oc.CommittedAt,
		ChangeResponse: newChangeResponse(oc.Change),
	}
}

func nullIfEmpty(v json.RawMessage) json.RawMessage {
	if len(v) == 0 {
		return domain.NoneValue
	}
	return v
}
