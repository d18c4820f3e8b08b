package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// NoneValue is stored as the missing side of a create or delete.
var NoneValue = json.RawMessage("null")

// Changeset is the audit unit of one request's mutations.
type Changeset struct {
	ID          int64
	Author      string
	RequestID   string
	Comment     string
	CommittedAt time.Time
	Changes     []Change
}

// Models lists the distinct model names touched, in first-change order.
func (cs *Changeset) Models() []string {
	seen := make(map[string]struct{}, len(cs.Changes))
	models := make([]string, 0, len(cs.Changes))
	for _, ch := range cs.Changes {
		if _, ok := seen[ch.ModelName]; ok {
			continue
		}
		seen[ch.ModelName] = struct{}{}
		models = append(models, ch.ModelName)
	}
	return models
}

// Change is one object's before/after pair inside a changeset.
type Change struct {
	ID          int64
	ChangesetID int64
	ModelName   string
	ObjectID    int64
	OldValue    json.RawMessage
	NewValue    json.RawMessage
}

// IsCreate reports a change whose old value is the none sentinel.
func (c Change) IsCreate() bool { return isNone(c.OldValue) && !isNone(c.NewValue) }

// IsDelete reports a change whose new value is the none sentinel.
func (c Change) IsDelete() bool { return !isNone(c.OldValue) && isNone(c.NewValue) }

// IsNoop reports an update whose values are identical.
func (c Change) IsNoop() bool { return bytes.Equal(c.OldValue, c.NewValue) }

func isNone(v json.RawMessage) bool {
	return len(v) == 0 || bytes.Equal(bytes.TrimSpace(v), NoneValue)
}

// ObjectChange is a change together with the metadata of its changeset, as
// returned by object history queries.
type ObjectChange struct {
	Change
	Author      string
	Comment     string
	CommittedAt time.Time
}

// ChangesetFilter narrows changeset listings.
type ChangesetFilter struct {
	Author       *string
	ChangedSince *time.Time
	ChangedUntil *time.Time
	Model        *string
	NewestFirst  bool
	Limit        int
	Offset       int
}

// SizeAlert is the operator notification for oversized changesets.
type SizeAlert struct {
	ChangesetID int64
	ChangeCount int
	Threshold   int
	Author      string
	Models      []string
	CommittedAt time.Time
}
