// Package changeset groups the changes made while serving one request into a
// single audit record that commits atomically with the domain writes.
package changeset

import (
	"context"
	"errors"
	"fmt"

	"github.com/spec-kit/pdc-service/internal/domain"
)

var (
	// ErrNoChangeset is returned when a mutation is recorded outside a unit of work.
	ErrNoChangeset = errors.New("no changeset open for this request")
	// ErrRollback asks the lifecycle to discard the unit of work without
	// surfacing an error of its own.
	ErrRollback = errors.New("changeset rolled back")
)

// State is the position of a handle in its lifecycle.
type State int

const (
	Idle State = iota
	Accumulating
	Committing
	Committed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Accumulating:
		return "accumulating"
	case Committing:
		return "committing"
	case Committed:
		return "committed"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// RequestInfo identifies the request a changeset belongs to.
type RequestInfo struct {
	Author    string
	RequestID string
	Comment   string
}

// Handle is the in-memory accumulator of one request. It is owned by the
// request goroutine and is not safe for concurrent use.
type Handle struct {
	info        RequestInfo
	state       State
	changes     []domain.Change
	afterCommit []func(context.Context)
	committed   *domain.Changeset
}

// Add appends a change in mutation order.
func (h *Handle) Add(change domain.Change) error {
	switch h.state {
	case Idle:
		h.state = Accumulating
	case Accumulating:
	default:
		return fmt.Errorf("add %s %d: changeset is %s", change.ModelName, change.ObjectID, h.state)
	}
	h.changes = append(h.changes, change)
	return nil
}

// AfterCommit registers fn to run once the enclosing transaction is durable.
// Callbacks are dropped if the unit of work fails.
func (h *Handle) AfterCommit(fn func(context.Context)) {
	h.afterCommit = append(h.afterCommit, fn)
}

func (h *Handle) Info() RequestInfo { return h.info }
func (h *Handle) State() State      { return h.state }
func (h *Handle) Len() int          { return len(h.changes) }

// Changes returns a copy of the accumulated changes.
func (h *Handle) Changes() []domain.Change {
	out := make([]domain.Change, len(h.changes))
	copy(out, h.changes)
	return out
}

// Committed returns the stored changeset once the handle reached Committed.
func (h *Handle) Committed() *domain.Changeset {
	if h.state != Committed {
		return nil
	}
	return h.committed
}

func (h *Handle) fail() {
	h.state = Failed
	h.changes = nil
	h.afterCommit = nil
	h.committed = nil
}

func (h *Handle) markCommitted(ctx context.Context) {
	h.state = Committed
	callbacks := h.afterCommit
	h.afterCommit = nil
	for _, fn := range callbacks {
		fn(ctx)
	}
}

type handleKey struct{}

// FromContext returns the handle opened for the current request.
func FromContext(ctx context.Context) (*Handle, bool) {
	h, ok := ctx.Value(handleKey{}).(*Handle)
	return h, ok
}
