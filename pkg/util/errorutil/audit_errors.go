package errorutil

import "fmt"

// IntegrityError reports a base record whose type tag points at a subtype row
// that cannot be loaded. It aborts the enclosing mutation.
type IntegrityError struct {
	Model    string
	ObjectID int64
	TypeTag  string
	Err      error
}

func (e *IntegrityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("integrity error: %s %d tagged %q: %v", e.Model, e.ObjectID, e.TypeTag, e.Err)
	}
	return fmt.Sprintf("integrity error: %s %d tagged %q", e.Model, e.ObjectID, e.TypeTag)
}

func (e *IntegrityError) Unwrap() error { return e.Err }

// CommitError reports that domain writes and their changeset could not be
// committed together. Nothing from the request is kept.
type CommitError struct {
	Err error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit changeset: %v", e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }

// PublishError reports a failed bus delivery for an already committed changeset.
type PublishError struct {
	ChangesetID int64
	Backend     string
	Topic       string
	Err         error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish changeset %d to %s via %s: %v", e.ChangesetID, e.Topic, e.Backend, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// AlertDeliveryError reports a failed operator alert.
type AlertDeliveryError struct {
	ChangesetID int64
	Channel     string
	Err         error
}

func (e *AlertDeliveryError) Error() string {
	return fmt.Sprintf("deliver %s alert for changeset %d: %v", e.Channel, e.ChangesetID, e.Err)
}

func (e *AlertDeliveryError) Unwrap() error { return e.Err }
