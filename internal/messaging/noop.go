package messaging

import "context"

// NoopPublisher accepts every message and sends nothing. It is used when no
// bus is configured.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher { return &NoopPublisher{} }

func (NoopPublisher) Publish(context.Context, string, Message) error { return nil }
func (NoopPublisher) Name() string                                   { return "none" }
func (NoopPublisher) Close() error                                   { return nil }
