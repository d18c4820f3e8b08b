package messaging

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// AMQPConfig describes the exchange messages are published to. The topic is
// used as routing key.
type AMQPConfig struct {
	URL          string
	Exchange     string
	ExchangeType string
	Durable      bool
}

// AMQPPublisher publishes to an AMQP 0-9-1 exchange. An amqp channel is not
// safe for concurrent publishing, so calls are serialized. The connection is
// opened on first use and reopened after a failure; the handshake ends at the
// caller's context deadline.
type AMQPPublisher struct {
	cfg    AMQPConfig
	logger *zap.Logger

	sem     *semaphore.Weighted
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewAMQPPublisher(cfg AMQPConfig, logger *zap.Logger) *AMQPPublisher {
	return &AMQPPublisher{cfg: cfg, logger: logger.Named("amqp"), sem: semaphore.NewWeighted(1)}
}

func (p *AMQPPublisher) Publish(ctx context.Context, topic string, msg Message) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)

	if err := p.ensure(ctx); err != nil {
		return err
	}

	headers := amqp.Table{}
	for key, value := range msg.Headers() {
		headers[key] = value
	}
	err := p.channel.PublishWithContext(ctx, p.cfg.Exchange, topic, false, false, amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    msg.ID,
		Timestamp:    time.Now().UTC(),
		DeliveryMode: amqp.Persistent,
		Headers:      headers,
		Body:         msg.Payload,
	})
	if err != nil {
		p.reset()
		return err
	}
	return nil
}

func (p *AMQPPublisher) ensure(ctx context.Context) error {
	if p.channel != nil && !p.channel.IsClosed() && p.conn != nil && !p.conn.IsClosed() {
		return nil
	}
	p.reset()

	budget, err := connectBudget(ctx)
	if err != nil {
		return err
	}
	conn, err := amqp.DialConfig(p.cfg.URL, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(budget),
	})
	if err != nil {
		return fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(p.cfg.Exchange, p.cfg.ExchangeType, p.cfg.Durable, false, false, false, nil); err != nil {
		_ = conn.Close()
		return fmt.Errorf("declare exchange %s: %w", p.cfg.Exchange, err)
	}
	p.conn, p.channel = conn, ch
	p.logger.Info("amqp connected", zap.String("exchange", p.cfg.Exchange))
	return nil
}

func (p *AMQPPublisher) reset() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.channel = nil, nil
}

func (p *AMQPPublisher) Name() string { return "amqp" }

func (p *AMQPPublisher) Close() error {
	if err := p.sem.Acquire(context.Background(), 1); err != nil {
		return err
	}
	defer p.sem.Release(1)
	p.reset()
	return nil
}
