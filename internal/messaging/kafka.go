package messaging

import (
	"context"
	"strconv"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaPublisher produces one record per message, keyed by changeset id so
// the changes of one changeset stay on one partition.
type KafkaPublisher struct {
	client *kgo.Client
}

// NewKafkaPublisher creates a client. Brokers are contacted lazily.
func NewKafkaPublisher(brokers []string, clientID string, opts ...kgo.Opt) (*KafkaPublisher, error) {
	opts = append([]kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(clientID),
		kgo.AllowAutoTopicCreation(),
	}, opts...)
	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, err
	}
	return &KafkaPublisher{client: client}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic string, msg Message) error {
	headers := make([]kgo.RecordHeader, 0, 3)
	for key, value := range msg.Headers() {
		headers = append(headers, kgo.RecordHeader{Key: key, Value: []byte(value)})
	}
	record := &kgo.Record{
		Topic:   topic,
		Key:     []byte(strconv.FormatInt(msg.ChangesetID, 10)),
		Value:   msg.Payload,
		Headers: headers,
	}
	return p.client.ProduceSync(ctx, record).FirstErr()
}

func (p *KafkaPublisher) Name() string { return "kafka" }

func (p *KafkaPublisher) Close() error {
	p.client.Close()
	return nil
}
