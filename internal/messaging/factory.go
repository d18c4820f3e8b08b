package messaging

import (
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/pdc-service/internal/config"
	"github.com/spec-kit/pdc-service/internal/persistence"
)

// New builds the publisher selected by cfg.Backend. The redis backend reuses
// the shared client unless a dedicated address is configured.
func New(cfg config.MessageBusConfig, shared *persistence.Redis, logger *zap.Logger) (Publisher, error) {
	var (
		publisher Publisher
		err       error
	)
	switch cfg.Backend {
	case "", config.BusNone:
		publisher = NewNoopPublisher()
	case config.BusMemory:
		publisher = NewMemoryBus()
	case config.BusRedis:
		publisher, err = newRedis(cfg, shared)
	case config.BusAMQP:
		publisher = NewAMQPPublisher(AMQPConfig{
			URL:          cfg.AMQPURL,
			Exchange:     cfg.AMQPExchange,
			ExchangeType: cfg.AMQPExchangeType,
			Durable:      cfg.AMQPDurable,
		}, logger)
	case config.BusSTOMP:
		publisher, err = NewSTOMPPublisher(STOMPConfig{
			Hosts:             cfg.STOMPHosts,
			DestinationPrefix: cfg.STOMPDestinationPrefix,
			CertFile:          cfg.STOMPCertFile,
			KeyFile:           cfg.STOMPKeyFile,
			Login:             cfg.STOMPLogin,
			Passcode:          cfg.STOMPPasscode,
		}, logger)
	case config.BusKafka:
		publisher, err = NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaClientID)
	default:
		err = fmt.Errorf("unknown message bus backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("message bus configured", zap.String("backend", publisher.Name()), zap.String("topic", cfg.Topic))
	return publisher, nil
}

func newRedis(cfg config.MessageBusConfig, shared *persistence.Redis) (Publisher, error) {
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DialTimeout: 5 * time.Second})
		return NewRedisPublisher(client, true), nil
	}
	if shared.Enabled() {
		return NewRedisPublisher(shared.Client, false), nil
	}
	return nil, errors.New("redis message bus needs MESSAGE_BUS_REDIS_ADDR or REDIS_ADDR")
}
