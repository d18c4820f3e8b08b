package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MESSAGE_BUS_BACKEND", "")
	t.Setenv("CHANGESET_SIZE_ANNOUNCE", "")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BusNone, cfg.MessageBus.Backend)
	assert.Equal(t, "pdc.changes", cfg.MessageBus.Topic)
	assert.Equal(t, 2*time.Second, cfg.MessageBus.PublishTimeout())
	assert.Equal(t, 1000, cfg.Changeset.AnnounceThreshold)
	assert.Equal(t, "PDC-Change-Comment", cfg.Changeset.CommentHeader)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoad_MessageBusSettings(t *testing.T) {
	t.Setenv("MESSAGE_BUS_BACKEND", "STOMP")
	t.Setenv("MESSAGE_BUS_STOMP_HOSTS", "broker-a:61613, broker-b:61613,")
	t.Setenv("MESSAGE_BUS_PUBLISH_TIMEOUT_MS", "250")
	t.Setenv("CHANGESET_SIZE_ANNOUNCE", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BusSTOMP, cfg.MessageBus.Backend)
	assert.Equal(t, []string{"broker-a:61613", "broker-b:61613"}, cfg.MessageBus.STOMPHosts)
	assert.Equal(t, 250*time.Millisecond, cfg.MessageBus.PublishTimeout())
	assert.Zero(t, cfg.Changeset.AnnounceThreshold)
}

func TestLoad_RejectsInvalidBus(t *testing.T) {
	t.Setenv("MESSAGE_BUS_BACKEND", "carrier-pigeon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "carrier-pigeon")
}

func TestLoad_KafkaRequiresBrokers(t *testing.T) {
	t.Setenv("MESSAGE_BUS_BACKEND", "kafka")
	t.Setenv("MESSAGE_BUS_KAFKA_BROKERS", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_ServiceAccounts(t *testing.T) {
	t.Setenv("AUTH_SERVICE_ACCOUNTS", "releng:$2a$10$abc,qe:$2a$10$def")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"releng": "$2a$10$abc", "qe": "$2a$10$def"}, cfg.Auth.ServiceAccounts)

	t.Setenv("AUTH_SERVICE_ACCOUNTS", "broken")
	_, err = Load()
	require.Error(t, err)
}
