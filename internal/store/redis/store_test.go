package redis

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MrSnakeDoc/wirelink/internal/domain"
	"github.com/MrSnakeDoc/wirelink/internal/logger"
)

// unreachable returns a client pointed at a port nothing listens on.
func unreachable() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestPublish_SwallowsFailures(t *testing.T) {
	client := unreachable()
	defer client.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	s := NewStore(client, logger.Wrap(zap.New(core)))

	enabled := true
	s.Publish(context.Background(), domain.Event{
		Kind:    domain.KindEndpoint,
		Action:  domain.ActionToggled,
		ID:      uuid.New(),
		Enabled: &enabled,
		At:      time.Now(),
	})

	assert.Equal(t, 1, logs.FilterMessage("failed to mirror event to redis").Len())
}

func TestPublish_IgnoresCancelledCaller(t *testing.T) {
	client := unreachable()
	defer client.Close()

	s := NewStore(client, logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Record(ctx, domain.Event{Kind: domain.KindWaypoint, Action: domain.ActionInvoked, ID: uuid.New()})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, context.Canceled)
}

func TestSnapshot_Empty(t *testing.T) {
	client := unreachable()
	defer client.Close()

	s := NewStore(client, logger.Nop())
	assert.NoError(t, s.Snapshot(context.Background(), nil))
	assert.Error(t, s.Snapshot(context.Background(), []EndpointState{{ID: "x", Enabled: true}}))
	assert.Error(t, s.Ping(context.Background()))
}
