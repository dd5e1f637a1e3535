package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/wirelink/internal/domain"
	"github.com/MrSnakeDoc/wirelink/internal/logger"
)

// DefaultOpTimeout bounds every best-effort write.
const DefaultOpTimeout = 2 * time.Second

// EndpointState is one row of a snapshot.
type EndpointState struct {
	ID      string
	Enabled bool
}

// Store mirrors marker events into Redis. Nothing here is authoritative:
// the disk store and the in-memory registry are.
type Store struct {
	client  *redis.Client
	logger  logger.Logger
	timeout time.Duration
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client, log logger.Logger) *Store {
	return &Store{
		client:  client,
		logger:  log,
		timeout: DefaultOpTimeout,
	}
}

// Publish implements marker.EventSink. Failures are logged and dropped.
func (s *Store) Publish(ctx context.Context, ev domain.Event) {
	if err := s.Record(ctx, ev); err != nil {
		s.logger.Warn("failed to mirror event to redis",
			logger.String("kind", string(ev.Kind)),
			logger.Stringer("id", ev.ID),
			logger.Error(err))
	}
}

// Record writes the event's side effects and publishes it.
func (s *Store) Record(ctx context.Context, ev domain.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	id := ev.ID.String()
	pipe := s.client.TxPipeline()
	switch ev.Action {
	case domain.ActionToggled:
		if ev.Enabled != nil {
			pipe.Set(ctx, EndpointKey(id), strconv.FormatBool(*ev.Enabled), 0)
			pipe.SAdd(ctx, AllEndpointsKey(), id)
		}
	case domain.ActionInvoked:
		pipe.Incr(ctx, WaypointInvocationsKey(id))
	}
	pipe.Publish(ctx, ChannelEvents, data)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}
	return nil
}

// Snapshot overwrites the stored state of every endpoint in states.
func (s *Store) Snapshot(ctx context.Context, states []EndpointState) error {
	if len(states) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for _, st := range states {
		pipe.Set(ctx, EndpointKey(st.ID), strconv.FormatBool(st.Enabled), 0)
		pipe.SAdd(ctx, AllEndpointsKey(), st.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save endpoint snapshot: %w", err)
	}
	return nil
}

// Ping reports whether Redis answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
