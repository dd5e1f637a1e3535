package scheduler

import (
	"context"

	"github.com/MrSnakeDoc/wirelink/internal/logger"
	"github.com/MrSnakeDoc/wirelink/internal/marker"
	redisstore "github.com/MrSnakeDoc/wirelink/internal/store/redis"
)

// EndpointLister returns every registered endpoint.
type EndpointLister interface {
	Endpoints() []*marker.Endpoint
}

// Snapshotter receives the endpoint states.
type Snapshotter interface {
	Snapshot(ctx context.Context, states []redisstore.EndpointState) error
}

// RedisSyncer copies the state of every endpoint to Redis once the
// registry has been loaded from disk.
type RedisSyncer struct {
	store    Snapshotter
	registry EndpointLister
	logger   logger.Logger
}

// NewRedisSyncer creates a new Redis syncer
func NewRedisSyncer(
	store Snapshotter,
	reg EndpointLister,
	log logger.Logger,
) *RedisSyncer {
	return &RedisSyncer{
		store:    store,
		registry: reg,
		logger:   log,
	}
}

// Sync writes the snapshot. It has the signature of a lifecycle load hook.
func (rs *RedisSyncer) Sync(ctx context.Context) {
	endpoints := rs.registry.Endpoints()
	if len(endpoints) == 0 {
		rs.logger.Info("no endpoints to sync to redis")
		return
	}

	states := make([]redisstore.EndpointState, 0, len(endpoints))
	for _, e := range endpoints {
		states = append(states, redisstore.EndpointState{ID: e.ID().String(), Enabled: e.Enabled()})
	}

	if err := rs.store.Snapshot(ctx, states); err != nil {
		rs.logger.Warn("failed to sync endpoints to redis", logger.Error(err))
		return
	}

	rs.logger.Info("synced endpoints to redis", logger.Int("count", len(states)))
}
