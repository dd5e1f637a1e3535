package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/MrSnakeDoc/wirelink/internal/domain"
	"github.com/MrSnakeDoc/wirelink/internal/logger"
	"github.com/MrSnakeDoc/wirelink/internal/marker"
	"github.com/MrSnakeDoc/wirelink/internal/registry"
	redisstore "github.com/MrSnakeDoc/wirelink/internal/store/redis"
	"github.com/MrSnakeDoc/wirelink/internal/world"
)

type recordingSnapshotter struct {
	calls  int
	states []redisstore.EndpointState
	err    error
}

func (r *recordingSnapshotter) Snapshot(_ context.Context, states []redisstore.EndpointState) error {
	r.calls++
	r.states = states
	return r.err
}

func TestRedisSyncer_Sync(t *testing.T) {
	reg := registry.New()
	mem := world.NewMemory()
	env := &marker.Env{World: mem, Index: reg}
	overworld := domain.WorldRef{Namespace: "minecraft", Name: "overworld"}

	snap := &recordingSnapshotter{}
	syncer := NewRedisSyncer(snap, reg, logger.Nop())

	syncer.Sync(context.Background())
	assert.Equal(t, 0, snap.calls)

	on := env.NewEndpoint(uuid.New(), uuid.New(), domain.Location{World: overworld, Position: domain.Position{X: 1}})
	mem.SetBlock(on.Location(), domain.EndpointActive)
	on.Load(domain.Player{ID: on.Owner()})
	off := env.NewEndpoint(uuid.New(), uuid.New(), domain.Location{World: overworld, Position: domain.Position{X: 2}})
	reg.Add(on)
	reg.Add(off)

	syncer.Sync(context.Background())
	assert.Equal(t, 1, snap.calls)
	assert.ElementsMatch(t, []redisstore.EndpointState{
		{ID: on.ID().String(), Enabled: true},
		{ID: off.ID().String(), Enabled: false},
	}, snap.states)

	snap.err = errors.New("redis down")
	syncer.Sync(context.Background())
	assert.Equal(t, 2, snap.calls)
}
