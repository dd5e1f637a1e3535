package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MrSnakeDoc/wirelink/internal/domain"
	"github.com/MrSnakeDoc/wirelink/internal/logger"
	"github.com/MrSnakeDoc/wirelink/internal/marker"
	"github.com/MrSnakeDoc/wirelink/internal/registry"
	"github.com/MrSnakeDoc/wirelink/internal/sources/worlds"
	"github.com/MrSnakeDoc/wirelink/internal/store/disk"
	"github.com/MrSnakeDoc/wirelink/internal/world"
)

type nopFirer struct{}

func (nopFirer) Fire(string) {}

type fakeService struct {
	mu      sync.Mutex
	started chan struct{}
	stopped chan struct{}
	stopErr error
}

func newFakeService() *fakeService {
	return &fakeService{started: make(chan struct{}), stopped: make(chan struct{})}
}

func (s *fakeService) Start() error {
	close(s.started)
	<-s.stopped
	return nil
}

func (s *fakeService) Stop(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	close(s.stopped)
	return s.stopErr
}

type fixture struct {
	ctrl    *Controller
	reg     *registry.Registry
	store   *disk.Store
	world   *world.Memory
	env     *marker.Env
	service *fakeService
	logs    *observer.ObservedLogs
}

var overworld = domain.WorldRef{Namespace: "minecraft", Name: "overworld"}

func newFixture(t *testing.T, fs afero.Fs) *fixture {
	t.Helper()
	store := disk.New(fs, "redstone")
	reg := registry.New()
	mem := world.NewMemory()
	env := &marker.Env{World: mem, Index: reg, Store: store, Webhooks: nopFirer{}}
	core, logs := observer.New(zapcore.DebugLevel)
	svc := newFakeService()

	return &fixture{
		ctrl:    New(env, store, reg, worlds.Default(), svc, logger.Wrap(zap.New(core))),
		reg:     reg,
		store:   store,
		world:   mem,
		env:     env,
		service: svc,
		logs:    logs,
	}
}

func seedEndpoint(t *testing.T, store *disk.Store, owner uuid.UUID, x int) uuid.UUID {
	t.Helper()
	rec := marker.Record{
		Kind:     domain.KindEndpoint,
		ID:       uuid.New(),
		Owner:    owner,
		World:    overworld,
		Position: domain.Position{X: x, Y: 64, Z: 0},
	}
	require.NoError(t, store.Write(rec.Kind, rec.ID.String(), marker.Encode(rec)))
	return rec.ID
}

func waitLoaded(t *testing.T, c *Controller) LoadResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := c.WaitLoaded(ctx)
	require.NoError(t, err)
	return res
}

func TestStart_CreatesLayoutAndLoads(t *testing.T) {
	fs := afero.NewMemMapFs()
	f := newFixture(t, fs)

	assert.Equal(t, Stopped, f.ctrl.State())
	assert.False(t, f.ctrl.Loaded())

	require.NoError(t, f.ctrl.Start(context.Background()))
	assert.Equal(t, Running, f.ctrl.State())
	<-f.service.started

	res := waitLoaded(t, f.ctrl)
	assert.Equal(t, LoadResult{}, res)
	assert.True(t, f.ctrl.Loaded())

	ok, err := afero.DirExists(fs, "redstone/endpoints")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.ErrorIs(t, f.ctrl.Start(context.Background()), ErrAlreadyStarted)

	require.NoError(t, f.ctrl.Stop(context.Background()))
	assert.Equal(t, Stopped, f.ctrl.State())
	assert.ErrorIs(t, f.ctrl.Stop(context.Background()), ErrNotRunning)
}

func TestStart_LayoutFailureIsFatal(t *testing.T) {
	f := newFixture(t, afero.NewReadOnlyFs(afero.NewMemMapFs()))

	err := f.ctrl.Start(context.Background())
	require.Error(t, err)
	assert.Equal(t, Stopped, f.ctrl.State())
	assert.ErrorIs(t, f.ctrl.Stop(context.Background()), ErrNotRunning)
}

func TestLoad_SkipsCorruptRecord(t *testing.T) {
	fs := afero.NewMemMapFs()
	f := newFixture(t, fs)
	require.NoError(t, f.store.EnsureLayout())

	owner := uuid.New()
	for i := 0; i < 9; i++ {
		seedEndpoint(t, f.store, owner, i)
	}
	require.NoError(t, afero.WriteFile(fs, "redstone/endpoints/"+uuid.NewString(), []byte("garbage,,("), 0o644))

	require.NoError(t, f.ctrl.Start(context.Background()))
	res := waitLoaded(t, f.ctrl)

	assert.Equal(t, LoadResult{Endpoints: 9, Skipped: 1}, res)
	endpoints, _ := f.reg.Counts()
	assert.Equal(t, 9, endpoints)
	assert.Equal(t, 1, f.logs.FilterMessage("skipping unreadable record").Len())
}

func TestLoad_RejectsUnknownWorldAndMismatchedName(t *testing.T) {
	fs := afero.NewMemMapFs()
	f := newFixture(t, fs)
	require.NoError(t, f.store.EnsureLayout())

	good := seedEndpoint(t, f.store, uuid.New(), 0)

	nether := marker.Record{Kind: domain.KindEndpoint, ID: uuid.New(), Owner: uuid.New(),
		World: domain.WorldRef{Namespace: "overworld", Name: "minecraft"}}
	require.NoError(t, f.store.Write(domain.KindEndpoint, nether.ID.String(), marker.Encode(nether)))

	renamed := marker.Record{Kind: domain.KindWaypoint, ID: uuid.New(), Owner: uuid.New(), World: overworld, URL: "http://x"}
	require.NoError(t, f.store.Write(domain.KindWaypoint, uuid.NewString(), marker.Encode(renamed)))

	require.NoError(t, f.ctrl.Start(context.Background()))
	res := waitLoaded(t, f.ctrl)

	assert.Equal(t, LoadResult{Endpoints: 1, Skipped: 2}, res)
	_, ok := f.reg.FindEndpointByID(good)
	assert.True(t, ok)
}

func TestLoad_WaypointsAndHooks(t *testing.T) {
	fs := afero.NewMemMapFs()
	f := newFixture(t, fs)
	require.NoError(t, f.store.EnsureLayout())

	wp := marker.Record{Kind: domain.KindWaypoint, ID: uuid.New(), Owner: uuid.New(), World: overworld, URL: "http://a,b"}
	require.NoError(t, f.store.Write(wp.Kind, wp.ID.String(), marker.Encode(wp)))

	hookRan := make(chan int, 1)
	f.ctrl.OnLoaded(func(context.Context) {
		_, n := f.reg.Counts()
		hookRan <- n
	})

	require.NoError(t, f.ctrl.Start(context.Background()))
	select {
	case n := <-hookRan:
		assert.Equal(t, 1, n)
	case <-time.After(5 * time.Second):
		t.Fatal("hook did not run")
	}

	got, ok := f.reg.FindWaypointByID(wp.ID)
	require.True(t, ok)
	assert.Equal(t, "http://a,b", got.URL())
	// loading does not touch the world
	assert.Equal(t, domain.MaterialAir, f.world.BlockAt(got.Location()))
}

func TestPresence(t *testing.T) {
	f := newFixture(t, afero.NewMemMapFs())
	require.NoError(t, f.store.EnsureLayout())

	alice := domain.Player{ID: uuid.New(), Name: "alice", World: overworld}
	bob := domain.Player{ID: uuid.New(), Name: "bob", World: overworld}

	a1 := f.env.NewEndpoint(uuid.New(), alice.ID, domain.Location{World: overworld, Position: domain.Position{X: 1}})
	a2 := f.env.NewEndpoint(uuid.New(), alice.ID, domain.Location{World: overworld, Position: domain.Position{X: 2}})
	b1 := f.env.NewEndpoint(uuid.New(), bob.ID, domain.Location{World: overworld, Position: domain.Position{X: 3}})
	for _, e := range []*marker.Endpoint{a1, a2, b1} {
		require.NoError(t, e.Save())
		e.Place()
	}

	assert.Equal(t, 2, f.ctrl.PlayerJoin(alice))
	_, ok := f.ctrl.Online(alice.ID)
	assert.True(t, ok)

	for _, e := range []*marker.Endpoint{a1, a2} {
		_, err := e.Toggle(context.Background())
		assert.NoError(t, err)
	}
	_, err := b1.Toggle(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotLoaded)

	assert.Equal(t, 2, f.ctrl.PlayerDisconnect(alice.ID))
	_, ok = f.ctrl.Online(alice.ID)
	assert.False(t, ok)
	_, err = a1.Toggle(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotLoaded)
	assert.Equal(t, domain.MaterialAir, f.world.BlockAt(a1.Location()))
	assert.Equal(t, domain.EndpointInactive, f.world.BlockAt(b1.Location()))
}

func TestLoad_AttachesOwnersAlreadyOnline(t *testing.T) {
	fs := afero.NewMemMapFs()
	f := newFixture(t, fs)
	require.NoError(t, f.store.EnsureLayout())

	owner := domain.Player{ID: uuid.New(), Name: "early", World: overworld}
	id := seedEndpoint(t, f.store, owner.ID, 7)

	// the player joins before the records are loaded
	assert.Equal(t, 0, f.ctrl.PlayerJoin(owner))

	require.NoError(t, f.ctrl.Start(context.Background()))
	waitLoaded(t, f.ctrl)

	e, ok := f.reg.FindEndpointByID(id)
	require.True(t, ok)
	p, attached := e.Attached()
	require.True(t, attached)
	assert.Equal(t, owner.ID, p.ID)
}

func TestStop_ReportsServiceError(t *testing.T) {
	f := newFixture(t, afero.NewMemMapFs())
	f.service.stopErr = errors.New("boom")

	require.NoError(t, f.ctrl.Start(context.Background()))
	<-f.service.started

	err := f.ctrl.Stop(context.Background())
	assert.ErrorContains(t, err, "boom")
	assert.Equal(t, Stopped, f.ctrl.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "stopped", Stopped.String())
	assert.Equal(t, "starting", Starting.String())
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "stopping", Stopping.String())
	assert.Equal(t, "state(9)", State(9).String())
}

func TestStart_LoadsRecordsInJournaledWorlds(t *testing.T) {
	fs := afero.NewMemMapFs()
	mines := domain.WorldRef{Namespace: "custom", Name: "mines"}
	owner := uuid.New()

	first := worlds.Default()
	_, err := first.Attach(worlds.NewDataJournal(fs, "redstone"))
	require.NoError(t, err)
	require.NoError(t, first.Add(mines))

	store := disk.New(fs, "redstone")
	require.NoError(t, store.EnsureLayout())
	rec := marker.Record{Kind: domain.KindEndpoint, ID: uuid.New(), Owner: owner, World: mines}
	require.NoError(t, store.Write(rec.Kind, rec.ID.String(), marker.Encode(rec)))

	// a fresh process starts from the default catalog plus the journal
	restarted := worlds.Default()
	n, err := restarted.Attach(worlds.NewDataJournal(fs, "redstone"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	reg := registry.New()
	env := &marker.Env{World: world.NewMemory(), Index: reg, Store: store, Webhooks: nopFirer{}}
	svc := newFakeService()
	ctrl := New(env, store, reg, restarted, svc, logger.Nop())

	require.NoError(t, ctrl.Start(context.Background()))
	res := waitLoaded(t, ctrl)
	assert.Equal(t, 1, res.Endpoints)
	assert.Zero(t, res.Skipped)
	_, ok := reg.FindEndpointByID(rec.ID)
	assert.True(t, ok)

	require.NoError(t, ctrl.Stop(context.Background()))
}
