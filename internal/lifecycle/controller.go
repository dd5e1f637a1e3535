// Package lifecycle drives startup, shutdown and player presence.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/wirelink/internal/domain"
	"github.com/MrSnakeDoc/wirelink/internal/logger"
	"github.com/MrSnakeDoc/wirelink/internal/marker"
	"github.com/MrSnakeDoc/wirelink/internal/store/disk"
)

// State of the controller.
type State int32

const (
	Stopped State = iota
	Starting
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

var (
	ErrAlreadyStarted = errors.New("controller already started")
	ErrNotRunning     = errors.New("controller is not running")
)

// Store is the part of the disk store the controller reads.
type Store interface {
	EnsureLayout() error
	List(kind domain.Kind) ([]disk.Entry, error)
}

// Owners looks up endpoints by owner.
type Owners interface {
	EndpointsOwnedBy(owner uuid.UUID) []*marker.Endpoint
}

// Service is the HTTP front. Start blocks until the service stops.
type Service interface {
	Start() error
	Stop(ctx context.Context) error
}

// LoadedHook runs once the bulk load has finished.
type LoadedHook func(ctx context.Context)

// LoadResult summarizes a bulk load.
type LoadResult struct {
	Endpoints int
	Waypoints int
	Skipped   int
}

// Controller owns the startup sequence and ties endpoint load state to
// player presence.
type Controller struct {
	env     *marker.Env
	store   Store
	owners  Owners
	worlds  marker.WorldResolver
	service Service
	log     logger.Logger

	mu      sync.Mutex
	state   State
	started bool
	hooks   []LoadedHook
	errCh   chan error

	// presence serializes joins, disconnects and the attach step of the
	// bulk load so an endpoint is never attached to a player who left.
	presence sync.Mutex
	online   map[uuid.UUID]domain.Player

	loaded   atomic.Bool
	loadDone chan struct{}
	result   LoadResult
}

// New creates a stopped controller.
func New(env *marker.Env, store Store, owners Owners, worlds marker.WorldResolver, service Service, log logger.Logger) *Controller {
	return &Controller{
		env:      env,
		store:    store,
		owners:   owners,
		worlds:   worlds,
		service:  service,
		log:      log,
		errCh:    make(chan error, 1),
		online:   make(map[uuid.UUID]domain.Player),
		loadDone: make(chan struct{}),
	}
}

// OnLoaded registers a hook that runs after the bulk load.
func (c *Controller) OnLoaded(h LoadedHook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, h)
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Loaded reports whether the bulk load has finished.
func (c *Controller) Loaded() bool {
	return c.loaded.Load()
}

// WaitLoaded blocks until the bulk load finished or ctx is done.
func (c *Controller) WaitLoaded(ctx context.Context) (LoadResult, error) {
	select {
	case <-c.loadDone:
		return c.result, nil
	case <-ctx.Done():
		return LoadResult{}, ctx.Err()
	}
}

// Errors delivers a service failure, if one happens.
func (c *Controller) Errors() <-chan error {
	return c.errCh
}

// Start creates the data layout, then loads every record in the
// background while the service starts. A layout failure is returned and
// leaves the controller stopped.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.started = true
	c.state = Starting
	hooks := append([]LoadedHook(nil), c.hooks...)
	c.mu.Unlock()

	if err := c.store.EnsureLayout(); err != nil {
		c.setState(Stopped)
		return fmt.Errorf("failed to prepare data directory: %w", err)
	}

	c.setState(Running)

	go c.loadAll(ctx, hooks)

	if c.service != nil {
		go func() {
			if err := c.service.Start(); err != nil {
				c.errCh <- fmt.Errorf("http service error: %w", err)
			}
		}()
	}
	return nil
}

// Stop stops accepting requests. In-flight requests may complete within
// ctx; the bulk load is not cancelled.
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.state != Running {
		c.mu.Unlock()
		return ErrNotRunning
	}
	c.state = Stopping
	c.mu.Unlock()

	var err error
	if c.service != nil {
		err = c.service.Stop(ctx)
	}
	c.setState(Stopped)
	if err != nil {
		return fmt.Errorf("failed to stop http service: %w", err)
	}
	return nil
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// PlayerJoin loads every endpoint owned by player.
func (c *Controller) PlayerJoin(player domain.Player) int {
	c.presence.Lock()
	defer c.presence.Unlock()

	c.online[player.ID] = player
	endpoints := c.owners.EndpointsOwnedBy(player.ID)
	for _, e := range endpoints {
		e.Load(player)
	}

	c.log.Info("player joined",
		logger.Stringer("player", player.ID),
		logger.String("name", player.Name),
		logger.Int("endpoints", len(endpoints)))
	return len(endpoints)
}

// PlayerDisconnect unloads every endpoint owned by the player.
func (c *Controller) PlayerDisconnect(id uuid.UUID) int {
	c.presence.Lock()
	defer c.presence.Unlock()

	delete(c.online, id)
	endpoints := c.owners.EndpointsOwnedBy(id)
	for _, e := range endpoints {
		e.Unload()
	}

	c.log.Info("player left",
		logger.Stringer("player", id),
		logger.Int("endpoints", len(endpoints)))
	return len(endpoints)
}

// Online returns the player if they are connected.
func (c *Controller) Online(id uuid.UUID) (domain.Player, bool) {
	c.presence.Lock()
	defer c.presence.Unlock()
	p, ok := c.online[id]
	return p, ok
}

func (c *Controller) loadAll(ctx context.Context, hooks []LoadedHook) {
	var (
		g       errgroup.Group
		counts  [2]int
		skipped [2]int
	)
	for i, kind := range domain.Kinds {
		i, kind := i, kind
		g.Go(func() error {
			n, s, err := c.loadKind(kind)
			counts[i], skipped[i] = n, s
			return err
		})
	}
	if err := g.Wait(); err != nil {
		c.log.Error("bulk load incomplete", logger.Error(err))
	}

	c.result = LoadResult{
		Endpoints: counts[0],
		Waypoints: counts[1],
		Skipped:   skipped[0] + skipped[1],
	}
	c.loaded.Store(true)
	close(c.loadDone)

	c.log.Info("markers loaded",
		logger.Int("endpoints", c.result.Endpoints),
		logger.Int("waypoints", c.result.Waypoints),
		logger.Int("skipped", c.result.Skipped))

	for _, h := range hooks {
		h(ctx)
	}
}

// loadKind indexes every decodable record of kind. A bad file is logged
// and skipped; an unreadable directory aborts this kind only.
func (c *Controller) loadKind(kind domain.Kind) (loaded, skipped int, err error) {
	entries, err := c.store.List(kind)
	if err != nil {
		return 0, 0, fmt.Errorf("load %ss: %w", kind, err)
	}

	for _, entry := range entries {
		m, err := c.decode(kind, entry)
		if err != nil {
			skipped++
			c.log.Warn("skipping unreadable record",
				logger.String("kind", string(kind)),
				logger.String("file", entry.Name),
				logger.Error(err))
			continue
		}

		c.env.Index.Add(m)
		if e, ok := m.(*marker.Endpoint); ok {
			c.attachIfOnline(e)
		}
		loaded++
	}
	return loaded, skipped, nil
}

func (c *Controller) decode(kind domain.Kind, entry disk.Entry) (marker.Marker, error) {
	if entry.Err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIO, entry.Err)
	}
	rec, err := marker.Decode(kind, entry.Data, c.worlds)
	if err != nil {
		return nil, err
	}
	if rec.ID.String() != entry.Name {
		return nil, fmt.Errorf("%w: file name does not match id %s", domain.ErrDecode, rec.ID)
	}
	return c.env.New(rec)
}

func (c *Controller) attachIfOnline(e *marker.Endpoint) {
	c.presence.Lock()
	defer c.presence.Unlock()

	if p, ok := c.online[e.Owner()]; ok {
		e.Load(p)
	}
}
