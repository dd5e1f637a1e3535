// Package command implements the /redstone player command.
package command

import (
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/wirelink/internal/domain"
	"github.com/MrSnakeDoc/wirelink/internal/logger"
	"github.com/MrSnakeDoc/wirelink/internal/marker"
	"github.com/MrSnakeDoc/wirelink/internal/world"
)

// Lookup finds the marker at a location.
type Lookup interface {
	FindByLocation(loc domain.Location) (marker.Marker, bool)
}

// Reply is what the issuing player sees.
type Reply struct {
	OK      bool      `json:"ok"`
	Message string    `json:"message"`
	ID      uuid.UUID `json:"id,omitzero"`
}

func fail(msg string) Reply { return Reply{Message: msg} }

// Frontend executes /redstone commands for a player.
// Calls are serialized, the same way a game server runs commands on one thread.
type Frontend struct {
	mu     sync.Mutex
	env    *marker.Env
	lookup Lookup
	inv    world.Inventory
	log    logger.Logger
	newID  func() uuid.UUID
}

// New creates a command front end.
func New(env *marker.Env, lookup Lookup, inv world.Inventory, log logger.Logger) *Frontend {
	return &Frontend{
		env:    env,
		lookup: lookup,
		inv:    inv,
		log:    log,
		newID:  uuid.New,
	}
}

// ExecuteLine splits a raw command line and runs it. A leading
// "/redstone" or "redstone" is optional.
func (f *Frontend) ExecuteLine(player domain.Player, line string) Reply {
	args := strings.Fields(line)
	if len(args) > 0 && strings.TrimPrefix(args[0], "/") == "redstone" {
		args = args[1:]
	}
	return f.Execute(player, args)
}

// Execute runs /redstone with args.
func (f *Frontend) Execute(player domain.Player, args []string) Reply {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(args) == 0 {
		return fail(MsgUsage)
	}

	switch args[0] {
	case "create":
		if len(args) < 2 {
			return fail(MsgUsage)
		}
		switch args[1] {
		case string(domain.KindEndpoint):
			return f.createEndpoint(player)
		case string(domain.KindWaypoint):
			if len(args) < 3 {
				return fail(MsgUsage)
			}
			return f.createWaypoint(player, args[2])
		default:
			return fail(MsgUsage)
		}
	case "delete":
		return f.delete(player)
	default:
		return fail(MsgUsage)
	}
}

func (f *Frontend) createEndpoint(player domain.Player) Reply {
	if !f.inv.HasItem(player.ID, domain.MaterialRedstoneBlock) ||
		!f.inv.HasItem(player.ID, domain.MaterialQuartzBlock) {
		return fail(MsgEndpointMaterials)
	}

	loc := player.Feet()
	if _, taken := f.lookup.FindByLocation(loc); taken {
		return fail(MsgOccupied)
	}

	e := f.env.NewEndpoint(f.newID(), player.ID, loc)
	if err := e.Save(); err != nil {
		f.log.Error("failed to save endpoint",
			logger.Stringer("id", e.ID()), logger.Stringer("location", loc), logger.Error(err))
		return fail(MsgSaveFailed)
	}
	e.Place()
	e.Load(player)

	f.inv.TakeItem(player.ID, domain.MaterialRedstoneBlock, 1)
	f.inv.TakeItem(player.ID, domain.MaterialQuartzBlock, 1)

	f.log.Info("endpoint created",
		logger.Stringer("id", e.ID()), logger.Stringer("owner", player.ID), logger.Stringer("location", loc))
	return Reply{OK: true, Message: MsgEndpointCreated + e.ID().String(), ID: e.ID()}
}

func (f *Frontend) createWaypoint(player domain.Player, rawURL string) Reply {
	if !f.inv.HasItem(player.ID, domain.MaterialRedstoneLamp) {
		return fail(MsgWaypointMaterials)
	}
	if err := validateURL(rawURL); err != nil {
		return fail(MsgInvalidURL)
	}

	loc := player.Feet()
	if _, taken := f.lookup.FindByLocation(loc); taken {
		return fail(MsgOccupied)
	}

	w := f.env.NewWaypoint(f.newID(), player.ID, loc, rawURL)
	if err := w.Save(); err != nil {
		f.log.Error("failed to save waypoint",
			logger.Stringer("id", w.ID()), logger.Stringer("location", loc), logger.Error(err))
		return fail(MsgSaveFailed)
	}
	w.Place()

	f.inv.TakeItem(player.ID, domain.MaterialRedstoneLamp, 1)

	f.log.Info("waypoint created",
		logger.Stringer("id", w.ID()), logger.Stringer("owner", player.ID), logger.Stringer("location", loc))
	return Reply{OK: true, Message: MsgWaypointCreated + w.ID().String(), ID: w.ID()}
}

func (f *Frontend) delete(player domain.Player) Reply {
	loc := player.Ground()
	m, ok := f.lookup.FindByLocation(loc)
	if !ok {
		return fail(MsgNothingHere)
	}
	if !m.IsOwner(player.ID) {
		return fail(MsgNotOwner)
	}

	if err := m.Destroy(); err != nil {
		f.log.Error("failed to delete component",
			logger.String("kind", string(m.Kind())), logger.Stringer("id", m.ID()), logger.Error(err))
		return fail(MsgDeleteFailed)
	}

	f.log.Info("component deleted",
		logger.String("kind", string(m.Kind())), logger.Stringer("id", m.ID()), logger.Stringer("location", loc))
	return Reply{OK: true, Message: MsgDeleted, ID: m.ID()}
}

// validateURL accepts absolute http(s) URLs. Commas are fine; line
// breaks are not, since a record is a single line.
func validateURL(raw string) error {
	if strings.ContainsAny(raw, "\r\n") {
		return domain.Invalid(MsgInvalidURL)
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return domain.Invalid(MsgInvalidURL)
	}
	return nil
}
