package deps

import (
	"time"

	"github.com/MrSnakeDoc/wirelink/internal/command"
	"github.com/MrSnakeDoc/wirelink/internal/lifecycle"
	"github.com/MrSnakeDoc/wirelink/internal/logger"
	"github.com/MrSnakeDoc/wirelink/internal/registry"
	"github.com/MrSnakeDoc/wirelink/internal/sources/worlds"
	redisstore "github.com/MrSnakeDoc/wirelink/internal/store/redis"
	"github.com/MrSnakeDoc/wirelink/internal/world"
)

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	AllowedHosts []string // Host headers allowed on the bridge API
	AllowedCIDRS []string // networks allowed on the bridge API and probes
	TrustProxy   bool     // true if running behind a trusted reverse proxy
	IndexURL     string   // where GET / redirects
	RateBurst    int      // toggle requests allowed in a burst per client
	RatePerMin   int      // sustained toggle requests per minute per client

	Registry  *registry.Registry    // live markers
	Lifecycle *lifecycle.Controller // load state and player presence
	Commands  *command.Frontend     // /redstone executor for the bridge
	World     *world.Memory         // world state driven by the bridge
	Worlds    *worlds.Catalog       // worlds records may refer to
	Events    *redisstore.Store     // nil when Redis is disabled
}
