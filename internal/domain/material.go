package domain

// Material is a block or item type known to the world adapter.
type Material string

const (
	MaterialAir           Material = "minecraft:air"
	MaterialRedstoneBlock Material = "minecraft:redstone_block"
	MaterialQuartzBlock   Material = "minecraft:quartz_block"
	MaterialRedstoneLamp  Material = "minecraft:redstone_lamp"
)

// Endpoint materials: the active block is shown while enabled.
const (
	EndpointActive   = MaterialRedstoneBlock
	EndpointInactive = MaterialQuartzBlock
)

// Kind is the marker variant.
type Kind string

const (
	KindEndpoint Kind = "endpoint"
	KindWaypoint Kind = "waypoint"
)

// Kinds lists every marker variant in load order.
var Kinds = []Kind{KindEndpoint, KindWaypoint}

// ParseKind returns the Kind named by s.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindEndpoint, KindWaypoint:
		return Kind(s), true
	default:
		return "", false
	}
}
