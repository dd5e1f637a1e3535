package redis

import (
	"fmt"
	"strings"
)

const (
	// KeyPrefixEndpoint is the prefix for endpoint state keys
	KeyPrefixEndpoint = "wirelink:endpoint:"
	// KeyPrefixWaypoint is the prefix for waypoint keys
	KeyPrefixWaypoint = "wirelink:waypoint:"
	// KeyAllEndpoints is the set of every endpoint id seen in a snapshot
	KeyAllEndpoints = "wirelink:endpoints:all"
	// ChannelEvents is the pub/sub channel toggles and invocations go to
	ChannelEvents = "wirelink:events"
)

// EndpointKey returns the key holding an endpoint's enabled state.
func EndpointKey(id string) string {
	return KeyPrefixEndpoint + id
}

// WaypointInvocationsKey returns the counter key for a waypoint.
func WaypointInvocationsKey(id string) string {
	return KeyPrefixWaypoint + id + ":invocations"
}

// AllEndpointsKey returns the key for the set of all endpoint ids.
func AllEndpointsKey() string {
	return KeyAllEndpoints
}

// ExtractEndpointID extracts the endpoint id from a state key.
func ExtractEndpointID(key string) (string, error) {
	id, ok := strings.CutPrefix(key, KeyPrefixEndpoint)
	if !ok || id == "" {
		return "", fmt.Errorf("invalid endpoint key: %s", key)
	}
	return id, nil
}
