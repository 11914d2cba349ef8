// Package loadbalance selects a target instance for each outgoing call.
//
// Strategies:
//   - RoundRobin:      even rotation, fits stateless equal-capacity fleets
//   - WeightedRandom:  probability proportional to instance weight
//   - ConsistentHash:  key affinity on a hash ring, fits stateful services
package loadbalance

import (
	"errors"

	"msgrpc/registry"
)

// ErrNoInstances is returned when discovery produced an empty instance list.
var ErrNoInstances = errors.New("loadbalance: no instances available")

// Balancer picks one instance per call. Implementations must be safe for
// concurrent use; the client calls Pick on every request.
type Balancer interface {
	Pick(instances []registry.ServiceInstance) (*registry.ServiceInstance, error)

	// Name identifies the strategy in logs.
	Name() string
}
