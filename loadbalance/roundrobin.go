package loadbalance

import (
	"msgrpc/registry"

	"go.uber.org/atomic"
)

// RoundRobinBalancer rotates through the instance list with a lock-free
// counter. Distribution is even as long as the list order is stable between
// calls, which discovery guarantees short of a membership change.
type RoundRobinBalancer struct {
	next atomic.Uint64
}

func (b *RoundRobinBalancer) Pick(instances []registry.ServiceInstance) (*registry.ServiceInstance, error) {
	if len(instances) == 0 {
		return nil, ErrNoInstances
	}
	n := b.next.Add(1) - 1
	return &instances[n%uint64(len(instances))], nil
}

func (b *RoundRobinBalancer) Name() string { return "RoundRobin" }
