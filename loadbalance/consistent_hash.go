package loadbalance

import (
	"fmt"
	"hash/crc32"
	"sort"

	"msgrpc/registry"
)

const defaultReplicas = 100

// ConsistentHashBalancer gives key affinity: the same key lands on the same
// instance until ring membership changes. Each instance occupies multiple
// virtual points on the ring so load stays statistically even with few nodes.
//
// It is not a Balancer — selection is keyed, not list-driven. Callers that
// need affinity populate the ring from discovery results and call Pick with
// a routing key (user ID, session, cache key).
type ConsistentHashBalancer struct {
	replicas int
	ring     []uint32
	nodes    map[uint32]*registry.ServiceInstance
}

func NewConsistentHashBalancer() *ConsistentHashBalancer {
	return &ConsistentHashBalancer{
		replicas: defaultReplicas,
		nodes:    make(map[uint32]*registry.ServiceInstance),
	}
}

// Add places an instance on the ring at replicas virtual points, each hashed
// from "addr#i". The ring stays sorted so Pick can binary-search.
func (b *ConsistentHashBalancer) Add(instance *registry.ServiceInstance) {
	for i := 0; i < b.replicas; i++ {
		point := crc32.ChecksumIEEE(fmt.Appendf(nil, "%s#%d", instance.Addr, i))
		b.ring = append(b.ring, point)
		b.nodes[point] = instance
	}
	sort.Slice(b.ring, func(i, j int) bool { return b.ring[i] < b.ring[j] })
}

// Remove takes an instance's virtual points off the ring. Keys that mapped to
// it redistribute to their next clockwise neighbors; everything else keeps
// its previous mapping.
func (b *ConsistentHashBalancer) Remove(addr string) {
	kept := b.ring[:0]
	for _, point := range b.ring {
		if b.nodes[point].Addr == addr {
			delete(b.nodes, point)
			continue
		}
		kept = append(kept, point)
	}
	b.ring = kept
}

// Pick maps key to the first instance at or clockwise-after its hash on the
// ring, wrapping to the start past the highest point.
func (b *ConsistentHashBalancer) Pick(key string) (*registry.ServiceInstance, error) {
	if len(b.ring) == 0 {
		return nil, ErrNoInstances
	}

	h := crc32.ChecksumIEEE([]byte(key))
	idx := sort.Search(len(b.ring), func(i int) bool { return b.ring[i] >= h })
	if idx == len(b.ring) {
		idx = 0
	}
	return b.nodes[b.ring[idx]], nil
}

func (b *ConsistentHashBalancer) Name() string { return "ConsistentHash" }
