package loadbalance

import (
	"math/rand"

	"msgrpc/registry"
)

// WeightedRandomBalancer draws an instance with probability proportional to
// its weight. Instances with weight 0 are never picked unless every weight is
// zero, in which case the draw degrades to uniform.
type WeightedRandomBalancer struct{}

func (b *WeightedRandomBalancer) Pick(instances []registry.ServiceInstance) (*registry.ServiceInstance, error) {
	if len(instances) == 0 {
		return nil, ErrNoInstances
	}

	total := 0
	for _, ins := range instances {
		if ins.Weight > 0 {
			total += ins.Weight
		}
	}
	if total == 0 {
		return &instances[rand.Intn(len(instances))], nil
	}

	// Walk the list subtracting weights until the draw lands in an
	// instance's slice of [0, total).
	draw := rand.Intn(total)
	for i := range instances {
		if instances[i].Weight <= 0 {
			continue
		}
		draw -= instances[i].Weight
		if draw < 0 {
			return &instances[i], nil
		}
	}
	return &instances[len(instances)-1], nil
}

func (b *WeightedRandomBalancer) Name() string { return "WeightedRandom" }
