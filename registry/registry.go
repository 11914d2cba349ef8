// Package registry handles service registration and discovery.
package registry

// ServiceInstance is one addressable replica of a service.
type ServiceInstance struct {
	Addr    string
	Weight  int // Relative capacity, consumed by weighted load balancing
	Version string
}

// Registry is the discovery backend. Register leases the instance for ttl
// seconds; implementations renew the lease while the server is alive, so a
// crashed server drops out of discovery within one TTL.
type Registry interface {
	Register(serviceName string, instance ServiceInstance, ttl int64) error
	Deregister(serviceName string, addr string) error
	Discover(serviceName string) ([]ServiceInstance, error)
	Watch(serviceName string) <-chan []ServiceInstance
}
