// Package client implements the RPC client: discovery, load balancing, and a
// per-address pool of multiplexed transports.
package client

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	"msgrpc/callback"
	"msgrpc/codec"
	"msgrpc/loadbalance"
	"msgrpc/message"
	"msgrpc/registry"
	"msgrpc/transport"
)

type Client struct {
	registry  registry.Registry
	balancer  loadbalance.Balancer
	pools     map[string]*transport.TransportPool // One transport pool per instance address
	codecType codec.CodecType
	mu        sync.Mutex
	poolSize  int
}

func NewClient(reg registry.Registry, bal loadbalance.Balancer, codecType byte, poolSize int) *Client {
	return &Client{
		registry:  reg,
		balancer:  bal,
		pools:     make(map[string]*transport.TransportPool),
		codecType: codec.CodecType(codecType),
		poolSize:  poolSize,
	}
}

func (c *Client) pool(addr string) *transport.TransportPool {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pools[addr]
	if !ok {
		p = transport.NewTransportPool(addr, c.poolSize, c.codecType)
		c.pools[addr] = p
	}
	return p
}

// pickPool resolves serviceName to a transport pool:
// registry discovery → balancer pick → per-address pool.
func (c *Client) pickPool(serviceName string) (*transport.TransportPool, error) {
	instances, err := c.registry.Discover(serviceName)
	if err != nil {
		return nil, err
	}
	instance, err := c.balancer.Pick(instances)
	if err != nil {
		return nil, err
	}
	return c.pool(instance.Addr), nil
}

func splitServiceMethod(serviceMethod string) (string, error) {
	split := strings.Split(serviceMethod, ".")
	if len(split) != 2 {
		return "", fmt.Errorf("invalid serviceMethod format: %v", serviceMethod)
	}
	return split[0], nil
}

// Call performs a synchronous RPC: send the request and block for the reply.
func (c *Client) Call(serviceMethod string, args any, reply any) error {
	serviceName, err := splitServiceMethod(serviceMethod)
	if err != nil {
		return err
	}
	p, err := c.pickPool(serviceName)
	if err != nil {
		return err
	}
	t, err := p.Get()
	if err != nil {
		return err
	}
	defer p.Put(t)

	_, ch, err := t.Send(serviceMethod, args)
	if err != nil {
		return err
	}

	resp := <-ch
	if resp.Error != "" {
		return fmt.Errorf("server error: %v", resp.Error)
	}
	return json.Unmarshal(resp.Payload, &reply)
}

// CallAsync performs the RPC in the background and invokes done with the
// response envelope. done is wrapped with callback.OneTime before it leaves
// this function — whatever the demux path does, the caller's callback runs
// at most once.
func (c *Client) CallAsync(serviceMethod string, args any, done callback.Func[*message.Envelope]) error {
	serviceName, err := splitServiceMethod(serviceMethod)
	if err != nil {
		return err
	}
	p, err := c.pickPool(serviceName)
	if err != nil {
		return err
	}
	t, err := p.Get()
	if err != nil {
		return err
	}

	_, ch, err := t.Send(serviceMethod, args)
	if err != nil {
		p.Put(t)
		return err
	}

	guarded := callback.OneTime(done)
	go func() {
		resp := <-ch
		p.Put(t)
		if err := guarded(resp); err != nil {
			log.Printf("Async callback for %s failed: %v", serviceMethod, err)
		}
	}()
	return nil
}

// Notify sends a one-way typed message to one instance of serviceName.
// The message type must be registered so the server can materialize it.
func (c *Client) Notify(serviceName string, msg message.Message) error {
	p, err := c.pickPool(serviceName)
	if err != nil {
		return err
	}
	t, err := p.Get()
	if err != nil {
		return err
	}
	defer p.Put(t)

	return t.Notify(msg)
}

// Close tears down all transport pools and their connections.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var firstErr error
	for addr, p := range c.pools {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(c.pools, addr)
	}
	return firstErr
}
