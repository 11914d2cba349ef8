package message

import (
	"encoding/json"
	"fmt"
	"sync"
)

// The process-wide type registry: name → factory. Concrete message types
// register themselves (typically from an init function or service setup) so
// that a persisted TypeName can be resolved back to a default instance long
// after the value that produced it is gone.
var (
	registryMu sync.RWMutex
	registry   = make(map[TypeName]Factory)
)

// Register binds a type name to its default-instance factory.
// Registering the same name twice is a programming error and fails loudly.
func Register(name TypeName, factory Factory) error {
	if name == "" {
		return fmt.Errorf("message: empty type name")
	}
	if factory == nil {
		return fmt.Errorf("message: nil factory for type %q", name)
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		return fmt.Errorf("message: type %q already registered", name)
	}
	registry[name] = factory
	return nil
}

// MustRegister is Register for package init blocks.
func MustRegister(name TypeName, factory Factory) {
	if err := Register(name, factory); err != nil {
		panic(err)
	}
}

// Unregister removes a type binding. Intended for tests.
func Unregister(name TypeName) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, name)
}

// DefaultInstance performs the late-bound lookup of a type's zero value from
// its persisted name. Returns *TypeResolutionError when the name is unknown —
// a permanent misconfiguration, never retried here.
func DefaultInstance(name TypeName) (Message, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, &TypeResolutionError{Name: name}
	}
	return factory(), nil
}

// Decode resolves name to a fresh instance and unmarshals payload into it.
// Used by the server to materialize typed notify payloads off the wire.
func Decode(name TypeName, payload []byte) (Message, error) {
	m, err := DefaultInstance(name)
	if err != nil {
		return nil, err
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, m); err != nil {
			return nil, fmt.Errorf("message: decode %q: %w", name, err)
		}
	}
	return m, nil
}
