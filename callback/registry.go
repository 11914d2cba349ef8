package callback

import (
	"fmt"
	"sync"

	"msgrpc/message"
)

// The callback registry: name → generalized callback. A registered name is
// what lets a serialized Generalized find its way back to executable code on
// the deserializing side, the same way message type names find their way back
// to default instances.
var (
	registryMu sync.RWMutex
	registry   = make(map[string]*Generalized)
)

// Register names a typed callback and returns its generalized form. The
// returned wrapper (and any wrapper later unmarshaled with the same name)
// forwards to fn. Registering a name twice fails loudly.
func Register[T message.Message](name string, typeName message.TypeName, fn Func[T]) (*Generalized, error) {
	if name == "" {
		return nil, fmt.Errorf("callback: empty callback name")
	}
	if fn == nil {
		return nil, fmt.Errorf("callback: nil callback for %q", name)
	}
	g := &Generalized{
		typeName: typeName,
		name:     name,
		forward:  forwardAs(typeName, fn),
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		return nil, fmt.Errorf("callback: %q already registered", name)
	}
	registry[name] = g
	return g, nil
}

// Resolve returns the generalized callback registered under name.
func Resolve(name string) (*Generalized, error) {
	registryMu.RLock()
	g, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("callback: %q not registered", name)
	}
	return g, nil
}

// Unregister removes a callback binding. Intended for tests.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, name)
}
