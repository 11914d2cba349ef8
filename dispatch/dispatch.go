// Package dispatch routes typed messages to generalized callbacks by type
// name. The server feeds it decoded notify payloads; services subscribe
// callbacks typed for the concrete message types they handle.
package dispatch

import (
	"fmt"
	"sync"

	"msgrpc/callback"
	"msgrpc/message"
)

// Dispatcher routes messages to handlers keyed by type name.
// One handler per type; an optional fallback catches everything else and
// relies on the generalized callback's coercion path to reshape the message.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[message.TypeName]*callback.Generalized
	fallback *callback.Generalized
}

func New() *Dispatcher {
	return &Dispatcher{handlers: make(map[message.TypeName]*callback.Generalized)}
}

// Subscribe registers a typed callback as the handler for typeName.
// The callback is generalized on the way in, so the dispatcher stores only
// boundary-safe wrappers.
func Subscribe[T message.Message](d *Dispatcher, typeName message.TypeName, fn callback.Func[T]) error {
	if fn == nil {
		return fmt.Errorf("dispatch: nil handler for type %q", typeName)
	}
	g := callback.Generalize(typeName, fn)
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.handlers[typeName]; exists {
		return fmt.Errorf("dispatch: handler for type %q already subscribed", typeName)
	}
	d.handlers[typeName] = g
	return nil
}

// SetFallback installs the handler for messages whose type has no subscriber.
// The fallback's own concrete type drives coercion: a fallback generalized
// from type T receives every unmatched message reshaped into T.
func (d *Dispatcher) SetFallback(g *callback.Generalized) {
	d.mu.Lock()
	d.fallback = g
	d.mu.Unlock()
}

// Dispatch routes m to the handler subscribed for its type, or to the
// fallback. Handler errors surface unchanged; an unroutable message is an
// error, never a silent drop.
func (d *Dispatcher) Dispatch(m message.Message) error {
	d.mu.RLock()
	handler, ok := d.handlers[m.TypeName()]
	if !ok {
		handler = d.fallback
	}
	d.mu.RUnlock()

	if handler == nil {
		return fmt.Errorf("dispatch: no handler for type %q", m.TypeName())
	}
	return handler.Invoke(m)
}
