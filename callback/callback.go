// Package callback converts between callbacks typed for one concrete message
// type and callbacks accepting the polymorphic message.Message, in a form
// that survives a serialization boundary.
//
// The serialization problem: a generalized callback must be persistable, but
// the runtime type information needed to restore the concrete type on
// invocation is not. The wrapper therefore carries only string tokens (the
// registered type name, and optionally a registered callback name) and
// re-resolves everything else lazily — the default instance via the message
// registry at invocation time, the callback body via the callback registry at
// unmarshal time. No descriptor state is ever written out.
package callback

import (
	"encoding/json"
	"fmt"

	"msgrpc/message"
)

// Func is a typed callback: a unit of behavior invoked with one value.
// Idempotence is not guaranteed at this layer; wrap with OneTime when a
// second invocation must fail instead of re-running side effects.
type Func[T any] func(T) error

// Specialize views a callback accepting the polymorphic message type as one
// accepting the narrower concrete type T. Always type-safe by contravariance
// of the parameter — no runtime check, no failure mode.
func Specialize[T message.Message](fn Func[message.Message]) Func[T] {
	return func(v T) error { return fn(v) }
}

// Generalized is a callback accepting any message.Message, safe to carry
// across a serialization boundary. It forwards to the original typed callback
// after restoring the concrete type: exact cast when the dynamic type
// matches, lossy structural coercion via the type registry otherwise.
//
// Only the type token and the registered callback name are serialized; see
// Register for making a callback resolvable after a round trip.
type Generalized struct {
	typeName message.TypeName
	name     string
	forward  Func[message.Message]
}

// Generalize wraps a callback typed for concrete type T into its
// serialization-safe generalized form. typeName is the registered identity of
// T; it is not validated here — an unresolvable name surfaces as a
// *message.TypeResolutionError from Invoke, at the point the fallback lookup
// actually runs.
func Generalize[T message.Message](typeName message.TypeName, fn Func[T]) *Generalized {
	return &Generalized{
		typeName: typeName,
		forward:  forwardAs(typeName, fn),
	}
}

// forwardAs builds the type-restoring forward path. The closure captures only
// the name token and the delegate, never a default instance — the instance's
// runtime type drags in non-serializable state and is recomputed per call.
func forwardAs[T message.Message](typeName message.TypeName, fn Func[T]) Func[message.Message] {
	return func(m message.Message) error {
		if typed, ok := message.Exact[T](m); ok {
			return fn(typed)
		}
		template, err := message.DefaultInstance(typeName)
		if err != nil {
			return err
		}
		coerced, err := message.CopyAsType(template, m)
		if err != nil {
			return err
		}
		typed, ok := message.Exact[T](coerced)
		if !ok {
			// The registry's factory for typeName produced some other
			// concrete type — same misconfiguration class as a failed lookup.
			return &message.TypeResolutionError{Name: typeName}
		}
		return fn(typed)
	}
}

// Invoke forwards m to the wrapped callback, restoring the concrete type
// first. Errors (*message.TypeResolutionError, *message.CoercionError, or the
// callback's own) surface synchronously; the call is never silently dropped.
func (g *Generalized) Invoke(m message.Message) error {
	return g.forward(m)
}

// TypeName returns the type token of the concrete type this callback was
// generalized from.
func (g *Generalized) TypeName() message.TypeName { return g.typeName }

// Name returns the registered callback name, or "" for anonymous callbacks.
func (g *Generalized) Name() string { return g.name }

// wireForm is the serialized shape: two string tokens, nothing else.
type wireForm struct {
	Type     message.TypeName `json:"type"`
	Callback string           `json:"callback"`
}

// MarshalJSON persists the wrapper as its two identity tokens. Anonymous
// callbacks have no persistable identity and cannot be marshaled; register
// the callback first.
func (g *Generalized) MarshalJSON() ([]byte, error) {
	if g.name == "" {
		return nil, fmt.Errorf("callback: cannot serialize anonymous callback for type %q: not registered", g.typeName)
	}
	return json.Marshal(wireForm{Type: g.typeName, Callback: g.name})
}

// UnmarshalJSON restores a generalized callback from its tokens, rebinding
// the forward path from the callback registry.
func (g *Generalized) UnmarshalJSON(data []byte) error {
	var w wireForm
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	resolved, err := Resolve(w.Callback)
	if err != nil {
		return err
	}
	g.typeName = w.Type
	g.name = w.Callback
	g.forward = resolved.forward
	return nil
}
