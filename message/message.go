// Package message defines the polymorphic message type system shared by the
// RPC layers: the Message interface every concrete message implements, the
// serializable TypeName token identifying a concrete type, the process-wide
// type registry used to resolve tokens back to default instances, and the
// lossy structural coercion between concrete types.
//
// Type identity is carried only as a registered name, never as a reflect.Type
// or any other runtime descriptor. Names are hardcoded stable strings chosen
// at registration time — reflect-derived names break silently on renames and
// must not be used as tokens.
package message

// TypeName is the stable, serializable identity of a concrete message type.
// Convention: dotted lowercase, e.g. "sensors.gps.v1".
type TypeName string

// Message is the common supertype of every concrete message variant.
// Concrete types are plain structs (usually pointer receivers) whose exported
// fields carry the payload; TypeName must return the name the type was
// registered under.
type Message interface {
	TypeName() TypeName
}

// Factory produces a fresh default (zero-value) instance of one concrete type.
type Factory func() Message

// Exact attempts to view m as concrete type T without copying.
// The bool reports whether the dynamic type matched; a false result is not an
// error — callers fall back to CopyAsType.
func Exact[T Message](m Message) (T, bool) {
	typed, ok := m.(T)
	return typed, ok
}
