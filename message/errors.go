package message

import "fmt"

// TypeResolutionError reports that a persisted type name could not be
// resolved to a default instance. This reflects a broken or incomplete type
// registry — permanent misconfiguration, so callers should not retry.
type TypeResolutionError struct {
	Name TypeName
}

func (e *TypeResolutionError) Error() string {
	return fmt.Sprintf("message: cannot resolve type %q: not registered", e.Name)
}

// CoercionError reports that a structural copy between two concrete types
// failed because their schemas conflict (not merely diverge — divergent
// fields are dropped, conflicting ones fail).
type CoercionError struct {
	From TypeName
	To   TypeName
	Err  error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("message: cannot coerce %q into %q: %v", e.From, e.To, e.Err)
}

func (e *CoercionError) Unwrap() error { return e.Err }
