package callback

import (
	"errors"
	"sync"
)

// ErrAlreadyInvoked is returned by a OneTime callback on every invocation
// after the first. The callback takes no corrective action beyond refusing
// the forward; how to react is the caller's policy.
var ErrAlreadyInvoked = errors.New("callback: already invoked")

// OneTime wraps fn so it can only be called once. Useful for safety when
// handing a callback to code that must not invoke it twice: most callbacks do
// not expect a second call, and silently re-running side effects hides bugs.
//
// Under concurrent invocation exactly one caller's value is forwarded; every
// other caller gets ErrAlreadyInvoked. The lock covers only the fired flag —
// the forward runs outside it, so a slow wrapped callback never delays other
// callers' failures.
func OneTime[T any](fn Func[T]) Func[T] {
	guard := &oneTimeGuard[T]{fn: fn}
	return guard.invoke
}

type oneTimeGuard[T any] struct {
	mu    sync.Mutex
	fired bool
	fn    Func[T]
}

func (g *oneTimeGuard[T]) invoke(v T) error {
	g.mu.Lock()
	if g.fired {
		g.mu.Unlock()
		return ErrAlreadyInvoked
	}
	g.fired = true
	g.mu.Unlock()

	return g.fn(v)
}
