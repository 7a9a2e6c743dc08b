package dedupe

import "context"

// Marker records idempotency markers for asynchronous delivery callbacks.
// FirstSeen reports whether the key has not been marked before; delivery
// semantics stay at-least-once, the marker only suppresses obvious provider
// retries.
type Marker interface {
	FirstSeen(ctx context.Context, key string) (bool, error)
}
