package lock

import "context"

// Semaphore — binary semaphore: one token that is either outstanding or
// available. Acquire blocks until the token is free and returns a release
// closure; callers defer it so the token comes back even when the guarded
// sequence fails. Release is safe to call once per acquisition only — the
// closure enforces that itself.
type Semaphore interface {
	Acquire(ctx context.Context) (release func(), err error)
}

// Provider hands out the two locks the matchmaking engine uses: the single
// process-wide selection lock guarding staged-room lookup/creation, and one
// join lock per room guarding the capacity-check-then-admit sequence.
type Provider interface {
	Selection() Semaphore
	Join(room string) Semaphore
}

const (
	selectionKey  = "lock:selection"
	joinKeySuffix = "_lock"
)

func joinKey(room string) string {
	return "lock:" + room + joinKeySuffix
}
