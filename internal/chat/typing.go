package chat

import "sync"

// TypingTracker holds the ephemeral set of participants currently composing.
// Nothing here is persisted; entries disappear on an explicit stop signal or
// when the connection goes away.
type TypingTracker struct {
	mu    sync.Mutex
	names map[string]string // connection id -> display name
	order []string
}

func NewTypingTracker() *TypingTracker {
	return &TypingTracker{names: make(map[string]string)}
}

// Set inserts or refreshes the entry for connID.
func (t *TypingTracker) Set(connID, displayName string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.names[connID]; !ok {
		t.order = append(t.order, connID)
	}
	t.names[connID] = displayName
}

// Clear removes the entry; no-op if absent. Called on a stop-typing signal
// and on disconnect, so stale names never leak into later broadcasts.
func (t *TypingTracker) Clear(connID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.names[connID]; !ok {
		return
	}
	delete(t.names, connID)
	for i, id := range t.order {
		if id == connID {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// Names returns display names of everyone currently typing, oldest first.
func (t *TypingTracker) Names() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]string, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.names[id])
	}
	return out
}
