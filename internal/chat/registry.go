package chat

import (
	"sync"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

// Participant is a chat identity bound to exactly one live connection.
type Participant struct {
	ConnectionID string
	UserID       string // external identity
	Username     string
	Email        string
	Avatar       string
}

type entry struct {
	p    Participant
	conn Conn
}

// Registry is the single source of truth for who is online. It owns the
// Participant lifetime and is the only place allowed to touch the underlying
// maps. Safe for concurrent use; mutations never expose a half-written entry.
type Registry struct {
	mu     sync.RWMutex
	conns  map[string]*entry
	order  []string          // connection ids in registration order
	byUser map[string]string // external user id -> connection id
}

func NewRegistry() *Registry {
	return &Registry{
		conns:  make(map[string]*entry),
		byUser: make(map[string]string),
	}
}

// Register binds conn to p. The connection id comes from the conn itself.
func (r *Registry) Register(conn Conn, p Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := conn.ID()
	if _, ok := r.conns[id]; ok {
		return domain.ErrDuplicateConnection
	}
	p.ConnectionID = id
	r.conns[id] = &entry{p: p, conn: conn}
	r.order = append(r.order, id)
	r.byUser[p.UserID] = id
	return nil
}

// Unregister is idempotent; removing an unknown connection is a no-op.
func (r *Registry) Unregister(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.conns[connID]
	if !ok {
		return
	}
	delete(r.conns, connID)
	if r.byUser[e.p.UserID] == connID {
		delete(r.byUser, e.p.UserID)
	}
	for i, id := range r.order {
		if id == connID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func (r *Registry) Lookup(connID string) (Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.conns[connID]
	if !ok {
		return Participant{}, false
	}
	return e.p, true
}

// LookupByUser resolves an external user id to its active connection id.
func (r *Registry) LookupByUser(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUser[userID]
	return id, ok
}

// Snapshot returns all participants in registration order.
func (r *Registry) Snapshot() []Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Participant, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.conns[id].p)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conns)
}

// Broadcast sends ev to every registered connection, best-effort. The conn
// list is copied under the read lock and sends happen outside it, so a slow
// client never blocks registrations.
func (r *Registry) Broadcast(ev Event) {
	for _, c := range r.connections("") {
		_ = c.Send(ev)
	}
}

// BroadcastExcept sends ev to every connection but connID.
func (r *Registry) BroadcastExcept(connID string, ev Event) {
	for _, c := range r.connections(connID) {
		_ = c.Send(ev)
	}
}

// Send delivers ev to a single connection. Delivery to a connection that is
// already gone is silently dropped.
func (r *Registry) Send(connID string, ev Event) {
	r.mu.RLock()
	e, ok := r.conns[connID]
	r.mu.RUnlock()
	if !ok {
		return
	}
	_ = e.conn.Send(ev)
}

func (r *Registry) connections(except string) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Conn, 0, len(r.order))
	for _, id := range r.order {
		if id == except {
			continue
		}
		out = append(out, r.conns[id].conn)
	}
	return out
}
