package chat

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

// fakeConn records every event the core sends to it.
type fakeConn struct {
	id string

	mu     sync.Mutex
	events []Event
	closed bool
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(ev Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) eventsOfType(t string) []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Event
	for _, ev := range c.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func (c *fakeConn) lastOfType(t string) (Event, bool) {
	evs := c.eventsOfType(t)
	if len(evs) == 0 {
		return Event{}, false
	}
	return evs[len(evs)-1], true
}

type fakeUserStore struct {
	mu        sync.Mutex
	users     map[string]domain.User // by external id
	upsertErr error
	statusErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]domain.User)}
}

func (s *fakeUserStore) Upsert(_ context.Context, u domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return nil, s.upsertErr
	}
	u.ID = "db-" + u.ExternalID
	s.users[u.ExternalID] = u
	return &u, nil
}

func (s *fakeUserStore) SetStatus(_ context.Context, externalID string, status domain.UserStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statusErr != nil {
		return s.statusErr
	}
	u, ok := s.users[externalID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Status = status
	s.users[externalID] = u
	return nil
}

func (s *fakeUserStore) status(externalID string) domain.UserStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[externalID].Status
}

type fakeMessageStore struct {
	mu        sync.Mutex
	seq       int
	order     []string
	msgs      map[string]*domain.Message
	createErr error
	recentErr error
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{msgs: make(map[string]*domain.Message)}
}

func (s *fakeMessageStore) Create(_ context.Context, m *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.seq++
	m.ID = fmt.Sprintf("msg-%d", s.seq)
	m.CreatedAt = time.Now().UTC()
	cp := *m
	s.msgs[m.ID] = &cp
	s.order = append(s.order, m.ID)
	return nil
}

func (s *fakeMessageStore) FindByID(_ context.Context, id string) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.msgs[id]
	if !ok {
		return nil, domain.ErrMessageNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *fakeMessageStore) SoftDelete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.msgs[id]
	if !ok {
		return domain.ErrMessageNotFound
	}
	now := time.Now().UTC()
	m.IsDeleted = true
	m.DeletedAt = &now
	return nil
}

func (s *fakeMessageStore) AddReaction(_ context.Context, messageID string, r domain.Reaction) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.msgs[messageID]
	if !ok || m.IsDeleted {
		return false, nil
	}
	for _, existing := range m.Reactions {
		if existing.UserID == r.UserID && existing.Emoji == r.Emoji {
			return true, nil // duplicate collapses
		}
	}
	m.Reactions = append(m.Reactions, r)
	return true, nil
}

func (s *fakeMessageStore) RecentGlobal(_ context.Context, limit int) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recentErr != nil {
		return nil, s.recentErr
	}
	var out []domain.Message
	for i := len(s.order) - 1; i >= 0 && len(out) < limit; i-- {
		m := s.msgs[s.order[i]]
		if m.IsPrivate || m.IsDeleted {
			continue
		}
		out = append(out, *m)
	}
	return out, nil
}

func (s *fakeMessageStore) reactions(id string) []domain.Reaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Reaction(nil), s.msgs[id].Reactions...)
}

func (s *fakeMessageStore) isDeleted(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.msgs[id].IsDeleted
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// joined wires a participant into the registry through a fake conn.
func joined(reg *Registry, connID, userID, username string) *fakeConn {
	c := newFakeConn(connID)
	_ = reg.Register(c, Participant{UserID: userID, Username: username})
	return c
}
