package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cwrk-planet/chat-service/internal/domain"

	"github.com/go-playground/validator/v10"
)

// Session orchestrates the join/leave sequencing for a connection:
// registry update, persisted status, history replay and presence broadcast,
// in that order.
type Session struct {
	registry *Registry
	typing   *TypingTracker
	presence *Presence
	users    UserStore
	messages MessageStore
	log      *slog.Logger
	validate *validator.Validate

	historyLimit int
}

func NewSession(
	registry *Registry,
	typing *TypingTracker,
	presence *Presence,
	users UserStore,
	messages MessageStore,
	log *slog.Logger,
) *Session {
	return &Session{
		registry:     registry,
		typing:       typing,
		presence:     presence,
		users:        users,
		messages:     messages,
		log:          log,
		validate:     validator.New(),
		historyLimit: 50,
	}
}

func (s *Session) SetHistoryLimit(n int) {
	if n > 0 {
		s.historyLimit = n
	}
}

// Join runs the join handshake. A malformed payload rejects the join but
// leaves the connection open; a duplicate connection id is fatal for the
// connection. On success the joining client has received user_info, its
// roster view and the recent global history, and everyone else has seen the
// refreshed roster plus a user_joined notice.
func (s *Session) Join(ctx context.Context, conn Conn, req JoinRequest) error {
	req.Username = strings.TrimSpace(req.Username)
	req.UserID = strings.TrimSpace(req.UserID)
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrJoinRejected, err)
	}
	// One active connection per user: no multi-device fan-out here.
	if _, ok := s.registry.LookupByUser(req.UserID); ok {
		return fmt.Errorf("%w: user already connected", domain.ErrJoinRejected)
	}

	if _, err := s.users.Upsert(ctx, domain.User{
		ExternalID: req.UserID,
		Username:   req.Username,
		Email:      req.Email,
		Avatar:     req.Avatar,
		Status:     domain.StatusOnline,
	}); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}

	if err := s.registry.Register(conn, Participant{
		UserID:   req.UserID,
		Username: req.Username,
		Email:    req.Email,
		Avatar:   req.Avatar,
	}); err != nil {
		return err
	}

	connID := conn.ID()
	_ = conn.Send(Event{Type: EvUserInfo, Payload: UserInfo{
		ID:       connID,
		UserID:   req.UserID,
		Username: req.Username,
		Email:    req.Email,
		Avatar:   req.Avatar,
	}})

	s.presence.Publish()
	s.registry.BroadcastExcept(connID, Event{Type: EvUserJoined, Payload: SystemNotice{
		ID:       connID,
		Username: req.Username,
	}})

	s.replayHistory(ctx, conn)

	s.log.Info("user joined", "conn", connID, "user", req.UserID, "username", req.Username)
	return nil
}

// Disconnect tears a connection down. In-memory cleanup always runs, even
// when the persisted status update fails; presence must not leak a gone
// connection just because the store had a bad moment.
func (s *Session) Disconnect(ctx context.Context, connID string) {
	p, ok := s.registry.Lookup(connID)
	if !ok {
		return // never joined
	}

	if err := s.users.SetStatus(ctx, p.UserID, domain.StatusOffline); err != nil {
		s.log.Error("set offline status failed", "conn", connID, "user", p.UserID, "err", err)
	}

	s.typing.Clear(connID)
	s.registry.Unregister(connID)

	s.registry.Broadcast(Event{Type: EvUserLeft, Payload: SystemNotice{
		ID:       connID,
		Username: p.Username,
	}})
	s.presence.Publish()
	s.registry.Broadcast(Event{Type: EvTypingUsers, Payload: s.typing.Names()})

	s.log.Info("user left", "conn", connID, "user", p.UserID)
}

// SetTyping toggles the typing entry for a joined connection and pushes the
// refreshed list to everyone else. Signals from connections that have not
// joined are ignored.
func (s *Session) SetTyping(connID string, isTyping bool) {
	p, ok := s.registry.Lookup(connID)
	if !ok {
		return
	}
	if isTyping {
		s.typing.Set(connID, p.Username)
	} else {
		s.typing.Clear(connID)
	}
	s.registry.BroadcastExcept(connID, Event{Type: EvTypingUsers, Payload: s.typing.Names()})
}

// replayHistory pushes the most recent global messages to a freshly joined
// connection, oldest first. A store failure here downgrades to an error
// event; the session itself stays up.
func (s *Session) replayHistory(ctx context.Context, conn Conn) {
	recent, err := s.messages.RecentGlobal(ctx, s.historyLimit)
	if err != nil {
		s.log.Warn("history replay failed", "conn", conn.ID(), "err", err)
		_ = conn.Send(Event{Type: EvError, Payload: ErrorPayload{Message: "Failed to load message history"}})
		return
	}

	history := make([]MessagePayload, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		history = append(history, toMessagePayload(&recent[i]))
	}
	_ = conn.Send(Event{Type: EvMessageHistory, Payload: history})
}
