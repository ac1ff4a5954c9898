package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

// Router validates, persists and fans out chat messages. A message is only
// broadcast after the store confirms the write; on a store failure the sender
// gets an error and nobody else sees anything.
type Router struct {
	registry *Registry
	messages MessageStore
	log      *slog.Logger

	maxMessageLength int
}

func NewRouter(registry *Registry, messages MessageStore, log *slog.Logger) *Router {
	return &Router{
		registry:         registry,
		messages:         messages,
		log:              log,
		maxMessageLength: 2000,
	}
}

func (rt *Router) SetMaxMessageLength(n int) {
	if n > 0 {
		rt.maxMessageLength = n
	}
}

// SendGlobal persists a global message and broadcasts it to every registered
// connection, sender included, then acks the sender. The echo through the
// broadcast keeps all clients on the server's ordering instead of relying on
// optimistic local rendering.
func (rt *Router) SendGlobal(ctx context.Context, connID, content string, file *domain.FileMeta) error {
	p, ok := rt.registry.Lookup(connID)
	if !ok {
		return domain.ErrNotJoined
	}

	content, err := rt.cleanContent(content)
	if err != nil {
		return err
	}

	kind := domain.KindText
	if file != nil {
		kind = domain.KindFile
	}
	m := &domain.Message{
		SenderID:     connID,
		SenderUserID: p.UserID,
		SenderName:   p.Username,
		Content:      content,
		Kind:         kind,
		File:         file,
	}
	if err := rt.messages.Create(ctx, m); err != nil {
		return fmt.Errorf("persist message: %w", err)
	}

	rt.registry.Broadcast(Event{Type: EvReceiveMessage, Payload: toMessagePayload(m)})
	rt.registry.Send(connID, Event{Type: EvMessageDelivered, Payload: DeliveredPayload{MessageID: m.ID}})

	rt.log.Debug("global message", "conn", connID, "msg_id", m.ID, "kind", kind)
	return nil
}

// SendDirect persists a direct message and delivers it to the recipient and
// back to the sender as a confirmation copy. Recipients are resolved against
// the registry: messaging someone who is not connected is an error, nothing
// is queued for later.
func (rt *Router) SendDirect(ctx context.Context, connID, to, content string) error {
	sender, ok := rt.registry.Lookup(connID)
	if !ok {
		return domain.ErrNotJoined
	}
	recipient, ok := rt.registry.Lookup(to)
	if !ok {
		return domain.ErrRecipientNotFound
	}
	if to == connID {
		return errors.New("cannot send a direct message to yourself")
	}

	content, err := rt.cleanContent(content)
	if err != nil {
		return err
	}

	m := &domain.Message{
		SenderID:        connID,
		SenderUserID:    sender.UserID,
		SenderName:      sender.Username,
		Content:         content,
		Kind:            domain.KindText,
		IsPrivate:       true,
		RecipientID:     to,
		RecipientUserID: recipient.UserID,
		RecipientName:   recipient.Username,
	}
	if err := rt.messages.Create(ctx, m); err != nil {
		return fmt.Errorf("persist direct message: %w", err)
	}

	out := Event{Type: EvPrivateMessage, Payload: toMessagePayload(m)}
	rt.registry.Send(to, out)
	rt.registry.Send(connID, out)
	rt.registry.Send(connID, Event{Type: EvMessageDelivered, Payload: DeliveredPayload{MessageID: m.ID}})

	rt.log.Debug("direct message", "from", connID, "to", to, "msg_id", m.ID)
	return nil
}

// AddReaction is best-effort: an unregistered connection, a missing or
// deleted message, or a store failure is logged and swallowed. Duplicate
// (user, emoji) pairs collapse to a single entry in the store.
func (rt *Router) AddReaction(ctx context.Context, connID, messageID, emoji string) {
	p, ok := rt.registry.Lookup(connID)
	if !ok {
		rt.log.Warn("reaction from unregistered connection", "conn", connID)
		return
	}
	if messageID == "" || emoji == "" {
		return
	}

	applied, err := rt.messages.AddReaction(ctx, messageID, domain.Reaction{
		UserID:    p.UserID,
		Username:  p.Username,
		Emoji:     emoji,
		ReactedAt: time.Now().UTC(),
	})
	if err != nil {
		rt.log.Error("add reaction failed", "msg_id", messageID, "err", err)
		return
	}
	if !applied {
		rt.log.Debug("reaction on missing or deleted message", "msg_id", messageID)
		return
	}

	rt.registry.Broadcast(Event{Type: EvMessageReaction, Payload: ReactionPayload{
		MessageID: messageID,
		Reaction:  emoji,
		Username:  p.Username,
		UserID:    p.UserID,
	}})
}

// DeleteMessage soft-deletes a message. Only the original sender, identified
// by external user id so the check survives reconnects, may delete. Deletion
// affects future history queries only; no retraction event is broadcast.
func (rt *Router) DeleteMessage(ctx context.Context, requesterUserID, messageID string) error {
	m, err := rt.messages.FindByID(ctx, messageID)
	if err != nil {
		return err
	}
	if m.SenderUserID != requesterUserID {
		return domain.ErrUnauthorized
	}
	if m.IsDeleted {
		return nil
	}
	return rt.messages.SoftDelete(ctx, messageID)
}

func (rt *Router) cleanContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", errors.New("empty message")
	}
	if len([]rune(content)) > rt.maxMessageLength {
		return "", fmt.Errorf("message longer than %d characters", rt.maxMessageLength)
	}
	return content, nil
}
