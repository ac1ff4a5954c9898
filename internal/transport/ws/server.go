package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cwrk-planet/chat-service/internal/chat"
	"github.com/cwrk-planet/chat-service/internal/domain"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type SessionSvc interface {
	Join(ctx context.Context, conn chat.Conn, req chat.JoinRequest) error
	Disconnect(ctx context.Context, connID string)
	SetTyping(connID string, isTyping bool)
}

type MessageSvc interface {
	SendGlobal(ctx context.Context, connID, content string, file *domain.FileMeta) error
	SendDirect(ctx context.Context, connID, to, content string) error
	AddReaction(ctx context.Context, connID, messageID, emoji string)
}

type Server struct {
	upgrader websocket.Upgrader
	sessions SessionSvc
	messages MessageSvc

	pingEvery time.Duration
}

func NewServer(sessions SessionSvc, messages MessageSvc) *Server {
	return &Server{
		sessions: sessions,
		messages: messages,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery: 15 * time.Second,
	}
}

func (s *Server) SetPingInterval(d time.Duration) {
	if d > 0 {
		s.pingEvery = d
	}
}

// inbound is the wire envelope before the payload is decoded per event type.
type inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// WS endpoint: GET /ws
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	sock, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	c := newWsConn(uuid.NewString(), sock)
	slog.Debug("ws connected", "conn", c.ID())

	go s.writeLoop(r.Context(), c)
	s.readLoop(r.Context(), c)

	// Disconnect cleanup must not ride on the dying request context.
	s.sessions.Disconnect(context.Background(), c.ID())

	if err := c.Close(); err != nil {
		slog.Debug("ws close failed", "conn", c.ID(), "err", err)
	}
	slog.Debug("ws disconnected", "conn", c.ID())
}

// readLoop processes the connection's events one at a time; two events from
// the same connection never run concurrently.
func (s *Server) readLoop(ctx context.Context, c *wsConn) {
	defer func() { _ = c.Close() }()

	c.sock.SetReadLimit(1 << 20)
	c.sock.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.sock.SetPongHandler(func(string) error {
		c.sock.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		return nil
	})

	for {
		_, data, err := c.sock.ReadMessage()
		if err != nil {
			return
		}
		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		s.dispatch(ctx, c, msg)
	}
}

func (s *Server) dispatch(ctx context.Context, c *wsConn, msg inbound) {
	switch msg.Type {
	case chat.EvUserJoin:
		var req chat.JoinRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			sendError(c, "Failed to join chat")
			return
		}
		if err := s.sessions.Join(ctx, c, req); err != nil {
			slog.Warn("ws join failed", "conn", c.ID(), "err", err)
			sendError(c, "Failed to join chat")
			if errors.Is(err, domain.ErrDuplicateConnection) {
				_ = c.Close()
			}
		}

	case chat.EvSendMessage:
		var req chat.SendMessageRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			sendError(c, "Failed to send message")
			return
		}
		if err := s.messages.SendGlobal(ctx, c.ID(), req.Message, req.File); err != nil {
			slog.Warn("ws send failed", "conn", c.ID(), "err", err)
			sendError(c, sendErrText(err, "Failed to send message"))
		}

	case chat.EvPrivateMessage:
		var req chat.PrivateMessageRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			sendError(c, "Failed to send private message")
			return
		}
		if err := s.messages.SendDirect(ctx, c.ID(), req.To, req.Message); err != nil {
			slog.Warn("ws private send failed", "conn", c.ID(), "to", req.To, "err", err)
			sendError(c, sendErrText(err, "Failed to send private message"))
		}

	case chat.EvTyping:
		var isTyping bool
		if err := json.Unmarshal(msg.Payload, &isTyping); err != nil {
			return
		}
		s.sessions.SetTyping(c.ID(), isTyping)

	case chat.EvAddReaction:
		var req chat.AddReactionRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return
		}
		// Reactions are best-effort; the core logs its own failures.
		s.messages.AddReaction(ctx, c.ID(), req.MessageID, req.Reaction)

	default:
		// ignore unknown event types
	}
}

func (s *Server) writeLoop(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = c.sock.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		}
	}
}

func sendError(c *wsConn, text string) {
	_ = c.Send(chat.Event{Type: chat.EvError, Payload: chat.ErrorPayload{Message: text}})
}

// sendErrText maps core errors to the texts clients expect.
func sendErrText(err error, fallback string) string {
	switch {
	case errors.Is(err, domain.ErrNotJoined):
		return "User not authenticated"
	case errors.Is(err, domain.ErrRecipientNotFound):
		return "Recipient not found"
	default:
		return fallback
	}
}
