package ws

import (
	"time"

	"github.com/cwrk-planet/chat-service/internal/chat"

	"github.com/gorilla/websocket"
)

// wsConn adapts a gorilla connection to chat.Conn. Writes are serialized
// through sendMu because the core broadcasts from many goroutines.
type wsConn struct {
	id     string
	sock   *websocket.Conn
	sendMu chan struct{}
	closed chan struct{}
}

func newWsConn(id string, sock *websocket.Conn) *wsConn {
	return &wsConn{
		id:     id,
		sock:   sock,
		sendMu: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

func (c *wsConn) ID() string { return c.id }

func (c *wsConn) Send(ev chat.Event) error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()
	c.sock.SetWriteDeadline(time.Now().Add(5 * time.Second))

	return c.sock.WriteJSON(ev)
}

func (c *wsConn) Close() error {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}

	return c.sock.Close()
}
