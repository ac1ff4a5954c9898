// Package chat is the real-time coordination core: it tracks who is online,
// routes global and direct messages, keeps ephemeral typing state and pushes
// presence updates. It is transport-agnostic; a transport hands it inbound
// events and a Conn per client for outbound delivery.
package chat

// Conn is one live transport session. The core may call Send from multiple
// goroutines; implementations must serialize their own writes. Send is
// best-effort: a failed delivery never fails the operation that produced it.
type Conn interface {
	ID() string
	Send(ev Event) error
	Close() error
}
