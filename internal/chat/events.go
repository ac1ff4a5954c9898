package chat

import (
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

// Wire envelope. Every event crossing the transport is {"type": ..., "payload": ...}.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Inbound event types.
const (
	EvUserJoin    = "user_join"
	EvSendMessage = "send_message"
	EvTyping      = "typing"
	EvAddReaction = "add_reaction"
)

// Outbound event types. EvPrivateMessage is both: inbound it carries a
// PrivateMessageRequest, outbound a MessagePayload.
const (
	EvPrivateMessage   = "private_message"
	EvUserInfo         = "user_info"
	EvUserList         = "user_list"
	EvUserJoined       = "user_joined"
	EvUserLeft         = "user_left"
	EvReceiveMessage   = "receive_message"
	EvMessageHistory   = "message_history"
	EvMessageDelivered = "message_delivered"
	EvTypingUsers      = "typing_users"
	EvMessageReaction  = "message_reaction"
	EvError            = "error"
)

type JoinRequest struct {
	Username string `json:"username" validate:"required,min=2,max=50"`
	UserID   string `json:"userId" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	Avatar   string `json:"avatar"`
}

type SendMessageRequest struct {
	Message string           `json:"message"`
	File    *domain.FileMeta `json:"file,omitempty"`
}

type PrivateMessageRequest struct {
	To      string `json:"to"` // recipient connection id
	Message string `json:"message"`
}

type AddReactionRequest struct {
	MessageID string `json:"messageId"`
	Reaction  string `json:"reaction"`
}

type UserInfo struct {
	ID       string `json:"id"` // connection id
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
}

// RosterEntry is one user_list element; same shape as UserInfo.
type RosterEntry = UserInfo

// SystemNotice backs user_joined / user_left.
type SystemNotice struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type MessagePayload struct {
	ID          string           `json:"id"`
	SenderID    string           `json:"senderId"`
	Sender      string           `json:"sender"`
	Message     string           `json:"message"`
	Timestamp   time.Time        `json:"timestamp"`
	File        *domain.FileMeta `json:"file,omitempty"`
	IsPrivate   bool             `json:"isPrivate,omitempty"`
	RecipientID string           `json:"recipientId,omitempty"`
	Recipient   string           `json:"recipient,omitempty"`
}

type DeliveredPayload struct {
	MessageID string `json:"messageId"`
}

type ReactionPayload struct {
	MessageID string `json:"messageId"`
	Reaction  string `json:"reaction"`
	Username  string `json:"username"`
	UserID    string `json:"userId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func toMessagePayload(m *domain.Message) MessagePayload {
	return MessagePayload{
		ID:          m.ID,
		SenderID:    m.SenderID,
		Sender:      m.SenderName,
		Message:     m.Content,
		Timestamp:   m.CreatedAt,
		File:        m.File,
		IsPrivate:   m.IsPrivate,
		RecipientID: m.RecipientID,
		Recipient:   m.RecipientName,
	}
}
