package http

import (
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type UserItem struct {
	ID       string    `json:"id"`
	UserID   string    `json:"userId"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Avatar   string    `json:"avatar"`
	Bio      string    `json:"bio"`
	Status   string    `json:"status"`
	LastSeen time.Time `json:"lastSeen"`
}

type UsersResponse struct {
	Items []UserItem `json:"items"`
}

type ReactionItem struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Emoji     string    `json:"emoji"`
	ReactedAt time.Time `json:"reactedAt"`
}

type MessageItem struct {
	ID          string           `json:"id"`
	SenderID    string           `json:"senderId"`
	Sender      string           `json:"sender"`
	Message     string           `json:"message"`
	Kind        string           `json:"kind"`
	Timestamp   time.Time        `json:"timestamp"`
	File        *domain.FileMeta `json:"file,omitempty"`
	IsPrivate   bool             `json:"isPrivate,omitempty"`
	RecipientID string           `json:"recipientId,omitempty"`
	Recipient   string           `json:"recipient,omitempty"`
	Reactions   []ReactionItem   `json:"reactions,omitempty"`
}

type MessagesResponse struct {
	Items      []MessageItem `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

type UpdateProfileRequest struct {
	Username *string `json:"username"`
	Avatar   *string `json:"avatar"`
	Bio      *string `json:"bio"`
}
