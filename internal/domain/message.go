package domain

import "time"

type MessageKind string

const (
	KindText   MessageKind = "text"
	KindFile   MessageKind = "file"
	KindSystem MessageKind = "system"
)

// Message is immutable once persisted; only the moderation fields
// (IsDeleted/DeletedAt) and Reactions change afterwards.
// Sender and recipient names are denormalized at send time: a later
// username change does not rewrite history.
type Message struct {
	ID            string      `db:"id"`
	SenderID      string      `db:"sender_id"`      // connection id at send time
	SenderUserID  string      `db:"sender_user_id"` // external identity, stable across reconnects
	SenderName    string      `db:"sender_name"`
	Content       string      `db:"content"`
	Kind          MessageKind `db:"kind"`
	IsPrivate       bool   `db:"is_private"`
	RecipientID     string `db:"recipient_id"` // connection id, set iff IsPrivate
	RecipientUserID string `db:"recipient_user_id"`
	RecipientName   string `db:"recipient_name"`
	File          *FileMeta   `db:"file"`
	Reactions     []Reaction  `db:"reactions"`
	CreatedAt     time.Time   `db:"created_at"`
	IsDeleted     bool        `db:"is_deleted"`
	DeletedAt     *time.Time  `db:"deleted_at"`
}

// Reaction entries are unique per (UserID, Emoji) within a message.
type Reaction struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Emoji     string    `json:"emoji"`
	ReactedAt time.Time `json:"reactedAt"`
}

type FileMeta struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
	Data string `json:"data"`
}
