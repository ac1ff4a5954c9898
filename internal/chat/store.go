package chat

import (
	"context"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

// The store is an external collaborator. Any failure from it is expected to
// wrap domain.ErrStorageUnavailable so the core can surface an error event
// instead of crashing the connection handler.

type UserStore interface {
	// Upsert creates the user on first join and refreshes identity fields
	// and status on subsequent joins.
	Upsert(ctx context.Context, u domain.User) (*domain.User, error)
	SetStatus(ctx context.Context, externalID string, status domain.UserStatus) error
}

type MessageStore interface {
	// Create assigns ID and CreatedAt on the passed message.
	Create(ctx context.Context, m *domain.Message) error
	FindByID(ctx context.Context, id string) (*domain.Message, error)
	SoftDelete(ctx context.Context, id string) error
	// AddReaction is an atomic add-if-absent keyed by (userId, emoji).
	// It reports false when the message does not exist or is deleted.
	AddReaction(ctx context.Context, messageID string, r domain.Reaction) (bool, error)
	// RecentGlobal returns non-deleted global messages, newest first.
	RecentGlobal(ctx context.Context, limit int) ([]domain.Message, error)
}
