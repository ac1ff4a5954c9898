package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/cwrk-planet/chat-service/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepository struct {
	db *pgxpool.Pool
}

func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

const messageColumns = `id, sender_id, sender_user_id, sender_name, content, kind,
	is_private, recipient_id, recipient_user_id, recipient_name,
	file, reactions, created_at, is_deleted, deleted_at`

func (r *MessageRepository) Create(ctx context.Context, m *domain.Message) error {
	var file []byte
	if m.File != nil {
		b, err := json.Marshal(m.File)
		if err != nil {
			return storeErr("encode file meta", err)
		}
		file = b
	}

	err := r.db.QueryRow(ctx, `
		INSERT INTO messages
			(sender_id, sender_user_id, sender_name, content, kind,
			 is_private, recipient_id, recipient_user_id, recipient_name, file)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`,
		m.SenderID, m.SenderUserID, m.SenderName, m.Content, m.Kind,
		m.IsPrivate, nullStr(m.RecipientID), nullStr(m.RecipientUserID), nullStr(m.RecipientName), file,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return storeErr("create message", err)
	}
	return nil
}

func (r *MessageRepository) FindByID(ctx context.Context, id string) (*domain.Message, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrMessageNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+messageColumns+` FROM messages WHERE id=$1`, id)
	m, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, storeErr("find message", err)
	}
	return m, nil
}

func (r *MessageRepository) SoftDelete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrMessageNotFound
	}
	cmd, err := r.db.Exec(ctx,
		`UPDATE messages SET is_deleted=TRUE, deleted_at=now() WHERE id=$1 AND NOT is_deleted`, id)
	if err != nil {
		return storeErr("soft delete message", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrMessageNotFound
	}
	return nil
}

// AddReaction appends the reaction to the message row unless an entry with
// the same (userId, emoji) is already there. One UPDATE, so concurrent
// reactions on the same message never lose each other. Reports false when
// the message is missing or deleted.
func (r *MessageRepository) AddReaction(ctx context.Context, messageID string, reaction domain.Reaction) (bool, error) {
	if _, err := uuid.Parse(messageID); err != nil {
		return false, nil
	}

	entry, err := json.Marshal([]domain.Reaction{reaction})
	if err != nil {
		return false, storeErr("encode reaction", err)
	}
	dupKey, err := json.Marshal([]map[string]string{{
		"userId": reaction.UserID,
		"emoji":  reaction.Emoji,
	}})
	if err != nil {
		return false, storeErr("encode reaction key", err)
	}

	cmd, err := r.db.Exec(ctx, `
		UPDATE messages
		SET reactions = CASE
			WHEN reactions @> $2::jsonb THEN reactions
			ELSE reactions || $3::jsonb
		END
		WHERE id=$1 AND NOT is_deleted`,
		messageID, dupKey, entry)
	if err != nil {
		return false, storeErr("add reaction", err)
	}
	return cmd.RowsAffected() > 0, nil
}

// RecentGlobal returns the newest non-deleted global messages, newest first.
func (r *MessageRepository) RecentGlobal(ctx context.Context, limit int) ([]domain.Message, error) {
	msgs, _, err := r.History(ctx, limit, "")
	return msgs, err
}

// History pages through global messages with a keyset cursor, newest first.
func (r *MessageRepository) History(ctx context.Context, limit int, cursor string) ([]domain.Message, string, error) {
	return r.page(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE NOT is_private AND NOT is_deleted
		  AND ($1::timestamptz IS NULL
		       OR created_at < $1
		       OR (created_at = $1 AND id < $2))
		ORDER BY created_at DESC, id DESC
		LIMIT $3`,
		limit, cursor)
}

// Conversation pages through the direct messages exchanged between two users,
// identified by external id, newest first.
func (r *MessageRepository) Conversation(ctx context.Context, userA, userB string, limit int, cursor string) ([]domain.Message, string, error) {
	return r.page(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE is_private AND NOT is_deleted
		  AND ((sender_user_id = $4 AND recipient_user_id = $5)
		       OR (sender_user_id = $5 AND recipient_user_id = $4))
		  AND ($1::timestamptz IS NULL
		       OR created_at < $1
		       OR (created_at = $1 AND id < $2))
		ORDER BY created_at DESC, id DESC
		LIMIT $3`,
		limit, cursor, userA, userB)
}

func (r *MessageRepository) page(ctx context.Context, query string, limit int, cursor string, extra ...any) ([]domain.Message, string, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	cur, err := DecodeCursor(cursor)
	if err != nil {
		return nil, "", err
	}

	var createdAt, id any
	if cur != nil {
		createdAt = cur.CreatedAt
		id = cur.ID
	}
	args := append([]any{createdAt, id, limit}, extra...)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, "", storeErr("query messages", err)
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, "", storeErr("scan message", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, "", storeErr("query messages", err)
	}

	var next string
	if len(out) == limit {
		last := out[len(out)-1]
		if c, e := EncodeCursor(Cursor{CreatedAt: last.CreatedAt, ID: last.ID}); e == nil {
			next = c
		}
	}
	return out, next, nil
}

func scanMessage(row rowScanner) (*domain.Message, error) {
	var (
		m                     domain.Message
		recipientID           *string
		recipientUserID       *string
		recipientName         *string
		fileRaw, reactionsRaw []byte
	)
	err := row.Scan(
		&m.ID, &m.SenderID, &m.SenderUserID, &m.SenderName, &m.Content, &m.Kind,
		&m.IsPrivate, &recipientID, &recipientUserID, &recipientName,
		&fileRaw, &reactionsRaw, &m.CreatedAt, &m.IsDeleted, &m.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	if recipientID != nil {
		m.RecipientID = *recipientID
	}
	if recipientUserID != nil {
		m.RecipientUserID = *recipientUserID
	}
	if recipientName != nil {
		m.RecipientName = *recipientName
	}
	if len(fileRaw) > 0 {
		var f domain.FileMeta
		if err := json.Unmarshal(fileRaw, &f); err != nil {
			return nil, err
		}
		m.File = &f
	}
	if len(reactionsRaw) > 0 {
		if err := json.Unmarshal(reactionsRaw, &m.Reactions); err != nil {
			return nil, err
		}
	}
	return &m, nil
}

func nullStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
