package postgres

import (
	"context"
	"errors"

	"github.com/cwrk-planet/chat-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, external_id, username, email, avatar, bio, status, last_seen, created_at, updated_at`

func (r *UserRepository) FindByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE external_id=$1`, externalID)
	return scanUser(row)
}

// Upsert creates the user on first join; later joins refresh the identity
// fields and status. An empty email never clobbers a stored one.
func (r *UserRepository) Upsert(ctx context.Context, u domain.User) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (external_id, username, email, avatar, status, last_seen)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (external_id) DO UPDATE SET
			username  = EXCLUDED.username,
			email     = COALESCE(NULLIF(EXCLUDED.email, ''), users.email),
			avatar    = EXCLUDED.avatar,
			status    = EXCLUDED.status,
			last_seen = now(),
			updated_at = now()
		RETURNING `+userColumns,
		u.ExternalID, u.Username, u.Email, u.Avatar, u.Status)

	out, err := scanUser(row)
	if err != nil {
		return nil, storeErr("upsert user", err)
	}
	return out, nil
}

func (r *UserRepository) SetStatus(ctx context.Context, externalID string, status domain.UserStatus) error {
	cmd, err := r.db.Exec(ctx,
		`UPDATE users SET status=$2, last_seen=now(), updated_at=now() WHERE external_id=$1`,
		externalID, status)
	if err != nil {
		return storeErr("set user status", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users ORDER BY last_seen DESC`)
}

func (r *UserRepository) ListOnline(ctx context.Context) ([]domain.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users WHERE status='online' ORDER BY last_seen DESC`)
}

// UpdateProfile changes only the fields present in upd.
func (r *UserRepository) UpdateProfile(ctx context.Context, externalID string, upd domain.ProfileUpdate) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE users SET
			username   = COALESCE($2, username),
			avatar     = COALESCE($3, avatar),
			bio        = COALESCE($4, bio),
			updated_at = now()
		WHERE external_id=$1
		RETURNING `+userColumns,
		externalID, upd.Username, upd.Avatar, upd.Bio)
	return scanUser(row)
}

func (r *UserRepository) list(ctx context.Context, query string) ([]domain.User, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, storeErr("list users", err)
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, storeErr("list users", err)
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.ExternalID, &u.Username, &u.Email, &u.Avatar, &u.Bio,
		&u.Status, &u.LastSeen, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
