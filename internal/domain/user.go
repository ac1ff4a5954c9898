package domain

import "time"

type UserStatus string

const (
	StatusOnline  UserStatus = "online"
	StatusOffline UserStatus = "offline"
	StatusAway    UserStatus = "away"
	StatusBusy    UserStatus = "busy"
)

// ProfileUpdate carries optional profile changes; nil fields are untouched.
type ProfileUpdate struct {
	Username *string
	Avatar   *string
	Bio      *string
}

type User struct {
	ID         string     `db:"id"`
	ExternalID string     `db:"external_id"` // identity provider id, unique
	Username   string     `db:"username"`
	Email      string     `db:"email"`
	Avatar     string     `db:"avatar"`
	Bio        string     `db:"bio"`
	Status     UserStatus `db:"status"`
	LastSeen   time.Time  `db:"last_seen"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
}
