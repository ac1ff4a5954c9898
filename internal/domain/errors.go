package domain

import "errors"

var (
	ErrNotJoined           = errors.New("connection has not joined the chat")
	ErrJoinRejected        = errors.New("join payload rejected")
	ErrRecipientNotFound   = errors.New("recipient not connected")
	ErrUnauthorized        = errors.New("operation not allowed for this user")
	ErrMessageNotFound     = errors.New("message not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrStorageUnavailable  = errors.New("storage unavailable")
	ErrDuplicateConnection = errors.New("connection already registered")
)
