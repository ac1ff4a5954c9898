package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/postgres"
	httpmw "github.com/cwrk-planet/chat-service/internal/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
)

type UserDirectory interface {
	FindByExternalID(ctx context.Context, externalID string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	ListOnline(ctx context.Context) ([]domain.User, error)
	UpdateProfile(ctx context.Context, externalID string, upd domain.ProfileUpdate) (*domain.User, error)
}

type MessageArchive interface {
	History(ctx context.Context, limit int, cursor string) ([]domain.Message, string, error)
	Conversation(ctx context.Context, userA, userB string, limit int, cursor string) ([]domain.Message, string, error)
}

// Moderator routes deletes through the chat core's authorization rules.
type Moderator interface {
	DeleteMessage(ctx context.Context, requesterUserID, messageID string) error
}

type Handler struct {
	users   UserDirectory
	archive MessageArchive
	mod     Moderator
}

func NewHandler(users UserDirectory, archive MessageArchive, mod Moderator) *Handler {
	return &Handler{users: users, archive: archive, mod: mod}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// GET /messages/recent?limit=&cursor=
func (h *Handler) RecentMessages(w http.ResponseWriter, r *http.Request) {
	limit, cursor := pageParams(r)

	msgs, next, err := h.archive.History(r.Context(), limit, cursor)
	if err != nil {
		h.writeMessagesErr(w, "handler.RecentMessages", err)
		return
	}
	writeJSON(w, http.StatusOK, toMessagesResponse(msgs, next))
}

// GET /messages/conversation/{userA}/{userB}?limit=&cursor=
func (h *Handler) Conversation(w http.ResponseWriter, r *http.Request) {
	userA := chi.URLParam(r, "userA")
	userB := chi.URLParam(r, "userB")
	requester := httpmw.UserIDFromCtx(r.Context())
	if requester != userA && requester != userB {
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "not a party to this conversation"})
		return
	}
	limit, cursor := pageParams(r)

	msgs, next, err := h.archive.Conversation(r.Context(), userA, userB, limit, cursor)
	if err != nil {
		h.writeMessagesErr(w, "handler.Conversation", err)
		return
	}
	writeJSON(w, http.StatusOK, toMessagesResponse(msgs, next))
}

// DELETE /messages/{id}
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	requester := httpmw.UserIDFromCtx(r.Context())

	err := h.mod.DeleteMessage(r.Context(), requester, id)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, domain.ErrMessageNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "message not found"})
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "only the sender can delete a message"})
	default:
		slog.Error("handler.DeleteMessage:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}

// GET /users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		slog.Error("handler.ListUsers:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, UsersResponse{Items: lo.Map(users, toUserItem)})
}

// GET /users/online
func (h *Handler) ListOnlineUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListOnline(r.Context())
	if err != nil {
		slog.Error("handler.ListOnlineUsers:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, UsersResponse{Items: lo.Map(users, toUserItem)})
}

// GET /users/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user, err := h.users.FindByExternalID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		slog.Error("handler.GetUser:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, toUserItem(*user, 0))
}

// PUT /users/{id}
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if httpmw.UserIDFromCtx(r.Context()) != id {
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "cannot update another user's profile"})
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), id, domain.ProfileUpdate{
		Username: req.Username,
		Avatar:   req.Avatar,
		Bio:      req.Bio,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		slog.Error("handler.UpdateProfile:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, toUserItem(*user, 0))
}

func (h *Handler) writeMessagesErr(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, postgres.ErrInvalidCursor) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_cursor"})
		return
	}
	slog.Error(op+":", slog.Any("err", err))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
}

func pageParams(r *http.Request) (int, string) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}
	return limit, r.URL.Query().Get("cursor")
}

func toMessagesResponse(msgs []domain.Message, next string) MessagesResponse {
	return MessagesResponse{
		Items:      lo.Map(msgs, toMessageItem),
		NextCursor: next,
	}
}

func toMessageItem(m domain.Message, _ int) MessageItem {
	return MessageItem{
		ID:          m.ID,
		SenderID:    m.SenderID,
		Sender:      m.SenderName,
		Message:     m.Content,
		Kind:        string(m.Kind),
		Timestamp:   m.CreatedAt,
		File:        m.File,
		IsPrivate:   m.IsPrivate,
		RecipientID: m.RecipientID,
		Recipient:   m.RecipientName,
		Reactions: lo.Map(m.Reactions, func(r domain.Reaction, _ int) ReactionItem {
			return ReactionItem{UserID: r.UserID, Username: r.Username, Emoji: r.Emoji, ReactedAt: r.ReactedAt}
		}),
	}
}

func toUserItem(u domain.User, _ int) UserItem {
	return UserItem{
		ID:       u.ID,
		UserID:   u.ExternalID,
		Username: u.Username,
		Email:    u.Email,
		Avatar:   u.Avatar,
		Bio:      u.Bio,
		Status:   string(u.Status),
		LastSeen: u.LastSeen,
	}
}
