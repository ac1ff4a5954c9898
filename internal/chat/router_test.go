package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

func newTestRouter(t *testing.T) (*Router, *Registry, *fakeMessageStore) {
	t.Helper()
	reg := NewRegistry()
	store := newFakeMessageStore()
	return NewRouter(reg, store, testLogger()), reg, store
}

func TestSendGlobalBroadcastsToEveryoneIncludingSender(t *testing.T) {
	// Given three joined participants
	rt, reg, _ := newTestRouter(t)
	a := joined(reg, "c1", "u1", "alice")
	b := joined(reg, "c2", "u2", "bob")
	c := joined(reg, "c3", "u3", "carol")

	// When alice sends a global message
	err := rt.SendGlobal(context.Background(), "c1", "hello everyone", nil)
	require.NoError(t, err)

	// Then every connection receives the identical server copy
	var payloads []MessagePayload
	for _, conn := range []*fakeConn{a, b, c} {
		ev, ok := conn.lastOfType(EvReceiveMessage)
		require.True(t, ok)
		payloads = append(payloads, ev.Payload.(MessagePayload))
	}
	require.Equal(t, payloads[0], payloads[1])
	require.Equal(t, payloads[0], payloads[2])
	require.Equal(t, "hello everyone", payloads[0].Message)
	require.Equal(t, "alice", payloads[0].Sender)
	require.NotEmpty(t, payloads[0].ID)

	// And only the sender gets the delivery ack, matching the message id
	ack, ok := a.lastOfType(EvMessageDelivered)
	require.True(t, ok)
	require.Equal(t, payloads[0].ID, ack.Payload.(DeliveredPayload).MessageID)
	require.Empty(t, b.eventsOfType(EvMessageDelivered))
	require.Empty(t, c.eventsOfType(EvMessageDelivered))
}

func TestSendGlobalFromUnjoinedConnection(t *testing.T) {
	rt, _, _ := newTestRouter(t)

	err := rt.SendGlobal(context.Background(), "ghost", "hello", nil)

	require.ErrorIs(t, err, domain.ErrNotJoined)
}

func TestSendGlobalRejectsEmptyAndOversizedContent(t *testing.T) {
	rt, reg, store := newTestRouter(t)
	joined(reg, "c1", "u1", "alice")
	rt.SetMaxMessageLength(10)

	require.Error(t, rt.SendGlobal(context.Background(), "c1", "   ", nil))
	require.Error(t, rt.SendGlobal(context.Background(), "c1", strings.Repeat("x", 11), nil))
	require.Empty(t, store.order)
}

func TestSendGlobalStoreFailureBroadcastsNothing(t *testing.T) {
	// Given a store that refuses writes
	rt, reg, store := newTestRouter(t)
	a := joined(reg, "c1", "u1", "alice")
	b := joined(reg, "c2", "u2", "bob")
	store.createErr = domain.ErrStorageUnavailable

	// When alice tries to send
	err := rt.SendGlobal(context.Background(), "c1", "hello", nil)

	// Then the sender gets the error and nobody saw a message
	require.ErrorIs(t, err, domain.ErrStorageUnavailable)
	require.Empty(t, a.eventsOfType(EvReceiveMessage))
	require.Empty(t, b.eventsOfType(EvReceiveMessage))
	require.Empty(t, a.eventsOfType(EvMessageDelivered))
}

func TestSendGlobalWithFilePersistsFileKind(t *testing.T) {
	rt, reg, store := newTestRouter(t)
	joined(reg, "c1", "u1", "alice")
	file := &domain.FileMeta{Name: "cat.png", Type: "image/png", Size: 12}

	require.NoError(t, rt.SendGlobal(context.Background(), "c1", "look at this", file))

	m := store.msgs[store.order[0]]
	require.Equal(t, domain.KindFile, m.Kind)
	require.Equal(t, "cat.png", m.File.Name)
}

func TestSendDirectReachesOnlySenderAndRecipient(t *testing.T) {
	// Given alice, bob and an uninvolved carol
	rt, reg, store := newTestRouter(t)
	a := joined(reg, "c1", "u1", "alice")
	b := joined(reg, "c2", "u2", "bob")
	c := joined(reg, "c3", "u3", "carol")

	// When alice messages bob directly
	require.NoError(t, rt.SendDirect(context.Background(), "c1", "c2", "psst"))

	// Then both ends hold the same private copy and carol sees nothing
	got, ok := b.lastOfType(EvPrivateMessage)
	require.True(t, ok)
	echo, ok := a.lastOfType(EvPrivateMessage)
	require.True(t, ok)
	require.Equal(t, got.Payload, echo.Payload)

	p := got.Payload.(MessagePayload)
	require.True(t, p.IsPrivate)
	require.Equal(t, "psst", p.Message)
	require.Equal(t, "bob", p.Recipient)
	require.Empty(t, c.events)

	// And the persisted row is marked private
	require.True(t, store.msgs[p.ID].IsPrivate)

	// And the ack goes to alice only
	require.Len(t, a.eventsOfType(EvMessageDelivered), 1)
	require.Empty(t, b.eventsOfType(EvMessageDelivered))
}

func TestSendDirectToUnknownRecipient(t *testing.T) {
	rt, reg, _ := newTestRouter(t)
	joined(reg, "c1", "u1", "alice")

	err := rt.SendDirect(context.Background(), "c1", "gone", "psst")

	require.ErrorIs(t, err, domain.ErrRecipientNotFound)
}

func TestSendDirectToSelfIsRejected(t *testing.T) {
	rt, reg, store := newTestRouter(t)
	joined(reg, "c1", "u1", "alice")

	err := rt.SendDirect(context.Background(), "c1", "c1", "hello me")

	require.Error(t, err)
	require.Empty(t, store.order)
}

func TestAddReactionBroadcastsAndCollapsesDuplicates(t *testing.T) {
	// Given a persisted global message
	rt, reg, store := newTestRouter(t)
	a := joined(reg, "c1", "u1", "alice")
	b := joined(reg, "c2", "u2", "bob")
	require.NoError(t, rt.SendGlobal(context.Background(), "c1", "react to me", nil))
	msgID := store.order[0]

	// When bob reacts twice with the same emoji
	rt.AddReaction(context.Background(), "c2", msgID, "🔥")
	rt.AddReaction(context.Background(), "c2", msgID, "🔥")

	// Then the store holds a single entry keyed by bob's user id
	reactions := store.reactions(msgID)
	require.Len(t, reactions, 1)
	require.Equal(t, "u2", reactions[0].UserID)
	require.Equal(t, "🔥", reactions[0].Emoji)

	// And everyone was notified
	ev, ok := a.lastOfType(EvMessageReaction)
	require.True(t, ok)
	rp := ev.Payload.(ReactionPayload)
	require.Equal(t, msgID, rp.MessageID)
	require.Equal(t, "bob", rp.Username)
	require.NotEmpty(t, b.eventsOfType(EvMessageReaction))
}

func TestAddReactionOnMissingMessageStaysSilent(t *testing.T) {
	rt, reg, _ := newTestRouter(t)
	a := joined(reg, "c1", "u1", "alice")

	rt.AddReaction(context.Background(), "c1", "no-such-message", "🔥")

	require.Empty(t, a.eventsOfType(EvMessageReaction))
}

func TestDeleteMessageOnlyBySender(t *testing.T) {
	// Given a message from alice
	rt, reg, store := newTestRouter(t)
	joined(reg, "c1", "u1", "alice")
	require.NoError(t, rt.SendGlobal(context.Background(), "c1", "regret", nil))
	msgID := store.order[0]

	// When bob tries to delete it
	err := rt.DeleteMessage(context.Background(), "u2", msgID)

	// Then the delete is refused and the message survives
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	require.False(t, store.isDeleted(msgID))

	// When alice deletes her own message
	require.NoError(t, rt.DeleteMessage(context.Background(), "u1", msgID))
	require.True(t, store.isDeleted(msgID))

	// And a repeated delete is a quiet no-op
	require.NoError(t, rt.DeleteMessage(context.Background(), "u1", msgID))
}

func TestDeleteMissingMessage(t *testing.T) {
	rt, _, _ := newTestRouter(t)

	err := rt.DeleteMessage(context.Background(), "u1", "no-such-message")

	require.ErrorIs(t, err, domain.ErrMessageNotFound)
}
