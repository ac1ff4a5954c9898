package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypingTrackerOrdersNamesOldestFirst(t *testing.T) {
	tr := NewTypingTracker()

	tr.Set("c1", "alice")
	tr.Set("c2", "bob")
	tr.Set("c1", "alice") // refresh must not reorder

	require.Equal(t, []string{"alice", "bob"}, tr.Names())
}

func TestTypingTrackerClearRemovesEntry(t *testing.T) {
	tr := NewTypingTracker()
	tr.Set("c1", "alice")
	tr.Set("c2", "bob")

	tr.Clear("c1")

	require.Equal(t, []string{"bob"}, tr.Names())
}

func TestTypingTrackerClearIsIdempotent(t *testing.T) {
	tr := NewTypingTracker()
	tr.Set("c1", "alice")

	tr.Clear("c1")
	tr.Clear("c1")
	tr.Clear("unknown")

	require.Empty(t, tr.Names())
}
