package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureFriendEdgeIsIdempotent(t *testing.T) {
	store := NewMemoryFriendStore()
	service := &FriendService{Store: store}

	for i := 0; i < 3; i++ {
		require.NoError(t, service.EnsureFriendEdge(context.Background(), "alice", "bob"))
	}

	aliceFriends, err := store.GetFriendIDs(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, aliceFriends)

	bobFriends, err := store.GetFriendIDs(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, bobFriends)

	friends, err := service.AreFriends(context.Background(), "alice", "bob")
	require.NoError(t, err)
	assert.True(t, friends)
}

func TestEnsureFriendEdgeRepairsOneSidedEdge(t *testing.T) {
	store := NewMemoryFriendStore()
	service := &FriendService{Store: store}

	// Simulate a crash between the two writes of an earlier attempt
	require.NoError(t, store.AddFriend(context.Background(), "alice", "bob"))

	friends, err := service.AreFriends(context.Background(), "alice", "bob")
	require.NoError(t, err)
	assert.False(t, friends)

	require.NoError(t, service.EnsureFriendEdge(context.Background(), "alice", "bob"))

	friends, err = service.AreFriends(context.Background(), "alice", "bob")
	require.NoError(t, err)
	assert.True(t, friends)
}

func TestEnsureFriendEdgeSelfIsNoop(t *testing.T) {
	store := NewMemoryFriendStore()
	service := &FriendService{Store: store}

	require.NoError(t, service.EnsureFriendEdge(context.Background(), "alice", "alice"))

	ids, err := store.GetFriendIDs(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, ids)
}
