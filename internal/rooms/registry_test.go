package rooms

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/roomrelay/internal/domain"
)

func TestRegistry_AddUser(t *testing.T) {
	r := NewRegistry()

	u, err := r.AddUser(domain.User{ID: "c1", Username: "  Alice ", Room: " Lobby"})
	require.NoError(t, err)
	assert.Equal(t, domain.User{ID: "c1", Username: "alice", Room: "lobby"}, u)
	assert.Equal(t, 1, r.Len())

	t.Run("duplicate username in same room is a conflict", func(t *testing.T) {
		_, err := r.AddUser(domain.User{ID: "c2", Username: "ALICE", Room: "lobby "})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.Equal(t, domain.MsgUsernameInUse, err.Error())
		assert.Equal(t, 1, r.Len())
	})

	t.Run("same username in another room is allowed", func(t *testing.T) {
		_, err := r.AddUser(domain.User{ID: "c3", Username: "alice", Room: "kitchen"})
		require.NoError(t, err)
	})

	t.Run("second join on the same connection is a conflict", func(t *testing.T) {
		_, err := r.AddUser(domain.User{ID: "c1", Username: "bob", Room: "garage"})
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.Equal(t, domain.MsgAlreadyJoined, err.Error())
	})
}

func TestRegistry_AddUser_Validation(t *testing.T) {
	tests := []struct {
		name string
		user domain.User
	}{
		{"empty username", domain.User{ID: "c1", Username: "", Room: "r1"}},
		{"blank username", domain.User{ID: "c1", Username: "   ", Room: "r1"}},
		{"empty room", domain.User{ID: "c1", Username: "alice", Room: ""}},
		{"blank room", domain.User{ID: "c1", Username: "alice", Room: "\t"}},
		{"missing id", domain.User{ID: "", Username: "alice", Room: "r1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			_, err := r.AddUser(tt.user)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Equal(t, domain.MsgMissingFields, err.Error())
			assert.Zero(t, r.Len())
		})
	}
}

func TestRegistry_RemoveAndGet(t *testing.T) {
	r := NewRegistry()
	_, err := r.AddUser(domain.User{ID: "c1", Username: "alice", Room: "r1"})
	require.NoError(t, err)

	got, ok := r.GetUser("c1")
	require.True(t, ok)
	assert.Equal(t, "alice", got.Username)

	removed, ok := r.RemoveUser("c1")
	require.True(t, ok)
	assert.Equal(t, "alice", removed.Username)

	_, ok = r.GetUser("c1")
	assert.False(t, ok)

	_, ok = r.RemoveUser("c1")
	assert.False(t, ok, "removing an unknown id is a no-op")
	assert.Zero(t, r.Len())

	t.Run("username is free again after removal", func(t *testing.T) {
		_, err := r.AddUser(domain.User{ID: "c9", Username: "Alice", Room: "R1"})
		assert.NoError(t, err)
	})
}

func TestRegistry_GetUsersInRoom(t *testing.T) {
	r := NewRegistry()
	for _, u := range []domain.User{
		{ID: "1", Username: "alice", Room: "R1"},
		{ID: "2", Username: "bob", Room: "r2"},
		{ID: "3", Username: "carol", Room: "r1"},
	} {
		_, err := r.AddUser(u)
		require.NoError(t, err)
	}

	users := r.GetUsersInRoom("  r1 ")
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "carol", users[1].Username)

	assert.Empty(t, r.GetUsersInRoom("nowhere"))
	assert.NotNil(t, r.GetUsersInRoom("nowhere"))

	r.RemoveUser("1")
	users = r.GetUsersInRoom("R1")
	require.Len(t, users, 1)
	assert.Equal(t, "carol", users[0].Username)

	assert.Equal(t, []string{"r1", "r2"}, r.Rooms())
	r.RemoveUser("2")
	assert.Equal(t, []string{"r1"}, r.Rooms(), "an empty room is no longer enumerable")
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	const n = 50

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("c%d", i)
			_, err := r.AddUser(domain.User{ID: id, Username: id, Room: "busy"})
			assert.NoError(t, err)
			r.GetUsersInRoom("busy")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, n, r.Len())
	assert.Len(t, r.GetUsersInRoom("busy"), n)
}

func TestRegistry_Snapshot(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.Snapshot())

	_, err := r.AddUser(domain.User{ID: "1", Username: "zed", Room: "beta"})
	require.NoError(t, err)
	_, err = r.AddUser(domain.User{ID: "2", Username: "amy", Room: "alpha"})
	require.NoError(t, err)
	_, err = r.AddUser(domain.User{ID: "3", Username: "bob", Room: "Beta"})
	require.NoError(t, err)

	snap := r.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "alpha", snap[0].Room)
	assert.Equal(t, []string{"amy"}, usernames(snap[0].Users))
	assert.Equal(t, "beta", snap[1].Room)
	assert.Equal(t, []string{"zed", "bob"}, usernames(snap[1].Users), "members keep join order")
}

func usernames(users []domain.User) []string {
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Username)
	}
	return names
}
