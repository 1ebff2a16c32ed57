package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openqb/quizroom-backend/internal/questions"
	"github.com/openqb/quizroom-backend/internal/room"
)

func testDeps() room.Deps {
	return room.Deps{Source: questions.NewMemorySource(questions.SampleTossups(), 1)}
}

func TestEnsureReturnsSamePointer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	reg := New(ctx, testDeps(), nil)

	first, err := reg.Ensure(ctx, "quiz", "alice", true)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "quiz", first.Name())

	second, err := reg.Ensure(ctx, "quiz", "bob", true)
	require.NoError(t, err)
	assert.Same(t, first, second, "ensure is create-if-absent")

	other, err := reg.Ensure(ctx, "other", "carol", false)
	require.NoError(t, err)
	assert.NotSame(t, first, other)
}

func TestEnsureOwnership(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	reg := New(ctx, testDeps(), nil)

	rm, err := reg.Ensure(ctx, "private", "alice", true)
	require.NoError(t, err)
	v, err := rm.View(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", v.OwnerID)
	assert.False(t, v.Settings.Public)

	rm, err = reg.Ensure(ctx, "open", "alice", false)
	require.NoError(t, err)
	v, err = rm.View(ctx)
	require.NoError(t, err)
	assert.True(t, v.Settings.Public)
}

func TestPermanentRoomsSeeded(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	reg := New(ctx, testDeps(), []string{"hq", "lounge"})

	rooms, err := reg.List(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 2)

	rm, err := reg.Ensure(ctx, "hq", "alice", true)
	require.NoError(t, err)
	v, err := rm.View(ctx)
	require.NoError(t, err)
	assert.True(t, v.Permanent)
	assert.True(t, v.Settings.Public)
	assert.Empty(t, v.OwnerID, "permanent rooms are ownerless")
}

func TestGetRoomMissingIsNil(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	reg := New(ctx, testDeps(), nil)

	reply := make(chan *room.Room, 1)
	reg.Inbox() <- GetRoom{Name: "ghost", Reply: reply}
	assert.Nil(t, <-reply)
}

func TestRemoveRoomShutsItDown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	reg := New(ctx, testDeps(), nil)

	_, err := reg.Ensure(ctx, "doomed", "alice", true)
	require.NoError(t, err)

	reg.Inbox() <- RemoveRoom{Name: "doomed"}

	require.Eventually(t, func() bool {
		rooms, err := reg.List(ctx)
		return err == nil && len(rooms) == 0
	}, time.Second, 2*time.Millisecond)
}
