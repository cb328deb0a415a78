package database

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemRoomRepository_Rooms(t *testing.T) {
	ctx := context.Background()
	repo := NewMemRoomRepository()

	room, err := repo.CreateRoom(ctx, CreateRoomParams{RoomNumber: "101", Description: "double room", Email: "alice@g.nsu.ru"})
	require.NoError(t, err)
	assert.Equal(t, 1, room.Id)

	_, err = repo.CreateRoom(ctx, CreateRoomParams{RoomNumber: "102", Description: "other", Email: "alice@g.nsu.ru"})
	assert.ErrorIs(t, err, ErrDuplicateOwner)

	_, err = repo.CreateRoom(ctx, CreateRoomParams{RoomNumber: "101", Description: "other", Email: "bob@g.nsu.ru"})
	assert.ErrorIs(t, err, ErrDuplicateRoomNumber)

	got, err := repo.GetRoomByNumber(ctx, "101")
	require.NoError(t, err)
	assert.Equal(t, room, got)

	_, err = repo.GetRoomByEmail(ctx, "bob@g.nsu.ru")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, repo.DeleteRoom(ctx, room.Id))
	assert.ErrorIs(t, repo.DeleteRoom(ctx, room.Id), sql.ErrNoRows)

	_, err = repo.GetRoomById(ctx, room.Id)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	rooms, err := repo.ListRooms(ctx)
	require.NoError(t, err)
	assert.NotNil(t, rooms)
	assert.Empty(t, rooms)

	next, err := repo.CreateRoom(ctx, CreateRoomParams{RoomNumber: "101", Description: "again", Email: "bob@g.nsu.ru"})
	require.NoError(t, err)
	assert.Equal(t, 2, next.Id, "expected ids not to be reused")
}

func TestMemRoomRepository_RoomNumberWidth(t *testing.T) {
	repo := NewMemRoomRepository()

	_, err := repo.CreateRoom(context.Background(), CreateRoomParams{
		RoomNumber:  strings.Repeat("9", RoomNumberWidth+1),
		Description: "too long",
		Email:       "alice@g.nsu.ru",
	})
	assert.ErrorIs(t, err, ErrValueTooLong)

	rooms, err := repo.ListRooms(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestMemRoomRepository_Activity(t *testing.T) {
	ctx := context.Background()
	repo := NewMemRoomRepository()

	for _, action := range []string{"GET /login", "POST /login", "GET /"} {
		_, err := repo.CreateActivity(ctx, CreateActivityParams{UserEmail: "alice@g.nsu.ru", Action: action})
		require.NoError(t, err)
	}

	activity, err := repo.ListActivity(ctx)
	require.NoError(t, err)
	require.Len(t, activity, 3)
	assert.Equal(t, "GET /", activity[0].Action, "expected most recent first")
	assert.Equal(t, "GET /login", activity[2].Action)
}
