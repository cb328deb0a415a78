package database

import "context"

type RoomRepository interface {
	Ping(ctx context.Context) error
	CreateRoom(ctx context.Context, params CreateRoomParams) (Room, error)
	GetRoomById(ctx context.Context, id int) (Room, error)
	GetRoomByEmail(ctx context.Context, email string) (Room, error)
	GetRoomByNumber(ctx context.Context, roomNumber string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	DeleteRoom(ctx context.Context, id int) error
	CreateActivity(ctx context.Context, params CreateActivityParams) (Activity, error)
	ListActivity(ctx context.Context) ([]Activity, error)
}
