package database

import "time"

type Room struct {
	Id          int
	RoomNumber  string
	Description string
	Email       string
	CreatedAt   time.Time
}

type Activity struct {
	Id        int
	UserEmail string
	Action    string
	Timestamp time.Time
}

type CreateRoomParams struct {
	RoomNumber  string
	Description string
	Email       string
}

type CreateActivityParams struct {
	UserEmail string
	Action    string
}
