package database

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"
	"unicode/utf8"
)

// MemoryDSN selects MemRoomRepository instead of Postgres.
const MemoryDSN = "memory"

// MemRoomRepository is a process-local RoomRepository. It enforces the same
// unique constraints as the Postgres schema and loses everything on exit.
type MemRoomRepository struct {
	mu             sync.Mutex
	nextRoomId     int
	nextActivityId int
	rooms          []Room
	activity       []Activity
}

func NewMemRoomRepository() *MemRoomRepository {
	return &MemRoomRepository{nextRoomId: 1, nextActivityId: 1}
}

func (m *MemRoomRepository) Ping(context.Context) error { return nil }

func (m *MemRoomRepository) CreateRoom(_ context.Context, params CreateRoomParams) (Room, error) {
	if utf8.RuneCountInString(params.RoomNumber) > RoomNumberWidth {
		return Room{}, ErrValueTooLong
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.rooms {
		if r.Email == params.Email {
			return Room{}, ErrDuplicateOwner
		}
		if r.RoomNumber == params.RoomNumber {
			return Room{}, ErrDuplicateRoomNumber
		}
	}

	room := Room{
		Id:          m.nextRoomId,
		RoomNumber:  params.RoomNumber,
		Description: params.Description,
		Email:       params.Email,
		CreatedAt:   time.Now().UTC(),
	}
	m.nextRoomId++
	m.rooms = append(m.rooms, room)

	return room, nil
}

func (m *MemRoomRepository) findRoom(match func(Room) bool) (Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.rooms {
		if match(r) {
			return r, nil
		}
	}
	return Room{}, sql.ErrNoRows
}

func (m *MemRoomRepository) GetRoomById(_ context.Context, id int) (Room, error) {
	return m.findRoom(func(r Room) bool { return r.Id == id })
}

func (m *MemRoomRepository) GetRoomByEmail(_ context.Context, email string) (Room, error) {
	return m.findRoom(func(r Room) bool { return r.Email == email })
}

func (m *MemRoomRepository) GetRoomByNumber(_ context.Context, roomNumber string) (Room, error) {
	return m.findRoom(func(r Room) bool { return r.RoomNumber == roomNumber })
}

func (m *MemRoomRepository) ListRooms(context.Context) ([]Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append(make([]Room, 0, len(m.rooms)), m.rooms...), nil
}

func (m *MemRoomRepository) DeleteRoom(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, r := range m.rooms {
		if r.Id == id {
			m.rooms = append(m.rooms[:i], m.rooms[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *MemRoomRepository) CreateActivity(_ context.Context, params CreateActivityParams) (Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a := Activity{
		Id:        m.nextActivityId,
		UserEmail: params.UserEmail,
		Action:    params.Action,
		Timestamp: time.Now().UTC(),
	}
	m.nextActivityId++
	m.activity = append(m.activity, a)

	return a, nil
}

func (m *MemRoomRepository) ListActivity(context.Context) ([]Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := append(make([]Activity, 0, len(m.activity)), m.activity...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].Id > out[j].Id
	})

	return out, nil
}

func (m *MemRoomRepository) Close() error { return nil }
