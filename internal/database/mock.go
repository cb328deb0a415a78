package database

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockRoomRepository struct {
	mock.Mock
}

func (m *MockRoomRepository) Ping(ctx context.Context) error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockRoomRepository) CreateRoom(ctx context.Context, params CreateRoomParams) (Room, error) {
	args := m.Called(params)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockRoomRepository) GetRoomById(ctx context.Context, id int) (Room, error) {
	args := m.Called(id)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockRoomRepository) GetRoomByEmail(ctx context.Context, email string) (Room, error) {
	args := m.Called(email)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockRoomRepository) GetRoomByNumber(ctx context.Context, roomNumber string) (Room, error) {
	args := m.Called(roomNumber)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockRoomRepository) ListRooms(ctx context.Context) ([]Room, error) {
	args := m.Called()
	return args.Get(0).([]Room), args.Error(1)
}
func (m *MockRoomRepository) DeleteRoom(ctx context.Context, id int) error {
	args := m.Called(id)
	return args.Error(0)
}
func (m *MockRoomRepository) CreateActivity(ctx context.Context, params CreateActivityParams) (Activity, error) {
	args := m.Called(params)
	return args.Get(0).(Activity), args.Error(1)
}
func (m *MockRoomRepository) ListActivity(ctx context.Context) ([]Activity, error) {
	args := m.Called()
	return args.Get(0).([]Activity), args.Error(1)
}
