// Package registry implements room registration: one room per user and one
// user per room number.
package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/npezzotti/go-roomreg/internal/database"
	"go.uber.org/zap"
)

type Room struct {
	Id          int       `json:"id"`
	RoomNumber  string    `json:"room_number"`
	Description string    `json:"description"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

type AdminChecker interface {
	IsAdmin(identity string) bool
}

type Registry struct {
	log    *zap.Logger
	db     database.RoomRepository
	policy AdminChecker
}

func New(logger *zap.Logger, db database.RoomRepository, policy AdminChecker) *Registry {
	return &Registry{
		log:    logger.With(zap.String("component", "registry")),
		db:     db,
		policy: policy,
	}
}

const MaxRoomNumberLength = database.RoomNumberWidth

// AddRoom registers a room owned by identity. An existing room is reported
// before the submitted fields are looked at.
//
// The existence checks give precise errors in the common case; the unique
// constraints on the room table settle concurrent submissions that both pass
// the checks.
func (r *Registry) AddRoom(ctx context.Context, identity, roomNumber, description string) (Room, error) {
	if identity == "" {
		return Room{}, ErrUnauthenticated
	}

	owned, err := r.HasRoom(ctx, identity)
	if err != nil {
		return Room{}, err
	}
	if owned {
		return Room{}, ErrDuplicateOwner
	}

	roomNumber = strings.TrimSpace(roomNumber)
	description = strings.TrimSpace(description)
	if roomNumber == "" || description == "" {
		return Room{}, ErrInvalidRoom
	}
	if utf8.RuneCountInString(roomNumber) > MaxRoomNumberLength {
		return Room{}, ErrRoomNumberTooLong
	}

	_, err = r.db.GetRoomByNumber(ctx, roomNumber)
	switch {
	case err == nil:
		return Room{}, ErrDuplicateRoomNumber
	case !errors.Is(err, sql.ErrNoRows):
		return Room{}, fmt.Errorf("get room by number: %w", err)
	}

	dbRoom, err := r.db.CreateRoom(ctx, database.CreateRoomParams{
		RoomNumber:  roomNumber,
		Description: description,
		Email:       identity,
	})
	if err != nil {
		switch {
		case errors.Is(err, database.ErrDuplicateOwner):
			return Room{}, ErrDuplicateOwner
		case errors.Is(err, database.ErrDuplicateRoomNumber):
			return Room{}, ErrDuplicateRoomNumber
		case errors.Is(err, database.ErrValueTooLong):
			return Room{}, ErrRoomNumberTooLong
		}
		return Room{}, fmt.Errorf("create room: %w", err)
	}

	r.log.Info("room created",
		zap.Int("room_id", dbRoom.Id),
		zap.String("room_number", dbRoom.RoomNumber),
		zap.String("email", dbRoom.Email),
	)

	return fromDatabase(dbRoom), nil
}

// HasRoom reports whether identity already owns a room.
func (r *Registry) HasRoom(ctx context.Context, identity string) (bool, error) {
	_, err := r.db.GetRoomByEmail(ctx, identity)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	default:
		return false, fmt.Errorf("get room by email: %w", err)
	}
}

// ListRooms returns every room in registration order.
func (r *Registry) ListRooms(ctx context.Context) ([]Room, error) {
	dbRooms, err := r.db.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	rooms := make([]Room, 0, len(dbRooms))
	for _, dbRoom := range dbRooms {
		rooms = append(rooms, fromDatabase(dbRoom))
	}

	return rooms, nil
}

func (r *Registry) AdminRooms(ctx context.Context, identity string) ([]Room, error) {
	if !r.policy.IsAdmin(identity) {
		return nil, ErrForbidden
	}

	return r.ListRooms(ctx)
}

func (r *Registry) DeleteRoom(ctx context.Context, identity string, id int) error {
	if !r.policy.IsAdmin(identity) {
		return ErrForbidden
	}

	if err := r.db.DeleteRoom(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("delete room: %w", err)
	}

	r.log.Info("room deleted", zap.Int("room_id", id), zap.String("admin", identity))
	return nil
}

func fromDatabase(room database.Room) Room {
	return Room{
		Id:          room.Id,
		RoomNumber:  room.RoomNumber,
		Description: room.Description,
		Email:       room.Email,
		CreatedAt:   room.CreatedAt,
	}
}
