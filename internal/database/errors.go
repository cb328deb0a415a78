package database

import (
	"errors"

	"github.com/lib/pq"
)

// RoomNumberWidth is the declared width of room.room_number.
const RoomNumberWidth = 50

const (
	roomEmailConstraint      = "room_email_key"
	roomNumberConstraint     = "room_room_number_key"
	uniqueViolationErrorCode = pq.ErrorCode("23505")
	stringTooLongErrorCode   = pq.ErrorCode("22001")
)

var (
	ErrDuplicateOwner      = errors.New("room already registered for this email")
	ErrDuplicateRoomNumber = errors.New("room number already registered")
	ErrValueTooLong        = errors.New("value too long for column")
)

// mapConstraintError translates unique violations on the room table and
// column width overflows into the package's sentinel errors. Other errors are
// returned unchanged.
func mapConstraintError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	if pqErr.Code == stringTooLongErrorCode {
		return ErrValueTooLong
	}
	if pqErr.Code != uniqueViolationErrorCode {
		return err
	}

	switch pqErr.Constraint {
	case roomEmailConstraint:
		return ErrDuplicateOwner
	case roomNumberConstraint:
		return ErrDuplicateRoomNumber
	default:
		return err
	}
}
