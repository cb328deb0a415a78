package registry

import (
	"errors"

	"github.com/npezzotti/go-roomreg/internal/auth"
)

var (
	ErrUnauthenticated     = errors.New("not authenticated")
	ErrInvalidRoom         = errors.New("room number and description are required")
	ErrRoomNumberTooLong   = errors.New("room number is too long")
	ErrDuplicateOwner      = errors.New("user already registered a room")
	ErrDuplicateRoomNumber = errors.New("room number already taken")
	ErrForbidden           = auth.ErrForbidden
	ErrNotFound            = errors.New("room not found")
)
