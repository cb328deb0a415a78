package database

import (
	"context"
	"database/sql"
	"time"
)

const roomColumns = "id, room_number, description, email, created_at"

func (db *PgRoomRepository) CreateRoom(ctx context.Context, params CreateRoomParams) (Room, error) {
	res := db.conn.QueryRowContext(
		ctx,
		"INSERT INTO room (room_number, description, email, created_at) "+
			"VALUES ($1, $2, $3, $4) RETURNING "+roomColumns,
		params.RoomNumber,
		params.Description,
		params.Email,
		time.Now().UTC(),
	)

	room, err := scanRoom(res)
	if err != nil {
		return Room{}, mapConstraintError(err)
	}

	return room, nil
}

func (db *PgRoomRepository) GetRoomById(ctx context.Context, id int) (Room, error) {
	return scanRoom(db.conn.QueryRowContext(
		ctx,
		"SELECT "+roomColumns+" FROM room WHERE id = $1 LIMIT 1",
		id,
	))
}

func (db *PgRoomRepository) GetRoomByEmail(ctx context.Context, email string) (Room, error) {
	return scanRoom(db.conn.QueryRowContext(
		ctx,
		"SELECT "+roomColumns+" FROM room WHERE email = $1 LIMIT 1",
		email,
	))
}

func (db *PgRoomRepository) GetRoomByNumber(ctx context.Context, roomNumber string) (Room, error) {
	return scanRoom(db.conn.QueryRowContext(
		ctx,
		"SELECT "+roomColumns+" FROM room WHERE room_number = $1 LIMIT 1",
		roomNumber,
	))
}

func (db *PgRoomRepository) ListRooms(ctx context.Context) ([]Room, error) {
	rows, err := db.conn.QueryContext(ctx, "SELECT "+roomColumns+" FROM room ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rooms := make([]Room, 0)
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}

	return rooms, rows.Err()
}

// DeleteRoom removes the room with the given id. It returns sql.ErrNoRows
// when no such room exists.
func (db *PgRoomRepository) DeleteRoom(ctx context.Context, id int) error {
	res, err := db.conn.ExecContext(ctx, "DELETE FROM room WHERE id = $1", id)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (db *PgRoomRepository) CreateActivity(ctx context.Context, params CreateActivityParams) (Activity, error) {
	res := db.conn.QueryRowContext(
		ctx,
		`INSERT INTO user_activity (user_email, action, "timestamp") `+
			`VALUES ($1, $2, $3) RETURNING id, user_email, action, "timestamp"`,
		params.UserEmail,
		params.Action,
		time.Now().UTC(),
	)

	var a Activity
	err := res.Scan(
		&a.Id,
		&a.UserEmail,
		&a.Action,
		&a.Timestamp,
	)

	return a, err
}

func (db *PgRoomRepository) ListActivity(ctx context.Context) ([]Activity, error) {
	rows, err := db.conn.QueryContext(
		ctx,
		`SELECT id, user_email, action, "timestamp" FROM user_activity ORDER BY "timestamp" DESC, id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activity := make([]Activity, 0)
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.Id, &a.UserEmail, &a.Action, &a.Timestamp); err != nil {
			return nil, err
		}
		activity = append(activity, a)
	}

	return activity, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (Room, error) {
	var room Room
	err := row.Scan(
		&room.Id,
		&room.RoomNumber,
		&room.Description,
		&room.Email,
		&room.CreatedAt,
	)

	return room, err
}
