package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"
)

// PerPage is the fixed page size shared by every room listing surface.
const PerPage = 5

// CreateRoom inserts a room owned by ownerID and returns it. The creation
// timestamp is assigned here, in UTC; the member counter starts at zero.
func (s *Store) CreateRoom(ctx context.Context, ownerID int64, topic, description string) (Room, error) {
	s.logger.Debugf("Creating room (%s) for user (id: %d)", topic, ownerID)

	r := Room{
		Topic:       topic,
		Description: description,
		OwnerID:     ownerID,
		CreatedAt:   time.Now().UTC(),
	}

	sql := `insert into rooms (topic, description, owner_id, created_at)
			values ($1, $2, $3, $4)
			returning id, total_members`
	err := s.db.QueryRow(ctx, sql, r.Topic, r.Description, r.OwnerID, r.CreatedAt).
		Scan(&r.ID, &r.TotalMembers)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return Room{}, ErrRoomBadOwner
		}
		return Room{}, err
	}

	s.logger.Debugf("Created room (%s) with id %d", topic, r.ID)

	return r, nil
}

const roomColumns = `rooms.id, rooms.topic, rooms.description, rooms.owner_id,
					 users.username, rooms.total_members, rooms.created_at`

func scanRoom(row pgx.Row) (Room, error) {
	var r Room
	err := row.Scan(&r.ID, &r.Topic, &r.Description, &r.OwnerID, &r.OwnerUsername, &r.TotalMembers, &r.CreatedAt)
	return r, err
}

// RoomByID returns the room with the given id, owner username included,
// or ErrRoomNotExist.
func (s *Store) RoomByID(ctx context.Context, id int64) (Room, error) {
	sql := `select ` + roomColumns + `
			  from rooms
			  join users on users.id = rooms.owner_id
			 where rooms.id = $1`
	r, err := scanRoom(s.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Room{}, ErrRoomNotExist
		}
		return Room{}, err
	}
	return r, nil
}

// UpdateRoom replaces topic and description only; owner and creation timestamp
// are immutable. Returns ErrRoomNotExist when the id does not resolve.
func (s *Store) UpdateRoom(ctx context.Context, id int64, topic, description string) (Room, error) {
	s.logger.Debugf("Updating room (id: %d)", id)

	sql := `update rooms
			   set topic = $2, description = $3
			 where id = $1
			 returning id, topic, description, owner_id, total_members, created_at`
	var r Room
	err := s.db.QueryRow(ctx, sql, id, topic, description).
		Scan(&r.ID, &r.Topic, &r.Description, &r.OwnerID, &r.TotalMembers, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Room{}, ErrRoomNotExist
		}
		return Room{}, err
	}
	return r, nil
}

// DeleteRoom removes the room permanently. Rooms own no children, so no cascade.
func (s *Store) DeleteRoom(ctx context.Context, id int64) error {
	s.logger.Debugf("Deleting room (id: %d)", id)

	tag, err := s.db.Exec(ctx, "delete from rooms where id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRoomNotExist
	}
	return nil
}

// Rooms returns one page of the global room listing, newest first, ties kept in
// insertion order. Pages are 1-indexed; a page past the end is empty, not an error.
func (s *Store) Rooms(ctx context.Context, page int) (RoomPage, error) {
	return s.listRooms(ctx, page, 0)
}

// RoomsByOwner is Rooms filtered to a single owner, same ordering and paging contract.
func (s *Store) RoomsByOwner(ctx context.Context, ownerID int64, page int) (RoomPage, error) {
	return s.listRooms(ctx, page, ownerID)
}

func (s *Store) listRooms(ctx context.Context, page int, ownerID int64) (RoomPage, error) {
	if page < 1 {
		page = 1
	}

	filter := ""
	args := []interface{}{PerPage, (page - 1) * PerPage}
	countArgs := []interface{}{}
	if ownerID != 0 {
		filter = " where rooms.owner_id = $3"
		args = append(args, ownerID)
		countArgs = append(countArgs, ownerID)
	}

	var total int
	countSQL := "select count(*) from rooms"
	if ownerID != 0 {
		countSQL += " where owner_id = $1"
	}
	if err := s.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return RoomPage{}, err
	}

	sql := `select ` + roomColumns + `
			  from rooms
			  join users on users.id = rooms.owner_id` + filter + `
			 order by rooms.created_at desc, rooms.id asc
			 limit $1 offset $2`

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return RoomPage{}, err
	}
	defer rows.Close()

	var rooms []Room
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return RoomPage{}, err
		}
		rooms = append(rooms, r)
	}
	if rows.Err() != nil {
		return RoomPage{}, rows.Err()
	}

	s.logger.Debugf("Retrieved %d rooms (page %d of %d total)", len(rooms), page, total)

	return RoomPage{
		Rooms:      rooms,
		Page:       page,
		PerPage:    PerPage,
		Total:      total,
		TotalPages: (total + PerPage - 1) / PerPage,
	}, nil
}
