package storage

import "time"

type User struct {
	ID           int64
	Name         string
	Username     string
	Email        string
	PasswordHash string
	PictureFile  string
	CreatedAt    time.Time
}

type Room struct {
	ID            int64
	Topic         string
	Description   string
	OwnerID       int64
	OwnerUsername string
	TotalMembers  int
	CreatedAt     time.Time
}

// RoomPage is one slice of the reverse-chronological room listing.
// Pages are 1-indexed and hold at most PerPage rooms.
type RoomPage struct {
	Rooms      []Room
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// HasPrev reports whether there is a page before this one.
func (p RoomPage) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether there is a page after this one.
func (p RoomPage) HasNext() bool { return p.Page < p.TotalPages }

func (p RoomPage) PrevPage() int { return p.Page - 1 }
func (p RoomPage) NextPage() int { return p.Page + 1 }
