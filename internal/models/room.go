package models

// Room represents a shared household whose members split expenses.
type Room struct {
	// ID is the unique identifier for the room (UUID format).
	ID string

	// Name is the display name of the room (e.g., "Elm St Apartment").
	Name string

	// Code is the short join code roommates use to join this room.
	Code string

	// CreatedBy is the user ID of the room's creator.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the room was created.
	CreatedAt int64

	// Members is the current roster, resolved from the users table.
	Members []RoomMember
}

// RoomMember is one user on a room's roster.
type RoomMember struct {
	UserID string
	Name   string
	Email  string
}

// HasMember reports whether the given user is on the roster.
func (r *Room) HasMember(userID string) bool {
	for _, m := range r.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
